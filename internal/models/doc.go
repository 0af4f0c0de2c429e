// Package models defines the row-level domain types for Splitledger.
//
// # Models
//
//   - User: a person who can pay for or share expenses. Ghost users have no
//     login identity and are created directly inside a group.
//   - Group: a set of people sharing expenses.
//   - Membership: the only record of "is currently in the group". Removing a
//     member deletes this row; nothing else about the user changes.
//   - Expense / ExpenseSplit: a payment made by one member and the shares
//     owed by each participant.
//   - Settlement: a direct payment from one member to another.
//   - ActivityLog: membership changes (added/removed) shown in the feed.
//   - Invitation: a pending request for an email address to join a group.
//
// # Design Principles
//
// 1. **Stable identifiers**: user IDs stay valid in historical rows after
// removal; display substitution happens at read time in the ledger package.
// 2. **Exact money**: all amounts are decimal.Decimal, never float64.
// 3. **No pointers between rows**: relationships are ID strings.
// 4. **Append-only history**: expenses, settlements and logs are never
// rewritten when membership changes.
package models
