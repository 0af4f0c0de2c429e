// Package ledger computes group balances, pairwise debts and the activity
// feed from an in-memory Snapshot of a group's rows.
//
// Everything here is pure: callers fetch rows (see storage.Store.LoadSnapshot),
// hand over a Snapshot, and get new values back. Nothing in a Snapshot is
// mutated.
//
// Membership drives interpretation. Only members with a current Membership
// row are "active"; records that reference anyone else are still kept and
// displayed (as "Removed User") but no longer count toward balances:
//
//   - an expense whose payer is inactive contributes nothing at all;
//   - a split owned by an inactive member is dropped from the payer's credit;
//   - a settlement counts only when both ends are active.
//
// Money is decimal.Decimal throughout.
package ledger
