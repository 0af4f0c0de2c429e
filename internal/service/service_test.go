package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
)

// testEnv is a running server backed by a temp SQLite database.
type testEnv struct {
	store    storage.Store
	auth     *api.AuthServiceClient
	groups   *api.GroupServiceClient
	expenses *api.ExpenseServiceClient
}

// testUser is a registered account and its session token.
type testUser struct {
	ID    string
	Email string
	Token string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, auth.WithCost(bcrypt.MinCost))
	m := metrics.New(prometheus.NewRegistry())

	optional := connect.WithInterceptors(middleware.OptionalAuth(jwtManager))
	required := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, nil), optional))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, m), required))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, m), required))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:    store,
		auth:     api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:   api.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses: api.NewExpenseServiceClient(http.DefaultClient, server.URL),
	}
}

// as builds a request authenticated as u.
func as[T any](u *testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if u != nil {
		req.Header().Set("Authorization", "Bearer "+u.Token)
	}
	return req
}

func (e *testEnv) register(t *testing.T, email, name string) *testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return &testUser{ID: resp.Msg.User.ID, Email: resp.Msg.User.Email, Token: resp.Msg.Token}
}

func (e *testEnv) createGroup(t *testing.T, admin *testUser, name string) string {
	t.Helper()
	resp, err := e.groups.CreateGroup(context.Background(), as(admin, &api.CreateGroupRequest{Name: name}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group.ID
}

// join invites u into groupID on behalf of inviter and accepts.
func (e *testEnv) join(t *testing.T, inviter, u *testUser, groupID string) {
	t.Helper()
	ctx := context.Background()
	inv, err := e.groups.InviteMember(ctx, as(inviter, &api.InviteMemberRequest{GroupID: groupID, Email: u.Email}))
	if err != nil {
		t.Fatalf("InviteMember failed: %v", err)
	}
	if _, err := e.groups.RespondToInvitation(ctx, as(u, &api.RespondToInvitationRequest{
		InvitationID: inv.Msg.Invitation.ID,
		Accept:       true,
	})); err != nil {
		t.Fatalf("RespondToInvitation failed: %v", err)
	}
}

func (e *testEnv) balances(t *testing.T, u *testUser, groupID string) map[string]*api.MemberBalance {
	t.Helper()
	resp, err := e.groups.GetBalances(context.Background(), as(u, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	out := make(map[string]*api.MemberBalance, len(resp.Msg.Balances))
	for _, b := range resp.Msg.Balances {
		out[b.UserID] = b
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func assertCode(t *testing.T, err error, want connect.Code) *connect.Error {
	t.Helper()
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error with code %v, got %v", want, err)
	}
	if connectErr.Code() != want {
		t.Fatalf("code = %v, want %v (%s)", connectErr.Code(), want, connectErr.Message())
	}
	return connectErr
}
