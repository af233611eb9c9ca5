package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"rentaladmin/access"
	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
	"rentaladmin/util/hash"
	"rentaladmin/util/jwt"

	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	byUsernameFn func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockUsers) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.byUsernameFn(ctx, username)
}

type mockBlacklist struct {
	added map[string]time.Duration
}

func (m *mockBlacklist) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if m.added == nil {
		m.added = map[string]time.Duration{}
	}
	m.added[token] = ttl
	return nil
}

type auditRepoMock struct {
	entries []model.ActivityLog
}

func (m *auditRepoMock) Insert(ctx context.Context, e *model.ActivityLog) error {
	m.entries = append(m.entries, *e)
	return nil
}
func (m *auditRepoMock) List(ctx context.Context, f activitysvc.Filter) ([]model.ActivityLog, error) {
	return nil, nil
}
func (m *auditRepoMock) ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	return nil, nil
}

func testAudit(r activitysvc.Repo) *activitysvc.Logger {
	return activitysvc.NewLogger(r, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func activeUser(t *testing.T) *model.User {
	return &model.User{
		ID:           42,
		Username:     "clerk",
		PasswordHash: mustHash(t, "supersecret"),
		Roles:        []string{model.RoleStaff},
		Status:       model.UserActive,
	}
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	audit := &auditRepoMock{}
	m := &mockUsers{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			require.Equal(t, "clerk", username)
			return activeUser(t), nil
		},
	}
	svc := New(m, &mockBlacklist{}, testAudit(audit), "test-secret", 24)

	token, u, err := svc.Login(ctx, "Clerk", "supersecret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(42), u.ID)
	require.Empty(t, u.PasswordHash)

	claims, err := jwt.ParseAuth("Bearer "+token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "clerk", claims["username"])
	require.Equal(t, model.RoleStaff, claims["role"])

	require.Len(t, audit.entries, 1)
	require.Equal(t, "USER_LOGIN", audit.entries[0].Action)
	require.Equal(t, "clerk", audit.entries[0].Username)
}

func TestLogin_UnknownUser(t *testing.T) {
	m := &mockUsers{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(m, &mockBlacklist{}, testAudit(&auditRepoMock{}), "test-secret", 24)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	m := &mockUsers{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return activeUser(t), nil
		},
	}
	svc := New(m, &mockBlacklist{}, testAudit(&auditRepoMock{}), "test-secret", 24)

	_, _, err := svc.Login(context.Background(), "clerk", "nope")
	require.Error(t, err)
	// wrong password and unknown user look identical to the caller
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_InactiveAccount(t *testing.T) {
	m := &mockUsers{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			u := activeUser(t)
			u.Status = model.UserInactive
			return u, nil
		},
	}
	svc := New(m, &mockBlacklist{}, testAudit(&auditRepoMock{}), "test-secret", 24)

	_, _, err := svc.Login(context.Background(), "clerk", "supersecret")
	require.Error(t, err)
	require.Equal(t, ErrInactive, Code(err))
}

func TestLogout_BlacklistsToken(t *testing.T) {
	ctx := context.Background()
	audit := &auditRepoMock{}
	bl := &mockBlacklist{}
	svc := New(&mockUsers{}, bl, testAudit(audit), "test-secret", 24)

	token, err := jwt.Issue("test-secret", 42, "clerk", model.RoleStaff, 24)
	require.NoError(t, err)

	p := &access.Principal{ID: 42, Username: "clerk", Role: model.RoleStaff}
	require.NoError(t, svc.Logout(ctx, p, token))

	ttl, ok := bl.added[token]
	require.True(t, ok)
	require.Greater(t, ttl, 23*time.Hour)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "USER_LOGOUT", audit.entries[0].Action)
}

func TestLogout_UnparsableToken(t *testing.T) {
	bl := &mockBlacklist{}
	svc := New(&mockUsers{}, bl, testAudit(&auditRepoMock{}), "test-secret", 24)

	p := &access.Principal{ID: 42, Username: "clerk", Role: model.RoleStaff}
	err := svc.Logout(context.Background(), p, "not-a-jwt")
	require.Error(t, err)
	require.Equal(t, ErrInvalidToken, Code(err))
	require.Empty(t, bl.added)

	// expired mid-request looks the same as garbage
	expired, issueErr := jwt.Issue("test-secret", 42, "clerk", model.RoleStaff, -1)
	require.NoError(t, issueErr)
	err = svc.Logout(context.Background(), p, expired)
	require.Equal(t, ErrInvalidToken, Code(err))
}
