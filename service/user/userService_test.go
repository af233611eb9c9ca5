package user

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"rentaladmin/access"
	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
	"rentaladmin/util/hash"
)

type mockRepo struct {
	createFn     func(ctx context.Context, u *model.User) error
	byIDFn       func(ctx context.Context, id int64) (*model.User, error)
	byUsernameFn func(ctx context.Context, username string) (*model.User, error)
	listFn       func(ctx context.Context) ([]model.User, error)
	updateFn     func(ctx context.Context, u *model.User) error
	deleteFn     func(ctx context.Context, id int64) (bool, error)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error { return m.createFn(ctx, u) }
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}
func (m *mockRepo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.byUsernameFn(ctx, username)
}
func (m *mockRepo) List(ctx context.Context) ([]model.User, error)  { return m.listFn(ctx) }
func (m *mockRepo) Update(ctx context.Context, u *model.User) error { return m.updateFn(ctx, u) }
func (m *mockRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return m.deleteFn(ctx, id)
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

func admin() *access.Principal {
	return &access.Principal{ID: 1, Username: "boss", Role: model.RoleAdmin}
}

func validInput() Input {
	return Input{
		Username: "Clerk",
		Email:    "Clerk@Example.com",
		Password: "supersecret",
		Roles:    []string{model.RoleStaff},
		Status:   model.UserActive,
	}
}

func TestValidRoles(t *testing.T) {
	require.True(t, ValidRoles([]string{model.RoleStaff}))
	require.True(t, ValidRoles([]string{model.RoleAdmin, model.RoleStaff}))
	require.False(t, ValidRoles(nil))
	require.False(t, ValidRoles([]string{"ROLE_SUPERUSER"}))
}

func TestCreate_Success(t *testing.T) {
	audit := &auditRepoMock{}
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 7
			return nil
		},
	}
	svc := New(m, testAudit(audit))

	u, err := svc.Create(context.Background(), admin(), validInput())
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, "clerk", u.Username)
	require.Equal(t, "clerk@example.com", u.Email)
	require.Empty(t, u.PasswordHash)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "USER_CREATED", audit.entries[0].Action)
}

func TestCreate_HashesPassword(t *testing.T) {
	var stored string
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			stored = u.PasswordHash
			return nil
		},
	}
	svc := New(m, testAudit(&auditRepoMock{}))

	_, err := svc.Create(context.Background(), admin(), validInput())
	require.NoError(t, err)
	require.NotEqual(t, "supersecret", stored)
	require.True(t, hash.Check(stored, "supersecret"))
}

func TestCreate_PasswordRules(t *testing.T) {
	svc := New(&mockRepo{}, testAudit(&auditRepoMock{}))

	in := validInput()
	in.Password = ""
	_, err := svc.Create(context.Background(), admin(), in)
	require.Equal(t, ErrPasswordRequired, Code(err))

	in.Password = "12345"
	_, err = svc.Create(context.Background(), admin(), in)
	require.Equal(t, ErrWeakPassword, Code(err))
}

func TestCreate_BadRole(t *testing.T) {
	svc := New(&mockRepo{}, testAudit(&auditRepoMock{}))

	in := validInput()
	in.Roles = []string{"ROLE_SUPERUSER"}
	_, err := svc.Create(context.Background(), admin(), in)
	require.Equal(t, ErrBadRole, Code(err))
}

func TestCreate_DuplicateMapping(t *testing.T) {
	mkRepo := func(constraint string) Repo {
		return &mockRepo{
			createFn: func(ctx context.Context, u *model.User) error {
				return &pgconn.PgError{
					Code:           pgerrcode.UniqueViolation,
					ConstraintName: constraint,
				}
			},
		}
	}

	svc := New(mkRepo("users_username_key"), testAudit(&auditRepoMock{}))
	_, err := svc.Create(context.Background(), admin(), validInput())
	require.Equal(t, ErrUsernameTaken, Code(err))

	svc = New(mkRepo("users_email_key"), testAudit(&auditRepoMock{}))
	_, err = svc.Create(context.Background(), admin(), validInput())
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestUpdate_BlankPasswordKeepsHash(t *testing.T) {
	existing := &model.User{
		ID:           7,
		Username:     "clerk",
		Email:        "clerk@example.com",
		PasswordHash: "$2a$10$existinghash",
		Roles:        []string{model.RoleStaff},
		Status:       model.UserActive,
	}
	var updated model.User
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) { return existing, nil },
		updateFn: func(ctx context.Context, u *model.User) error {
			updated = *u
			return nil
		},
	}
	svc := New(m, testAudit(&auditRepoMock{}))

	in := validInput()
	in.Password = ""
	_, err := svc.Update(context.Background(), admin(), 7, in)
	require.NoError(t, err)
	require.Equal(t, "$2a$10$existinghash", updated.PasswordHash)
}

func TestChangePassword_Success(t *testing.T) {
	existing := &model.User{
		ID:           2,
		Username:     "clerk",
		Email:        "clerk@example.com",
		PasswordHash: "$2a$10$oldhash",
		Roles:        []string{model.RoleStaff},
		Status:       model.UserActive,
	}
	var updated model.User
	audit := &auditRepoMock{}
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			require.Equal(t, int64(2), id)
			return existing, nil
		},
		updateFn: func(ctx context.Context, u *model.User) error {
			updated = *u
			return nil
		},
	}
	svc := New(m, testAudit(audit))

	staff := &access.Principal{ID: 2, Username: "clerk", Role: model.RoleStaff}
	require.NoError(t, svc.ChangePassword(context.Background(), staff, "newsecret"))

	require.True(t, hash.Check(updated.PasswordHash, "newsecret"))
	// only the credential changes
	require.Equal(t, "clerk", updated.Username)
	require.Equal(t, []string{model.RoleStaff}, updated.Roles)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "PASSWORD_CHANGED", audit.entries[0].Action)
	require.Equal(t, "clerk", audit.entries[0].Username)
}

func TestChangePassword_Rules(t *testing.T) {
	svc := New(&mockRepo{}, testAudit(&auditRepoMock{}))
	staff := &access.Principal{ID: 2, Username: "clerk", Role: model.RoleStaff}

	err := svc.ChangePassword(context.Background(), staff, "")
	require.Equal(t, ErrPasswordRequired, Code(err))

	err = svc.ChangePassword(context.Background(), staff, "12345")
	require.Equal(t, ErrWeakPassword, Code(err))
}

func TestEnsureAdmin_CreatesWhenMissing(t *testing.T) {
	var created *model.User
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 1
			created = u
			return nil
		},
	}
	audit := &auditRepoMock{}
	svc := New(m, testAudit(audit))

	require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin", "Admin@Example.com", "admin123"))
	require.NotNil(t, created)
	require.Equal(t, "admin", created.Username)
	require.Equal(t, "admin@example.com", created.Email)
	require.Equal(t, []string{model.RoleAdmin}, created.Roles)
	require.Equal(t, model.UserActive, created.Status)
	require.True(t, hash.Check(created.PasswordHash, "admin123"))

	require.Len(t, audit.entries, 1)
	// no principal exists yet at seed time
	require.Equal(t, "Anonymous", audit.entries[0].Username)
}

func TestEnsureAdmin_NoopWhenPresent(t *testing.T) {
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 1, Username: username}, nil
		},
		createFn: func(ctx context.Context, u *model.User) error {
			t.Fatal("must not create a second seed user")
			return nil
		},
	}
	svc := New(m, testAudit(&auditRepoMock{}))

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "admin123"))
}

func TestEnsureAdmin_WeakPassword(t *testing.T) {
	svc := New(&mockRepo{}, testAudit(&auditRepoMock{}))
	err := svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "123")
	require.Equal(t, ErrWeakPassword, Code(err))
}

func TestDelete_AuditsSnapshot(t *testing.T) {
	audit := &auditRepoMock{}
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: 7, Username: "clerk"}, nil
		},
		deleteFn: func(ctx context.Context, id int64) (bool, error) { return true, nil },
	}
	svc := New(m, testAudit(audit))

	require.NoError(t, svc.Delete(context.Background(), admin(), 7))
	require.Len(t, audit.entries, 1)
	require.Equal(t, "USER_DELETED", audit.entries[0].Action)
	require.Contains(t, *audit.entries[0].TargetData, "(deleted)")
	require.Contains(t, *audit.entries[0].TargetData, "clerk")
}
