package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"rentaladmin/access"
	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
	"rentaladmin/util/hash"
)

type ErrCode string

const (
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrUsernameTaken    ErrCode = "USERNAME_TAKEN"
	ErrEmailTaken       ErrCode = "EMAIL_TAKEN"
	ErrPasswordRequired ErrCode = "PASSWORD_REQUIRED"
	ErrWeakPassword     ErrCode = "WEAK_PASSWORD"
	ErrBadRole          ErrCode = "BAD_ROLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const minPasswordLen = 6

type Input struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Roles     []string
	Status    string
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, p *access.Principal, in Input) (*model.User, error)
	Update(ctx context.Context, p *access.Principal, id int64, in Input) (*model.User, error)
	Delete(ctx context.Context, p *access.Principal, id int64) error
	ChangePassword(ctx context.Context, p *access.Principal, newPassword string) error
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type service struct {
	r        Repo
	activity *activitysvc.Logger
}

func New(r Repo, activity *activitysvc.Logger) Service {
	return &service{r: r, activity: activity}
}

// ValidRoles guards the role payload so the JSONB column only ever holds
// known values.
func ValidRoles(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if r != model.RoleAdmin && r != model.RoleStaff {
			return false
		}
	}
	return true
}

func normalizeStatus(s string) string {
	if s == model.UserInactive {
		return model.UserInactive
	}
	return model.UserActive
}

func (s *service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Create(ctx context.Context, p *access.Principal, in Input) (*model.User, error) {
	if in.Password == "" {
		return nil, makeErr(ErrPasswordRequired)
	}
	if len(in.Password) < minPasswordLen {
		return nil, makeErr(ErrWeakPassword)
	}
	if !ValidRoles(in.Roles) {
		return nil, makeErr(ErrBadRole)
	}

	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     strings.ToLower(in.Username),
		Email:        strings.ToLower(in.Email),
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Roles:        in.Roles,
		Status:       normalizeStatus(in.Status),
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, mapDuplicateErr(err)
	}

	s.activity.Record(ctx, p, "USER_CREATED", fmt.Sprintf(
		"User ID: %d, Username: %s, Roles: %s", u.ID, u.Username, strings.Join(u.Roles, ", ")))
	u.PasswordHash = ""
	return u, nil
}

func (s *service) Update(ctx context.Context, p *access.Principal, id int64, in Input) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ValidRoles(in.Roles) {
		return nil, makeErr(ErrBadRole)
	}

	u.Username = strings.ToLower(in.Username)
	u.Email = strings.ToLower(in.Email)
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Roles = in.Roles
	u.Status = normalizeStatus(in.Status)
	// blank password keeps the stored hash
	if in.Password != "" {
		if len(in.Password) < minPasswordLen {
			return nil, makeErr(ErrWeakPassword)
		}
		hashed, err := hash.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}

	if err := s.r.Update(ctx, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, mapDuplicateErr(err)
	}

	s.activity.Record(ctx, p, "USER_UPDATED", fmt.Sprintf(
		"User ID: %d, Username: %s, Roles: %s", u.ID, u.Username, strings.Join(u.Roles, ", ")))
	u.PasswordHash = ""
	return u, nil
}

func (s *service) Delete(ctx context.Context, p *access.Principal, id int64) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}

	s.activity.Record(ctx, p, "USER_DELETED", fmt.Sprintf(
		"User ID: %d, Username: %s (deleted)", u.ID, u.Username))
	return nil
}

// ChangePassword lets any authenticated user rotate their own credential.
// Only the hash changes; the rest of the row is written back untouched.
func (s *service) ChangePassword(ctx context.Context, p *access.Principal, newPassword string) error {
	if newPassword == "" {
		return makeErr(ErrPasswordRequired)
	}
	if len(newPassword) < minPasswordLen {
		return makeErr(ErrWeakPassword)
	}

	u, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	hashed, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hashed

	if err := s.r.Update(ctx, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	s.activity.Record(ctx, p, "PASSWORD_CHANGED", fmt.Sprintf(
		"User ID: %d, Username: %s", u.ID, u.Username))
	return nil
}

// EnsureAdmin seeds the first administrator so a fresh database is not a
// dead end: user creation is admin-gated and login needs an existing active
// user. A no-op when the username already exists.
func (s *service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if len(password) < minPasswordLen {
		return makeErr(ErrWeakPassword)
	}

	_, err := s.r.ByUsername(ctx, strings.ToLower(username))
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	u := &model.User{
		Username:     strings.ToLower(username),
		Email:        strings.ToLower(email),
		PasswordHash: hashed,
		Roles:        []string{model.RoleAdmin},
		Status:       model.UserActive,
	}
	if err := s.r.Create(ctx, u); err != nil {
		return mapDuplicateErr(err)
	}

	s.activity.Record(ctx, nil, "USER_CREATED", fmt.Sprintf(
		"User ID: %d, Username: %s, Roles: %s (seed)", u.ID, u.Username, model.RoleAdmin))
	return nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return makeErr(ErrEmailTaken)
		}
		return makeErr(ErrUsernameTaken)
	}
	return err
}
