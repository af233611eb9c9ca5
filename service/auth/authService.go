package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentaladmin/access"
	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
	"rentaladmin/util/hash"
	"rentaladmin/util/jwt"
)

type ErrCode string

const (
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrInactive     ErrCode = "ACCOUNT_INACTIVE"
	ErrInvalidToken ErrCode = "INVALID_TOKEN"
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

type UserRepo interface {
	ByUsername(ctx context.Context, username string) (*model.User, error)
}

type TokenBlacklist interface {
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

type Service interface {
	Login(ctx context.Context, username, password string) (string, *model.User, error)
	Logout(ctx context.Context, p *access.Principal, rawToken string) error
}

type service struct {
	users     UserRepo
	blacklist TokenBlacklist
	activity  *activitysvc.Logger
	secret    string
	ttlHours  int
}

func New(users UserRepo, blacklist TokenBlacklist, activity *activitysvc.Logger, secret string, ttlHours int) Service {
	return &service{users: users, blacklist: blacklist, activity: activity, secret: secret, ttlHours: ttlHours}
}

// Login checks credentials and issues a signed token. Lookup failure and a
// bad password collapse into the same error so the response does not reveal
// which usernames exist.
func (s *service) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	u, err := s.users.ByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, makeErr(ErrInvalidCreds)
		}
		return "", nil, err
	}
	if u.Status != model.UserActive {
		return "", nil, makeErr(ErrInactive)
	}
	if !hash.Check(u.PasswordHash, password) {
		return "", nil, makeErr(ErrInvalidCreds)
	}

	token, err := jwt.Issue(s.secret, u.ID, u.Username, strings.Join(u.Roles, ","), s.ttlHours)
	if err != nil {
		return "", nil, err
	}

	actor := &access.Principal{ID: u.ID, Username: u.Username, Role: strings.Join(u.Roles, ",")}
	s.activity.Record(ctx, actor, "USER_LOGIN", fmt.Sprintf("User %s logged in", u.Username))

	u.PasswordHash = ""
	return token, u, nil
}

// Logout blacklists the presented token for its remaining lifetime so the
// middleware rejects it even though the signature is still valid. A token
// that no longer parses (expired since the middleware check) needs no
// blacklist entry and is reported as invalid, not as a server fault.
func (s *service) Logout(ctx context.Context, p *access.Principal, rawToken string) error {
	claims, err := jwt.ParseAuth("Bearer "+rawToken, s.secret)
	if err != nil {
		return makeErr(ErrInvalidToken)
	}
	if err := s.blacklist.AddToBlacklist(ctx, rawToken, jwt.RemainingTTL(claims)); err != nil {
		return err
	}

	s.activity.Record(ctx, p, "USER_LOGOUT", fmt.Sprintf("User %s logged out", p.Username))
	return nil
}
