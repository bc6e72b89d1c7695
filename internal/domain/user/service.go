package user

import (
	"context"
	"fmt"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/internal/platform/password"
	"github.com/medidesk/medidesk/internal/platform/ws"
)

// invalidCredentials is returned for unknown usernames, inactive accounts and
// wrong passwords alike so that responses carry no user-enumeration signal.
func invalidCredentials() error {
	return apperr.Unauthenticated("invalid username or password")
}

type Service struct {
	repo   Repository
	issuer *auth.Issuer
	rec    *activity.Recorder
	bus    ws.Broadcaster
}

func NewService(repo Repository, issuer *auth.Issuer, rec *activity.Recorder, bus ws.Broadcaster) *Service {
	return &Service{repo: repo, issuer: issuer, rec: rec, bus: bus}
}

func actor(ctx context.Context) string {
	if ident := auth.FromContext(ctx); ident != nil {
		return ident.Username
	}
	return "system"
}

// Login verifies credentials and issues a session token. The token is the
// session; nothing is stored server-side and logout is client-side discard.
func (s *Service) Login(ctx context.Context, username, plain string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, invalidCredentials()
	}
	if !u.Active {
		return "", nil, invalidCredentials()
	}
	ok, err := password.Verify(u.PasswordHash, plain)
	if err != nil {
		return "", nil, apperr.Internal("verify credentials", err)
	}
	if !ok {
		return "", nil, invalidCredentials()
	}

	token, err := s.issuer.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return "", nil, apperr.Internal("issue session token", err)
	}

	s.rec.Record(ctx, u.Username, "login", "")
	return token, u, nil
}

func (s *Service) Create(ctx context.Context, u *User, plain string) error {
	if !auth.ValidRole(string(u.Role)) {
		return apperr.Validation("unknown role", "role")
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	u.PasswordHash = hash
	u.Active = true

	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "user_created", u.Username)
	s.bus.Broadcast("user_added", map[string]interface{}{
		"id": u.ID, "username": u.Username, "role": u.Role,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, u *User) error {
	if !auth.ValidRole(string(u.Role)) {
		return apperr.Validation("unknown role", "role")
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "user_updated", fmt.Sprintf("id=%d", u.ID))
	s.bus.Broadcast("user_updated", map[string]interface{}{
		"id": u.ID, "role": u.Role,
	})
	return nil
}

// Delete removes a user. The primary admin is rejected before any store
// access.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == PrimaryAdminID {
		return apperr.Protected("the primary admin account cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "user_deleted", fmt.Sprintf("id=%d", id))
	s.bus.Broadcast("user_deleted", map[string]interface{}{"id": id})
	return nil
}

// ToggleActive flips a user's active flag. The primary admin is rejected
// before any store access.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*User, error) {
	if id == PrimaryAdminID {
		return nil, apperr.Protected("the primary admin account cannot be deactivated")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !u.Active); err != nil {
		return nil, err
	}
	u.Active = !u.Active

	s.rec.Record(ctx, actor(ctx), "user_toggled", fmt.Sprintf("id=%d active=%t", id, u.Active))
	s.bus.Broadcast("user_toggled", map[string]interface{}{
		"id": id, "active": u.Active,
	})
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, plain string) error {
	hash, err := password.Hash(plain)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.rec.Record(ctx, actor(ctx), "password_changed", fmt.Sprintf("id=%d", id))
	return nil
}
