// services/user_service.go - Accounts and sessions
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"teamwork/authz"
	"teamwork/errs"
	"teamwork/models"
	"teamwork/store"
	"teamwork/token"
)

const searchLimit = 10

type UserService struct {
	base
	issuer *token.Issuer
	cost   int
}

func NewUserService(s store.Store, issuer *token.Issuer, cost int, log *zap.Logger) *UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &UserService{base: base{store: s, log: log.Named("users")}, issuer: issuer, cost: cost}
}

type RegisterInput struct {
	Name     string
	Username string
	Password string
	Picture  string
}

// Session is returned by register and login.
type Session struct {
	models.PublicUser
	Token string `json:"token"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const failed = "Failed to register"

	name := strings.TrimSpace(in.Name)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if name == "" || username == "" || in.Password == "" {
		return nil, errs.Validation("Please provide all the needed information")
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, errs.Conflict("Username is already taken")
	case !errors.Is(err, store.ErrNotFound):
		return nil, s.fail(err, "", failed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, s.fail(err, "", failed)
	}

	ts := now()
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  username,
		Password:  string(hash),
		Picture:   strings.TrimSpace(in.Picture),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errs.Conflict("Username is already taken")
		}
		return nil, s.fail(err, "", failed)
	}

	s.log.Info("user registered", zap.String("user_id", u.ID))
	return s.session(u)
}

func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, errs.Validation("Please provide all the needed information")
	}

	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.Validation("Incorrect username or password")
	}
	if err != nil {
		return nil, s.fail(err, "", "Failed to log in")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, errs.Validation("Incorrect username or password")
	}
	return s.session(u)
}

func (s *UserService) session(u *models.User) (*Session, error) {
	tok, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, s.fail(err, "", "Failed to issue token")
	}
	return &Session{PublicUser: u.Public(), Token: tok}, nil
}

// Me returns the caller's public profile.
func (s *UserService) Me(ctx context.Context, id authz.Identity) (*models.PublicUser, error) {
	u, err := s.store.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, s.fail(err, "User not found", "Failed to fetch user")
	}
	p := u.Public()
	return &p, nil
}

// SearchUsers matches name or username, excluding the caller.
func (s *UserService) SearchUsers(ctx context.Context, id authz.Identity, query string) ([]models.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.PublicUser{}, nil
	}

	users, err := s.store.SearchUsers(ctx, query, id.UserID, searchLimit)
	if err != nil {
		return nil, s.fail(err, "", "Failed to search users")
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
