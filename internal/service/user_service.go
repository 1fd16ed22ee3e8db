package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"firenet/internal/auth"
	"firenet/internal/models"
	"firenet/internal/repository"
	"firenet/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	MsgHandleTaken        = "Handle already taken"
	MsgEmailTaken         = "Email already in use"
	MsgInvalidCredentials = "Wrong credentials, please try again"
)

type UserService struct {
	users  repository.UserRepository
	issuer *auth.Issuer
	now    func() time.Time
}

type SignupInput struct {
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ImageURL string `json:"imageUrl"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewUserService(users repository.UserRepository, issuer *auth.Issuer) *UserService {
	return &UserService{users: users, issuer: issuer, now: time.Now}
}

// Signup registers an account and returns a token for it.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Handle = strings.TrimSpace(in.Handle)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateHandle(in.Handle); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.ensureFree(ctx, s.users.GetByHandle, in.Handle, MsgHandleTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.users.GetByEmail, in.Email, MsgEmailTaken); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Handle:    in.Handle,
		Email:     in.Email,
		Password:  string(hash),
		ImageURL:  in.ImageURL,
		CreatedAt: models.Timestamp(s.now()),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewValidationError(MsgHandleTaken)
		}
		return nil, models.NewInternalError(err)
	}

	return s.authenticate(user)
}

// Login checks the credentials and returns a fresh token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if validation.IsBlank(email) || in.Password == "" {
		return nil, models.NewValidationError(MsgEmptyBody)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}

	return s.authenticate(user)
}

// ListUsers returns every account, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IssueToken mints a token for an existing handle.
func (s *UserService) IssueToken(ctx context.Context, handle string) (string, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if errors.Is(err, repository.ErrNotFound) {
		return "", models.NewNotFoundError("User not found.")
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return s.issuer.Issue(user.ID, user.Handle)
}

func (s *UserService) authenticate(user *models.User) (*AuthResult, error) {
	token, err := s.issuer.Issue(user.ID, user.Handle)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) ensureFree(
	ctx context.Context,
	lookup func(context.Context, string) (*models.User, error),
	value, takenMsg string,
) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return models.NewValidationError(takenMsg)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return models.NewInternalError(err)
	}
}
