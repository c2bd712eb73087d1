package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/auth"
	"github.com/roombook/backend/internal/database"
	"github.com/roombook/backend/internal/database/models"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(userID int64) (token string, expiresAt time.Time)
	Verify(token string) (userID int64, err error)
}

func NewAuthService(stores Stores, passwords PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		baseService: baseService{Stores: stores},
		Passwords:   passwords,
		Tokens:      tokens,
	}
}

type AuthService struct {
	baseService

	Passwords PasswordHasher
	Tokens    TokenIssuer
}

type Registration struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, reg Registration) (user models.User, err error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Username == "" || reg.Email == "" || reg.Password == "" {
		err = apperror.Validation(MsgRegisterFieldsRequired)
		return
	}

	var exists bool
	if exists, err = s.Users.EmailExists(ctx, reg.Email); err != nil {
		return
	} else if exists {
		err = apperror.Conflict(MsgEmailTaken)
		return
	}

	if exists, err = s.Users.NameExists(ctx, reg.Name); err != nil {
		return
	} else if exists {
		err = apperror.Conflict(MsgNameTaken)
		return
	}

	var hash string
	if hash, err = s.Passwords.Hash(reg.Password); err != nil {
		err = fmt.Errorf("failed to hash password: %w", err)
		return
	}

	user = models.User{
		Name:     reg.Name,
		Username: reg.Username,
		Email:    reg.Email,
		Password: hash,
	}
	if err = s.Users.Create(ctx, &user); errors.Is(err, database.ErrDuplicate) {
		// Lost the race against a concurrent registration.
		msg := MsgEmailTaken
		if database.Constraint(err) == database.UsersNameKey {
			msg = MsgNameTaken
		}
		err = apperror.Wrap(apperror.KindConflict, msg, err)
	}
	return
}

// Authenticate checks the credentials and issues a bearer token for the user.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (token string, err error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err = apperror.Validation(MsgLoginFieldsRequired)
		return
	}

	var user models.User
	if user, err = s.Users.GetByEmail(ctx, email); errors.Is(err, database.ErrNotFound) {
		err = apperror.Unauthorized(MsgUserUnknown)
		return
	} else if err != nil {
		return
	}

	if err = s.Passwords.Compare(user.Password, password); errors.Is(err, auth.ErrPasswordMismatch) {
		err = apperror.Unauthorized(MsgBadPassword)
		return
	} else if err != nil {
		err = fmt.Errorf("failed to compare password: %w", err)
		return
	}

	token, _ = s.Tokens.Issue(user.ID)
	return
}

func (s *AuthService) VerifyToken(token string) (userID int64, err error) {
	if userID, err = s.Tokens.Verify(token); err != nil {
		err = apperror.Wrap(apperror.KindUnauthorized, MsgInvalidToken, err)
	}
	return
}
