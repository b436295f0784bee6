package auth

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/IllTzeko/wombokombo-gameserver/domain"
)

const maxPasswordRunes = 256

var usernameFormat = regexp.MustCompile("^[a-z0-9_]{3,20}$")

type service struct {
	userRepo       UserRepo
	passwordHasher PasswordHasher
	tokenManager   TokenManager
}

func NewService(userRepo UserRepo, passwordHasher PasswordHasher, tokenManager TokenManager) *service {
	return &service{userRepo, passwordHasher, tokenManager}
}

func (as *service) Signup(ctx context.Context, username, password string) (string, error) {
	if !usernameFormat.MatchString(username) {
		return "", ErrInvalidUsernameFormat
	}

	if utf8.RuneCountInString(password) < 8 {
		return "", ErrWeakPassword
	}

	if utf8.RuneCountInString(password) > maxPasswordRunes {
		return "", ErrPasswordTooLong
	}

	passwordHash, err := as.passwordHasher.Hash(password)
	if err != nil {
		return "", err
	}

	id, err := as.userRepo.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return "", err
	}

	return as.tokenManager.Generate(id, time.Now())
}

func (as *service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := as.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	match, err := as.passwordHasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", ErrIncorrectPassword
	}

	return as.tokenManager.Generate(user.Id, time.Now())
}

// VerifyToken returns the player id if the token is valid, else an error.
func (as *service) VerifyToken(token string) (string, error) {
	return as.tokenManager.Verify(token)
}

func (as *service) GenerateToken(id string) (string, error) {
	return as.tokenManager.Generate(id, time.Now())
}

// GetUserById implements game.UserGetter so the websocket handlers can
// resolve display names from the session token.
func (as *service) GetUserById(ctx context.Context, id string) (domain.User, error) {
	return as.userRepo.GetUserById(ctx, id)
}
