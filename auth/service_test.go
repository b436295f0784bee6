package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/IllTzeko/wombokombo-gameserver/auth"
	"github.com/IllTzeko/wombokombo-gameserver/domain"
)

type MockUserRepo struct {
	users []*domain.User
}

func (mur *MockUserRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	for _, u := range mur.users {
		if u.Username == username {
			return "", domain.ErrDuplicateUsername
		}
	}
	id := "user-" + username
	mur.users = append(mur.users, &domain.User{Id: id, Username: username, PasswordHash: passwordHash})
	return id, nil
}

func (mur *MockUserRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	for _, u := range mur.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (mur *MockUserRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	for _, u := range mur.users {
		if u.Id == id {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

type MockPasswordHasher struct{}

func (mph *MockPasswordHasher) Hash(password string) (string, error) {
	arr := []rune(password)
	for i := range arr {
		arr[i] = arr[i] ^ 7 + 5
	}
	return string(arr), nil
}

func (mph *MockPasswordHasher) Compare(hash, password string) (bool, error) {
	hashedPassword, _ := mph.Hash(password)
	return hashedPassword == hash, nil
}

type MockTokenManager struct {
	key string
}

func (mtm *MockTokenManager) Generate(id string, now time.Time) (string, error) {
	hasher := MockPasswordHasher{}
	signature, _ := hasher.Hash(id + mtm.key)
	return id + "." + signature, nil
}

func (mtm *MockTokenManager) Verify(token string) (string, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", domain.ErrCorruptedToken
	}
	hasher := MockPasswordHasher{}
	signature, _ := hasher.Hash(parts[0] + mtm.key)
	if signature != parts[1] {
		return "", domain.ErrInvalidTokenSignature
	}
	return parts[0], nil
}

func newTestService() *MockUserRepo {
	return &MockUserRepo{}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	repo := newTestService()
	service := auth.NewService(repo, &MockPasswordHasher{}, &MockTokenManager{key: "k"})

	t.Run("rejects bad username formats", func(t *testing.T) {
		for _, username := range []string{"ab", "UPPERCASE", "has space", "way_too_long_username_xx", "emoji😈"} {
			_, err := service.Signup(ctx, username, "longenoughpassword")
			assert.ErrorIs(t, err, auth.ErrInvalidUsernameFormat, "username %q", username)
		}
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		_, err := service.Signup(ctx, "wombat", "short")
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("rejects absurdly long passwords", func(t *testing.T) {
		_, err := service.Signup(ctx, "wombat", strings.Repeat("x", 300))
		assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
	})

	t.Run("creates the account and returns a token", func(t *testing.T) {
		token, err := service.Signup(ctx, "wombat", "longenoughpassword")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		id, err := service.VerifyToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-wombat", id)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		_, err := service.Signup(ctx, "wombat", "longenoughpassword")
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newTestService()
	service := auth.NewService(repo, &MockPasswordHasher{}, &MockTokenManager{key: "k"})

	_, err := service.Signup(ctx, "wombat", "longenoughpassword")
	assert.NoError(t, err)

	t.Run("unknown username", func(t *testing.T) {
		_, err := service.Login(ctx, "nobody", "longenoughpassword")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, "wombat", "not the password")
		assert.ErrorIs(t, err, auth.ErrIncorrectPassword)
	})

	t.Run("valid credentials", func(t *testing.T) {
		token, err := service.Login(ctx, "wombat", "longenoughpassword")
		assert.NoError(t, err)

		id, err := service.VerifyToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-wombat", id)
	})
}
