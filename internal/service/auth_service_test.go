package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, err := e.auth.Register(ctx, RegisterInput{
		Username: "coach_anna",
		Email:    "  Anna@Example.com ",
		Password: "long-enough",
		Role:     domain.RoleNutritionist,
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	for _, identifier := range []string{"coach_anna", "anna@example.com", "ANNA@example.com"} {
		token, loggedIn, err := e.auth.Login(ctx, identifier, "long-enough")
		require.NoError(t, err, identifier)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.Empty(t, loggedIn.PasswordHash)

		claims, err := e.auth.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
		assert.Equal(t, domain.RoleNutritionist, claims.Role)
	}

	_, _, err = e.auth.Login(ctx, "coach_anna", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = e.auth.Login(ctx, "nobody", "long-enough")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = e.auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterInput{Username: "a", Email: "a@b.c", Password: "short", Role: domain.RoleTrainer})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.auth.Register(ctx, RegisterInput{Username: "a", Email: "a@b.c", Password: "long-enough", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.auth.Register(ctx, RegisterInput{Email: "a@b.c", Password: "long-enough", Role: domain.RoleTrainer})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.auth.Register(ctx, RegisterInput{Username: "dup", Email: e.trainer.Email, Password: "long-enough", Role: domain.RoleTrainer})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = e.auth.Register(ctx, RegisterInput{Username: e.trainer.Username, Email: "other@example.com", Password: "long-enough", Role: domain.RoleTrainer})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.auth.ChangePassword(ctx, e.trainer.ID, "not-current", "another-pass"), ErrAuthenticationFailed)
	assert.ErrorIs(t, e.auth.ChangePassword(ctx, e.trainer.ID, "secret-pass", "short"), ErrInvalidInput)
	assert.ErrorIs(t, e.auth.ChangePassword(ctx, e.trainer.ID, "secret-pass", "secret-pass"), ErrInvalidInput)
	assert.ErrorIs(t, e.auth.ChangePassword(ctx, primitive.NewObjectID(), "secret-pass", "another-pass"), ErrUserNotFound)

	require.NoError(t, e.auth.ChangePassword(ctx, e.trainer.ID, "secret-pass", "another-pass"))
	_, _, err := e.auth.Login(ctx, e.trainer.Username, "secret-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = e.auth.Login(ctx, e.trainer.Username, "another-pass")
	assert.NoError(t, err)
}

func TestParseTokenRejects(t *testing.T) {
	sign := func(claims *TokenClaims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := func() *TokenClaims {
		return &TokenClaims{
			UserID:           primitive.NewObjectID().Hex(),
			Role:             domain.RoleClient,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		}
	}

	_, err := ParseToken(sign(valid(), "secret"), "secret")
	require.NoError(t, err)

	_, err = ParseToken(sign(valid(), "other"), "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = ParseToken(sign(expired, "secret"), "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	badRole := valid()
	badRole.Role = "admin"
	_, err = ParseToken(sign(badRole, "secret"), "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTempPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := GenerateTempPassword()
		require.NoError(t, err)
		assert.Len(t, pw, TempPasswordLength)
		assert.Empty(t, strings.Trim(pw, tempPasswordAlphabet))
		seen[pw] = true
	}
	assert.Len(t, seen, 20)
}
