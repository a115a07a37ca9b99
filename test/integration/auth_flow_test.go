package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/pkg/token"
	"agent-chat-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
)

// fetchVerificationToken reads the user's live verification token straight
// from the ledger, standing in for the email the consumer would send.
func fetchVerificationToken(t *testing.T, env *testEnv, userId uint) string {
	t.Helper()
	uow := env.uowFactory.NewUnitOfWork(context.Background())
	tok, err := uow.UserRepository().FindVerificationToken(context.Background(),
		specification.UserOwnedBy{UserID: userId},
		specification.Unused{},
	)
	if err != nil || tok == nil {
		t.Fatalf("no verification token for user %d: %v", userId, err)
	}
	return tok.Token
}

func fetchResetToken(t *testing.T, env *testEnv, userId uint) string {
	t.Helper()
	uow := env.uowFactory.NewUnitOfWork(context.Background())
	tok, err := uow.UserRepository().FindResetToken(context.Background(),
		specification.UserOwnedBy{UserID: userId},
		specification.Unused{},
	)
	if err != nil || tok == nil {
		t.Fatalf("no reset token for user %d: %v", userId, err)
	}
	return tok.Token
}

// seedExpiredVerificationToken writes a verification token whose expiry is
// already in the past directly into the ledger.
func seedExpiredVerificationToken(t *testing.T, env *testEnv, userId uint) string {
	t.Helper()

	raw, err := token.NewRandomToken()
	assert.NoError(t, err)

	uow := env.uowFactory.NewUnitOfWork(context.Background())
	err = uow.UserRepository().CreateVerificationToken(context.Background(), &entity.EmailVerificationToken{
		UserId:    userId,
		Token:     raw,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	})
	assert.NoError(t, err)
	return raw
}

func seedExpiredResetToken(t *testing.T, env *testEnv, userId uint) string {
	t.Helper()

	raw, err := token.NewRandomToken()
	assert.NoError(t, err)

	uow := env.uowFactory.NewUnitOfWork(context.Background())
	err = uow.UserRepository().CreateResetToken(context.Background(), &entity.PasswordResetToken{
		UserId:    userId,
		Token:     raw,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	})
	assert.NoError(t, err)
	return raw
}

// registerVerified walks a user through register + verify and returns the
// user id.
func registerVerified(t *testing.T, env *testEnv, username, email, password string) uint {
	t.Helper()

	status, resp := env.request(t, "POST", "/auth/register", dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, "")
	assert.Equal(t, 201, status)

	var user dto.UserResponse
	decodeData(t, resp, &user)
	assert.Equal(t, username, user.Username)
	assert.False(t, user.IsVerified)

	verifyToken := fetchVerificationToken(t, env, user.Id)
	status, _ = env.request(t, "GET", "/auth/verify-email?token="+verifyToken, nil, "")
	assert.Equal(t, 200, status)

	return user.Id
}

func login(t *testing.T, env *testEnv, username, password string) (int, string) {
	t.Helper()
	status, resp := env.request(t, "POST", "/auth/login", dto.LoginRequest{
		Username: username,
		Password: password,
	}, "")
	if status != 200 {
		return status, ""
	}
	var tok dto.TokenResponse
	decodeData(t, resp, &tok)
	return status, tok.AccessToken
}

func TestRegistrationAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("alice-%d", suffix)
	email := fmt.Sprintf("alice-%d@example.com", suffix)
	password := "Secret123!"

	status, resp := env.request(t, "POST", "/auth/register", dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, "")
	assert.Equal(t, 201, status)

	var user dto.UserResponse
	decodeData(t, resp, &user)
	assert.Equal(t, username, user.Username)
	assert.Equal(t, email, user.Email)
	assert.False(t, user.IsVerified)

	t.Run("duplicate username rejected", func(t *testing.T) {
		status, resp := env.request(t, "POST", "/auth/register", dto.RegisterRequest{
			Username: username,
			Email:    fmt.Sprintf("other-%d@example.com", suffix),
			Password: password,
		}, "")
		assert.Equal(t, 400, status)
		assert.False(t, resp.Success)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/auth/register", dto.RegisterRequest{
			Username: fmt.Sprintf("other-%d", suffix),
			Email:    email,
			Password: password,
		}, "")
		assert.Equal(t, 400, status)
	})

	t.Run("unverified login rejected", func(t *testing.T) {
		status, _ := login(t, env, username, password)
		assert.Equal(t, 401, status)
	})

	verifyToken := fetchVerificationToken(t, env, user.Id)

	t.Run("verify email", func(t *testing.T) {
		status, _ := env.request(t, "GET", "/auth/verify-email?token="+verifyToken, nil, "")
		assert.Equal(t, 200, status)
	})

	t.Run("verification token is single-use", func(t *testing.T) {
		status, _ := env.request(t, "GET", "/auth/verify-email?token="+verifyToken, nil, "")
		assert.Equal(t, 400, status)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		status, _ := login(t, env, username, "WrongPassword1!")
		assert.Equal(t, 401, status)
	})

	status, bearer := login(t, env, username, password)
	assert.Equal(t, 200, status)
	assert.NotEmpty(t, bearer)

	t.Run("me returns profile", func(t *testing.T) {
		status, resp := env.request(t, "GET", "/auth/me", nil, bearer)
		assert.Equal(t, 200, status)

		var profile dto.UserResponse
		decodeData(t, resp, &profile)
		assert.Equal(t, username, profile.Username)
		assert.True(t, profile.IsVerified)
	})

	t.Run("me without token rejected", func(t *testing.T) {
		status, _ := env.request(t, "GET", "/auth/me", nil, "")
		assert.Equal(t, 401, status)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("dave-%d", suffix)
	email := fmt.Sprintf("dave-%d@example.com", suffix)
	oldPassword := "OldSecret123!"
	newPassword := "NewSecret456!"

	userId := registerVerified(t, env, username, email, oldPassword)

	status, _ := env.request(t, "POST", "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email}, "")
	assert.Equal(t, 200, status)

	t.Run("unknown email gets the same answer", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/auth/forgot-password",
			dto.ForgotPasswordRequest{Email: fmt.Sprintf("ghost-%d@example.com", suffix)}, "")
		assert.Equal(t, 200, status)
	})

	resetToken := fetchResetToken(t, env, userId)

	t.Run("pre-check reports valid", func(t *testing.T) {
		status, resp := env.request(t, "GET", "/auth/verify-reset-token?token="+resetToken, nil, "")
		assert.Equal(t, 200, status)

		var check dto.ResetTokenStatusResponse
		decodeData(t, resp, &check)
		assert.True(t, check.Valid)
	})

	status, _ = env.request(t, "POST", "/auth/reset-password", dto.ResetPasswordRequest{
		Token:       resetToken,
		NewPassword: newPassword,
	}, "")
	assert.Equal(t, 200, status)

	t.Run("old password no longer works", func(t *testing.T) {
		status, _ := login(t, env, username, oldPassword)
		assert.Equal(t, 401, status)
	})

	t.Run("new password works", func(t *testing.T) {
		status, bearer := login(t, env, username, newPassword)
		assert.Equal(t, 200, status)
		assert.NotEmpty(t, bearer)
	})

	t.Run("reset token is single-use", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/auth/reset-password", dto.ResetPasswordRequest{
			Token:       resetToken,
			NewPassword: "AnotherSecret789!",
		}, "")
		assert.Equal(t, 400, status)
	})
}

func TestExpiredTokensRejected(t *testing.T) {
	env := newTestEnv(t)

	suffix := time.Now().UnixNano()
	userId := registerVerified(t, env,
		fmt.Sprintf("eve-%d", suffix),
		fmt.Sprintf("eve-%d@example.com", suffix),
		"Secret123!")

	t.Run("expired verification token rejected", func(t *testing.T) {
		expired := seedExpiredVerificationToken(t, env, userId)
		status, _ := env.request(t, "GET", "/auth/verify-email?token="+expired, nil, "")
		assert.Equal(t, 400, status)
	})

	expired := seedExpiredResetToken(t, env, userId)

	t.Run("pre-check reports expired reset token invalid", func(t *testing.T) {
		status, resp := env.request(t, "GET", "/auth/verify-reset-token?token="+expired, nil, "")
		assert.Equal(t, 200, status)

		var check dto.ResetTokenStatusResponse
		decodeData(t, resp, &check)
		assert.False(t, check.Valid)
	})

	t.Run("expired reset token rejected", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/auth/reset-password", dto.ResetPasswordRequest{
			Token:       expired,
			NewPassword: "AnotherSecret789!",
		}, "")
		assert.Equal(t, 400, status)
	})

	t.Run("old password still works after rejections", func(t *testing.T) {
		status, _ := login(t, env, fmt.Sprintf("eve-%d", suffix), "Secret123!")
		assert.Equal(t, 200, status)
	})
}

func TestNewResetTokenSupersedesOld(t *testing.T) {
	env := newTestEnv(t)

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("grace-%d", suffix)
	email := fmt.Sprintf("grace-%d@example.com", suffix)

	userId := registerVerified(t, env, username, email, "OldSecret123!")

	status, _ := env.request(t, "POST", "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email}, "")
	assert.Equal(t, 200, status)
	first := fetchResetToken(t, env, userId)

	// A second request from a fresh stack (its own throttle window) issues a
	// replacement token.
	env2 := newTestEnv(t)
	status, _ = env2.request(t, "POST", "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email}, "")
	assert.Equal(t, 200, status)
	second := fetchResetToken(t, env2, userId)
	assert.NotEqual(t, first, second)

	t.Run("superseded token rejected", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/auth/reset-password", dto.ResetPasswordRequest{
			Token:       first,
			NewPassword: "NewSecret456!",
		}, "")
		assert.Equal(t, 400, status)
	})

	t.Run("replacement token works", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/auth/reset-password", dto.ResetPasswordRequest{
			Token:       second,
			NewPassword: "NewSecret456!",
		}, "")
		assert.Equal(t, 200, status)

		status, _ = login(t, env, username, "NewSecret456!")
		assert.Equal(t, 200, status)
	})
}
