package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube-api/models"
	"yatube-api/utils"
)

func TestSignupCreatesAccount(t *testing.T) {
	env := newEnv(t)

	w := doJSON(t, env.r, http.MethodPost, "/auth/signup/", "", map[string]string{
		"username": "newcomer",
		"email":    "newcomer@example.com",
		"password": "password123",
		"confirm":  "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "newcomer").First(&user).Error)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "password123"))
	assert.NotContains(t, w.Body.String(), user.PasswordHash)
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	env := newEnv(t)
	createUser(t, env.db, "taken")

	w := doJSON(t, env.r, http.MethodPost, "/auth/signup/", "", map[string]string{
		"username": "taken",
		"password": "password123",
		"confirm":  "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40901, decode(t, w).Code)
}

func TestSignupValidation(t *testing.T) {
	env := newEnv(t)

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"mismatched confirm", map[string]string{
			"username": "alice", "password": "password123", "confirm": "different123"}},
		{"bad username characters", map[string]string{
			"username": "bad name!", "password": "password123", "confirm": "password123"}},
		{"short password", map[string]string{
			"username": "alice", "password": "short", "confirm": "short"}},
		{"bad email", map[string]string{
			"username": "alice", "email": "not-an-email",
			"password": "password123", "confirm": "password123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, env.r, http.MethodPost, "/auth/signup/", "", tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLoginIssuesTokenAndCookie(t *testing.T) {
	env := newEnv(t)
	createUser(t, env.db, "dweller")

	w := doJSON(t, env.r, http.MethodPost, "/auth/login/", "", map[string]string{
		"username": "dweller",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	body := decode(t, w)
	token, ok := body.Data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=")

	// The issued token authenticates subsequent requests.
	w = doGET(env.r, "/auth/me/", token)
	require.Equal(t, http.StatusOK, w.Code)
	user, _ := decode(t, w).Data["user"].(map[string]any)
	assert.Equal(t, "dweller", user["username"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newEnv(t)
	createUser(t, env.db, "dweller")

	w := doJSON(t, env.r, http.MethodPost, "/auth/login/", "", map[string]string{
		"username": "dweller",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.r, http.MethodPost, "/auth/login/", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newEnv(t)
	user := createUser(t, env.db, "leaver")
	token := tokenFor(t, user)

	w := doGET(env.r, "/auth/me/", token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.r, http.MethodPost, "/auth/logout/", token, map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)

	// The revoked token no longer authenticates, even though it has not expired.
	w = doGET(env.r, "/auth/me/", token)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login/")
}

func TestPasswordChange(t *testing.T) {
	env := newEnv(t)
	user := createUser(t, env.db, "rotator")
	token := tokenFor(t, user)

	w := doJSON(t, env.r, http.MethodPost, "/auth/password_change/", token, map[string]string{
		"old_password": "wrongpassword",
		"new_password": "newpassword456",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.r, http.MethodPost, "/auth/password_change/", token, map[string]string{
		"old_password": "password123",
		"new_password": "newpassword456",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.True(t, utils.CheckPassword(reloaded.PasswordHash, "newpassword456"))
}

func TestPasswordResetNeverRevealsAccounts(t *testing.T) {
	env := newEnv(t)

	w := doJSON(t, env.r, http.MethodPost, "/auth/password_reset/", "", map[string]string{
		"email": "unknown@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetConfirm(t *testing.T) {
	env := newEnv(t)
	user := createUser(t, env.db, "forgetful")

	w := doJSON(t, env.r, http.MethodPost, "/auth/reset/confirm/", "", map[string]string{
		"token":        "not-a-real-token",
		"new_password": "newpassword456",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40010, decode(t, w).Code)

	token := utils.IssueResetToken(user.ID)
	w = doJSON(t, env.r, http.MethodPost, "/auth/reset/confirm/", "", map[string]string{
		"token":        token,
		"new_password": "newpassword456",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.True(t, utils.CheckPassword(reloaded.PasswordHash, "newpassword456"))

	// A reset token is single use.
	w = doJSON(t, env.r, http.MethodPost, "/auth/reset/confirm/", "", map[string]string{
		"token":        token,
		"new_password": "anotherpass789",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
