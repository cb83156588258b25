package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmutasa/herdmarket-server/internal/api/testutils"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

func TestSignUp(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful signup
	signUpReq := models.SignUpRequest{
		Email:    "admin@example.com",
		Name:     "New Admin",
		Password: "supersecret",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signUpReq,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.AuthResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "success", response.Status)
	assert.NotEmpty(t, response.UserID)

	// Test case 2: Duplicate email is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signUpReq,
		nil,
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Missing fields fail validation
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		models.SignUpRequest{Email: "incomplete@example.com"},
		nil,
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful login with the seeded test user
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Email: "testadmin@example.com", Password: "testpassword"},
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.AuthResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, testCtx.TestUserID, response.UserID)

	// Test case 2: Wrong password
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Email: "testadmin@example.com", Password: "wrongpassword"},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: Unknown email gets the same response as a wrong password
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Email: "nobody@example.com", Password: "testpassword"},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: No token
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events",
		nil,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 2: Malformed token
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events",
		nil,
		map[string]string{"Authorization": "Bearer not-a-token"},
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: Valid token passes through
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
}
