package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tmutasa/herdmarket-server/internal/api/testutils"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

// createProfile seeds a fresh user so each profile satisfies the one
// profile per user per side rule
func createProfile(t *testing.T, testCtx *testutils.TestContext, side, country string) models.Profile {
	user := &models.User{
		ID:       uuid.New().String(),
		Email:    uuid.New().String() + "@example.com",
		Name:     "Profile Owner",
		Password: "irrelevant",
	}
	err := testCtx.Repository.CreateUser(context.Background(), user)
	assert.NoError(t, err)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/%s-profiles", side),
		models.CreateProfileRequest{
			UserID:      user.ID,
			FarmName:    "Hilltop Farm",
			CountryCode: country,
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	var profile models.Profile
	err = json.Unmarshal(w.Body.Bytes(), &profile)
	assert.NoError(t, err)
	assert.Equal(t, models.VerificationPending, profile.VerificationStatus)
	return profile
}

func TestVerifyProfile(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	profile := createProfile(t, testCtx, "buyer", "NZ")

	// Test case 1: Pending to verified
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/verify", profile.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var verified models.Profile
	err := json.Unmarshal(w.Body.Bytes(), &verified)
	assert.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, verified.VerificationStatus)
	assert.Nil(t, verified.RejectionReason)

	// Test case 2: Verifying an already verified profile is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/verify", profile.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Unknown profile
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/verify", uuid.New().String()),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectProfile(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	profile := createProfile(t, testCtx, "seller", "AU")

	// Test case 1: Whitespace-only reason fails validation
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/seller-profiles/%s/reject", profile.ID),
		models.RejectRequest{Reason: "   "},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var verr models.ValidationErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &verr)
	assert.NoError(t, err)
	assert.Contains(t, verr.Errors, "reason")

	// Test case 2: Rejection with a reason sticks
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/seller-profiles/%s/reject", profile.ID),
		models.RejectRequest{Reason: "Documents illegible"},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var rejected models.Profile
	err = json.Unmarshal(w.Body.Bytes(), &rejected)
	assert.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, rejected.VerificationStatus)
	assert.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Documents illegible", *rejected.RejectionReason)

	// Test case 3: Rejecting twice is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/seller-profiles/%s/reject", profile.ID),
		models.RejectRequest{Reason: "Still illegible"},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 4: A rejected profile can still be verified, clearing the reason
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/seller-profiles/%s/verify", profile.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var verified models.Profile
	err = json.Unmarshal(w.Body.Bytes(), &verified)
	assert.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, verified.VerificationStatus)
	assert.Nil(t, verified.RejectionReason)
}

func TestLinkProfileAsset(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	profile := createProfile(t, testCtx, "buyer", "US")

	asset := &models.FractionalAsset{
		ID:              uuid.New().String(),
		Name:            "Champion Buck Shares",
		TotalShares:     100,
		SoldShares:      25,
		SharePriceCents: 5000,
		Status:          models.AssetActive,
	}
	err := testCtx.Repository.CreateFractionalAsset(context.Background(), asset)
	assert.NoError(t, err)

	// Test case 1: Link an asset; the detail carries its progress
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/fractional-asset", profile.ID),
		models.LinkAssetRequest{FractionalAssetID: &asset.ID},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var detail models.ProfileDetail
	err = json.Unmarshal(w.Body.Bytes(), &detail)
	assert.NoError(t, err)
	assert.NotNil(t, detail.FractionalAsset)
	assert.Equal(t, asset.ID, detail.FractionalAsset.ID)
	assert.InDelta(t, 25.0, detail.FractionalAsset.ProgressPct, 0.001)

	// Test case 2: Explicit null unlinks
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/fractional-asset", profile.ID),
		models.LinkAssetRequest{FractionalAssetID: nil},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &detail)
	assert.NoError(t, err)
	assert.Nil(t, detail.FractionalAsset)
	assert.Nil(t, detail.FractionalAssetID)

	// The unlinked detail must carry explicit nulls, not omit the keys
	assert.Contains(t, w.Body.String(), `"fractional_asset_id":null`)
	assert.Contains(t, w.Body.String(), `"fractional_asset":null`)

	// Test case 3: Linking a nonexistent asset fails validation
	missing := uuid.New().String()
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/fractional-asset", profile.ID),
		models.LinkAssetRequest{FractionalAssetID: &missing},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListProfilesMeta(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	first := createProfile(t, testCtx, "buyer", "NZ")
	createProfile(t, testCtx, "buyer", "NZ")
	createProfile(t, testCtx, "buyer", "AU")

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/buyer-profiles/%s/verify", first.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 1: Status filter narrows data but meta still counts every
	// status in scope
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/buyer-profiles?status=pending",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.Paginated[models.Profile]
	err := json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(1), page.Meta["verified"])
	assert.Equal(t, int64(2), page.Meta["pending"])

	// Test case 2: Country filter scopes the aggregates too
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/buyer-profiles?country=AU",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Meta["pending"])
	assert.Equal(t, int64(0), page.Meta["verified"])
}
