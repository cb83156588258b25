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

func seedListing(t *testing.T, testCtx *testutils.TestContext, status string) models.Listing {
	animalID := uuid.New().String()
	err := testCtx.Repository.CreateAnimal(context.Background(), &models.Animal{
		ID: animalID, Name: "Listed Goat", Species: "goat", Breed: "Boer", Sex: "female",
	})
	assert.NoError(t, err)

	listing := &models.Listing{
		ID:              uuid.New().String(),
		AnimalID:        animalID,
		SellerProfileID: uuid.New().String(),
		PriceCents:      125000,
		Status:          status,
	}
	err = testCtx.Repository.CreateListing(context.Background(), listing)
	assert.NoError(t, err)
	return *listing
}

func TestRemoveListing(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Active listing can be removed
	active := seedListing(t, testCtx, models.ListingActive)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/listings/%s/remove", active.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var removed models.Listing
	err := json.Unmarshal(w.Body.Bytes(), &removed)
	assert.NoError(t, err)
	assert.Equal(t, models.ListingRemoved, removed.Status)

	// Test case 2: Removing it again is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/listings/%s/remove", active.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Sold listings cannot be removed
	sold := seedListing(t, testCtx, models.ListingSold)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/listings/%s/remove", sold.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func seedPayout(t *testing.T, testCtx *testutils.TestContext, status string, amountCents int64) models.Payout {
	payout := &models.Payout{
		ID:           uuid.New().String(),
		UserID:       testCtx.TestUserID,
		AmountCents:  amountCents,
		Currency:     "USD",
		PayeeDetails: "acct-123",
		Status:       status,
	}
	err := testCtx.Repository.CreatePayout(context.Background(), payout)
	assert.NoError(t, err)
	return *payout
}

func TestApprovePayout(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Pending payout approved, recording the approver
	pending := seedPayout(t, testCtx, models.PayoutPending, 50000)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/payouts/%s/approve", pending.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var approved models.Payout
	err := json.Unmarshal(w.Body.Bytes(), &approved)
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutPaid, approved.Status)
	assert.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, testCtx.TestUserID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	// Test case 2: Approving twice is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/payouts/%s/approve", pending.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Failed payouts cannot be approved
	failed := seedPayout(t, testCtx, models.PayoutFailed, 1000)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/payouts/%s/approve", failed.ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPayoutsMeta(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	seedPayout(t, testCtx, models.PayoutPending, 10000)
	seedPayout(t, testCtx, models.PayoutPending, 15000)
	seedPayout(t, testCtx, models.PayoutPaid, 99000)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/payouts?status=pending",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.Paginated[models.Payout]
	err := json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 2)
	// Pending amount is summed over all pending payouts regardless of paging
	assert.Equal(t, int64(25000), page.Meta["pending_amount_cents"])
	assert.Equal(t, int64(2), page.Meta["pending"])
	assert.Equal(t, int64(1), page.Meta["paid"])
}
