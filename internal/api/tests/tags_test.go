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

func generateTags(t *testing.T, testCtx *testutils.TestContext, country string, count int) []models.PreGeneratedTag {
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/admin/tags/generate",
		models.GenerateTagsRequest{CountryCode: country, Count: count},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status string                   `json:"status"`
		Tags   []models.PreGeneratedTag `json:"tags"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Len(t, resp.Tags, count)
	return resp.Tags
}

func TestGenerateTags(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: First batch starts the sequence at 1
	tags := generateTags(t, testCtx, "NZ", 3)
	assert.Equal(t, "NZ000001", tags[0].TagNumber)
	assert.Equal(t, "NZ000003", tags[2].TagNumber)
	for _, tag := range tags {
		assert.Equal(t, models.TagAvailable, tag.Status)
	}

	// Test case 2: A second batch continues the sequence
	more := generateTags(t, testCtx, "NZ", 2)
	assert.Equal(t, "NZ000004", more[0].TagNumber)
	assert.Equal(t, "NZ000005", more[1].TagNumber)

	// Test case 3: Sequences are independent per country, and lowercase
	// input is normalized
	other := generateTags(t, testCtx, "au", 1)
	assert.Equal(t, "AU000001", other[0].TagNumber)

	// Test case 4: Count outside bounds rejected by binding
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/admin/tags/generate",
		models.GenerateTagsRequest{CountryCode: "NZ", Count: 501},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAssignTag(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	tags := generateTags(t, testCtx, "NZ", 2)

	animalID := uuid.New().String()
	err := testCtx.Repository.CreateAnimal(context.Background(), &models.Animal{
		ID: animalID, Name: "Tagged Goat", Species: "goat", Breed: "Boer", Sex: "female",
	})
	assert.NoError(t, err)

	// Test case 1: Assign an available tag
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/assign", tags[0].ID),
		models.AssignTagRequest{AnimalID: animalID},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var assigned models.PreGeneratedTag
	err = json.Unmarshal(w.Body.Bytes(), &assigned)
	assert.NoError(t, err)
	assert.Equal(t, models.TagAssigned, assigned.Status)
	assert.Equal(t, animalID, *assigned.AnimalID)

	// Test case 2: Assigning the same tag again is a conflict
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/assign", tags[0].ID),
		models.AssignTagRequest{AnimalID: animalID},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Assigning a second tag to the same animal releases the
	// first one to needs_assignment
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/assign", tags[1].ID),
		models.AssignTagRequest{AnimalID: animalID},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	released, err := testCtx.Repository.GetTag(context.Background(), tags[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TagNeedsAssignment, released.Status)
	assert.Nil(t, released.AnimalID)

	// Test case 4: Unknown animal fails validation
	fresh := generateTags(t, testCtx, "NZ", 1)
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/assign", fresh[0].ID),
		models.AssignTagRequest{AnimalID: uuid.New().String()},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Test case 5: Unknown tag
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/assign", uuid.New().String()),
		models.AssignTagRequest{AnimalID: animalID},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnassignTag(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	tags := generateTags(t, testCtx, "US", 1)

	// Test case 1: Unassigning a tag that is not assigned is a conflict
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/unassign", tags[0].ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 2: Assign then unassign returns it to available
	animalID := uuid.New().String()
	err := testCtx.Repository.CreateAnimal(context.Background(), &models.Animal{
		ID: animalID, Name: "Brief Goat", Species: "goat", Breed: "Kiko", Sex: "male",
	})
	assert.NoError(t, err)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/assign", tags[0].ID),
		models.AssignTagRequest{AnimalID: animalID},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/tags/%s/unassign", tags[0].ID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var tag models.PreGeneratedTag
	err = json.Unmarshal(w.Body.Bytes(), &tag)
	assert.NoError(t, err)
	assert.Equal(t, models.TagAvailable, tag.Status)
	assert.Nil(t, tag.AnimalID)
}

func TestListTags(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	generateTags(t, testCtx, "NZ", 4)
	generateTags(t, testCtx, "AU", 2)

	// Test case 1: Country filter with status meta over the filtered set
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/tags?country=NZ",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.Paginated[models.PreGeneratedTag]
	err := json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 4)
	assert.Equal(t, int64(4), page.Meta["available"])

	// Test case 2: Search matches the tag number prefix
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/tags?search=AU0000",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 2)
}
