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

// seedParents inserts one male and one female animal directly in the repository
func seedParents(t *testing.T, testCtx *testutils.TestContext) (string, string) {
	maleID := uuid.New().String()
	femaleID := uuid.New().String()

	err := testCtx.Repository.CreateAnimal(context.Background(), &models.Animal{
		ID: maleID, Name: "Buck One", Species: "goat", Breed: "Boer", Sex: "male",
	})
	assert.NoError(t, err)
	err = testCtx.Repository.CreateAnimal(context.Background(), &models.Animal{
		ID: femaleID, Name: "Doe One", Species: "goat", Breed: "Boer", Sex: "female",
	})
	assert.NoError(t, err)

	return maleID, femaleID
}

func createEvent(t *testing.T, testCtx *testutils.TestContext, maleID, femaleID string) string {
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/admin/breeding-events",
		models.CreateBreedingEventRequest{
			MaleAnimalID:   maleID,
			FemaleAnimalID: femaleID,
			Method:         models.MethodNatural,
			BreedingDate:   "2026-01-15",
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	var event models.BreedingEvent
	err := json.Unmarshal(w.Body.Bytes(), &event)
	assert.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	return event.ID
}

func TestCreateBreedingEvent(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	maleID, femaleID := seedParents(t, testCtx)

	// Test case 1: Successful creation
	eventID := createEvent(t, testCtx, maleID, femaleID)
	assert.NotEmpty(t, eventID)

	// Test case 2: Swapped sexes fail validation with a field-keyed error
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/admin/breeding-events",
		models.CreateBreedingEventRequest{
			MaleAnimalID:   femaleID,
			FemaleAnimalID: maleID,
			Method:         models.MethodNatural,
			BreedingDate:   "2026-01-15",
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var verr models.ValidationErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &verr)
	assert.NoError(t, err)
	assert.Contains(t, verr.Errors, "male_animal_id")

	// Test case 3: Bad date format
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/admin/breeding-events",
		models.CreateBreedingEventRequest{
			MaleAnimalID:   maleID,
			FemaleAnimalID: femaleID,
			Method:         models.MethodNatural,
			BreedingDate:   "15/01/2026",
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &verr)
	assert.NoError(t, err)
	assert.Contains(t, verr.Errors, "breeding_date")

	// Test case 4: Unknown breeding method rejected by binding
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/admin/breeding-events",
		models.CreateBreedingEventRequest{
			MaleAnimalID:   maleID,
			FemaleAnimalID: femaleID,
			Method:         "cloning",
			BreedingDate:   "2026-01-15",
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOffspringBatchCreate(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	maleID, femaleID := seedParents(t, testCtx)
	eventID := createEvent(t, testCtx, maleID, femaleID)

	// Test case 1: Batch of three rows all created together
	batch := models.BatchOffspringRequest{
		Offspring: []models.OffspringDraft{
			{Name: "Kid A", Species: "goat", Breed: "Boer", Sex: "female", BirthDate: "2026-06-10"},
			{Name: "Kid B", Species: "goat", Breed: "Boer", Sex: "male", BirthDate: "2026-06-10"},
			{Name: "Kid C", Species: "goat", Breed: "Boer", Sex: "female", BirthDate: "2026-06-10"},
		},
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring/batch", eventID),
		batch,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	// The event detail shows all three offspring
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		fmt.Sprintf("/api/admin/breeding-events/%s", eventID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var detail models.BreedingEventDetail
	err := json.Unmarshal(w.Body.Bytes(), &detail)
	assert.NoError(t, err)
	assert.Len(t, detail.Offspring, 3)
	assert.Equal(t, 3, detail.OffspringCount)

	// Test case 2: A bad row in the middle fails the whole batch with a
	// row-indexed error key, and nothing is created
	badBatch := models.BatchOffspringRequest{
		Offspring: []models.OffspringDraft{
			{Name: "Kid D", Species: "goat", Breed: "Boer", Sex: "male", BirthDate: "2026-06-11"},
			{Name: "Kid E", Species: "goat", Breed: "Boer", Sex: "male", BirthDate: "not-a-date"},
		},
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring/batch", eventID),
		badBatch,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var verr models.ValidationErrorResponse
	err = json.Unmarshal(w.Body.Bytes(), &verr)
	assert.NoError(t, err)
	assert.Contains(t, verr.Errors, "offspring.1.birth_date")

	offspring, err := testCtx.Repository.ListOffspring(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Len(t, offspring, 3)

	// Test case 3: Empty batch rejected by binding
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring/batch", eventID),
		models.BatchOffspringRequest{Offspring: []models.OffspringDraft{}},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOffspringMultipart(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	maleID, femaleID := seedParents(t, testCtx)
	eventID := createEvent(t, testCtx, maleID, femaleID)

	// Test case 1: Create one offspring with a photo
	w := testutils.PerformMultipartRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring", eventID),
		map[string][]string{
			"name":       {"Photo Kid"},
			"species":    {"goat"},
			"breed":      {"Boer"},
			"sex":        {"female"},
			"birth_date": {"2026-06-12"},
			"weight_kg":  {"3.4"},
		},
		[]testutils.MultipartFile{
			{Field: "photos[]", Filename: "kid.jpg", Content: []byte("fake-jpeg-bytes")},
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.AnimalWithPhotos
	err := json.Unmarshal(w.Body.Bytes(), &created)
	assert.NoError(t, err)
	assert.Len(t, created.Photos, 1)
	assert.NotNil(t, created.WeightKg)

	// Test case 2: Update via POST with _method=PUT, replacing the photo
	w = testutils.PerformMultipartRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/offspring/%s", created.ID),
		map[string][]string{
			"_method":    {"PUT"},
			"name":       {"Photo Kid Renamed"},
			"species":    {"goat"},
			"breed":      {"Boer"},
			"sex":        {"female"},
			"birth_date": {"2026-06-12"},
		},
		[]testutils.MultipartFile{
			{Field: "photos[]", Filename: "kid2.png", Content: []byte("fake-png-bytes")},
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.AnimalWithPhotos
	err = json.Unmarshal(w.Body.Bytes(), &updated)
	assert.NoError(t, err)
	assert.Equal(t, "Photo Kid Renamed", updated.Name)
	// Old photo was not in existing_photo_ids, so only the new one remains
	assert.Len(t, updated.Photos, 1)
	assert.Equal(t, "kid2.png", updated.Photos[0].OriginalName)

	// Test case 2b: existing_photo_ids keeps the referenced photo alongside
	// a newly uploaded one
	w = testutils.PerformMultipartRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/offspring/%s", created.ID),
		map[string][]string{
			"_method":              {"PUT"},
			"name":                 {"Photo Kid Renamed"},
			"species":              {"goat"},
			"breed":                {"Boer"},
			"sex":                  {"female"},
			"birth_date":           {"2026-06-12"},
			"existing_photo_ids[]": {updated.Photos[0].ID},
		},
		[]testutils.MultipartFile{
			{Field: "photos[]", Filename: "kid3.jpg", Content: []byte("fake-jpeg-bytes")},
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &updated)
	assert.NoError(t, err)
	assert.Len(t, updated.Photos, 2)

	// Test case 3: POST without the override is rejected
	w = testutils.PerformMultipartRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/offspring/%s", created.ID),
		map[string][]string{"name": {"No Override"}},
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	// Test case 4: Disallowed file type
	w = testutils.PerformMultipartRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring", eventID),
		map[string][]string{
			"name":       {"Bad Upload"},
			"species":    {"goat"},
			"breed":      {"Boer"},
			"sex":        {"male"},
			"birth_date": {"2026-06-12"},
		},
		[]testutils.MultipartFile{
			{Field: "photos[]", Filename: "script.exe", Content: []byte("MZ")},
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteBreedingEventDetachesOffspring(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	maleID, femaleID := seedParents(t, testCtx)
	eventID := createEvent(t, testCtx, maleID, femaleID)

	batch := models.BatchOffspringRequest{
		Offspring: []models.OffspringDraft{
			{Name: "Kid A", Species: "goat", Breed: "Boer", Sex: "female", BirthDate: "2026-06-10"},
			{Name: "Kid B", Species: "goat", Breed: "Boer", Sex: "male", BirthDate: "2026-06-10"},
		},
	}
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring/batch", eventID),
		batch,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	offspring, err := testCtx.Repository.ListOffspring(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Len(t, offspring, 2)

	// Test case 1: Delete reports the detached count
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/admin/breeding-events/%s", eventID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.DeleteBreedingEventResponse
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.DetachedOffspring)

	// Offspring animals survive with the event link cleared
	for _, kid := range offspring {
		animal, err := testCtx.Repository.GetAnimal(context.Background(), kid.ID)
		assert.NoError(t, err)
		assert.NotNil(t, animal)
		assert.Nil(t, animal.BreedingEventID)
	}

	// Test case 2: Deleting again is a 404
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/admin/breeding-events/%s", eventID),
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBreedingEventsPagination(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	maleID, femaleID := seedParents(t, testCtx)

	for i := 0; i < 20; i++ {
		createEvent(t, testCtx, maleID, femaleID)
	}

	// Test case 1: Second page of five
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events?page=2&per_page=5",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.Paginated[models.BreedingEvent]
	err := json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 4, page.LastPage)
	assert.Equal(t, int64(20), page.Total)

	// Meta aggregates cover the whole set, not the page
	assert.Equal(t, int64(20), page.Meta["total"])

	// Links include prev, one per page, and next
	assert.Len(t, page.Links, 6)
	assert.NotNil(t, page.Links[0].URL)
	assert.True(t, page.Links[2].Active)

	// Filters survive in the link URLs
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events?method=natural&page=1&per_page=5",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Contains(t, *page.Links[1].URL, "method=natural")
}

func TestListBreedingEventsSearchByEarTag(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	maleID, femaleID := seedParents(t, testCtx)

	tagged := createEvent(t, testCtx, maleID, femaleID)
	createEvent(t, testCtx, maleID, femaleID)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/api/admin/breeding-events/%s/offspring/batch", tagged),
		models.BatchOffspringRequest{
			Offspring: []models.OffspringDraft{
				{Name: "Tagged Kid", Species: "goat", Breed: "Boer", Sex: "female", EarTag: "NZ000042", BirthDate: "2026-06-10"},
			},
		},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Search matches offspring ear tags, not only event notes
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events?search=NZ000042",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.Paginated[models.BreedingEvent]
	err := json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, tagged, page.Data[0].ID)

	// A tag nobody carries matches nothing
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/breeding-events?search=NZ999999",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	err = json.Unmarshal(w.Body.Bytes(), &page)
	assert.NoError(t, err)
	assert.Empty(t, page.Data)
}
