package repository

import (
	"context"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

// Page bundles the pagination numbers a list query resolves to
type Page struct {
	Total       int64
	CurrentPage int
	LastPage    int
}

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Breeding event operations
	CreateBreedingEvent(ctx context.Context, event *models.BreedingEvent) error
	GetBreedingEvent(ctx context.Context, id string) (*models.BreedingEvent, error)
	UpdateBreedingEvent(ctx context.Context, event *models.BreedingEvent) error
	// DeleteBreedingEvent removes the event without cascading: offspring rows
	// survive with breeding_event_id cleared. Returns how many were detached.
	DeleteBreedingEvent(ctx context.Context, id string) (int, error)
	ListBreedingEvents(ctx context.Context, filter models.ListFilter) ([]models.BreedingEvent, Page, map[string]int64, error)

	// Animal / offspring operations
	CreateAnimal(ctx context.Context, animal *models.Animal) error
	CreateOffspringBatch(ctx context.Context, animals []*models.Animal) error
	GetAnimal(ctx context.Context, id string) (*models.Animal, error)
	UpdateAnimal(ctx context.Context, animal *models.Animal) error
	DeleteAnimal(ctx context.Context, id string) error
	ListOffspring(ctx context.Context, breedingEventID string) ([]models.Animal, error)
	AddAnimalPhoto(ctx context.Context, photo *models.AnimalPhoto) error
	GetAnimalPhotos(ctx context.Context, animalID string) ([]models.AnimalPhoto, error)
	// DeleteAnimalPhotosExcept removes all photos of an animal not named in
	// keepIDs and returns the removed rows so stored files can be cleaned up.
	DeleteAnimalPhotosExcept(ctx context.Context, animalID string, keepIDs []string) ([]models.AnimalPhoto, error)

	// Buyer/seller profile operations
	CreateProfile(ctx context.Context, side models.ProfileSide, profile *models.Profile) error
	GetProfile(ctx context.Context, side models.ProfileSide, id string) (*models.Profile, error)
	ListProfiles(ctx context.Context, side models.ProfileSide, filter models.ListFilter) ([]models.Profile, Page, map[string]int64, error)
	UpdateProfileVerification(ctx context.Context, side models.ProfileSide, id, status string, reason *string) error
	SetProfileAsset(ctx context.Context, side models.ProfileSide, id string, assetID *string) error

	// Fractional asset operations
	CreateFractionalAsset(ctx context.Context, asset *models.FractionalAsset) error
	GetFractionalAsset(ctx context.Context, id string) (*models.FractionalAsset, error)
	ListFractionalAssets(ctx context.Context, filter models.ListFilter) ([]models.FractionalAsset, Page, map[string]int64, error)
	UpdateAssetStatus(ctx context.Context, id, status string) error

	// Pre-generated tag operations
	GenerateTags(ctx context.Context, countryCode string, count int) ([]models.PreGeneratedTag, error)
	GetTag(ctx context.Context, id string) (*models.PreGeneratedTag, error)
	ListTags(ctx context.Context, filter models.ListFilter) ([]models.PreGeneratedTag, Page, map[string]int64, error)
	AssignTag(ctx context.Context, tagID, animalID string) error
	UnassignTag(ctx context.Context, tagID string) error
	SetTagAsset(ctx context.Context, tagID string, assetID *string) error

	// Listing operations
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	ListListings(ctx context.Context, filter models.ListFilter) ([]models.Listing, Page, map[string]int64, error)
	UpdateListingStatus(ctx context.Context, id, status string) error

	// Payout operations
	CreatePayout(ctx context.Context, payout *models.Payout) error
	GetPayout(ctx context.Context, id string) (*models.Payout, error)
	ListPayouts(ctx context.Context, filter models.ListFilter) ([]models.Payout, Page, map[string]int64, error)
	ApprovePayout(ctx context.Context, id, approverID string) error

	// Compliance application operations
	CreateComplianceApplication(ctx context.Context, app *models.ComplianceApplication, attachments []*models.ComplianceAttachment) error
	GetComplianceApplication(ctx context.Context, id string) (*models.ComplianceApplication, error)
	GetComplianceAttachments(ctx context.Context, applicationID string) ([]models.ComplianceAttachment, error)
	// FindActiveComplianceApplication returns the in-flight (submitted or
	// under_review) application for an organization, or nil.
	FindActiveComplianceApplication(ctx context.Context, organizationName string) (*models.ComplianceApplication, error)
	ListComplianceApplications(ctx context.Context, filter models.ListFilter) ([]models.ComplianceApplication, Page, map[string]int64, error)
	ReviewComplianceApplication(ctx context.Context, id, status string, reason *string) error
}

// normalizePage clamps page/per_page to sane bounds and returns the offset
func normalizePage(filter *models.ListFilter) int {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 15
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return (filter.Page - 1) * filter.PerPage
}

// lastPage computes the final page number for a total row count
func lastPage(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return last
}
