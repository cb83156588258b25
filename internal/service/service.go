package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/logger"
	"github.com/tmutasa/herdmarket-server/internal/models"
	"github.com/tmutasa/herdmarket-server/internal/repository"
	"github.com/tmutasa/herdmarket-server/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	// Breeding events and offspring
	ListBreedingEvents(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.BreedingEvent], error)
	CreateBreedingEvent(ctx context.Context, req models.CreateBreedingEventRequest) (*models.BreedingEvent, error)
	GetBreedingEventDetail(ctx context.Context, id string) (*models.BreedingEventDetail, error)
	UpdateBreedingEvent(ctx context.Context, id string, req models.CreateBreedingEventRequest) (*models.BreedingEvent, error)
	DeleteBreedingEvent(ctx context.Context, id string) (int, error)
	AddOffspringBatch(ctx context.Context, eventID string, req models.BatchOffspringRequest) ([]models.Animal, error)
	AddOffspringWithPhotos(ctx context.Context, eventID string, draft models.OffspringDraft, photos []storage.Upload) (*models.AnimalWithPhotos, error)
	UpdateOffspring(ctx context.Context, animalID string, draft models.OffspringDraft, newPhotos []storage.Upload, keepPhotoIDs []string) (*models.AnimalWithPhotos, error)
	DeleteOffspring(ctx context.Context, animalID string) error

	// Buyer/seller profile verification
	CreateProfile(ctx context.Context, side models.ProfileSide, req models.CreateProfileRequest) (*models.Profile, error)
	ListProfiles(ctx context.Context, side models.ProfileSide, filter models.ListFilter) (*models.Paginated[models.Profile], error)
	GetProfileDetail(ctx context.Context, side models.ProfileSide, id string) (*models.ProfileDetail, error)
	VerifyProfile(ctx context.Context, side models.ProfileSide, id string) (*models.Profile, error)
	RejectProfile(ctx context.Context, side models.ProfileSide, id, reason string) (*models.Profile, error)
	LinkProfileAsset(ctx context.Context, side models.ProfileSide, id string, assetID *string) (*models.ProfileDetail, error)

	// Fractional assets
	CreateFractionalAsset(ctx context.Context, req models.CreateFractionalAssetRequest) (*models.FractionalAsset, error)
	ListFractionalAssets(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.FractionalAsset], error)
	UpdateAssetStatus(ctx context.Context, id, status string) (*models.FractionalAsset, error)

	// Pre-generated tags
	GenerateTags(ctx context.Context, req models.GenerateTagsRequest) ([]models.PreGeneratedTag, error)
	ListTags(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.PreGeneratedTag], error)
	AssignTag(ctx context.Context, tagID, animalID string) (*models.PreGeneratedTag, error)
	UnassignTag(ctx context.Context, tagID string) (*models.PreGeneratedTag, error)
	LinkTagAsset(ctx context.Context, tagID string, assetID *string) (*models.PreGeneratedTag, error)

	// Listings
	ListListings(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.Listing], error)
	RemoveListing(ctx context.Context, id string) (*models.Listing, error)

	// Payouts
	ListPayouts(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.Payout], error)
	ApprovePayout(ctx context.Context, payoutID, approverID string) (*models.Payout, error)

	// Compliance applications
	SubmitComplianceApplication(ctx context.Context, req models.ComplianceIntakeRequest, documents []storage.Upload) (*models.ComplianceApplicationDetail, error)
	ListComplianceApplications(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.ComplianceApplication], error)
	GetComplianceApplicationDetail(ctx context.Context, id string) (*models.ComplianceApplicationDetail, error)
	ReviewComplianceApplication(ctx context.Context, id string, req models.ReviewComplianceRequest) (*models.ComplianceApplication, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	store         storage.Store
	log           logger.Logger
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, store storage.Store, log logger.Logger, jwtSecret string) Service {
	return &DefaultService{
		repo:          repo,
		store:         store,
		log:           log,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existingUser != nil {
		return nil, conflict("user with email %s already exists", req.Email)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info("admin user created", map[string]interface{}{"user_id": user.ID})

	return &models.AuthResponse{
		Status: "success",
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, fieldError("email", "invalid email or password")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fieldError("email", "invalid email or password")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": user.ID, // subject
		"exp": expirationTime.Unix(),
		"iat": time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// paginated assembles the uniform list envelope; the API layer fills Links
func paginated[T any](data []T, page repository.Page, meta map[string]int64) *models.Paginated[T] {
	if data == nil {
		data = []T{}
	}
	return &models.Paginated[T]{
		Data:        data,
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		Total:       page.Total,
		Meta:        meta,
	}
}
