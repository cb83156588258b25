package models

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateBreedingEventRequest struct {
	MaleAnimalID        string `json:"male_animal_id" binding:"required"`
	FemaleAnimalID      string `json:"female_animal_id" binding:"required"`
	Method              string `json:"method" binding:"required,oneof=natural ai embryo_transfer"`
	BreedingDate        string `json:"breeding_date" binding:"required"` // YYYY-MM-DD
	ExpectedKiddingDate string `json:"expected_kidding_date"`
	ActualKiddingDate   string `json:"actual_kidding_date"`
	StudFeeCents        *int64 `json:"stud_fee_cents"`
	Notes               string `json:"notes"`
}

// OffspringDraft is one editable child row as the admin screens submit it.
// Dates travel as date-only strings, mirroring the form inputs.
type OffspringDraft struct {
	Name      string   `json:"name" binding:"required"`
	Species   string   `json:"species" binding:"required"`
	Breed     string   `json:"breed" binding:"required"`
	Sex       string   `json:"sex" binding:"required,oneof=male female"`
	EarTag    string   `json:"ear_tag"`
	BirthDate string   `json:"birth_date" binding:"required"` // YYYY-MM-DD
	WeightKg  *float64 `json:"weight_kg"`
	Markings  string   `json:"markings"`
}

type BatchOffspringRequest struct {
	Offspring []OffspringDraft `json:"offspring" binding:"required,min=1,dive"`
}

type CreateProfileRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	FarmName     string `json:"farm_name" binding:"required"`
	BusinessName string `json:"business_name"`
	CountryCode  string `json:"country_code" binding:"required,len=2,alpha"`
	Phone        string `json:"phone"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LinkAssetRequest distinguishes an explicit null (unlink) from a set id.
// The pointer is nil when the client sends JSON null.
type LinkAssetRequest struct {
	FractionalAssetID *string `json:"fractional_asset_id"`
}

type GenerateTagsRequest struct {
	CountryCode string `json:"country_code" binding:"required,len=2,alpha"`
	Count       int    `json:"count" binding:"required,min=1,max=500"`
}

type AssignTagRequest struct {
	AnimalID string `json:"animal_id" binding:"required"`
}

type CreateFractionalAssetRequest struct {
	Name            string  `json:"name" binding:"required"`
	AnimalID        *string `json:"animal_id"`
	TotalShares     int64   `json:"total_shares" binding:"required,min=1"`
	SharePriceCents int64   `json:"share_price_cents" binding:"required,min=1"`
}

type UpdateAssetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active pending sold_out cancelled"`
}

// ComplianceIntakeRequest arrives as multipart form fields alongside the
// uploaded documents, so it carries no binding tags.
type ComplianceIntakeRequest struct {
	OrganizationName string
	ContactEmail     string
	AssistanceTypes  []string
}

type ReviewComplianceRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Reason   string `json:"reason"`
}

// ListFilter carries the combinable list-view filters. Zero values mean
// "not filtered".
type ListFilter struct {
	Search        string
	Status        string
	Country       string
	Method        string
	PaymentStatus string
	Page          int
	PerPage       int
}

// Response models

// PageLink mirrors the pagination link shape the admin screens render as-is
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Paginated is the uniform list envelope. Meta carries aggregate counters
// computed server-side over the whole filtered set, not the current page.
type Paginated[T any] struct {
	Data        []T              `json:"data"`
	Links       []PageLink       `json:"links"`
	CurrentPage int              `json:"current_page"`
	LastPage    int              `json:"last_page"`
	Total       int64            `json:"total"`
	Meta        map[string]int64 `json:"meta"`
}

type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// AnimalWithPhotos bundles an animal with its photo collection
type AnimalWithPhotos struct {
	Animal
	Photos []AnimalPhoto `json:"photos"`
}

// BreedingEventDetail is the master-detail payload for one event
type BreedingEventDetail struct {
	BreedingEvent
	Offspring []AnimalWithPhotos `json:"offspring"`
}

type DeleteBreedingEventResponse struct {
	Status            string `json:"status"`
	DetachedOffspring int    `json:"detached_offspring"`
}

// ProfileDetail is a profile plus its linked asset's recomputed progress
type ProfileDetail struct {
	Profile
	FractionalAsset *AssetSummary `json:"fractional_asset"`
}

type AssetSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TotalShares int64   `json:"total_shares"`
	SoldShares  int64   `json:"sold_shares"`
	Status      string  `json:"status"`
	ProgressPct float64 `json:"progress_pct"`
}

// ComplianceApplicationDetail bundles an application with its attachments
type ComplianceApplicationDetail struct {
	ComplianceApplication
	Attachments []ComplianceAttachment `json:"attachments"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries field-keyed validation messages so forms
// can render them under the corresponding inputs
type ValidationErrorResponse struct {
	Status string              `json:"status"`
	Errors map[string][]string `json:"errors"`
}
