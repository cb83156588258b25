package models

import (
	"time"
)

// User represents an admin operator account
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Animal is a physical animal. Offspring are animals whose breeding_event_id
// points at the event that produced them.
type Animal struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Species         string     `db:"species" json:"species"`
	Breed           string     `db:"breed" json:"breed"`
	Sex             string     `db:"sex" json:"sex"` // "male" or "female"
	EarTag          *string    `db:"ear_tag" json:"ear_tag,omitempty"`
	BirthDate       *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	WeightKg        *float64   `db:"weight_kg" json:"weight_kg,omitempty"`
	Markings        string     `db:"markings" json:"markings"`
	BreedingEventID *string    `db:"breeding_event_id" json:"breeding_event_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// AnimalPhoto is one stored photo belonging to an animal
type AnimalPhoto struct {
	ID           string    `db:"id" json:"id"`
	AnimalID     string    `db:"animal_id" json:"animal_id"`
	OriginalName string    `db:"original_name" json:"original_name"`
	StoragePath  string    `db:"storage_path" json:"storage_path"`
	ContentType  string    `db:"content_type" json:"content_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Breeding methods
const (
	MethodNatural        = "natural"
	MethodAI             = "ai"
	MethodEmbryoTransfer = "embryo_transfer"
)

// BreedingEvent records a mating between a male and a female animal
type BreedingEvent struct {
	ID                  string     `db:"id" json:"id"`
	MaleAnimalID        string     `db:"male_animal_id" json:"male_animal_id"`
	FemaleAnimalID      string     `db:"female_animal_id" json:"female_animal_id"`
	Method              string     `db:"method" json:"method"`
	BreedingDate        time.Time  `db:"breeding_date" json:"breeding_date"`
	ExpectedKiddingDate *time.Time `db:"expected_kidding_date" json:"expected_kidding_date,omitempty"`
	ActualKiddingDate   *time.Time `db:"actual_kidding_date" json:"actual_kidding_date,omitempty"`
	StudFeeCents        *int64     `db:"stud_fee_cents" json:"stud_fee_cents,omitempty"`
	Notes               string     `db:"notes" json:"notes"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	// Derived from the animals table, never stored on the event row
	OffspringCount int `db:"offspring_count" json:"offspring_count"`
}

// ProfileSide selects the buyer or seller profile table
type ProfileSide string

const (
	BuyerSide  ProfileSide = "buyer"
	SellerSide ProfileSide = "seller"
)

// Verification statuses
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Profile is a farm/business profile attached one-to-one to a user account.
// The same shape backs both buyer_profiles and seller_profiles.
type Profile struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	FarmName           string    `db:"farm_name" json:"farm_name"`
	BusinessName       string    `db:"business_name" json:"business_name"`
	CountryCode        string    `db:"country_code" json:"country_code"`
	Phone              string    `db:"phone" json:"phone"`
	VerificationStatus string    `db:"verification_status" json:"verification_status"`
	RejectionReason    *string   `db:"rejection_reason" json:"rejection_reason,omitempty"`
	FractionalAssetID  *string   `db:"fractional_asset_id" json:"fractional_asset_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Fractional asset statuses
const (
	AssetActive    = "active"
	AssetPending   = "pending"
	AssetSoldOut   = "sold_out"
	AssetCancelled = "cancelled"
)

// FractionalAsset is a tradable share structure over a physical animal or tag unit
type FractionalAsset struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	AnimalID        *string   `db:"animal_id" json:"animal_id,omitempty"`
	TotalShares     int64     `db:"total_shares" json:"total_shares"`
	SoldShares      int64     `db:"sold_shares" json:"sold_shares"`
	SharePriceCents int64     `db:"share_price_cents" json:"share_price_cents"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ProgressPct returns the sales progress as a percentage in [0,100]
func (a *FractionalAsset) ProgressPct() float64 {
	if a.TotalShares <= 0 {
		return 0
	}
	return float64(a.SoldShares) / float64(a.TotalShares) * 100
}

// Tag statuses
const (
	TagAvailable       = "available"
	TagAssigned        = "assigned"
	TagNeedsAssignment = "needs_assignment"
)

// PreGeneratedTag is a tag number generated in a country-code batch and later
// assigned to exactly one animal at a time
type PreGeneratedTag struct {
	ID                string    `db:"id" json:"id"`
	TagNumber         string    `db:"tag_number" json:"tag_number"`
	CountryCode       string    `db:"country_code" json:"country_code"`
	SequenceNumber    int64     `db:"sequence_number" json:"sequence_number"`
	Status            string    `db:"status" json:"status"`
	AnimalID          *string   `db:"animal_id" json:"animal_id,omitempty"`
	FractionalAssetID *string   `db:"fractional_asset_id" json:"fractional_asset_id"`
	GeneratedAt       time.Time `db:"generated_at" json:"generated_at"`
}

// Listing statuses
const (
	ListingActive  = "active"
	ListingSold    = "sold"
	ListingRemoved = "removed"
)

// Listing is a marketplace sale record for one animal at a fixed price
type Listing struct {
	ID              string    `db:"id" json:"id"`
	AnimalID        string    `db:"animal_id" json:"animal_id"`
	SellerProfileID string    `db:"seller_profile_id" json:"seller_profile_id"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Payout statuses
const (
	PayoutPending   = "pending"
	PayoutPaid      = "paid"
	PayoutFailed    = "failed"
	PayoutCancelled = "cancelled"
)

// Payout is a disbursement to a user
type Payout struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	AmountCents  int64      `db:"amount_cents" json:"amount_cents"`
	Currency     string     `db:"currency" json:"currency"`
	PayeeDetails string     `db:"payee_details" json:"payee_details"`
	Status       string     `db:"status" json:"status"`
	ApprovedBy   *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Compliance review statuses
const (
	ReviewDraft       = "draft"
	ReviewSubmitted   = "submitted"
	ReviewUnderReview = "under_review"
	ReviewApproved    = "approved"
	ReviewRejected    = "rejected"
)

// Compliance payment statuses
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentWaived = "waived"
)

// AssistanceTypes is the fixed set a compliance application may select from
var AssistanceTypes = []string{"501c3_filing", "state_registration", "annual_filing", "bookkeeping"}

// ComplianceApplication is a nonprofit's request for tax-compliance assistance
type ComplianceApplication struct {
	ID               string    `db:"id" json:"id"`
	OrganizationName string    `db:"organization_name" json:"organization_name"`
	ContactEmail     string    `db:"contact_email" json:"contact_email"`
	AssistanceTypes  string    `db:"assistance_types" json:"assistance_types"` // comma-joined
	PaymentStatus    string    `db:"payment_status" json:"payment_status"`
	ReviewStatus     string    `db:"review_status" json:"review_status"`
	RejectionReason  *string   `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ComplianceAttachment is one uploaded document on an application
type ComplianceAttachment struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	OriginalName  string    `db:"original_name" json:"original_name"`
	StoragePath   string    `db:"storage_path" json:"storage_path"`
	ContentType   string    `db:"content_type" json:"content_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}
