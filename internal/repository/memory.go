package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

// MemoryRepository is an in-memory Repository implementation used by tests
// and local development. Behavior mirrors PostgresRepository.
type MemoryRepository struct {
	mu sync.RWMutex

	users        map[string]*models.User
	events       map[string]*models.BreedingEvent
	animals      map[string]*models.Animal
	photos       map[string]*models.AnimalPhoto
	profiles     map[models.ProfileSide]map[string]*models.Profile
	assets       map[string]*models.FractionalAsset
	tags         map[string]*models.PreGeneratedTag
	tagSequences map[string]int64
	listings     map[string]*models.Listing
	payouts      map[string]*models.Payout
	applications map[string]*models.ComplianceApplication
	attachments  map[string]*models.ComplianceAttachment

	// FailNext makes the next mutating call return an error, for failure-path tests
	FailNext error
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   map[string]*models.User{},
		events:  map[string]*models.BreedingEvent{},
		animals: map[string]*models.Animal{},
		photos:  map[string]*models.AnimalPhoto{},
		profiles: map[models.ProfileSide]map[string]*models.Profile{
			models.BuyerSide:  {},
			models.SellerSide: {},
		},
		assets:       map[string]*models.FractionalAsset{},
		tags:         map[string]*models.PreGeneratedTag{},
		tagSequences: map[string]int64{},
		listings:     map[string]*models.Listing{},
		payouts:      map[string]*models.Payout{},
		applications: map[string]*models.ComplianceApplication{},
		attachments:  map[string]*models.ComplianceAttachment{},
	}
}

func (r *MemoryRepository) failNext() error {
	if r.FailNext != nil {
		err := r.FailNext
		r.FailNext = nil
		return err
	}
	return nil
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// User operations

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}

	ensureID(&user.ID)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// Breeding event operations

func (r *MemoryRepository) CreateBreedingEvent(ctx context.Context, event *models.BreedingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	ensureID(&event.ID)
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *MemoryRepository) offspringCount(eventID string) int {
	n := 0
	for _, a := range r.animals {
		if a.BreedingEventID != nil && *a.BreedingEventID == eventID {
			n++
		}
	}
	return n
}

// offspringTagMatch reports whether any offspring of the event carries a
// matching ear tag
func (r *MemoryRepository) offspringTagMatch(eventID, search string) bool {
	for _, a := range r.animals {
		if a.BreedingEventID != nil && *a.BreedingEventID == eventID &&
			a.EarTag != nil && containsFold(*a.EarTag, search) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) GetBreedingEvent(ctx context.Context, id string) (*models.BreedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	cp.OffspringCount = r.offspringCount(id)
	return &cp, nil
}

func (r *MemoryRepository) UpdateBreedingEvent(ctx context.Context, event *models.BreedingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	existing, ok := r.events[event.ID]
	if !ok {
		return fmt.Errorf("breeding event %s not found", event.ID)
	}

	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *MemoryRepository) DeleteBreedingEvent(ctx context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return 0, err
	}

	detached := 0
	for _, a := range r.animals {
		if a.BreedingEventID != nil && *a.BreedingEventID == id {
			a.BreedingEventID = nil
			a.UpdatedAt = time.Now().UTC()
			detached++
		}
	}
	delete(r.events, id)
	return detached, nil
}

func (r *MemoryRepository) ListBreedingEvents(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.BreedingEvent, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	var matched []models.BreedingEvent
	for _, e := range r.events {
		if filter.Search != "" && !containsFold(e.Notes, filter.Search) &&
			!r.offspringTagMatch(e.ID, filter.Search) {
			continue
		}
		if filter.Method != "" && e.Method != filter.Method {
			continue
		}
		cp := *e
		cp.OffspringCount = r.offspringCount(e.ID)
		matched = append(matched, cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].BreedingDate.After(matched[j].BreedingDate)
	})

	meta := map[string]int64{"total": int64(len(matched))}
	var kidded int64
	for _, e := range matched {
		if e.ActualKiddingDate != nil {
			kidded++
		}
	}
	meta["kidded"] = kidded
	meta["pending"] = int64(len(matched)) - kidded

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

// Animal / offspring operations

func (r *MemoryRepository) CreateAnimal(ctx context.Context, animal *models.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}
	return r.insertAnimalLocked(animal)
}

func (r *MemoryRepository) insertAnimalLocked(animal *models.Animal) error {
	if animal.EarTag != nil && *animal.EarTag != "" {
		for _, a := range r.animals {
			if a.EarTag != nil && *a.EarTag == *animal.EarTag {
				return fmt.Errorf("duplicate ear tag %s", *animal.EarTag)
			}
		}
	}

	ensureID(&animal.ID)
	now := time.Now().UTC()
	animal.CreatedAt = now
	animal.UpdatedAt = now

	cp := *animal
	r.animals[animal.ID] = &cp
	return nil
}

func (r *MemoryRepository) CreateOffspringBatch(ctx context.Context, animals []*models.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	// All-or-nothing, as the SQL transaction behaves
	inserted := make([]string, 0, len(animals))
	for _, animal := range animals {
		if err := r.insertAnimalLocked(animal); err != nil {
			for _, id := range inserted {
				delete(r.animals, id)
			}
			return err
		}
		inserted = append(inserted, animal.ID)
	}
	return nil
}

func (r *MemoryRepository) GetAnimal(ctx context.Context, id string) (*models.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.animals[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) UpdateAnimal(ctx context.Context, animal *models.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	existing, ok := r.animals[animal.ID]
	if !ok {
		return fmt.Errorf("animal %s not found", animal.ID)
	}

	animal.CreatedAt = existing.CreatedAt
	animal.BreedingEventID = existing.BreedingEventID
	animal.UpdatedAt = time.Now().UTC()
	cp := *animal
	r.animals[animal.ID] = &cp
	return nil
}

func (r *MemoryRepository) DeleteAnimal(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	delete(r.animals, id)
	for pid, p := range r.photos {
		if p.AnimalID == id {
			delete(r.photos, pid)
		}
	}
	return nil
}

func (r *MemoryRepository) ListOffspring(ctx context.Context, breedingEventID string) ([]models.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Animal
	for _, a := range r.animals {
		if a.BreedingEventID != nil && *a.BreedingEventID == breedingEventID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) AddAnimalPhoto(ctx context.Context, photo *models.AnimalPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	ensureID(&photo.ID)
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}
	cp := *photo
	r.photos[photo.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetAnimalPhotos(ctx context.Context, animalID string) ([]models.AnimalPhoto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AnimalPhoto
	for _, p := range r.photos {
		if p.AnimalID == animalID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r *MemoryRepository) DeleteAnimalPhotosExcept(
	ctx context.Context,
	animalID string,
	keepIDs []string,
) ([]models.AnimalPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := map[string]bool{}
	for _, id := range keepIDs {
		keep[id] = true
	}

	var removed []models.AnimalPhoto
	for id, p := range r.photos {
		if p.AnimalID == animalID && !keep[id] {
			removed = append(removed, *p)
			delete(r.photos, id)
		}
	}
	return removed, nil
}

// Profile operations

func (r *MemoryRepository) CreateProfile(ctx context.Context, side models.ProfileSide, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	for _, p := range r.profiles[side] {
		if p.UserID == profile.UserID {
			return fmt.Errorf("user %s already has a %s profile", profile.UserID, side)
		}
	}

	ensureID(&profile.ID)
	if profile.VerificationStatus == "" {
		profile.VerificationStatus = models.VerificationPending
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	cp := *profile
	r.profiles[side][profile.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetProfile(ctx context.Context, side models.ProfileSide, id string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.profiles[side][id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListProfiles(
	ctx context.Context,
	side models.ProfileSide,
	filter models.ListFilter,
) ([]models.Profile, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	// Aggregates over the searched set; status filter applies after
	var searched []models.Profile
	for _, p := range r.profiles[side] {
		if filter.Search != "" && !containsFold(p.FarmName, filter.Search) && !containsFold(p.BusinessName, filter.Search) {
			continue
		}
		if filter.Country != "" && p.CountryCode != filter.Country {
			continue
		}
		searched = append(searched, *p)
	}

	meta := map[string]int64{
		"total":                     int64(len(searched)),
		models.VerificationPending:  0,
		models.VerificationVerified: 0,
		models.VerificationRejected: 0,
	}
	for _, p := range searched {
		meta[p.VerificationStatus]++
	}

	var matched []models.Profile
	for _, p := range searched {
		if filter.Status != "" && p.VerificationStatus != filter.Status {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

func (r *MemoryRepository) UpdateProfileVerification(
	ctx context.Context,
	side models.ProfileSide,
	id, status string,
	reason *string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	p, ok := r.profiles[side][id]
	if !ok {
		return fmt.Errorf("profile %s not found", id)
	}
	p.VerificationStatus = status
	p.RejectionReason = reason
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) SetProfileAsset(ctx context.Context, side models.ProfileSide, id string, assetID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	p, ok := r.profiles[side][id]
	if !ok {
		return fmt.Errorf("profile %s not found", id)
	}
	p.FractionalAssetID = assetID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Fractional asset operations

func (r *MemoryRepository) CreateFractionalAsset(ctx context.Context, asset *models.FractionalAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	ensureID(&asset.ID)
	if asset.Status == "" {
		asset.Status = models.AssetPending
	}
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	cp := *asset
	r.assets[asset.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetFractionalAsset(ctx context.Context, id string) (*models.FractionalAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.assets[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListFractionalAssets(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.FractionalAsset, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	var matched []models.FractionalAsset
	for _, a := range r.assets {
		if filter.Search != "" && !containsFold(a.Name, filter.Search) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		matched = append(matched, *a)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	meta := map[string]int64{"total": int64(len(matched))}
	var fullySold int64
	for _, a := range matched {
		if a.SoldShares >= a.TotalShares {
			fullySold++
		}
	}
	meta["fully_sold"] = fullySold

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

func (r *MemoryRepository) UpdateAssetStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	a, ok := r.assets[id]
	if !ok {
		return fmt.Errorf("fractional asset %s not found", id)
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Tag operations

func (r *MemoryRepository) GenerateTags(ctx context.Context, countryCode string, count int) ([]models.PreGeneratedTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tags := make([]models.PreGeneratedTag, 0, count)
	for i := 0; i < count; i++ {
		r.tagSequences[countryCode]++
		seq := r.tagSequences[countryCode]
		tag := models.PreGeneratedTag{
			ID:             uuid.New().String(),
			TagNumber:      fmt.Sprintf("%s%06d", countryCode, seq),
			CountryCode:    countryCode,
			SequenceNumber: seq,
			Status:         models.TagAvailable,
			GeneratedAt:    now,
		}
		cp := tag
		r.tags[tag.ID] = &cp
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *MemoryRepository) GetTag(ctx context.Context, id string) (*models.PreGeneratedTag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.tags[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListTags(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.PreGeneratedTag, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	var searched []models.PreGeneratedTag
	for _, t := range r.tags {
		if filter.Search != "" && !strings.HasPrefix(strings.ToLower(t.TagNumber), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Country != "" && t.CountryCode != filter.Country {
			continue
		}
		searched = append(searched, *t)
	}

	meta := map[string]int64{
		"total":                   int64(len(searched)),
		models.TagAvailable:       0,
		models.TagAssigned:        0,
		models.TagNeedsAssignment: 0,
	}
	for _, t := range searched {
		meta[t.Status]++
	}

	var matched []models.PreGeneratedTag
	for _, t := range searched {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CountryCode != matched[j].CountryCode {
			return matched[i].CountryCode < matched[j].CountryCode
		}
		return matched[i].SequenceNumber < matched[j].SequenceNumber
	})

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

func (r *MemoryRepository) AssignTag(ctx context.Context, tagID, animalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	t, ok := r.tags[tagID]
	if !ok {
		return fmt.Errorf("tag %s not found", tagID)
	}

	for _, other := range r.tags {
		if other.ID != tagID && other.AnimalID != nil && *other.AnimalID == animalID {
			other.AnimalID = nil
			other.Status = models.TagNeedsAssignment
		}
	}

	t.AnimalID = &animalID
	t.Status = models.TagAssigned
	return nil
}

func (r *MemoryRepository) UnassignTag(ctx context.Context, tagID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	t, ok := r.tags[tagID]
	if !ok {
		return fmt.Errorf("tag %s not found", tagID)
	}
	t.AnimalID = nil
	t.Status = models.TagAvailable
	return nil
}

func (r *MemoryRepository) SetTagAsset(ctx context.Context, tagID string, assetID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	t, ok := r.tags[tagID]
	if !ok {
		return fmt.Errorf("tag %s not found", tagID)
	}
	t.FractionalAssetID = assetID
	return nil
}

// Listing operations

func (r *MemoryRepository) CreateListing(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	ensureID(&listing.ID)
	if listing.Status == "" {
		listing.Status = models.ListingActive
	}
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	cp := *listing
	r.listings[listing.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListListings(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.Listing, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	var searched []models.Listing
	for _, l := range r.listings {
		if filter.Search != "" {
			animal := r.animals[l.AnimalID]
			if animal == nil {
				continue
			}
			tag := ""
			if animal.EarTag != nil {
				tag = *animal.EarTag
			}
			if !containsFold(animal.Name, filter.Search) && !containsFold(tag, filter.Search) {
				continue
			}
		}
		searched = append(searched, *l)
	}

	meta := map[string]int64{
		"total":               int64(len(searched)),
		models.ListingActive:  0,
		models.ListingSold:    0,
		models.ListingRemoved: 0,
	}
	for _, l := range searched {
		meta[l.Status]++
	}

	var matched []models.Listing
	for _, l := range searched {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		matched = append(matched, l)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

func (r *MemoryRepository) UpdateListingStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	l, ok := r.listings[id]
	if !ok {
		return fmt.Errorf("listing %s not found", id)
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// Payout operations

func (r *MemoryRepository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	ensureID(&payout.ID)
	if payout.Status == "" {
		payout.Status = models.PayoutPending
	}
	payout.CreatedAt = time.Now().UTC()

	cp := *payout
	r.payouts[payout.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.payouts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListPayouts(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.Payout, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	meta := map[string]int64{
		"total":                0,
		models.PayoutPending:   0,
		models.PayoutPaid:      0,
		models.PayoutFailed:    0,
		models.PayoutCancelled: 0,
		"pending_amount_cents": 0,
	}

	var matched []models.Payout
	for _, p := range r.payouts {
		meta["total"]++
		meta[p.Status]++
		if p.Status == models.PayoutPending {
			meta["pending_amount_cents"] += p.AmountCents
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		matched = append(matched, *p)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

func (r *MemoryRepository) ApprovePayout(ctx context.Context, id, approverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	p, ok := r.payouts[id]
	if !ok {
		return fmt.Errorf("payout %s not found", id)
	}
	now := time.Now().UTC()
	p.Status = models.PayoutPaid
	p.ApprovedBy = &approverID
	p.ApprovedAt = &now
	return nil
}

// Compliance operations

func (r *MemoryRepository) CreateComplianceApplication(
	ctx context.Context,
	app *models.ComplianceApplication,
	attachments []*models.ComplianceAttachment,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	ensureID(&app.ID)
	if app.PaymentStatus == "" {
		app.PaymentStatus = models.PaymentUnpaid
	}
	if app.ReviewStatus == "" {
		app.ReviewStatus = models.ReviewSubmitted
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	cp := *app
	r.applications[app.ID] = &cp

	for _, att := range attachments {
		ensureID(&att.ID)
		att.ApplicationID = app.ID
		if att.UploadedAt.IsZero() {
			att.UploadedAt = now
		}
		acp := *att
		r.attachments[att.ID] = &acp
	}
	return nil
}

func (r *MemoryRepository) GetComplianceApplication(ctx context.Context, id string) (*models.ComplianceApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.applications[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetComplianceAttachments(ctx context.Context, applicationID string) ([]models.ComplianceAttachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ComplianceAttachment
	for _, a := range r.attachments {
		if a.ApplicationID == applicationID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r *MemoryRepository) FindActiveComplianceApplication(
	ctx context.Context,
	organizationName string,
) (*models.ComplianceApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.ComplianceApplication
	for _, a := range r.applications {
		if a.OrganizationName != organizationName {
			continue
		}
		if a.ReviewStatus != models.ReviewSubmitted && a.ReviewStatus != models.ReviewUnderReview {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *MemoryRepository) ListComplianceApplications(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.ComplianceApplication, Page, map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	normalizePage(&filter)

	var searched []models.ComplianceApplication
	for _, a := range r.applications {
		if filter.Search != "" && !containsFold(a.OrganizationName, filter.Search) && !containsFold(a.ContactEmail, filter.Search) {
			continue
		}
		if filter.PaymentStatus != "" && a.PaymentStatus != filter.PaymentStatus {
			continue
		}
		searched = append(searched, *a)
	}

	meta := map[string]int64{
		"total":                  int64(len(searched)),
		models.ReviewSubmitted:   0,
		models.ReviewUnderReview: 0,
		models.ReviewApproved:    0,
		models.ReviewRejected:    0,
	}
	for _, a := range searched {
		meta[a.ReviewStatus]++
	}

	var matched []models.ComplianceApplication
	for _, a := range searched {
		if filter.Status != "" && a.ReviewStatus != filter.Status {
			continue
		}
		matched = append(matched, a)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	pageItems, page := paginateSlice(matched, filter)
	return pageItems, page, meta, nil
}

func (r *MemoryRepository) ReviewComplianceApplication(ctx context.Context, id, status string, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext(); err != nil {
		return err
	}

	a, ok := r.applications[id]
	if !ok {
		return fmt.Errorf("application %s not found", id)
	}
	a.ReviewStatus = status
	a.RejectionReason = reason
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Helpers

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func paginateSlice[T any](items []T, filter models.ListFilter) ([]T, Page) {
	total := int64(len(items))
	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}

	start := (filter.Page - 1) * filter.PerPage
	if start >= len(items) {
		return []T{}, page
	}
	end := start + filter.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page
}
