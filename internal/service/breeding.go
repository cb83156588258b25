package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
	"github.com/tmutasa/herdmarket-server/internal/storage"
)

const dateLayout = "2006-01-02"

// parseDate parses a date-only form value. An empty value yields nil.
func parseDate(field, value string) (*time.Time, *ValidationError) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fieldError(field, "must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

func (s *DefaultService) ListBreedingEvents(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.BreedingEvent], error) {
	events, page, meta, err := s.repo.ListBreedingEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing breeding events: %w", err)
	}
	return paginated(events, page, meta), nil
}

// breedingEventFromRequest validates the request and resolves its dates.
// Parents must exist and have the matching sex.
func (s *DefaultService) breedingEventFromRequest(ctx context.Context, req models.CreateBreedingEventRequest) (*models.BreedingEvent, error) {
	breedingDate, verr := parseDate("breeding_date", req.BreedingDate)
	if verr != nil {
		return nil, verr
	}
	if breedingDate == nil {
		return nil, fieldError("breeding_date", "is required")
	}
	expected, verr := parseDate("expected_kidding_date", req.ExpectedKiddingDate)
	if verr != nil {
		return nil, verr
	}
	actual, verr := parseDate("actual_kidding_date", req.ActualKiddingDate)
	if verr != nil {
		return nil, verr
	}

	male, err := s.repo.GetAnimal(ctx, req.MaleAnimalID)
	if err != nil {
		return nil, fmt.Errorf("error getting male animal: %w", err)
	}
	if male == nil {
		return nil, fieldError("male_animal_id", "animal not found")
	}
	if male.Sex != "male" {
		return nil, fieldError("male_animal_id", "animal must be male")
	}

	female, err := s.repo.GetAnimal(ctx, req.FemaleAnimalID)
	if err != nil {
		return nil, fmt.Errorf("error getting female animal: %w", err)
	}
	if female == nil {
		return nil, fieldError("female_animal_id", "animal not found")
	}
	if female.Sex != "female" {
		return nil, fieldError("female_animal_id", "animal must be female")
	}

	return &models.BreedingEvent{
		MaleAnimalID:        req.MaleAnimalID,
		FemaleAnimalID:      req.FemaleAnimalID,
		Method:              req.Method,
		BreedingDate:        *breedingDate,
		ExpectedKiddingDate: expected,
		ActualKiddingDate:   actual,
		StudFeeCents:        req.StudFeeCents,
		Notes:               req.Notes,
	}, nil
}

func (s *DefaultService) CreateBreedingEvent(ctx context.Context, req models.CreateBreedingEventRequest) (*models.BreedingEvent, error) {
	event, err := s.breedingEventFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	event.ID = uuid.New().String()

	if err := s.repo.CreateBreedingEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("error creating breeding event: %w", err)
	}

	s.log.Info("breeding event created", map[string]interface{}{"event_id": event.ID})
	return s.repo.GetBreedingEvent(ctx, event.ID)
}

func (s *DefaultService) GetBreedingEventDetail(ctx context.Context, id string) (*models.BreedingEventDetail, error) {
	event, err := s.repo.GetBreedingEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting breeding event: %w", err)
	}
	if event == nil {
		return nil, notFound("breeding event")
	}

	offspring, err := s.repo.ListOffspring(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing offspring: %w", err)
	}

	detail := &models.BreedingEventDetail{
		BreedingEvent: *event,
		Offspring:     make([]models.AnimalWithPhotos, 0, len(offspring)),
	}
	for _, animal := range offspring {
		photos, err := s.repo.GetAnimalPhotos(ctx, animal.ID)
		if err != nil {
			return nil, fmt.Errorf("error getting animal photos: %w", err)
		}
		if photos == nil {
			photos = []models.AnimalPhoto{}
		}
		detail.Offspring = append(detail.Offspring, models.AnimalWithPhotos{Animal: animal, Photos: photos})
	}
	return detail, nil
}

func (s *DefaultService) UpdateBreedingEvent(ctx context.Context, id string, req models.CreateBreedingEventRequest) (*models.BreedingEvent, error) {
	existing, err := s.repo.GetBreedingEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting breeding event: %w", err)
	}
	if existing == nil {
		return nil, notFound("breeding event")
	}

	event, err := s.breedingEventFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	event.ID = id

	if err := s.repo.UpdateBreedingEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("error updating breeding event: %w", err)
	}
	return s.repo.GetBreedingEvent(ctx, id)
}

// DeleteBreedingEvent removes the event and detaches, not deletes, its
// offspring. The detached count is reported back to the caller.
func (s *DefaultService) DeleteBreedingEvent(ctx context.Context, id string) (int, error) {
	existing, err := s.repo.GetBreedingEvent(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("error getting breeding event: %w", err)
	}
	if existing == nil {
		return 0, notFound("breeding event")
	}

	detached, err := s.repo.DeleteBreedingEvent(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("error deleting breeding event: %w", err)
	}

	s.log.Info("breeding event deleted", map[string]interface{}{
		"event_id":           id,
		"detached_offspring": detached,
	})
	return detached, nil
}

// animalFromDraft builds an animal row from one submitted child row
func animalFromDraft(eventID string, draft models.OffspringDraft) (*models.Animal, *ValidationError) {
	birthDate, verr := parseDate("birth_date", draft.BirthDate)
	if verr != nil {
		return nil, verr
	}

	animal := &models.Animal{
		ID:              uuid.New().String(),
		Name:            draft.Name,
		Species:         draft.Species,
		Breed:           draft.Breed,
		Sex:             draft.Sex,
		BirthDate:       birthDate,
		WeightKg:        draft.WeightKg,
		Markings:        draft.Markings,
		BreedingEventID: &eventID,
	}
	if tag := strings.TrimSpace(draft.EarTag); tag != "" {
		animal.EarTag = &tag
	}
	return animal, nil
}

// AddOffspringBatch inserts all submitted rows or none of them
func (s *DefaultService) AddOffspringBatch(ctx context.Context, eventID string, req models.BatchOffspringRequest) ([]models.Animal, error) {
	event, err := s.repo.GetBreedingEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error getting breeding event: %w", err)
	}
	if event == nil {
		return nil, notFound("breeding event")
	}

	animals := make([]*models.Animal, 0, len(req.Offspring))
	for i, draft := range req.Offspring {
		animal, verr := animalFromDraft(eventID, draft)
		if verr != nil {
			// Re-key the error so the client can place it on the right row
			fields := make(map[string][]string, len(verr.Fields))
			for field, msgs := range verr.Fields {
				fields[fmt.Sprintf("offspring.%d.%s", i, field)] = msgs
			}
			return nil, &ValidationError{Fields: fields}
		}
		animals = append(animals, animal)
	}

	if err := s.repo.CreateOffspringBatch(ctx, animals); err != nil {
		return nil, fmt.Errorf("error creating offspring batch: %w", err)
	}

	s.log.Info("offspring batch created", map[string]interface{}{
		"event_id": eventID,
		"count":    len(animals),
	})

	created := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		created = append(created, *a)
	}
	return created, nil
}

// AddOffspringWithPhotos saves the uploaded photos first so the insert can be
// rolled back cleanly by removing the files again.
func (s *DefaultService) AddOffspringWithPhotos(ctx context.Context, eventID string, draft models.OffspringDraft, photos []storage.Upload) (*models.AnimalWithPhotos, error) {
	event, err := s.repo.GetBreedingEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error getting breeding event: %w", err)
	}
	if event == nil {
		return nil, notFound("breeding event")
	}

	animal, verr := animalFromDraft(eventID, draft)
	if verr != nil {
		return nil, verr
	}

	saved, err := s.savePhotos(animal.ID, photos)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateAnimal(ctx, animal); err != nil {
		s.removeSaved(saved)
		return nil, fmt.Errorf("error creating animal: %w", err)
	}

	photoRows, err := s.attachPhotos(ctx, animal.ID, photos, saved)
	if err != nil {
		return nil, err
	}

	s.log.Info("offspring created", map[string]interface{}{
		"event_id":  eventID,
		"animal_id": animal.ID,
		"photos":    len(photoRows),
	})
	return &models.AnimalWithPhotos{Animal: *animal, Photos: photoRows}, nil
}

// UpdateOffspring rewrites the animal row, keeps only the named existing
// photos and appends any newly uploaded ones.
func (s *DefaultService) UpdateOffspring(ctx context.Context, animalID string, draft models.OffspringDraft, newPhotos []storage.Upload, keepPhotoIDs []string) (*models.AnimalWithPhotos, error) {
	animal, err := s.repo.GetAnimal(ctx, animalID)
	if err != nil {
		return nil, fmt.Errorf("error getting animal: %w", err)
	}
	if animal == nil {
		return nil, notFound("offspring")
	}

	birthDate, verr := parseDate("birth_date", draft.BirthDate)
	if verr != nil {
		return nil, verr
	}

	animal.Name = draft.Name
	animal.Species = draft.Species
	animal.Breed = draft.Breed
	animal.Sex = draft.Sex
	animal.BirthDate = birthDate
	animal.WeightKg = draft.WeightKg
	animal.Markings = draft.Markings
	animal.EarTag = nil
	if tag := strings.TrimSpace(draft.EarTag); tag != "" {
		animal.EarTag = &tag
	}

	if err := s.repo.UpdateAnimal(ctx, animal); err != nil {
		return nil, fmt.Errorf("error updating animal: %w", err)
	}

	removed, err := s.repo.DeleteAnimalPhotosExcept(ctx, animalID, keepPhotoIDs)
	if err != nil {
		return nil, fmt.Errorf("error pruning animal photos: %w", err)
	}
	for _, photo := range removed {
		if err := s.store.Remove(photo.StoragePath); err != nil {
			s.log.Warn("failed to remove stored photo", map[string]interface{}{
				"path":  photo.StoragePath,
				"error": err.Error(),
			})
		}
	}

	saved, err := s.savePhotos(animalID, newPhotos)
	if err != nil {
		return nil, err
	}
	if _, err := s.attachPhotos(ctx, animalID, newPhotos, saved); err != nil {
		return nil, err
	}

	photos, err := s.repo.GetAnimalPhotos(ctx, animalID)
	if err != nil {
		return nil, fmt.Errorf("error getting animal photos: %w", err)
	}
	if photos == nil {
		photos = []models.AnimalPhoto{}
	}
	return &models.AnimalWithPhotos{Animal: *animal, Photos: photos}, nil
}

func (s *DefaultService) DeleteOffspring(ctx context.Context, animalID string) error {
	animal, err := s.repo.GetAnimal(ctx, animalID)
	if err != nil {
		return fmt.Errorf("error getting animal: %w", err)
	}
	if animal == nil {
		return notFound("offspring")
	}

	photos, err := s.repo.GetAnimalPhotos(ctx, animalID)
	if err != nil {
		return fmt.Errorf("error getting animal photos: %w", err)
	}

	if err := s.repo.DeleteAnimal(ctx, animalID); err != nil {
		return fmt.Errorf("error deleting animal: %w", err)
	}
	for _, photo := range photos {
		if err := s.store.Remove(photo.StoragePath); err != nil {
			s.log.Warn("failed to remove stored photo", map[string]interface{}{
				"path":  photo.StoragePath,
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *DefaultService) savePhotos(animalID string, photos []storage.Upload) ([]*storage.Saved, error) {
	saved := make([]*storage.Saved, 0, len(photos))
	for _, up := range photos {
		sv, err := s.store.Save("photos", animalID, up)
		if err != nil {
			s.removeSaved(saved)
			return nil, fieldError("photos", err.Error())
		}
		s.log.Debug("stored offspring photo", map[string]interface{}{
			"animal_id": animalID,
			"path":      sv.Path,
			"bytes":     sv.SizeBytes,
		})
		saved = append(saved, sv)
	}
	return saved, nil
}

func (s *DefaultService) removeSaved(saved []*storage.Saved) {
	for _, sv := range saved {
		if err := s.store.Remove(sv.Path); err != nil {
			s.log.Warn("failed to remove stored photo", map[string]interface{}{
				"path":  sv.Path,
				"error": err.Error(),
			})
		}
	}
}

func (s *DefaultService) attachPhotos(ctx context.Context, animalID string, uploads []storage.Upload, saved []*storage.Saved) ([]models.AnimalPhoto, error) {
	rows := make([]models.AnimalPhoto, 0, len(saved))
	for i, sv := range saved {
		photo := &models.AnimalPhoto{
			ID:           uuid.New().String(),
			AnimalID:     animalID,
			OriginalName: uploads[i].OriginalName,
			StoragePath:  sv.Path,
			ContentType:  uploads[i].ContentType,
			SizeBytes:    sv.SizeBytes,
		}
		if err := s.repo.AddAnimalPhoto(ctx, photo); err != nil {
			return nil, fmt.Errorf("error recording animal photo: %w", err)
		}
		rows = append(rows, *photo)
	}
	return rows, nil
}
