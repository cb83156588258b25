package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

const breedingEventColumns = `
	b.*,
	(SELECT COUNT(*) FROM animals a WHERE a.breeding_event_id = b.id) AS offspring_count
`

func (r *PostgresRepository) CreateBreedingEvent(ctx context.Context, event *models.BreedingEvent) error {
	query := `
		INSERT INTO breeding_events (
			id, male_animal_id, female_animal_id, method, breeding_date,
			expected_kidding_date, actual_kidding_date, stud_fee_cents, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.MaleAnimalID, event.FemaleAnimalID, event.Method,
		event.BreedingDate, event.ExpectedKiddingDate, event.ActualKiddingDate,
		event.StudFeeCents, event.Notes, event.CreatedAt, event.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetBreedingEvent(ctx context.Context, id string) (*models.BreedingEvent, error) {
	query := `SELECT ` + breedingEventColumns + ` FROM breeding_events b WHERE b.id = $1`

	var event models.BreedingEvent
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Event not found
		}
		return nil, err
	}

	return &event, nil
}

func (r *PostgresRepository) UpdateBreedingEvent(ctx context.Context, event *models.BreedingEvent) error {
	query := `
		UPDATE breeding_events SET
			male_animal_id = $1, female_animal_id = $2, method = $3,
			breeding_date = $4, expected_kidding_date = $5,
			actual_kidding_date = $6, stud_fee_cents = $7, notes = $8,
			updated_at = $9
		WHERE id = $10
	`

	event.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		event.MaleAnimalID, event.FemaleAnimalID, event.Method,
		event.BreedingDate, event.ExpectedKiddingDate, event.ActualKiddingDate,
		event.StudFeeCents, event.Notes, event.UpdatedAt, event.ID)

	return err
}

func (r *PostgresRepository) DeleteBreedingEvent(ctx context.Context, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Offspring are never cascade-deleted; detach them instead
	res, err := tx.ExecContext(ctx,
		`UPDATE animals SET breeding_event_id = NULL, updated_at = $1 WHERE breeding_event_id = $2`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}

	detached, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM breeding_events WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}

	return int(detached), tx.Commit()
}

func (r *PostgresRepository) ListBreedingEvents(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.BreedingEvent, Page, map[string]int64, error) {
	offset := normalizePage(&filter)

	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND (b.notes ILIKE $1 OR EXISTS (
			SELECT 1 FROM animals a
			WHERE a.breeding_event_id = b.id AND a.ear_tag ILIKE $1
		))`
	}
	if filter.Method != "" {
		args = append(args, filter.Method)
		where += ` AND b.method = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM breeding_events b`+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	meta := map[string]int64{"total": total}
	var kidded int64
	if err := r.db.GetContext(ctx, &kidded,
		`SELECT COUNT(*) FROM breeding_events b`+where+` AND b.actual_kidding_date IS NOT NULL`,
		args...); err != nil {
		return nil, Page{}, nil, err
	}
	meta["kidded"] = kidded
	meta["pending"] = total - kidded

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT ` + breedingEventColumns + ` FROM breeding_events b` + where +
		` ORDER BY b.breeding_date DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	var events []models.BreedingEvent
	if err := r.db.SelectContext(ctx, &events, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return events, page, meta, nil
}

// Animal / offspring repository methods

func (r *PostgresRepository) CreateAnimal(ctx context.Context, animal *models.Animal) error {
	if animal.ID == "" {
		animal.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	animal.CreatedAt = now
	animal.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, insertAnimalQuery,
		animal.ID, animal.Name, animal.Species, animal.Breed, animal.Sex,
		animal.EarTag, animal.BirthDate, animal.WeightKg, animal.Markings,
		animal.BreedingEventID, animal.CreatedAt, animal.UpdatedAt)

	return err
}

const insertAnimalQuery = `
	INSERT INTO animals (
		id, name, species, breed, sex, ear_tag, birth_date, weight_kg,
		markings, breeding_event_id, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// CreateOffspringBatch inserts every animal in one transaction; a failure on
// any row rolls back the whole batch.
func (r *PostgresRepository) CreateOffspringBatch(ctx context.Context, animals []*models.Animal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	now := time.Now().UTC()
	for _, animal := range animals {
		if animal.ID == "" {
			animal.ID = uuid.New().String()
		}
		animal.CreatedAt = now
		animal.UpdatedAt = now

		_, err = tx.ExecContext(ctx, insertAnimalQuery,
			animal.ID, animal.Name, animal.Species, animal.Breed, animal.Sex,
			animal.EarTag, animal.BirthDate, animal.WeightKg, animal.Markings,
			animal.BreedingEventID, animal.CreatedAt, animal.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetAnimal(ctx context.Context, id string) (*models.Animal, error) {
	query := `SELECT * FROM animals WHERE id = $1`

	var animal models.Animal
	err := r.db.GetContext(ctx, &animal, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Animal not found
		}
		return nil, err
	}

	return &animal, nil
}

func (r *PostgresRepository) UpdateAnimal(ctx context.Context, animal *models.Animal) error {
	query := `
		UPDATE animals SET
			name = $1, species = $2, breed = $3, sex = $4, ear_tag = $5,
			birth_date = $6, weight_kg = $7, markings = $8, updated_at = $9
		WHERE id = $10
	`

	animal.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		animal.Name, animal.Species, animal.Breed, animal.Sex, animal.EarTag,
		animal.BirthDate, animal.WeightKg, animal.Markings, animal.UpdatedAt,
		animal.ID)

	return err
}

func (r *PostgresRepository) DeleteAnimal(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) ListOffspring(ctx context.Context, breedingEventID string) ([]models.Animal, error) {
	query := `SELECT * FROM animals WHERE breeding_event_id = $1 ORDER BY created_at ASC`

	var animals []models.Animal
	if err := r.db.SelectContext(ctx, &animals, query, breedingEventID); err != nil {
		return nil, err
	}

	return animals, nil
}

func (r *PostgresRepository) AddAnimalPhoto(ctx context.Context, photo *models.AnimalPhoto) error {
	query := `
		INSERT INTO animal_photos (
			id, animal_id, original_name, storage_path, content_type,
			size_bytes, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.AnimalID, photo.OriginalName, photo.StoragePath,
		photo.ContentType, photo.SizeBytes, photo.UploadedAt)

	return err
}

func (r *PostgresRepository) GetAnimalPhotos(ctx context.Context, animalID string) ([]models.AnimalPhoto, error) {
	query := `SELECT * FROM animal_photos WHERE animal_id = $1 ORDER BY uploaded_at ASC`

	var photos []models.AnimalPhoto
	if err := r.db.SelectContext(ctx, &photos, query, animalID); err != nil {
		return nil, err
	}

	return photos, nil
}

func (r *PostgresRepository) DeleteAnimalPhotosExcept(
	ctx context.Context,
	animalID string,
	keepIDs []string,
) ([]models.AnimalPhoto, error) {
	if keepIDs == nil {
		keepIDs = []string{}
	}

	var removed []models.AnimalPhoto
	query := `
		DELETE FROM animal_photos
		WHERE animal_id = $1 AND NOT (id = ANY($2))
		RETURNING *
	`
	if err := r.db.SelectContext(ctx, &removed, query, animalID, pq.Array(keepIDs)); err != nil {
		return nil, err
	}

	return removed, nil
}
