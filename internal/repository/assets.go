package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

// Fractional asset repository methods

func (r *PostgresRepository) CreateFractionalAsset(ctx context.Context, asset *models.FractionalAsset) error {
	query := `
		INSERT INTO fractional_assets (
			id, name, animal_id, total_shares, sold_shares, share_price_cents,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	if asset.Status == "" {
		asset.Status = models.AssetPending
	}

	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.Name, asset.AnimalID, asset.TotalShares,
		asset.SoldShares, asset.SharePriceCents, asset.Status,
		asset.CreatedAt, asset.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetFractionalAsset(ctx context.Context, id string) (*models.FractionalAsset, error) {
	query := `SELECT * FROM fractional_assets WHERE id = $1`

	var asset models.FractionalAsset
	err := r.db.GetContext(ctx, &asset, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Asset not found
		}
		return nil, err
	}

	return &asset, nil
}

func (r *PostgresRepository) ListFractionalAssets(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.FractionalAsset, Page, map[string]int64, error) {
	offset := normalizePage(&filter)

	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND name ILIKE $1`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM fractional_assets`+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	meta := map[string]int64{"total": total}
	var soldOut int64
	if err := r.db.GetContext(ctx, &soldOut,
		`SELECT COUNT(*) FROM fractional_assets`+where+` AND sold_shares >= total_shares`,
		args...); err != nil {
		return nil, Page{}, nil, err
	}
	meta["fully_sold"] = soldOut

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT * FROM fractional_assets` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)

	var assets []models.FractionalAsset
	if err := r.db.SelectContext(ctx, &assets, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return assets, page, meta, nil
}

func (r *PostgresRepository) UpdateAssetStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE fractional_assets SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	return err
}

// Pre-generated tag repository methods

// GenerateTags reserves a contiguous block of sequence numbers for the country
// and inserts one tag per number, all in a single transaction.
func (r *PostgresRepository) GenerateTags(
	ctx context.Context,
	countryCode string,
	count int,
) ([]models.PreGeneratedTag, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Claim the block atomically via the per-country sequence row
	var lastSeq int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO tag_sequences (country_code, current_sequence)
		VALUES ($1, $2)
		ON CONFLICT (country_code)
		DO UPDATE SET current_sequence = tag_sequences.current_sequence + $2
		RETURNING current_sequence`,
		countryCode, int64(count)).Scan(&lastSeq)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tags := make([]models.PreGeneratedTag, 0, count)
	firstSeq := lastSeq - int64(count) + 1

	for seq := firstSeq; seq <= lastSeq; seq++ {
		tag := models.PreGeneratedTag{
			ID:             uuid.New().String(),
			TagNumber:      fmt.Sprintf("%s%06d", countryCode, seq),
			CountryCode:    countryCode,
			SequenceNumber: seq,
			Status:         models.TagAvailable,
			GeneratedAt:    now,
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO pre_generated_tags (
				id, tag_number, country_code, sequence_number, status,
				animal_id, fractional_asset_id, generated_at
			) VALUES ($1, $2, $3, $4, $5, NULL, NULL, $6)`,
			tag.ID, tag.TagNumber, tag.CountryCode, tag.SequenceNumber,
			tag.Status, tag.GeneratedAt)
		if err != nil {
			return nil, err
		}

		tags = append(tags, tag)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresRepository) GetTag(ctx context.Context, id string) (*models.PreGeneratedTag, error) {
	query := `SELECT * FROM pre_generated_tags WHERE id = $1`

	var tag models.PreGeneratedTag
	err := r.db.GetContext(ctx, &tag, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Tag not found
		}
		return nil, err
	}

	return &tag, nil
}

func (r *PostgresRepository) ListTags(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.PreGeneratedTag, Page, map[string]int64, error) {
	offset := normalizePage(&filter)

	base := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, filter.Search+"%")
		base += ` AND tag_number ILIKE $1`
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		base += ` AND country_code = $` + strconv.Itoa(len(args))
	}

	meta := map[string]int64{}
	type statusCount struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	var counts []statusCount
	if err := r.db.SelectContext(ctx, &counts,
		`SELECT status, COUNT(*) AS count FROM pre_generated_tags`+base+` GROUP BY status`,
		args...); err != nil {
		return nil, Page{}, nil, err
	}
	var grandTotal int64
	for _, c := range counts {
		meta[c.Status] = c.Count
		grandTotal += c.Count
	}
	meta["total"] = grandTotal
	for _, s := range []string{models.TagAvailable, models.TagAssigned, models.TagNeedsAssignment} {
		if _, ok := meta[s]; !ok {
			meta[s] = 0
		}
	}

	where := base
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM pre_generated_tags`+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT * FROM pre_generated_tags` + where +
		` ORDER BY country_code ASC, sequence_number ASC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)

	var tags []models.PreGeneratedTag
	if err := r.db.SelectContext(ctx, &tags, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return tags, page, meta, nil
}

// AssignTag links a tag to an animal. Any tag the animal already carries is
// released to needs_assignment in the same transaction.
func (r *PostgresRepository) AssignTag(ctx context.Context, tagID, animalID string) error {
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

	_, err = tx.ExecContext(ctx,
		`UPDATE pre_generated_tags SET status = $1, animal_id = NULL
		WHERE animal_id = $2 AND id != $3`,
		models.TagNeedsAssignment, animalID, tagID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE pre_generated_tags SET status = $1, animal_id = $2 WHERE id = $3`,
		models.TagAssigned, animalID, tagID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) UnassignTag(ctx context.Context, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pre_generated_tags SET status = $1, animal_id = NULL WHERE id = $2`,
		models.TagAvailable, tagID)
	return err
}

func (r *PostgresRepository) SetTagAsset(ctx context.Context, tagID string, assetID *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pre_generated_tags SET fractional_asset_id = $1 WHERE id = $2`,
		assetID, tagID)
	return err
}
