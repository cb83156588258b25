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

func profileTable(side models.ProfileSide) string {
	if side == models.SellerSide {
		return "seller_profiles"
	}
	return "buyer_profiles"
}

func (r *PostgresRepository) CreateProfile(ctx context.Context, side models.ProfileSide, profile *models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, user_id, farm_name, business_name, country_code, phone,
			verification_status, rejection_reason, fractional_asset_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, profileTable(side))

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.VerificationStatus == "" {
		profile.VerificationStatus = models.VerificationPending
	}

	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.UserID, profile.FarmName, profile.BusinessName,
		profile.CountryCode, profile.Phone, profile.VerificationStatus,
		profile.RejectionReason, profile.FractionalAssetID,
		profile.CreatedAt, profile.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetProfile(ctx context.Context, side models.ProfileSide, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, profileTable(side))

	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Profile not found
		}
		return nil, err
	}

	return &profile, nil
}

func (r *PostgresRepository) ListProfiles(
	ctx context.Context,
	side models.ProfileSide,
	filter models.ListFilter,
) ([]models.Profile, Page, map[string]int64, error) {
	offset := normalizePage(&filter)
	table := profileTable(side)

	// The status filter is kept out of the aggregate scope so meta reflects
	// the whole searched set regardless of the selected status tab.
	base := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := strconv.Itoa(len(args))
		base += ` AND (farm_name ILIKE $` + p + ` OR business_name ILIKE $` + p + `)`
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		base += ` AND country_code = $` + strconv.Itoa(len(args))
	}

	meta := map[string]int64{}
	type statusCount struct {
		Status string `db:"verification_status"`
		Count  int64  `db:"count"`
	}
	var counts []statusCount
	if err := r.db.SelectContext(ctx, &counts,
		`SELECT verification_status, COUNT(*) AS count FROM `+table+base+` GROUP BY verification_status`,
		args...); err != nil {
		return nil, Page{}, nil, err
	}
	var grandTotal int64
	for _, c := range counts {
		meta[c.Status] = c.Count
		grandTotal += c.Count
	}
	meta["total"] = grandTotal
	for _, s := range []string{models.VerificationPending, models.VerificationVerified, models.VerificationRejected} {
		if _, ok := meta[s]; !ok {
			meta[s] = 0
		}
	}

	where := base
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND verification_status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM `+table+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT * FROM ` + table + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return profiles, page, meta, nil
}

func (r *PostgresRepository) UpdateProfileVerification(
	ctx context.Context,
	side models.ProfileSide,
	id, status string,
	reason *string,
) error {
	query := fmt.Sprintf(`
		UPDATE %s SET verification_status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4
	`, profileTable(side))

	_, err := r.db.ExecContext(ctx, query, status, reason, time.Now().UTC(), id)
	return err
}

func (r *PostgresRepository) SetProfileAsset(
	ctx context.Context,
	side models.ProfileSide,
	id string,
	assetID *string,
) error {
	query := fmt.Sprintf(`
		UPDATE %s SET fractional_asset_id = $1, updated_at = $2 WHERE id = $3
	`, profileTable(side))

	_, err := r.db.ExecContext(ctx, query, assetID, time.Now().UTC(), id)
	return err
}
