package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

// Listing repository methods

func (r *PostgresRepository) CreateListing(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (
			id, animal_id, seller_profile_id, price_cents, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if listing.Status == "" {
		listing.Status = models.ListingActive
	}

	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		listing.ID, listing.AnimalID, listing.SellerProfileID,
		listing.PriceCents, listing.Status, listing.CreatedAt, listing.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT * FROM listings WHERE id = $1`

	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Listing not found
		}
		return nil, err
	}

	return &listing, nil
}

func (r *PostgresRepository) ListListings(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.Listing, Page, map[string]int64, error) {
	offset := normalizePage(&filter)

	base := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		base += ` AND animal_id IN (SELECT id FROM animals WHERE name ILIKE $1 OR ear_tag ILIKE $1)`
	}

	meta := map[string]int64{}
	type statusCount struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	var counts []statusCount
	if err := r.db.SelectContext(ctx, &counts,
		`SELECT status, COUNT(*) AS count FROM listings`+base+` GROUP BY status`,
		args...); err != nil {
		return nil, Page{}, nil, err
	}
	var grandTotal int64
	for _, c := range counts {
		meta[c.Status] = c.Count
		grandTotal += c.Count
	}
	meta["total"] = grandTotal
	for _, s := range []string{models.ListingActive, models.ListingSold, models.ListingRemoved} {
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
		`SELECT COUNT(*) FROM listings`+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT * FROM listings` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)

	var listings []models.Listing
	if err := r.db.SelectContext(ctx, &listings, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return listings, page, meta, nil
}

func (r *PostgresRepository) UpdateListingStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	return err
}

// Payout repository methods

func (r *PostgresRepository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	query := `
		INSERT INTO payouts (
			id, user_id, amount_cents, currency, payee_details, status,
			approved_by, approved_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if payout.ID == "" {
		payout.ID = uuid.New().String()
	}
	if payout.Status == "" {
		payout.Status = models.PayoutPending
	}
	payout.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		payout.ID, payout.UserID, payout.AmountCents, payout.Currency,
		payout.PayeeDetails, payout.Status, payout.ApprovedBy,
		payout.ApprovedAt, payout.CreatedAt)

	return err
}

func (r *PostgresRepository) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	query := `SELECT * FROM payouts WHERE id = $1`

	var payout models.Payout
	err := r.db.GetContext(ctx, &payout, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Payout not found
		}
		return nil, err
	}

	return &payout, nil
}

func (r *PostgresRepository) ListPayouts(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.Payout, Page, map[string]int64, error) {
	offset := normalizePage(&filter)

	base := ` WHERE 1=1`
	args := []interface{}{}

	meta := map[string]int64{}
	type statusAgg struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
		Amount int64  `db:"amount"`
	}
	var aggs []statusAgg
	if err := r.db.SelectContext(ctx, &aggs,
		`SELECT status, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS amount
		FROM payouts`+base+` GROUP BY status`, args...); err != nil {
		return nil, Page{}, nil, err
	}
	var grandTotal int64
	for _, a := range aggs {
		meta[a.Status] = a.Count
		grandTotal += a.Count
		if a.Status == models.PayoutPending {
			meta["pending_amount_cents"] = a.Amount
		}
	}
	meta["total"] = grandTotal
	for _, s := range []string{models.PayoutPending, models.PayoutPaid, models.PayoutFailed, models.PayoutCancelled} {
		if _, ok := meta[s]; !ok {
			meta[s] = 0
		}
	}
	if _, ok := meta["pending_amount_cents"]; !ok {
		meta["pending_amount_cents"] = 0
	}

	where := base
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM payouts`+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT * FROM payouts` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)

	var payouts []models.Payout
	if err := r.db.SelectContext(ctx, &payouts, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return payouts, page, meta, nil
}

func (r *PostgresRepository) ApprovePayout(ctx context.Context, id, approverID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payouts SET status = $1, approved_by = $2, approved_at = $3 WHERE id = $4`,
		models.PayoutPaid, approverID, time.Now().UTC(), id)
	return err
}
