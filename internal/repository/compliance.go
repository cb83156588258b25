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

func (r *PostgresRepository) CreateComplianceApplication(
	ctx context.Context,
	app *models.ComplianceApplication,
	attachments []*models.ComplianceAttachment,
) error {
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

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.PaymentStatus == "" {
		app.PaymentStatus = models.PaymentUnpaid
	}
	if app.ReviewStatus == "" {
		app.ReviewStatus = models.ReviewSubmitted
	}

	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO compliance_applications (
			id, organization_name, contact_email, assistance_types,
			payment_status, review_status, rejection_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.OrganizationName, app.ContactEmail, app.AssistanceTypes,
		app.PaymentStatus, app.ReviewStatus, app.RejectionReason,
		app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return err
	}

	for _, att := range attachments {
		if att.ID == "" {
			att.ID = uuid.New().String()
		}
		att.ApplicationID = app.ID
		if att.UploadedAt.IsZero() {
			att.UploadedAt = now
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO compliance_attachments (
				id, application_id, original_name, storage_path, content_type,
				size_bytes, uploaded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			att.ID, att.ApplicationID, att.OriginalName, att.StoragePath,
			att.ContentType, att.SizeBytes, att.UploadedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetComplianceApplication(ctx context.Context, id string) (*models.ComplianceApplication, error) {
	query := `SELECT * FROM compliance_applications WHERE id = $1`

	var app models.ComplianceApplication
	err := r.db.GetContext(ctx, &app, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Application not found
		}
		return nil, err
	}

	return &app, nil
}

func (r *PostgresRepository) GetComplianceAttachments(ctx context.Context, applicationID string) ([]models.ComplianceAttachment, error) {
	query := `SELECT * FROM compliance_attachments WHERE application_id = $1 ORDER BY uploaded_at ASC`

	var attachments []models.ComplianceAttachment
	if err := r.db.SelectContext(ctx, &attachments, query, applicationID); err != nil {
		return nil, err
	}

	return attachments, nil
}

func (r *PostgresRepository) FindActiveComplianceApplication(
	ctx context.Context,
	organizationName string,
) (*models.ComplianceApplication, error) {
	query := `
		SELECT * FROM compliance_applications
		WHERE organization_name = $1 AND review_status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var app models.ComplianceApplication
	err := r.db.GetContext(ctx, &app, query,
		organizationName, models.ReviewSubmitted, models.ReviewUnderReview)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No in-flight application
		}
		return nil, err
	}

	return &app, nil
}

func (r *PostgresRepository) ListComplianceApplications(
	ctx context.Context,
	filter models.ListFilter,
) ([]models.ComplianceApplication, Page, map[string]int64, error) {
	offset := normalizePage(&filter)

	base := ` WHERE 1=1`
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		base += ` AND (organization_name ILIKE $1 OR contact_email ILIKE $1)`
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		base += ` AND payment_status = $` + strconv.Itoa(len(args))
	}

	meta := map[string]int64{}
	type statusCount struct {
		Status string `db:"review_status"`
		Count  int64  `db:"count"`
	}
	var counts []statusCount
	if err := r.db.SelectContext(ctx, &counts,
		`SELECT review_status, COUNT(*) AS count FROM compliance_applications`+base+` GROUP BY review_status`,
		args...); err != nil {
		return nil, Page{}, nil, err
	}
	var grandTotal int64
	for _, c := range counts {
		meta[c.Status] = c.Count
		grandTotal += c.Count
	}
	meta["total"] = grandTotal
	for _, s := range []string{models.ReviewSubmitted, models.ReviewUnderReview, models.ReviewApproved, models.ReviewRejected} {
		if _, ok := meta[s]; !ok {
			meta[s] = 0
		}
	}

	where := base
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND review_status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM compliance_applications`+where, args...); err != nil {
		return nil, Page{}, nil, err
	}

	listArgs := append(args, filter.PerPage, offset)
	query := `SELECT * FROM compliance_applications` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)

	var apps []models.ComplianceApplication
	if err := r.db.SelectContext(ctx, &apps, query, listArgs...); err != nil {
		return nil, Page{}, nil, err
	}

	page := Page{Total: total, CurrentPage: filter.Page, LastPage: lastPage(total, filter.PerPage)}
	return apps, page, meta, nil
}

func (r *PostgresRepository) ReviewComplianceApplication(ctx context.Context, id, status string, reason *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE compliance_applications SET review_status = $1, rejection_reason = $2, updated_at = $3 WHERE id = $4`,
		status, reason, time.Now().UTC(), id)
	return err
}
