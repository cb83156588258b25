package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
	"github.com/tmutasa/herdmarket-server/internal/storage"
)

// SubmitComplianceApplication validates and stores a new application with
// its uploaded documents. An organization may have only one application in
// flight at a time.
func (s *DefaultService) SubmitComplianceApplication(ctx context.Context, req models.ComplianceIntakeRequest, documents []storage.Upload) (*models.ComplianceApplicationDetail, error) {
	fields := map[string][]string{}

	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		fields["organization_name"] = []string{"is required"}
	}
	email := strings.TrimSpace(req.ContactEmail)
	if email == "" {
		fields["contact_email"] = []string{"is required"}
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["contact_email"] = []string{"must be a valid email address"}
	}
	if len(req.AssistanceTypes) == 0 {
		fields["assistance_types"] = []string{"select at least one assistance type"}
	} else {
		for _, t := range req.AssistanceTypes {
			if !validAssistanceType(t) {
				fields["assistance_types"] = append(fields["assistance_types"],
					fmt.Sprintf("%q is not a recognized assistance type", t))
			}
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	active, err := s.repo.FindActiveComplianceApplication(ctx, orgName)
	if err != nil {
		return nil, fmt.Errorf("error checking active applications: %w", err)
	}
	if active != nil {
		return nil, conflict("organization already has application %s in review", active.ID)
	}

	app := &models.ComplianceApplication{
		ID:               uuid.New().String(),
		OrganizationName: orgName,
		ContactEmail:     email,
		AssistanceTypes:  strings.Join(req.AssistanceTypes, ","),
		PaymentStatus:    models.PaymentUnpaid,
		ReviewStatus:     models.ReviewSubmitted,
	}

	saved := make([]*storage.Saved, 0, len(documents))
	attachments := make([]*models.ComplianceAttachment, 0, len(documents))
	for _, up := range documents {
		sv, err := s.store.Save("documents", app.ID, up)
		if err != nil {
			s.removeSaved(saved)
			return nil, fieldError("documents", err.Error())
		}
		saved = append(saved, sv)
		attachments = append(attachments, &models.ComplianceAttachment{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			OriginalName:  up.OriginalName,
			StoragePath:   sv.Path,
			ContentType:   up.ContentType,
			SizeBytes:     sv.SizeBytes,
		})
	}

	if err := s.repo.CreateComplianceApplication(ctx, app, attachments); err != nil {
		s.removeSaved(saved)
		return nil, fmt.Errorf("error creating compliance application: %w", err)
	}

	s.log.Info("compliance application submitted", map[string]interface{}{
		"application_id": app.ID,
		"attachments":    len(attachments),
	})
	return s.GetComplianceApplicationDetail(ctx, app.ID)
}

func validAssistanceType(t string) bool {
	for _, known := range models.AssistanceTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (s *DefaultService) ListComplianceApplications(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.ComplianceApplication], error) {
	apps, page, meta, err := s.repo.ListComplianceApplications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing compliance applications: %w", err)
	}
	return paginated(apps, page, meta), nil
}

func (s *DefaultService) GetComplianceApplicationDetail(ctx context.Context, id string) (*models.ComplianceApplicationDetail, error) {
	app, err := s.repo.GetComplianceApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting compliance application: %w", err)
	}
	if app == nil {
		return nil, notFound("compliance application")
	}

	attachments, err := s.repo.GetComplianceAttachments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting attachments: %w", err)
	}
	if attachments == nil {
		attachments = []models.ComplianceAttachment{}
	}
	return &models.ComplianceApplicationDetail{
		ComplianceApplication: *app,
		Attachments:           attachments,
	}, nil
}

// ReviewComplianceApplication approves or rejects a submitted or
// under_review application. Rejections need a non-whitespace reason.
func (s *DefaultService) ReviewComplianceApplication(ctx context.Context, id string, req models.ReviewComplianceRequest) (*models.ComplianceApplication, error) {
	app, err := s.repo.GetComplianceApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting compliance application: %w", err)
	}
	if app == nil {
		return nil, notFound("compliance application")
	}
	if app.ReviewStatus != models.ReviewSubmitted && app.ReviewStatus != models.ReviewUnderReview {
		return nil, conflict("application is already %s", app.ReviewStatus)
	}

	var status string
	var reason *string
	switch req.Decision {
	case "approved":
		status = models.ReviewApproved
	case "rejected":
		trimmed := strings.TrimSpace(req.Reason)
		if trimmed == "" {
			return nil, fieldError("reason", "a rejection reason is required")
		}
		status = models.ReviewRejected
		reason = &trimmed
	default:
		return nil, fieldError("decision", "must be approved or rejected")
	}

	if err := s.repo.ReviewComplianceApplication(ctx, id, status, reason); err != nil {
		return nil, fmt.Errorf("error reviewing application: %w", err)
	}

	s.log.Info("compliance application reviewed", map[string]interface{}{
		"application_id": id,
		"decision":       req.Decision,
	})
	return s.repo.GetComplianceApplication(ctx, id)
}
