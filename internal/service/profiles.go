package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

func (s *DefaultService) CreateProfile(ctx context.Context, side models.ProfileSide, req models.CreateProfileRequest) (*models.Profile, error) {
	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, fieldError("user_id", "user not found")
	}

	profile := &models.Profile{
		ID:                 uuid.New().String(),
		UserID:             req.UserID,
		FarmName:           req.FarmName,
		BusinessName:       req.BusinessName,
		CountryCode:        strings.ToUpper(req.CountryCode),
		Phone:              req.Phone,
		VerificationStatus: models.VerificationPending,
	}

	if err := s.repo.CreateProfile(ctx, side, profile); err != nil {
		return nil, fmt.Errorf("error creating %s profile: %w", side, err)
	}
	return s.repo.GetProfile(ctx, side, profile.ID)
}

func (s *DefaultService) ListProfiles(ctx context.Context, side models.ProfileSide, filter models.ListFilter) (*models.Paginated[models.Profile], error) {
	profiles, page, meta, err := s.repo.ListProfiles(ctx, side, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing %s profiles: %w", side, err)
	}
	return paginated(profiles, page, meta), nil
}

func (s *DefaultService) GetProfileDetail(ctx context.Context, side models.ProfileSide, id string) (*models.ProfileDetail, error) {
	profile, err := s.repo.GetProfile(ctx, side, id)
	if err != nil {
		return nil, fmt.Errorf("error getting %s profile: %w", side, err)
	}
	if profile == nil {
		return nil, notFound(fmt.Sprintf("%s profile", side))
	}

	detail := &models.ProfileDetail{Profile: *profile}
	if profile.FractionalAssetID != nil {
		asset, err := s.repo.GetFractionalAsset(ctx, *profile.FractionalAssetID)
		if err != nil {
			return nil, fmt.Errorf("error getting fractional asset: %w", err)
		}
		if asset != nil {
			detail.FractionalAsset = &models.AssetSummary{
				ID:          asset.ID,
				Name:        asset.Name,
				TotalShares: asset.TotalShares,
				SoldShares:  asset.SoldShares,
				Status:      asset.Status,
				ProgressPct: asset.ProgressPct(),
			}
		}
	}
	return detail, nil
}

// VerifyProfile moves a pending or rejected profile to verified and clears
// any previous rejection reason. Verifying twice is a conflict.
func (s *DefaultService) VerifyProfile(ctx context.Context, side models.ProfileSide, id string) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, side, id)
	if err != nil {
		return nil, fmt.Errorf("error getting %s profile: %w", side, err)
	}
	if profile == nil {
		return nil, notFound(fmt.Sprintf("%s profile", side))
	}
	if profile.VerificationStatus == models.VerificationVerified {
		return nil, conflict("profile is already verified")
	}

	if err := s.repo.UpdateProfileVerification(ctx, side, id, models.VerificationVerified, nil); err != nil {
		return nil, fmt.Errorf("error updating verification: %w", err)
	}

	s.log.Info("profile verified", map[string]interface{}{
		"side":       string(side),
		"profile_id": id,
	})
	return s.repo.GetProfile(ctx, side, id)
}

// RejectProfile requires a non-whitespace reason so the applicant always
// learns why.
func (s *DefaultService) RejectProfile(ctx context.Context, side models.ProfileSide, id, reason string) (*models.Profile, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fieldError("reason", "a rejection reason is required")
	}

	profile, err := s.repo.GetProfile(ctx, side, id)
	if err != nil {
		return nil, fmt.Errorf("error getting %s profile: %w", side, err)
	}
	if profile == nil {
		return nil, notFound(fmt.Sprintf("%s profile", side))
	}
	if profile.VerificationStatus == models.VerificationRejected {
		return nil, conflict("profile is already rejected")
	}

	if err := s.repo.UpdateProfileVerification(ctx, side, id, models.VerificationRejected, &reason); err != nil {
		return nil, fmt.Errorf("error updating verification: %w", err)
	}

	s.log.Info("profile rejected", map[string]interface{}{
		"side":       string(side),
		"profile_id": id,
	})
	return s.repo.GetProfile(ctx, side, id)
}

// LinkProfileAsset sets or clears the profile's fractional asset link. A nil
// assetID clears it.
func (s *DefaultService) LinkProfileAsset(ctx context.Context, side models.ProfileSide, id string, assetID *string) (*models.ProfileDetail, error) {
	profile, err := s.repo.GetProfile(ctx, side, id)
	if err != nil {
		return nil, fmt.Errorf("error getting %s profile: %w", side, err)
	}
	if profile == nil {
		return nil, notFound(fmt.Sprintf("%s profile", side))
	}

	if assetID != nil {
		asset, err := s.repo.GetFractionalAsset(ctx, *assetID)
		if err != nil {
			return nil, fmt.Errorf("error getting fractional asset: %w", err)
		}
		if asset == nil {
			return nil, fieldError("fractional_asset_id", "fractional asset not found")
		}
	}

	if err := s.repo.SetProfileAsset(ctx, side, id, assetID); err != nil {
		return nil, fmt.Errorf("error linking asset: %w", err)
	}
	return s.GetProfileDetail(ctx, side, id)
}
