package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

func (s *DefaultService) CreateFractionalAsset(ctx context.Context, req models.CreateFractionalAssetRequest) (*models.FractionalAsset, error) {
	if req.AnimalID != nil {
		animal, err := s.repo.GetAnimal(ctx, *req.AnimalID)
		if err != nil {
			return nil, fmt.Errorf("error getting animal: %w", err)
		}
		if animal == nil {
			return nil, fieldError("animal_id", "animal not found")
		}
	}

	asset := &models.FractionalAsset{
		ID:              uuid.New().String(),
		Name:            req.Name,
		AnimalID:        req.AnimalID,
		TotalShares:     req.TotalShares,
		SharePriceCents: req.SharePriceCents,
		Status:          models.AssetPending,
	}

	if err := s.repo.CreateFractionalAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("error creating fractional asset: %w", err)
	}
	return s.repo.GetFractionalAsset(ctx, asset.ID)
}

func (s *DefaultService) ListFractionalAssets(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.FractionalAsset], error) {
	assets, page, meta, err := s.repo.ListFractionalAssets(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing fractional assets: %w", err)
	}
	return paginated(assets, page, meta), nil
}

func (s *DefaultService) UpdateAssetStatus(ctx context.Context, id, status string) (*models.FractionalAsset, error) {
	asset, err := s.repo.GetFractionalAsset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting fractional asset: %w", err)
	}
	if asset == nil {
		return nil, notFound("fractional asset")
	}

	if err := s.repo.UpdateAssetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("error updating asset status: %w", err)
	}
	return s.repo.GetFractionalAsset(ctx, id)
}

// GenerateTags creates a batch of sequential tags for a country code
func (s *DefaultService) GenerateTags(ctx context.Context, req models.GenerateTagsRequest) ([]models.PreGeneratedTag, error) {
	countryCode := strings.ToUpper(req.CountryCode)

	tags, err := s.repo.GenerateTags(ctx, countryCode, req.Count)
	if err != nil {
		return nil, fmt.Errorf("error generating tags: %w", err)
	}

	s.log.Info("tags generated", map[string]interface{}{
		"country_code": countryCode,
		"count":        len(tags),
	})
	return tags, nil
}

func (s *DefaultService) ListTags(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.PreGeneratedTag], error) {
	tags, page, meta, err := s.repo.ListTags(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	return paginated(tags, page, meta), nil
}

// AssignTag binds an available tag to an animal. Any tag already on that
// animal is released back to needs_assignment by the repository.
func (s *DefaultService) AssignTag(ctx context.Context, tagID, animalID string) (*models.PreGeneratedTag, error) {
	tag, err := s.repo.GetTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("error getting tag: %w", err)
	}
	if tag == nil {
		return nil, notFound("tag")
	}
	if tag.Status == models.TagAssigned {
		return nil, conflict("tag %s is already assigned", tag.TagNumber)
	}

	animal, err := s.repo.GetAnimal(ctx, animalID)
	if err != nil {
		return nil, fmt.Errorf("error getting animal: %w", err)
	}
	if animal == nil {
		return nil, fieldError("animal_id", "animal not found")
	}

	if err := s.repo.AssignTag(ctx, tagID, animalID); err != nil {
		return nil, fmt.Errorf("error assigning tag: %w", err)
	}

	s.log.Info("tag assigned", map[string]interface{}{
		"tag_id":    tagID,
		"animal_id": animalID,
	})
	return s.repo.GetTag(ctx, tagID)
}

func (s *DefaultService) UnassignTag(ctx context.Context, tagID string) (*models.PreGeneratedTag, error) {
	tag, err := s.repo.GetTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("error getting tag: %w", err)
	}
	if tag == nil {
		return nil, notFound("tag")
	}
	if tag.Status != models.TagAssigned {
		return nil, conflict("tag %s is not assigned", tag.TagNumber)
	}

	if err := s.repo.UnassignTag(ctx, tagID); err != nil {
		return nil, fmt.Errorf("error unassigning tag: %w", err)
	}
	return s.repo.GetTag(ctx, tagID)
}

func (s *DefaultService) LinkTagAsset(ctx context.Context, tagID string, assetID *string) (*models.PreGeneratedTag, error) {
	tag, err := s.repo.GetTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("error getting tag: %w", err)
	}
	if tag == nil {
		return nil, notFound("tag")
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

	if err := s.repo.SetTagAsset(ctx, tagID, assetID); err != nil {
		return nil, fmt.Errorf("error linking tag asset: %w", err)
	}
	return s.repo.GetTag(ctx, tagID)
}
