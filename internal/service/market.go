package service

import (
	"context"
	"fmt"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

func (s *DefaultService) ListListings(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.Listing], error) {
	listings, page, meta, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing listings: %w", err)
	}
	return paginated(listings, page, meta), nil
}

// RemoveListing takes an active listing off the marketplace. Sold or already
// removed listings cannot be removed again.
func (s *DefaultService) RemoveListing(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting listing: %w", err)
	}
	if listing == nil {
		return nil, notFound("listing")
	}
	if listing.Status != models.ListingActive {
		return nil, conflict("only active listings can be removed, this one is %s", listing.Status)
	}

	if err := s.repo.UpdateListingStatus(ctx, id, models.ListingRemoved); err != nil {
		return nil, fmt.Errorf("error removing listing: %w", err)
	}

	s.log.Info("listing removed", map[string]interface{}{"listing_id": id})
	return s.repo.GetListing(ctx, id)
}

func (s *DefaultService) ListPayouts(ctx context.Context, filter models.ListFilter) (*models.Paginated[models.Payout], error) {
	payouts, page, meta, err := s.repo.ListPayouts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing payouts: %w", err)
	}
	return paginated(payouts, page, meta), nil
}

// ApprovePayout marks a pending payout paid and records who approved it
func (s *DefaultService) ApprovePayout(ctx context.Context, payoutID, approverID string) (*models.Payout, error) {
	payout, err := s.repo.GetPayout(ctx, payoutID)
	if err != nil {
		return nil, fmt.Errorf("error getting payout: %w", err)
	}
	if payout == nil {
		return nil, notFound("payout")
	}
	if payout.Status != models.PayoutPending {
		return nil, conflict("only pending payouts can be approved, this one is %s", payout.Status)
	}

	if err := s.repo.ApprovePayout(ctx, payoutID, approverID); err != nil {
		return nil, fmt.Errorf("error approving payout: %w", err)
	}

	s.log.Info("payout approved", map[string]interface{}{
		"payout_id":   payoutID,
		"approved_by": approverID,
	})
	return s.repo.GetPayout(ctx, payoutID)
}
