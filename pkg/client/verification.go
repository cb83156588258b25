package client

import (
	"context"
	"errors"
	"strings"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

// ErrReasonRequired is returned when a rejection is submitted without a
// usable reason
var ErrReasonRequired = errors.New("a rejection reason is required")

// RejectForm is the confirmation dialog state for rejecting a profile. The
// submit control stays disabled until a non-whitespace reason is entered,
// so no request is ever issued with an empty reason.
type RejectForm struct {
	client    *Client
	side      models.ProfileSide
	profileID string

	Reason     string
	processing bool
}

// NewRejectForm creates the dialog state for one profile
func NewRejectForm(c *Client, side models.ProfileSide, profileID string) *RejectForm {
	return &RejectForm{client: c, side: side, profileID: profileID}
}

// CanSubmit reports whether the reject button is enabled
func (f *RejectForm) CanSubmit() bool {
	return strings.TrimSpace(f.Reason) != "" && !f.processing
}

// Submit issues the reject request. It refuses locally, without a network
// call, when the reason is empty or whitespace.
func (f *RejectForm) Submit(ctx context.Context) (*models.Profile, error) {
	if strings.TrimSpace(f.Reason) == "" {
		return nil, ErrReasonRequired
	}
	if f.processing {
		return nil, ErrBusy
	}
	f.processing = true
	defer func() { f.processing = false }()

	return f.client.RejectProfile(ctx, f.side, f.profileID, f.Reason)
}

// NoAssetSentinel is the dropdown option meaning "no linked asset"
const NoAssetSentinel = "none"

// AssetLinkPicker is the dropdown state for linking a fractional asset to a
// profile. The "none" sentinel is translated to an explicit null on the
// wire; it is never sent as a literal string.
type AssetLinkPicker struct {
	client    *Client
	side      models.ProfileSide
	profileID string

	// Selected is the chosen option: an asset id or NoAssetSentinel
	Selected   string
	processing bool
}

// NewAssetLinkPicker creates the picker for one profile, defaulting to the
// profile's current link
func NewAssetLinkPicker(c *Client, side models.ProfileSide, profile models.Profile) *AssetLinkPicker {
	p := &AssetLinkPicker{
		client:    c,
		side:      side,
		profileID: profile.ID,
		Selected:  NoAssetSentinel,
	}
	if profile.FractionalAssetID != nil {
		p.Selected = *profile.FractionalAssetID
	}
	return p
}

// Submit sends the selection. The sentinel becomes a null asset id.
func (p *AssetLinkPicker) Submit(ctx context.Context) (*models.ProfileDetail, error) {
	if p.processing {
		return nil, ErrBusy
	}
	p.processing = true
	defer func() { p.processing = false }()

	var assetID *string
	if p.Selected != NoAssetSentinel && p.Selected != "" {
		id := p.Selected
		assetID = &id
	}
	return p.client.LinkProfileAsset(ctx, p.side, p.profileID, assetID)
}
