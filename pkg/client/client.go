// Package client is a typed client for the admin API. Beyond plain request
// plumbing it carries the screen-side state the admin UI needs: draft
// collection editing, debounced search, and a notification queue.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

// APIError is a non-2xx response decoded into a usable shape. Fields is
// populated for field-keyed validation failures.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed (%d fields)", len(e.Fields))
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to the admin API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	notifier   *Notifier
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNotifier injects the notification bus mutations publish to
func WithNotifier(n *Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// New creates a Client for the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notifier returns the injected notification bus, or nil
func (c *Client) Notifier() *Notifier {
	return c.notifier
}

// notify publishes exactly one notification for a finished mutation
func (c *Client) notify(err error, successMsg string) {
	if c.notifier == nil {
		return
	}
	if err != nil {
		c.notifier.Publish(LevelError, "Something went wrong. Please try again.")
		return
	}
	c.notifier.Publish(LevelSuccess, successMsg)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// FilePart is one binary attachment for a multipart request
type FilePart struct {
	Field   string
	Name    string
	Content []byte
}

func (c *Client) doMultipart(ctx context.Context, path string, fields url.Values, files []FilePart, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for field, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(field, v); err != nil {
				return err
			}
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Content); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, out)
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var verr models.ValidationErrorResponse
	if err := json.Unmarshal(raw, &verr); err == nil && len(verr.Errors) > 0 {
		apiErr.Fields = verr.Errors
		return apiErr
	}

	var eresp models.ErrorResponse
	if err := json.Unmarshal(raw, &eresp); err == nil {
		apiErr.Code = eresp.Code
		apiErr.Message = eresp.Message
	}
	return apiErr
}

// Breeding event operations

func (c *Client) ListBreedingEvents(ctx context.Context, query url.Values) (*models.Paginated[models.BreedingEvent], error) {
	path := "/api/admin/breeding-events"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page models.Paginated[models.BreedingEvent]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetBreedingEvent(ctx context.Context, id string) (*models.BreedingEventDetail, error) {
	var detail models.BreedingEventDetail
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/breeding-events/"+id, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) DeleteBreedingEvent(ctx context.Context, id string) (*models.DeleteBreedingEventResponse, error) {
	var resp models.DeleteBreedingEventResponse
	err := c.doJSON(ctx, http.MethodDelete, "/api/admin/breeding-events/"+id, nil, &resp)
	c.notify(err, "Breeding event deleted.")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateOffspringBatch(ctx context.Context, eventID string, rows []models.OffspringDraft) error {
	err := c.doJSON(ctx, http.MethodPost,
		"/api/admin/breeding-events/"+eventID+"/offspring/batch",
		models.BatchOffspringRequest{Offspring: rows}, nil)
	c.notify(err, "Offspring added.")
	return err
}

func (c *Client) CreateOffspring(ctx context.Context, eventID string, draft models.OffspringDraft, photos []FilePart) (*models.AnimalWithPhotos, error) {
	var created models.AnimalWithPhotos
	err := c.doMultipart(ctx,
		"/api/admin/breeding-events/"+eventID+"/offspring",
		draftFields(draft, nil), photos, &created)
	c.notify(err, "Offspring added.")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateOffspring(ctx context.Context, animalID string, draft models.OffspringDraft, photos []FilePart, keepPhotoIDs []string) (*models.AnimalWithPhotos, error) {
	fields := draftFields(draft, keepPhotoIDs)
	fields.Set("_method", "PUT")

	var updated models.AnimalWithPhotos
	err := c.doMultipart(ctx, "/api/admin/offspring/"+animalID, fields, photos, &updated)
	c.notify(err, "Offspring updated.")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteOffspring(ctx context.Context, animalID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/admin/offspring/"+animalID, nil, nil)
	c.notify(err, "Offspring deleted.")
	return err
}

// Profile operations

func (c *Client) RejectProfile(ctx context.Context, side models.ProfileSide, id, reason string) (*models.Profile, error) {
	var profile models.Profile
	err := c.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/api/admin/%s-profiles/%s/reject", side, id),
		models.RejectRequest{Reason: reason}, &profile)
	c.notify(err, "Profile rejected.")
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) VerifyProfile(ctx context.Context, side models.ProfileSide, id string) (*models.Profile, error) {
	var profile models.Profile
	err := c.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/api/admin/%s-profiles/%s/verify", side, id), nil, &profile)
	c.notify(err, "Profile verified.")
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) LinkProfileAsset(ctx context.Context, side models.ProfileSide, id string, assetID *string) (*models.ProfileDetail, error) {
	var detail models.ProfileDetail
	err := c.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("/api/admin/%s-profiles/%s/fractional-asset", side, id),
		models.LinkAssetRequest{FractionalAssetID: assetID}, &detail)
	c.notify(err, "Asset link updated.")
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// draftFields flattens an offspring draft into multipart form fields
func draftFields(draft models.OffspringDraft, keepPhotoIDs []string) url.Values {
	fields := url.Values{}
	fields.Set("name", draft.Name)
	fields.Set("species", draft.Species)
	fields.Set("breed", draft.Breed)
	fields.Set("sex", draft.Sex)
	fields.Set("ear_tag", draft.EarTag)
	fields.Set("birth_date", draft.BirthDate)
	fields.Set("markings", draft.Markings)
	if draft.WeightKg != nil {
		fields.Set("weight_kg", fmt.Sprintf("%g", *draft.WeightKg))
	}
	for _, id := range keepPhotoIDs {
		fields.Add("existing_photo_ids[]", id)
	}
	return fields
}
