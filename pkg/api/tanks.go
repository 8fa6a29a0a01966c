package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

// GetTanks lists every tank
func (c *Client) GetTanks(ctx context.Context) ([]models.Tank, error) {
	var tanks []models.Tank
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/tanks", nil, &tanks); err != nil {
		return nil, err
	}
	return tanks, nil
}

// ActivateTanks registers the tanks and sets their active flags in one batch. Requires a token.
func (c *Client) ActivateTanks(ctx context.Context, changes []models.TankActivation) (*models.Result, error) {
	var result models.Result
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/tanks/activate", changes, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLastWeekSnapshot returns the values to prefill the tank's next entry with.
// A zero asOf means now.
func (c *Client) GetLastWeekSnapshot(ctx context.Context, tankID int64, asOf time.Time) (*models.SnapshotPrefill, error) {
	path := fmt.Sprintf("/api/v1/tanks/%d/last-week", tankID)
	if !asOf.IsZero() {
		path += "?" + url.Values{"as_of": {asOf.Format(time.RFC3339)}}.Encode()
	}

	var prefill models.SnapshotPrefill
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &prefill); err != nil {
		return nil, err
	}
	return &prefill, nil
}

// GetFishTypes lists every fish type
func (c *Client) GetFishTypes(ctx context.Context) ([]models.FishType, error) {
	var fishTypes []models.FishType
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/fish-types", nil, &fishTypes); err != nil {
		return nil, err
	}
	return fishTypes, nil
}

// CreateFishType adds a fish type, returning the existing id for a known name. Requires a token.
func (c *Client) CreateFishType(ctx context.Context, name string) (*models.Result, error) {
	var result models.Result
	body := map[string]string{"fish_type_name": name}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/fish-types", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
