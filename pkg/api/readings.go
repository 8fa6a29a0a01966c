package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

// InsertReading logs a reading with its tank entries
func (c *Client) InsertReading(ctx context.Context, payload models.ReadingPayload) (*models.Result, error) {
	var result models.Result
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/readings", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditReading replaces a reading and its tank entries. Requires a token.
func (c *Client) EditReading(ctx context.Context, id int64, payload models.ReadingPayload) (*models.Result, error) {
	var result models.Result
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/v1/readings/%d", id), payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteReading removes a reading and its tank entries. Requires a token.
func (c *Client) DeleteReading(ctx context.Context, id int64) (*models.Result, error) {
	var result models.Result
	if err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/readings/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetReading retrieves one reading with its tank snapshots
func (c *Client) GetReading(ctx context.Context, id int64) (*models.Reading, error) {
	var reading models.Reading
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/readings/%d", id), nil, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// GetReadingsPage retrieves one page of readings, newest first
func (c *Client) GetReadingsPage(ctx context.Context, q models.PageQuery) (*models.ReadingsPage, error) {
	var page models.ReadingsPage
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/readings?"+pageParams(q).Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTotalPages returns the number of pages for the filter
func (c *Client) GetTotalPages(ctx context.Context, q models.PageQuery) (int, error) {
	var body struct {
		TotalPages int `json:"total_pages"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/readings/pages?"+pageParams(q).Encode(), nil, &body); err != nil {
		return 0, err
	}
	return body.TotalPages, nil
}

// GetReadingsByDateRange retrieves every reading between start and end inclusive
func (c *Client) GetReadingsByDateRange(ctx context.Context, start, end time.Time, order string) ([]models.Reading, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))
	if order != "" {
		params.Set("order", order)
	}

	var readings []models.Reading
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/readings/range?"+params.Encode(), nil, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// GetTodaysReadings retrieves the readings logged since midnight
func (c *Client) GetTodaysReadings(ctx context.Context) ([]models.Reading, error) {
	var readings []models.Reading
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/readings/today", nil, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// GetFirstRecordYear returns the year of the oldest reading
func (c *Client) GetFirstRecordYear(ctx context.Context) (int, error) {
	var body struct {
		Year int `json:"year"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/readings/first-year", nil, &body); err != nil {
		return 0, err
	}
	return body.Year, nil
}

func pageParams(q models.PageQuery) url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Month > 0 {
		params.Set("month", strconv.Itoa(q.Month))
	}
	if q.Year > 0 {
		params.Set("year", strconv.Itoa(q.Year))
	}
	return params
}
