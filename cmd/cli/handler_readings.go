package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

// getReadingsPageHandler returns one page of readings, newest first
// Query params:
//   - page: 1-based page number (default: 1)
//   - page_size: readings per page (default: PAGE_SIZE or 10, max: 1000)
//   - month: 1-12, requires year
//   - year: calendar year
func (rm *RouteManager) getReadingsPageHandler(w http.ResponseWriter, r *http.Request) {
	q, err := rm.parsePageQuery(r)
	if err != nil {
		writeQueryError(w, "list readings", err)
		return
	}

	readings, err := rm.dbManager.GetReadingsPage(r.Context(), q)
	if err != nil {
		writeQueryError(w, "list readings", err)
		return
	}

	totalPages, err := rm.dbManager.GetTotalPages(r.Context(), q)
	if err != nil {
		writeQueryError(w, "count readings", err)
		return
	}

	writeJSON(w, http.StatusOK, models.ReadingsPage{
		Data:       readings,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
		HasMore:    q.Page < totalPages,
	})
}

// getTotalPagesHandler returns the page count for the same filters as the listing
func (rm *RouteManager) getTotalPagesHandler(w http.ResponseWriter, r *http.Request) {
	q, err := rm.parsePageQuery(r)
	if err != nil {
		writeQueryError(w, "count readings", err)
		return
	}

	totalPages, err := rm.dbManager.GetTotalPages(r.Context(), q)
	if err != nil {
		writeQueryError(w, "count readings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"total_pages": totalPages})
}

// getReadingsByRangeHandler returns every reading between start and end inclusive.
// start and end accept RFC3339, 2006-01-02T15:04 or 2006-01-02; a bare end date
// covers that whole day.
func (rm *RouteManager) getReadingsByRangeHandler(w http.ResponseWriter, r *http.Request) {
	loc := rm.dbManager.Location()

	start, err := parseTimeParam(r.URL.Query().Get("start"), loc, false)
	if err != nil {
		writeQueryError(w, "list readings", fmt.Errorf("%w: start: %v", database.ErrInvalidInput, err))
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"), loc, true)
	if err != nil {
		writeQueryError(w, "list readings", fmt.Errorf("%w: end: %v", database.ErrInvalidInput, err))
		return
	}

	readings, err := rm.dbManager.GetReadingsByDateRange(r.Context(), models.DateRangeQuery{
		Start: start,
		End:   end,
		Order: r.URL.Query().Get("order"),
	})
	if err != nil {
		writeQueryError(w, "list readings", err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

func (rm *RouteManager) getTodaysReadingsHandler(w http.ResponseWriter, r *http.Request) {
	readings, err := rm.dbManager.GetTodaysReadings(r.Context())
	if err != nil {
		writeQueryError(w, "list today's readings", err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func (rm *RouteManager) getFirstRecordYearHandler(w http.ResponseWriter, r *http.Request) {
	year, err := rm.dbManager.GetFirstRecordYear(r.Context())
	if err != nil {
		writeQueryError(w, "find first record year", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"year": year})
}

func (rm *RouteManager) getReadingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid reading id")
		return
	}

	reading, err := rm.dbManager.GetReadingByID(r.Context(), id)
	if err != nil {
		writeQueryError(w, "load reading", err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (rm *RouteManager) createReadingHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.ReadingPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	writeResult(w, http.StatusCreated, rm.dbManager.InsertReading(r.Context(), payload))
}

func (rm *RouteManager) updateReadingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid reading id")
		return
	}

	var payload models.ReadingPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	writeResult(w, http.StatusOK, rm.dbManager.EditReading(r.Context(), id, payload))
}

func (rm *RouteManager) deleteReadingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid reading id")
		return
	}

	writeResult(w, http.StatusOK, rm.dbManager.DeleteReading(r.Context(), id))
}

// parsePageQuery reads page, page_size, month and year
func (rm *RouteManager) parsePageQuery(r *http.Request) (models.PageQuery, error) {
	q := models.PageQuery{Page: 1, PageSize: rm.pageSize}

	fields := []struct {
		name string
		dest *int
	}{
		{"page", &q.Page},
		{"page_size", &q.PageSize},
		{"month", &q.Month},
		{"year", &q.Year},
	}

	for _, f := range fields {
		raw := strings.TrimSpace(r.URL.Query().Get(f.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s must be a whole number", database.ErrInvalidInput, f.name)
		}
		*f.dest = n
	}

	return q, nil
}

var timeParamLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// parseTimeParam parses a query time in loc. With endOfDay a bare date means its last second.
func parseTimeParam(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}

	for _, layout := range timeParamLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" && endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Second)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}
