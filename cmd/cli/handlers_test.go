package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	rm *RouteManager
	dm *database.DatabaseManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dm, err := database.NewDatabaseManager(database.Config{
		Driver:         database.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "api.db"),
		HealthInterval: time.Hour,
		Location:       time.UTC,
	})
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	require.NoError(t, dm.Init())

	_, err = dm.CreateUser(context.Background(), "admin", "hatchery")
	require.NoError(t, err)

	rm := NewRouteManager(dm, RouteConfig{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	rm.Setup()

	return &testServer{rm: rm, dm: dm}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.rm.Router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{Username: "admin", Password: "hatchery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const readingBody = `{
	"plant_reading": {
		"timestamp": "2025-05-01T08:00:00Z",
		"header_pressure_in_south": "12",
		"header_pressure_in_north": 14,
		"pump_1_active": 1,
		"water_temperature": "11.5",
		"generator_minutes": "15",
		"operator_name": "Sam"
	},
	"tanks": [
		{"tank_name": "T1", "fish_type_name": "Salmon", "number_of_fishes": "250", "flow": true, "food_size": "#1.5 MM"}
	]
}`

func createReading(t *testing.T, s *testServer) int64 {
	t.Helper()
	rec := s.do(t, "POST", "/api/v1/readings", "", readingBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[models.Result](t, rec)
	require.True(t, result.Success)
	require.Positive(t, result.ID)
	return result.ID
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := s.do(t, "GET", path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]string](t, rec)
		require.Equal(t, "ok", body["status"])
		require.Equal(t, database.DriverSQLite, body["store"])
	}

	s.dm.GetDB().Close()
	rec := s.do(t, "GET", "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateAndGetReading(t *testing.T) {
	s := newTestServer(t)
	id := createReading(t, s)

	rec := s.do(t, "GET", "/api/v1/readings/"+itoa(id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reading := decode[models.Reading](t, rec)
	require.Equal(t, id, reading.ID)
	require.Equal(t, "12 / 14", reading.HeaderPressureIn)
	require.True(t, bool(reading.Pump1Active))
	require.Equal(t, models.Number(11.5), reading.WaterTemperature)
	require.Len(t, reading.TankSnapshots, 1)
	require.Equal(t, "T1", reading.TankSnapshots[0].TankName)
	require.Equal(t, models.Count(250), reading.TankSnapshots[0].FishCount)
	require.Equal(t, models.FeedUnitLitres, reading.TankSnapshots[0].FeedUnit)
}

func TestGetReading_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/api/v1/readings/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[ErrorResponse](t, rec)
	require.Equal(t, models.ReasonNotFound, body.Reason)
}

func TestCreateReading_Validation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/api/v1/readings", "", `{"plant_reading": {}, "tanks": [{"tank_name": "T1"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	result := decode[models.Result](t, rec)
	require.False(t, result.Success)
	require.Equal(t, models.ReasonValidation, result.Reason)

	rec = s.do(t, "POST", "/api/v1/readings", "", `{"plant_reading": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "POST", "/api/v1/readings", "", `{"plant_reading": {"pump_1_active": "maybe"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, int64(0), mustCount(t, s, "readings"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	id := createReading(t, s)

	testCases := []struct {
		method string
		path   string
		token  string
	}{
		{"PUT", "/api/v1/readings/" + itoa(id), ""},
		{"DELETE", "/api/v1/readings/" + itoa(id), ""},
		{"DELETE", "/api/v1/readings/" + itoa(id), "not-a-token"},
		{"POST", "/api/v1/tanks", ""},
		{"POST", "/api/v1/fish-types", ""},
		{"GET", "/api/v1/auth/me", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.token, `{}`)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	require.Equal(t, int64(1), mustCount(t, s, "readings"))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.login(t)

	rec = s.do(t, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", decode[UserInfo](t, rec).Username)

	rec = s.do(t, "POST", "/api/v1/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode[LoginResponse](t, rec).Token)

	other := NewRouteManager(s.dm, RouteConfig{JWTSecret: "another-secret"})
	other.Setup()
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	other.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEditAndDeleteReading(t *testing.T) {
	s := newTestServer(t)
	id := createReading(t, s)
	token := s.login(t)

	edited := strings.Replace(readingBody, `"operator_name": "Sam"`, `"operator_name": "Alex"`, 1)
	edited = strings.Replace(edited, `"tank_name": "T1"`, `"tank_name": "T2"`, 1)

	rec := s.do(t, "PUT", "/api/v1/readings/"+itoa(id), token, edited)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, "GET", "/api/v1/readings/"+itoa(id), "", nil)
	reading := decode[models.Reading](t, rec)
	require.Equal(t, "Alex", reading.OperatorName)
	require.Len(t, reading.TankSnapshots, 1)
	require.Equal(t, "T2", reading.TankSnapshots[0].TankName)

	rec = s.do(t, "PUT", "/api/v1/readings/999", token, edited)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "DELETE", "/api/v1/readings/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[models.Result](t, rec).Success)

	rec = s.do(t, "GET", "/api/v1/readings/"+itoa(id), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, int64(0), mustCount(t, s, "tank_snapshots"))
}

func TestReadingsPage(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		createReading(t, s)
	}

	rec := s.do(t, "GET", "/api/v1/readings?page=1&page_size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[models.ReadingsPage](t, rec)
	require.Len(t, page.Data, 2)
	require.Equal(t, 2, page.TotalPages)
	require.True(t, page.HasMore)
	require.Greater(t, page.Data[0].ID, page.Data[1].ID)

	rec = s.do(t, "GET", "/api/v1/readings/pages?page_size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, decode[map[string]int](t, rec)["total_pages"])

	rec = s.do(t, "GET", "/api/v1/readings?year=2025&month=6", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[models.ReadingsPage](t, rec).Data)

	for _, query := range []string{"page=0", "page=abc", "month=5", "page_size=5000"} {
		rec = s.do(t, "GET", "/api/v1/readings?"+query, "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestReadingsByRange(t *testing.T) {
	s := newTestServer(t)
	createReading(t, s)

	rec := s.do(t, "GET", "/api/v1/readings/range?start=2025-05-01&end=2025-05-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]models.Reading](t, rec), 1)

	rec = s.do(t, "GET", "/api/v1/readings/range?start=2025-05-02&end=2025-05-03&order=asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]models.Reading](t, rec))

	rec = s.do(t, "GET", "/api/v1/readings/range?start=2025-05-03&end=2025-05-01", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "GET", "/api/v1/readings/range?start=yesterday&end=2025-05-01", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFirstYearAndToday(t *testing.T) {
	s := newTestServer(t)
	createReading(t, s)

	rec := s.do(t, "GET", "/api/v1/readings/first-year", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2025, decode[map[string]int](t, rec)["year"])

	rec = s.do(t, "GET", "/api/v1/readings/today", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]models.Reading](t, rec))
}

func TestTankRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(t, "POST", "/api/v1/tanks", token, map[string]interface{}{"tank_name": "T9", "tank_active": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tankID := decode[models.Result](t, rec).ID

	rec = s.do(t, "POST", "/api/v1/tanks", token, map[string]interface{}{"tank_name": "T9"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, tankID, decode[models.Result](t, rec).ID)

	rec = s.do(t, "GET", "/api/v1/tanks/"+itoa(tankID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tank := decode[models.Tank](t, rec)
	require.Equal(t, "T9", tank.Name)
	require.True(t, bool(tank.Active))

	rec = s.do(t, "POST", "/api/v1/tanks/activate", token, []models.TankActivation{{Name: "T9", Active: false}, {Name: "T10", Active: true}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, "GET", "/api/v1/tanks", "", nil)
	tanks := decode[[]models.Tank](t, rec)
	require.Len(t, tanks, 2)
	require.Equal(t, "T10", tanks[0].Name)
	require.True(t, bool(tanks[0].Active))
	require.False(t, bool(tanks[1].Active))

	rec = s.do(t, "PUT", "/api/v1/tanks/"+itoa(tankID), token, models.Tank{Name: "T10", Active: true})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, "GET", "/api/v1/tanks/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "POST", "/api/v1/tanks", token, map[string]interface{}{"tank_name": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLastWeekSnapshot(t *testing.T) {
	s := newTestServer(t)
	createReading(t, s)

	tanks, err := s.dm.GetAllTanks(context.Background())
	require.NoError(t, err)
	require.Len(t, tanks, 1)

	rec := s.do(t, "GET", "/api/v1/tanks/"+itoa(tanks[0].ID)+"/last-week", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prefill := decode[models.SnapshotPrefill](t, rec)
	require.Equal(t, "Salmon", prefill.FishTypeName)
	require.Equal(t, models.Count(250), prefill.FishCount)
	require.Equal(t, models.Text("#1.5 MM"), prefill.FoodSize)

	rec = s.do(t, "GET", "/api/v1/tanks/"+itoa(tanks[0].ID)+"/last-week?as_of=2025-04-30", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[models.SnapshotPrefill](t, rec).FishTypeName)

	rec = s.do(t, "GET", "/api/v1/tanks/999/last-week", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFishTypeRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(t, "POST", "/api/v1/fish-types", token, map[string]string{"fish_type_name": "Brook Trout"})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[models.Result](t, rec)
	require.Contains(t, first.Message, "Brook Trout")

	rec = s.do(t, "POST", "/api/v1/fish-types", token, map[string]string{"fish_type_name": "Brook Trout"})
	require.Equal(t, first.ID, decode[models.Result](t, rec).ID)

	rec = s.do(t, "GET", "/api/v1/fish-types", "", nil)
	require.Len(t, decode[[]models.FishType](t, rec), 1)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/v1/readings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.rm.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.rm.Router.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	createReading(t, s)

	rec := s.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `bluewater_http_requests_total{code="201",method="POST",route="/api/v1/readings"}`)
	require.Contains(t, body, `bluewater_store_transactions_total`)
}

func TestStatusForReason(t *testing.T) {
	testCases := map[models.FailureReason]int{
		models.ReasonValidation:  http.StatusBadRequest,
		models.ReasonReferential: http.StatusBadRequest,
		models.ReasonNotFound:    http.StatusNotFound,
		models.ReasonConstraint:  http.StatusConflict,
		models.ReasonUnavailable: http.StatusServiceUnavailable,
		models.ReasonInternal:    http.StatusInternalServerError,
		"":                       http.StatusInternalServerError,
	}

	for reason, expected := range testCases {
		require.Equal(t, expected, statusForReason(reason), string(reason))
	}
}

func TestParseTimeParam(t *testing.T) {
	loc := time.FixedZone("EDT", -4*3600)

	start, err := parseTimeParam("2025-05-01", loc, false)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, loc), start)

	end, err := parseTimeParam("2025-05-01", loc, true)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 23, 59, 59, 0, loc), end)

	exact, err := parseTimeParam("2025-05-01T10:30", loc, true)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 10, 30, 0, 0, loc), exact)

	utc, err := parseTimeParam("2025-05-01T10:30:00Z", loc, false)
	require.NoError(t, err)
	require.True(t, utc.Equal(time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC)))

	_, err = parseTimeParam("", loc, false)
	require.Error(t, err)
	_, err = parseTimeParam("May 1st", loc, false)
	require.Error(t, err)
}

func mustCount(t *testing.T, s *testServer, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.dm.GetDB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
