package main

import (
	"net/http"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteConfig carries the server settings handlers need
type RouteConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	PageSize       int
}

// RouteManager handles all API routes
type RouteManager struct {
	dbManager      *database.DatabaseManager
	jwtSecret      []byte
	allowedOrigins []string
	pageSize       int
	Router         *mux.Router
}

// NewRouteManager creates a new RouteManager instance
func NewRouteManager(dbManager *database.DatabaseManager, cfg RouteConfig) *RouteManager {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > models.MaxPageSize {
		pageSize = models.DefaultPageSize
	}

	return &RouteManager{
		dbManager:      dbManager,
		jwtSecret:      []byte(cfg.JWTSecret),
		allowedOrigins: cfg.AllowedOrigins,
		pageSize:       pageSize,
		Router:         mux.NewRouter(),
	}
}

// Setup configures all API routes
func (rm *RouteManager) Setup() {
	r := rm.Router
	r.Use(rm.corsMiddleware)
	r.Use(rm.metricsMiddleware)

	// Global OPTIONS handler - catches all preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/health", rm.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	rm.setupAPIRoutes(api)
}

// setupAPIRoutes configures all API v1 routes
func (rm *RouteManager) setupAPIRoutes(api *mux.Router) {
	api.HandleFunc("/health", rm.healthHandler).Methods("GET")

	// Public auth endpoints (no auth required)
	api.HandleFunc("/auth/login", rm.handleLogin).Methods("POST")
	api.HandleFunc("/auth/logout", rm.handleLogout).Methods("POST")

	// Readings
	api.HandleFunc("/readings", rm.getReadingsPageHandler).Methods("GET")
	api.HandleFunc("/readings", rm.createReadingHandler).Methods("POST")
	api.HandleFunc("/readings/pages", rm.getTotalPagesHandler).Methods("GET")
	api.HandleFunc("/readings/range", rm.getReadingsByRangeHandler).Methods("GET")
	api.HandleFunc("/readings/today", rm.getTodaysReadingsHandler).Methods("GET")
	api.HandleFunc("/readings/first-year", rm.getFirstRecordYearHandler).Methods("GET")
	api.HandleFunc("/readings/{id:[0-9]+}", rm.getReadingHandler).Methods("GET")

	// Tanks and fish types
	api.HandleFunc("/tanks", rm.getTanksHandler).Methods("GET")
	api.HandleFunc("/tanks/{id:[0-9]+}", rm.getTankHandler).Methods("GET")
	api.HandleFunc("/tanks/{id:[0-9]+}/last-week", rm.getLastWeekSnapshotHandler).Methods("GET")
	api.HandleFunc("/fish-types", rm.getFishTypesHandler).Methods("GET")

	// Protected endpoints (auth required)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(rm.JWTAuthMiddleware)

	protected.HandleFunc("/auth/me", rm.handleMe).Methods("GET")
	protected.HandleFunc("/auth/refresh", rm.handleRefreshToken).Methods("POST")

	protected.HandleFunc("/readings/{id:[0-9]+}", rm.updateReadingHandler).Methods("PUT")
	protected.HandleFunc("/readings/{id:[0-9]+}", rm.deleteReadingHandler).Methods("DELETE")

	protected.HandleFunc("/tanks", rm.setTankActivationHandler).Methods("POST")
	protected.HandleFunc("/tanks/activate", rm.activateTanksHandler).Methods("POST")
	protected.HandleFunc("/tanks/{id:[0-9]+}", rm.updateTankHandler).Methods("PUT")
	protected.HandleFunc("/fish-types", rm.createFishTypeHandler).Methods("POST")
}
