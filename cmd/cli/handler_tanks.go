package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

// tankRequest registers a tank; when tank_active is present the flag is set too
type tankRequest struct {
	Name   string       `json:"tank_name"`
	Active *models.Flag `json:"tank_active"`
}

type fishTypeRequest struct {
	Name string `json:"fish_type_name"`
}

func (rm *RouteManager) getTanksHandler(w http.ResponseWriter, r *http.Request) {
	tanks, err := rm.dbManager.GetAllTanks(r.Context())
	if err != nil {
		writeQueryError(w, "list tanks", err)
		return
	}
	writeJSON(w, http.StatusOK, tanks)
}

func (rm *RouteManager) getTankHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid tank id")
		return
	}

	tank, err := rm.dbManager.GetTankByID(r.Context(), id)
	if err != nil {
		writeQueryError(w, "load tank", err)
		return
	}
	writeJSON(w, http.StatusOK, tank)
}

func (rm *RouteManager) setTankActivationHandler(w http.ResponseWriter, r *http.Request) {
	var req tankRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Active == nil {
		writeResult(w, http.StatusOK, rm.dbManager.ResolveTank(r.Context(), req.Name))
		return
	}
	writeResult(w, http.StatusOK, rm.dbManager.SetTankActivation(r.Context(), req.Name, bool(*req.Active)))
}

func (rm *RouteManager) activateTanksHandler(w http.ResponseWriter, r *http.Request) {
	var changes []models.TankActivation
	if !decodeBody(w, r, &changes) {
		return
	}

	writeResult(w, http.StatusOK, rm.dbManager.ActivateTanks(r.Context(), changes))
}

func (rm *RouteManager) updateTankHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid tank id")
		return
	}

	var tank models.Tank
	if !decodeBody(w, r, &tank) {
		return
	}
	tank.ID = id

	writeResult(w, http.StatusOK, rm.dbManager.UpdateTank(r.Context(), tank))
}

// getLastWeekSnapshotHandler returns the values to prefill a tank's next entry with.
// Optional as_of limits the lookup to entries recorded at or before it.
func (rm *RouteManager) getLastWeekSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid tank id")
		return
	}

	var asOf *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("as_of")); raw != "" {
		t, err := parseTimeParam(raw, rm.dbManager.Location(), true)
		if err != nil {
			writeQueryError(w, "load last snapshot", fmt.Errorf("%w: as_of: %v", database.ErrInvalidInput, err))
			return
		}
		asOf = &t
	}

	prefill, err := rm.dbManager.GetLastWeekSnapshot(r.Context(), id, asOf)
	if err != nil {
		writeQueryError(w, "load last snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, prefill)
}

func (rm *RouteManager) getFishTypesHandler(w http.ResponseWriter, r *http.Request) {
	fishTypes, err := rm.dbManager.GetFishTypes(r.Context())
	if err != nil {
		writeQueryError(w, "list fish types", err)
		return
	}
	writeJSON(w, http.StatusOK, fishTypes)
}

func (rm *RouteManager) createFishTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req fishTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	writeResult(w, http.StatusOK, rm.dbManager.CreateFishType(r.Context(), req.Name))
}
