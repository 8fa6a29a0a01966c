package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/gorilla/mux"
)

// ErrorResponse is returned by every failed request
type ErrorResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Reason  models.FailureReason `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// statusForReason maps a failure reason onto an HTTP status
func statusForReason(reason models.FailureReason) int {
	switch reason {
	case models.ReasonValidation, models.ReasonReferential:
		return http.StatusBadRequest
	case models.ReasonNotFound:
		return http.StatusNotFound
	case models.ReasonConstraint:
		return http.StatusConflict
	case models.ReasonUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeResult writes a writer/resolver result; successStatus is used when it committed
func writeResult(w http.ResponseWriter, successStatus int, result models.Result) {
	if result.Success {
		writeJSON(w, successStatus, result)
		return
	}
	writeJSON(w, statusForReason(result.Reason), result)
}

// writeQueryError reports a failed query operation
func writeQueryError(w http.ResponseWriter, operation string, err error) {
	reason := database.ClassifyError(err)
	status := statusForReason(reason)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("❌ Failed to %s: %v", operation, err)
		message = "Failed to " + operation
	}

	writeJSON(w, status, ErrorResponse{Success: false, Message: message, Reason: reason})
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// decodeBody decodes a JSON request body, writing a 400 when it is malformed
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
			Reason:  models.ReasonValidation,
		})
		return false
	}
	return true
}
