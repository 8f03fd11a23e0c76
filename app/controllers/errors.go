package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"postfeed/app/apperr"
	"postfeed/app/logger"
)

// ErrorResponse is the body rendered for every failed request.
type ErrorResponse struct {
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	resp.Timestamp = time.Now().UTC()
	sendJSON(w, resp.Status, resp)
}

// sendError renders err using the status and code of its kind.
func sendError(w http.ResponseWriter, log *logger.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Error("unhandled error", "error", err)
		sendErrorResponse(w, ErrorResponse{
			Status:  http.StatusInternalServerError,
			Error:   "INTERNAL_SERVER_ERROR",
			Message: "An unexpected error occurred",
		})
		return
	}

	status := e.Kind.HTTPStatus()
	message := e.Error()
	if e.Kind == apperr.Internal {
		message = "An unexpected error occurred"
	}
	if status >= 500 {
		log.Error("request failed", "kind", e.Kind.String(), "error", err)
	} else {
		log.Warn("request rejected", "kind", e.Kind.String(), "error", err)
	}

	resp := ErrorResponse{Status: status, Error: e.Code(), Message: message}
	if e.Kind == apperr.ServiceTimeout {
		resp.Details = map[string]string{"timeoutSeconds": strconv.Itoa(e.TimeoutSeconds)}
	}
	if e.Resource != "" && e.Kind != apperr.Internal {
		if resp.Details == nil {
			resp.Details = map[string]string{}
		}
		resp.Details["resource"] = e.Resource
	}
	sendErrorResponse(w, resp)
}
