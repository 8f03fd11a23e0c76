package controllers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// DocsController serves the API description.
type DocsController struct {
	yamlDoc []byte
	jsonDoc []byte
}

// NewDocsController parses the embedded document once.
func NewDocsController() (*DocsController, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(openAPIDocument, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	return &DocsController{yamlDoc: openAPIDocument, jsonDoc: jsonDoc}, nil
}

func (dc *DocsController) YAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(dc.yamlDoc)
}

func (dc *DocsController) JSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(dc.jsonDoc)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound renders unmatched routes in the common error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, ErrorResponse{
		Status:  http.StatusNotFound,
		Error:   "NOT_FOUND",
		Message: fmt.Sprintf("No route for %s %s", r.Method, r.URL.Path),
	})
}

// MethodNotAllowed renders known paths hit with an unsupported verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, ErrorResponse{
		Status:  http.StatusMethodNotAllowed,
		Error:   "METHOD_NOT_ALLOWED",
		Message: fmt.Sprintf("Method %s is not supported for %s", r.Method, r.URL.Path),
	})
}
