package controllers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/sha3"

	"postfeed/app/logger"
	"postfeed/app/middleware"
	"postfeed/app/models"
)

// PostService is what the controller needs from the aggregation core.
type PostService interface {
	ListMergedPosts(ctx context.Context) ([]models.MergedPost, error)
	DeletePost(ctx context.Context, id int) error
}

// PostController handles HTTP requests for merged posts.
type PostController struct {
	postService PostService
	validate    *validator.Validate
	log         *logger.Logger
}

// NewPostController creates a new PostController.
func NewPostController(postService PostService, log *logger.Logger) *PostController {
	if log == nil {
		log = logger.NewNop()
	}
	return &PostController{
		postService: postService,
		validate:    validator.New(),
		log:         log.With("component", "post_controller"),
	}
}

// Index handles GET /posts: every post with its author and comments.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	log := pc.requestLog(r)

	posts, err := pc.postService.ListMergedPosts(r.Context())
	if err != nil {
		sendError(w, log, err)
		return
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(posts); err != nil {
		sendError(w, log, err)
		return
	}

	etag := computeETag(body.Bytes())
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
	log.Info("merged posts returned", "posts", len(posts))
}

// Delete handles DELETE /posts/{id}.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	log := pc.requestLog(r)

	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("invalid post id", "id", raw)
		sendErrorResponse(w, ErrorResponse{
			Status:  http.StatusBadRequest,
			Error:   "TYPE_MISMATCH",
			Message: fmt.Sprintf("Invalid value '%s' for parameter 'id'. Expected type: integer", raw),
		})
		return
	}
	if err := pc.validate.Var(id, "gt=0"); err != nil {
		log.Warn("post id out of range", "id", id)
		sendErrorResponse(w, ErrorResponse{
			Status:  http.StatusBadRequest,
			Error:   "INVALID_ARGUMENT",
			Message: "Post ID must be greater than 0",
			Details: map[string]string{"id": "must be greater than 0"},
		})
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		sendError(w, log, err)
		return
	}

	log.Info("post deleted", "post_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (pc *PostController) requestLog(r *http.Request) *logger.Logger {
	return pc.log.With("request_id", middleware.RequestIDFrom(r.Context()), "method", r.Method, "path", r.URL.Path)
}

func computeETag(body []byte) string {
	sum := sha3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
