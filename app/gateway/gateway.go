package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"postfeed/app/apperr"
	"postfeed/app/logger"
	"postfeed/app/models"
)

// Gateway is the typed surface of the remote posts/users/comments service.
type Gateway interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	DeletePost(ctx context.Context, id int) error
}

// DefaultTimeout is the per-call budget when none is configured.
const DefaultTimeout = 5 * time.Second

// HTTPGateway implements Gateway over the remote REST endpoints.
type HTTPGateway struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	log     *logger.Logger
}

// NewHTTPGateway creates a gateway against baseURL. A nil client uses a fresh
// http.Client; a zero timeout uses DefaultTimeout.
func NewHTTPGateway(baseURL string, timeout time.Duration, client *http.Client, log *logger.Logger) *HTTPGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  client,
		log:     log.With("component", "gateway"),
	}
}

// ListPosts fetches GET /posts.
func (g *HTTPGateway) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := g.do(ctx, call{
		method:   http.MethodGet,
		path:     "/posts",
		resource: apperr.ResourcePosts,
		out:      &posts,
	})
	if err != nil {
		return nil, err
	}
	if err := models.ValidatePosts(posts); err != nil {
		g.log.Error("malformed posts payload", "error", err)
		return nil, apperr.NewServiceUnavailable(apperr.ResourcePosts, err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetUser fetches GET /users/{id}.
func (g *HTTPGateway) GetUser(ctx context.Context, id int) (*models.User, error) {
	if id <= 0 {
		return nil, apperr.NewInvalidArgument(apperr.ResourceUser, id)
	}
	var user models.User
	err := g.do(ctx, call{
		method:         http.MethodGet,
		path:           fmt.Sprintf("/users/%d", id),
		resource:       apperr.ResourceUser,
		id:             id,
		notFoundMapsTo: apperr.ResourceUser,
		out:            &user,
	})
	if err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		g.log.Error("malformed user payload", "user_id", id, "error", err)
		return nil, apperr.NewServiceUnavailable(apperr.ResourceUser, err)
	}
	return &user, nil
}

// ListComments fetches GET /posts/{postID}/comments.
func (g *HTTPGateway) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	if postID <= 0 {
		return nil, apperr.NewInvalidArgument(apperr.ResourcePost, postID)
	}
	var comments []models.Comment
	err := g.do(ctx, call{
		method:         http.MethodGet,
		path:           fmt.Sprintf("/posts/%d/comments", postID),
		resource:       apperr.ResourceComments,
		id:             postID,
		notFoundMapsTo: apperr.ResourcePost,
		out:            &comments,
	})
	if err != nil {
		return nil, err
	}
	if err := models.ValidateComments(postID, comments); err != nil {
		g.log.Error("malformed comments payload", "post_id", postID, "error", err)
		return nil, apperr.NewServiceUnavailable(apperr.ResourceComments, err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// DeletePost issues DELETE /posts/{id}.
func (g *HTTPGateway) DeletePost(ctx context.Context, id int) error {
	if id <= 0 {
		return apperr.NewInvalidArgument(apperr.ResourcePost, id)
	}
	return g.do(ctx, call{
		method:         http.MethodDelete,
		path:           fmt.Sprintf("/posts/%d", id),
		resource:       apperr.ResourcePost,
		id:             id,
		notFoundMapsTo: apperr.ResourcePost,
	})
}

type call struct {
	method   string
	path     string
	resource string
	id       int
	// notFoundMapsTo is the resource reported on a 404; empty means a 404 is
	// treated like any other error status.
	notFoundMapsTo string
	out            interface{}
}

func (g *HTTPGateway) do(ctx context.Context, c call) error {
	url := g.baseURL + c.path
	start := time.Now()
	log := g.log.With("method", c.method, "resource", c.resource, "url", url)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, c.method, url, nil)
	if err != nil {
		log.Error("build request", "outcome", "error", "error", err)
		return apperr.NewInternal(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// The caller gave up; report that rather than blaming the remote.
		if ctx.Err() != nil {
			log.Debug("remote call abandoned", "outcome", "canceled", "duration", time.Since(start))
			return fmt.Errorf("%s %s: %w", c.method, c.path, ctx.Err())
		}
		log.Error("remote call failed", "outcome", "timeout", "duration", time.Since(start), "error", err)
		return apperr.NewServiceTimeout(c.resource, g.timeoutSeconds(), err)
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	switch {
	case status == http.StatusNotFound && c.notFoundMapsTo != "":
		log.Warn("remote resource not found", "outcome", "not_found", "status", status, "duration", time.Since(start))
		return apperr.NewNotFound(c.notFoundMapsTo, c.id)
	case status >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Error("remote call returned error status", "outcome", "unavailable", "status", status,
			"duration", time.Since(start), "body", string(body))
		return apperr.NewServiceUnavailable(c.resource, fmt.Errorf("status %d", status))
	}

	if c.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(c.out); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Error("remote body read timed out", "outcome", "timeout", "status", status, "duration", time.Since(start))
				return apperr.NewServiceTimeout(c.resource, g.timeoutSeconds(), err)
			}
			log.Error("decode remote body", "outcome", "malformed", "status", status, "duration", time.Since(start), "error", err)
			return apperr.NewServiceUnavailable(c.resource, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	log.Info("remote call succeeded", "outcome", "ok", "status", status, "duration", time.Since(start))
	return nil
}

func (g *HTTPGateway) timeoutSeconds() int {
	return int(math.Ceil(g.timeout.Seconds()))
}
