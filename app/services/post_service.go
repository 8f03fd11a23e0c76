package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"postfeed/app/apperr"
	"postfeed/app/cache"
	"postfeed/app/gateway"
	"postfeed/app/logger"
	"postfeed/app/models"
)

// MergedPostsCacheKey is the single key the merged list is memoized under.
const MergedPostsCacheKey = "merged_posts"

// DefaultCommentWorkers bounds per-post comment fetches within one build.
const DefaultCommentWorkers = 10

// PostService builds the merged post list and handles post deletion.
type PostService struct {
	gateway        gateway.Gateway
	authors        *AuthorResolver
	cache          *cache.Cache[[]models.MergedPost]
	commentWorkers int
	log            *logger.Logger
}

// NewPostService creates a PostService.
func NewPostService(gw gateway.Gateway, authors *AuthorResolver, c *cache.Cache[[]models.MergedPost], commentWorkers int, log *logger.Logger) *PostService {
	if commentWorkers <= 0 {
		commentWorkers = DefaultCommentWorkers
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &PostService{
		gateway:        gw,
		authors:        authors,
		cache:          c,
		commentWorkers: commentWorkers,
		log:            log.With("component", "post_service"),
	}
}

// ListMergedPosts returns every post with its author and comments, in the
// order the remote service lists them.
func (s *PostService) ListMergedPosts(ctx context.Context) ([]models.MergedPost, error) {
	return s.cache.GetOrLoad(ctx, MergedPostsCacheKey, s.buildMergedPosts)
}

func (s *PostService) buildMergedPosts(ctx context.Context) ([]models.MergedPost, error) {
	start := time.Now()
	s.log.Info("building merged posts")

	posts, err := s.gateway.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	authorIDs := models.AuthorIDs(posts)
	authors, err := s.authors.ResolveAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	comments := s.fetchComments(ctx, posts)

	merged := make([]models.MergedPost, 0, len(posts))
	for i, post := range posts {
		author, ok := authors[post.AuthorID]
		if !ok {
			return nil, apperr.NewUnresolvedAuthor(post.AuthorID, nil)
		}
		record, err := models.Merge(post, author, comments[i])
		if err != nil {
			return nil, apperr.NewInternal(err)
		}
		merged = append(merged, record)
	}

	s.log.Info("merged posts built", "posts", len(merged), "authors", len(authors), "duration", time.Since(start))
	return merged, nil
}

// fetchComments loads comments for every post; result[i] belongs to posts[i].
// A failed fetch yields an empty list.
func (s *PostService) fetchComments(ctx context.Context, posts []models.Post) [][]models.Comment {
	result := make([][]models.Comment, len(posts))

	var g errgroup.Group
	g.SetLimit(s.commentWorkers)
	for i := range posts {
		i := i
		g.Go(func() error {
			postID := posts[i].ID
			comments, err := s.gateway.ListComments(ctx, postID)
			if err != nil {
				s.log.Warn("could not retrieve comments", "post_id", postID, "error", err)
				comments = []models.Comment{}
			}
			result[i] = comments
			return nil
		})
	}
	_ = g.Wait()
	return result
}

// DeletePost removes a post after confirming it is in the current post list,
// then invalidates the merged list.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if id <= 0 {
		return apperr.NewInvalidArgument(apperr.ResourcePost, id)
	}
	log := s.log.With("post_id", id)
	log.Info("deleting post")

	posts, err := s.gateway.ListPosts(ctx)
	if err != nil {
		log.Error("could not validate post existence", "error", err)
		return err
	}
	if !models.ContainsPost(posts, id) {
		log.Warn("post not found")
		return apperr.NewNotFound(apperr.ResourcePost, id)
	}

	if err := s.gateway.DeletePost(ctx, id); err != nil {
		log.Error("delete failed", "error", err)
		return err
	}

	if err := s.cache.Invalidate(ctx, MergedPostsCacheKey); err != nil {
		log.Warn("merged posts cache not invalidated", "error", err)
	}
	log.Info("post deleted")
	return nil
}
