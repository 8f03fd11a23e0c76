package models

import "fmt"

// MismatchError reports an identifier that does not match its parent.
type MismatchError struct {
	Field string
	Want  int
	Got   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: want %d, got %d", e.Field, e.Want, e.Got)
}

// Validate checks the fields the aggregation relies on.
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// ValidatePosts validates every post in the list.
func ValidatePosts(posts []Post) error {
	for i := range posts {
		if err := posts[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AuthorIDs returns the distinct author ids referenced by posts,
// in order of first appearance.
func AuthorIDs(posts []Post) []int {
	seen := make(map[int]struct{}, len(posts))
	ids := make([]int, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		ids = append(ids, p.AuthorID)
	}
	return ids
}

// ContainsPost reports whether a post with the given id is in the list.
func ContainsPost(posts []Post, id int) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Merge builds the merged record for a post. The author must match the post's
// AuthorID; a nil comment slice is replaced with an empty one.
func Merge(post Post, author *User, comments []Comment) (MergedPost, error) {
	if author != nil && author.ID != post.AuthorID {
		return MergedPost{}, &MismatchError{Field: "userId", Want: post.AuthorID, Got: author.ID}
	}
	if comments == nil {
		comments = []Comment{}
	}
	return MergedPost{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Title:    post.Title,
		Body:     post.Body,
		User:     author,
		Comments: comments,
	}, nil
}
