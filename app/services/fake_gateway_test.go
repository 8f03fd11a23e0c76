package services

import (
	"context"
	"sync"
	"time"

	"postfeed/app/apperr"
	"postfeed/app/models"
)

// fakeGateway is an in-memory stand-in for the remote service.
type fakeGateway struct {
	mutex sync.Mutex

	posts       []models.Post
	postsErr    error
	users       map[int]*models.User
	userErrs    map[int]error
	userDelay   map[int]time.Duration
	comments    map[int][]models.Comment
	commentErrs map[int]error
	commentWait map[int]time.Duration
	deleteErr   error

	listPostsCalls int
	userCalls      map[int]int
	commentCalls   map[int]int
	deleteCalls    []int

	inFlightUsers    int
	maxInFlightUsers int
	cancelledUsers   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users:        make(map[int]*models.User),
		userErrs:     make(map[int]error),
		userDelay:    make(map[int]time.Duration),
		comments:     make(map[int][]models.Comment),
		commentErrs:  make(map[int]error),
		commentWait:  make(map[int]time.Duration),
		userCalls:    make(map[int]int),
		commentCalls: make(map[int]int),
	}
}

func (f *fakeGateway) ListPosts(ctx context.Context) ([]models.Post, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.listPostsCalls++
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out, nil
}

func (f *fakeGateway) GetUser(ctx context.Context, id int) (*models.User, error) {
	f.mutex.Lock()
	f.userCalls[id]++
	f.inFlightUsers++
	if f.inFlightUsers > f.maxInFlightUsers {
		f.maxInFlightUsers = f.inFlightUsers
	}
	delay := f.userDelay[id]
	err := f.userErrs[id]
	user := f.users[id]
	f.mutex.Unlock()

	defer func() {
		f.mutex.Lock()
		f.inFlightUsers--
		f.mutex.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			f.mutex.Lock()
			f.cancelledUsers++
			f.mutex.Unlock()
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NewNotFound(apperr.ResourceUser, id)
	}
	return user, nil
}

func (f *fakeGateway) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	f.mutex.Lock()
	f.commentCalls[postID]++
	wait := f.commentWait[postID]
	err := f.commentErrs[postID]
	comments, ok := f.comments[postID]
	f.mutex.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Comment{}, nil
	}
	return comments, nil
}

func (f *fakeGateway) DeletePost(ctx context.Context, id int) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeGateway) totalUserCalls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	total := 0
	for _, n := range f.userCalls {
		total += n
	}
	return total
}
