package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP layer can map it to a status code.
type Kind int

const (
	Internal Kind = iota
	InvalidArgument
	NotFound
	UnresolvedAuthor
	ServiceUnavailable
	ServiceTimeout
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case UnresolvedAuthor:
		return "UnresolvedAuthor"
	case ServiceUnavailable:
		return "ServiceUnavailable"
	case ServiceTimeout:
		return "ServiceTimeout"
	default:
		return "Internal"
	}
}

// HTTPStatus returns the fixed status code rendered for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound, UnresolvedAuthor:
		return http.StatusNotFound
	case ServiceUnavailable:
		return http.StatusBadGateway
	case ServiceTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Resource names used in errors and log lines.
const (
	ResourcePosts    = "posts"
	ResourcePost     = "post"
	ResourceUser     = "user"
	ResourceComments = "comments"
)

// Error carries one kind of the taxonomy plus the fields relevant to it.
type Error struct {
	Kind           Kind
	Resource       string
	ID             int
	TimeoutSeconds int
	Err            error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var msg string
	switch e.Kind {
	case InvalidArgument:
		msg = fmt.Sprintf("invalid %s id: %d", e.resourceOr("resource"), e.ID)
	case NotFound:
		msg = fmt.Sprintf("%s not found with id: %d", e.resourceOr("resource"), e.ID)
	case UnresolvedAuthor:
		msg = fmt.Sprintf("author could not be resolved for id: %d", e.ID)
	case ServiceUnavailable:
		msg = fmt.Sprintf("external service '%s' is currently unavailable", e.resourceOr("remote"))
	case ServiceTimeout:
		msg = fmt.Sprintf("timeout calling external service '%s' after %d seconds", e.resourceOr("remote"), e.TimeoutSeconds)
	default:
		msg = "internal error"
	}
	if e.Err != nil && (e.Kind == Internal || e.Kind == InvalidArgument) {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Code is the machine-readable kind string used in HTTP error bodies.
func (e *Error) Code() string {
	switch e.Kind {
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case NotFound:
		switch e.Resource {
		case ResourcePost, ResourcePosts, ResourceComments:
			return "POST_NOT_FOUND"
		case ResourceUser:
			return "USER_NOT_FOUND"
		}
		return "NOT_FOUND"
	case UnresolvedAuthor:
		return "UNRESOLVED_AUTHOR"
	case ServiceUnavailable:
		return "EXTERNAL_SERVICE_ERROR"
	case ServiceTimeout:
		return "EXTERNAL_SERVICE_TIMEOUT"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

func (e *Error) resourceOr(def string) string {
	if e.Resource == "" {
		return def
	}
	return e.Resource
}

func NewInvalidArgument(resource string, id int) *Error {
	return &Error{Kind: InvalidArgument, Resource: resource, ID: id}
}

func NewNotFound(resource string, id int) *Error {
	return &Error{Kind: NotFound, Resource: resource, ID: id}
}

func NewUnresolvedAuthor(id int, cause error) *Error {
	return &Error{Kind: UnresolvedAuthor, Resource: ResourceUser, ID: id, Err: cause}
}

func NewServiceUnavailable(resource string, cause error) *Error {
	return &Error{Kind: ServiceUnavailable, Resource: resource, Err: cause}
}

func NewServiceTimeout(resource string, seconds int, cause error) *Error {
	return &Error{Kind: ServiceTimeout, Resource: resource, TimeoutSeconds: seconds, Err: cause}
}

func NewInternal(cause error) *Error {
	return &Error{Kind: Internal, Err: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; anything outside the taxonomy is Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
