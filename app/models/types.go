package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Post is a post as returned by the remote service.
type Post struct {
	ID       int    `json:"id" validate:"required,gt=0"`
	AuthorID int    `json:"userId" validate:"required,gt=0"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// User is a post author as returned by the remote service.
type User struct {
	ID       int      `json:"id" validate:"required,gt=0"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Address  *Address `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
	Company  *Company `json:"company,omitempty"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     *Geo   `json:"geo,omitempty"`
}

type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// Comment is a comment on a post as returned by the remote service.
type Comment struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	PostID int    `json:"postId" validate:"gte=0"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

// MergedPost is a post combined with its resolved author and comments.
// Comments is never nil.
type MergedPost struct {
	ID       int       `json:"id"`
	AuthorID int       `json:"userId"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	User     *User     `json:"user,omitempty"`
	Comments []Comment `json:"comments"`
}
