package models

// Validate checks the comment's identifiers.
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// Validate checks the user's identifier.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// ValidateComments validates every comment and that each belongs to postID.
// Comments without a post id are accepted.
func ValidateComments(postID int, comments []Comment) error {
	for i := range comments {
		if err := comments[i].Validate(); err != nil {
			return err
		}
		if comments[i].PostID != 0 && comments[i].PostID != postID {
			return &MismatchError{Field: "postId", Want: postID, Got: comments[i].PostID}
		}
	}
	return nil
}
