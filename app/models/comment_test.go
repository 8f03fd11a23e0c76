package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateComments(t *testing.T) {
	tests := []struct {
		name     string
		comments []Comment
		wantErr  bool
	}{
		{
			name:     "valid comments",
			comments: []Comment{{ID: 1, PostID: 1, Body: "a"}, {ID: 2, PostID: 1, Body: "b"}},
		},
		{
			name:     "empty list",
			comments: []Comment{},
		},
		{
			name:     "missing id",
			comments: []Comment{{ID: 0, PostID: 1}},
			wantErr:  true,
		},
		{
			name:     "foreign post",
			comments: []Comment{{ID: 1, PostID: 2}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComments(1, tt.comments)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergedPostJSONShape(t *testing.T) {
	merged, err := Merge(Post{ID: 1, AuthorID: 1, Title: "t", Body: "b"}, &User{ID: 1, Name: "Leanne Graham"}, nil)
	require.NoError(t, err)

	data, err := json.Marshal(merged)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(1), raw["userId"])
	assert.Equal(t, []interface{}{}, raw["comments"])
	assert.Equal(t, "Leanne Graham", raw["user"].(map[string]interface{})["name"])
}

func TestUserDecodesRemoteShape(t *testing.T) {
	data := []byte(`{"id":1,"name":"Leanne Graham","username":"Bret","email":"Sincere@april.biz",
		"address":{"street":"Kulas Light","suite":"Apt. 556","city":"Gwenborough","zipcode":"92998-3874","geo":{"lat":"-37.3159","lng":"81.1496"}},
		"phone":"1-770-736-8031 x56442","website":"hildegard.org",
		"company":{"name":"Romaguera-Crona","catchPhrase":"Multi-layered client-server neural-net","bs":"harness real-time e-markets"}}`)

	var u User
	require.NoError(t, json.Unmarshal(data, &u))
	assert.NoError(t, u.Validate())
	assert.Equal(t, "Bret", u.Username)
	assert.Equal(t, "Gwenborough", u.Address.City)
	assert.Equal(t, "81.1496", u.Address.Geo.Lng)
	assert.Equal(t, "Romaguera-Crona", u.Company.Name)
}
