package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectAuthor(t *testing.T) {
	got := ProjectAuthor(AuthorRow{ID: "a-1", Email: "lena@example.com"}, "https://img.test/?u={id}")

	assert.Equal(t, Author{ID: "a-1", Name: "lena", Avatar: "https://img.test/?u=a-1"}, got)
}

func TestProjectAuthor_ExplicitValuesWin(t *testing.T) {
	got := ProjectAuthor(AuthorRow{ID: "a-1", Email: "lena@example.com", Name: "Lena K", AvatarURL: "https://cdn.test/l.png"}, "https://img.test/?u={id}")

	assert.Equal(t, "Lena K", got.Name)
	assert.Equal(t, "https://cdn.test/l.png", got.Avatar)
}

func TestNewFromCreateRequest(t *testing.T) {
	p := NewFromCreateRequest(CreatePostRequest{Content: "  hello  ", AuthorID: "a-1"})

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "hello", p.Content)
	assert.Equal(t, "a-1", p.AuthorID)
	assert.Zero(t, p.Likes)
	assert.False(t, p.CreatedAt.IsZero())
}
