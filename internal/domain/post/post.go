package post

import (
	"errors"
	"time"
)

var ErrAuthorNotFound = errors.New("author not found")

type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	Author    Author    `json:"author"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreatePostRequest struct {
	Content  string `json:"content" binding:"required,max=5000"`
	AuthorID string `json:"authorId" binding:"required,uuid"`
}

// AuthorRow is the raw author data joined onto a post before projection.
type AuthorRow struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}
