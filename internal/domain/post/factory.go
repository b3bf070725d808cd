package post

import (
	"strings"
	"time"

	"github.com/getlocalbuddy/backend/internal/domain/user"
	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreatePostRequest) Post {
	return Post{
		ID:        uuid.NewString(),
		Content:   strings.TrimSpace(req.Content),
		AuthorID:  req.AuthorID,
		Likes:     0,
		CreatedAt: time.Now().UTC(),
	}
}

// ProjectAuthor reduces an author row to the public id/name/avatar triple.
func ProjectAuthor(row AuthorRow, avatarTemplate string) Author {
	return Author{
		ID:     row.ID,
		Name:   user.DisplayName(row.Name, row.Email),
		Avatar: user.AvatarFor(row.AvatarURL, row.ID, avatarTemplate),
	}
}
