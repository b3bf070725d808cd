package memory

import (
	"context"
	"testing"
	"time"

	"github.com/getlocalbuddy/backend/internal/domain/post"
	"github.com/getlocalbuddy/backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backdate(s *Store, id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].post.ID == id {
			s.posts[i].post.CreatedAt = at
		}
	}
}

func seedUser(t *testing.T, s *Store, email string) user.User {
	t.Helper()

	u, err := s.Create(context.Background(), user.NewFromRegisterRequest(user.RegisterRequest{Email: email}, "hash"))
	require.NoError(t, err)

	return u
}

func TestStore_UniqueEmail(t *testing.T) {
	s := NewStore("{id}")
	seedUser(t, s, "a@example.com")

	_, err := s.Create(context.Background(), user.NewFromRegisterRequest(user.RegisterRequest{Email: "A@Example.com"}, "hash"))
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestStore_PostsRequireAuthor(t *testing.T) {
	s := NewStore("{id}")

	_, err := s.Posts().Create(context.Background(), post.CreatePostRequest{Content: "hi", AuthorID: "missing"})
	assert.ErrorIs(t, err, post.ErrAuthorNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore("{id}")
	author := seedUser(t, s, "writer@example.com")
	posts := s.Posts()

	base := time.Now().UTC()
	var ids []string
	for i, content := range []string{"first", "second", "third"} {
		p, err := posts.Create(ctx, post.CreatePostRequest{Content: content, AuthorID: author.ID})
		require.NoError(t, err)
		backdate(s, p.ID, base.Add(time.Duration(i)*time.Second))
		ids = append(ids, p.ID)
	}

	got, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "writer", got[0].Author.Name)
	assert.Equal(t, author.ID, got[0].Author.Avatar)
}

func TestStore_ListTieBreaksByInsertOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore("{id}")
	author := seedUser(t, s, "writer@example.com")
	posts := s.Posts()

	at := time.Now().UTC()
	first, err := posts.Create(ctx, post.CreatePostRequest{Content: "a", AuthorID: author.ID})
	require.NoError(t, err)
	second, err := posts.Create(ctx, post.CreatePostRequest{Content: "b", AuthorID: author.ID})
	require.NoError(t, err)
	backdate(s, first.ID, at)
	backdate(s, second.ID, at)

	got, err := posts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got[0].ID)
}

func TestStore_Disconnect(t *testing.T) {
	s := NewStore("{id}")
	s.Disconnect()

	assert.ErrorIs(t, s.Ping(context.Background()), ErrUnavailable)
	_, err := s.Posts().List(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
