package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/getlocalbuddy/backend/internal/domain/post"
	"github.com/getlocalbuddy/backend/internal/domain/user"
)

// ErrUnavailable is returned by every call once the store is disconnected.
var ErrUnavailable = errors.New("store unavailable")

// Store is an in-process persistence gateway with the same contract as the
// postgres repositories: unique emails, author foreign keys, newest-first listing.
type Store struct {
	mu             sync.RWMutex
	users          map[string]user.User
	byEmail        map[string]string
	posts          []storedPost
	seq            int64
	avatarTemplate string
	down           bool
}

type storedPost struct {
	post post.Post
	seq  int64
}

func NewStore(avatarTemplate string) *Store {
	return &Store{
		users:          make(map[string]user.User),
		byEmail:        make(map[string]string),
		avatarTemplate: avatarTemplate,
	}
}

// Disconnect makes every subsequent call fail, simulating a lost database.
func (s *Store) Disconnect() {
	s.mu.Lock()
	s.down = true
	s.mu.Unlock()
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.down {
		return ErrUnavailable
	}
	return ctx.Err()
}

func (s *Store) Create(ctx context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return user.User{}, ErrUnavailable
	}

	u.Email = user.NormalizeEmail(u.Email)

	if _, taken := s.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID

	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.down {
		return user.User{}, ErrUnavailable
	}

	id, ok := s.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return s.users[id], nil
}

func (s *Store) GetByID(ctx context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.down {
		return user.User{}, ErrUnavailable
	}

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return user.User{}, ErrUnavailable
	}

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u = u.Apply(req)
	s.users[id] = u

	return u, nil
}

// Posts exposes the post half of the store under the posts repository contract.
func (s *Store) Posts() *PostsView {
	return &PostsView{s: s}
}

type PostsView struct {
	s *Store
}

func (v *PostsView) Create(ctx context.Context, req post.CreatePostRequest) (post.Post, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return post.Post{}, ErrUnavailable
	}

	author, ok := s.users[req.AuthorID]
	if !ok {
		return post.Post{}, post.ErrAuthorNotFound
	}

	p := post.NewFromCreateRequest(req)
	p.Author = s.authorOf(author)

	s.seq++
	s.posts = append(s.posts, storedPost{post: p, seq: s.seq})

	return p, nil
}

func (v *PostsView) List(ctx context.Context) ([]post.Post, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.down {
		return nil, ErrUnavailable
	}

	ordered := make([]storedPost, len(s.posts))
	copy(ordered, s.posts)

	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].post.CreatedAt.Equal(ordered[j].post.CreatedAt) {
			return ordered[i].post.CreatedAt.After(ordered[j].post.CreatedAt)
		}
		return ordered[i].seq > ordered[j].seq
	})

	out := make([]post.Post, 0, len(ordered))
	for _, sp := range ordered {
		p := sp.post
		// author profile may have changed since the post was written
		if a, ok := s.users[p.AuthorID]; ok {
			p.Author = s.authorOf(a)
		}
		out = append(out, p)
	}

	return out, nil
}

func (s *Store) authorOf(u user.User) post.Author {
	return post.ProjectAuthor(post.AuthorRow{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}, s.avatarTemplate)
}
