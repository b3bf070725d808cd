package postgres

import (
	"context"

	"github.com/getlocalbuddy/backend/internal/domain/post"
	"github.com/getlocalbuddy/backend/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool           *pgxpool.Pool
	prom           *observability.Prom
	avatarTemplate string
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom, avatarTemplate string) *PostsRepo {
	return &PostsRepo{
		pool:           pool,
		prom:           prom,
		avatarTemplate: avatarTemplate,
	}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *PostsRepo) scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post
	var a post.AuthorRow

	err := row.Scan(&p.ID, &p.Content, &p.AuthorID, &p.Likes, &p.CreatedAt, &a.ID, &a.Email, &a.Name, &a.AvatarURL)
	if err != nil {
		return post.Post{}, err
	}

	p.Author = post.ProjectAuthor(a, r.avatarTemplate)

	return p, nil
}

func (r *PostsRepo) Create(ctx context.Context, req post.CreatePostRequest) (post.Post, error) {
	p := post.NewFromCreateRequest(req)

	var created post.Post

	// insert and join the author in one round trip
	err := r.observe("posts.create", func() error {
		var e error
		created, e = r.scanPost(r.pool.QueryRow(ctx, `
			WITH inserted AS (
				INSERT INTO posts (id, content, author_id, likes, created_at)
				VALUES ($1,$2,$3,$4,$5)
				RETURNING id, content, author_id, likes, created_at
			)
			SELECT i.id, i.content, i.author_id, i.likes, i.created_at,
				u.id, u.email, u.name, u.avatar_url
			FROM inserted i
			JOIN users u ON u.id = i.author_id
		`, p.ID, p.Content, p.AuthorID, p.Likes, p.CreatedAt))
		return e
	})

	if err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation, codeInvalidTextRep:
			return post.Post{}, post.ErrAuthorNotFound
		}
		return post.Post{}, err
	}

	return created, nil
}

// List returns every post, newest first.
func (r *PostsRepo) List(ctx context.Context) ([]post.Post, error) {
	output := make([]post.Post, 0)

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT p.id, p.content, p.author_id, p.likes, p.created_at,
				u.id, u.email, u.name, u.avatar_url
			FROM posts p
			JOIN users u ON u.id = p.author_id
			ORDER BY p.created_at DESC, p.id DESC
		`)
		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			p, err := r.scanPost(rows)
			if err != nil {
				return err
			}
			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}
