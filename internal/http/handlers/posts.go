package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/getlocalbuddy/backend/internal/cache"
	"github.com/getlocalbuddy/backend/internal/domain/post"
	"github.com/getlocalbuddy/backend/internal/observability"
	"github.com/gin-gonic/gin"
)

// PostsListCacheKey names the rendered listing. Anything that changes a post
// or an author projection must call InvalidatePostsList.
const PostsListCacheKey = "posts:list:v1"

// InvalidatePostsList moves the listing to a new generation, so a list that
// was loaded before the change can no longer be served.
func InvalidatePostsList(ctx context.Context, c cache.Store) {
	if c != nil {
		c.Bump(ctx, PostsListCacheKey)
	}
}

type PostStore interface {
	Create(ctx context.Context, req post.CreatePostRequest) (post.Post, error)
	List(ctx context.Context) ([]post.Post, error)
}

type PostsHandler struct {
	repo  PostStore
	cache cache.Store
	prom  *observability.Prom
}

func NewPostsHandler(repo PostStore, c cache.Store, prom *observability.Prom) *PostsHandler {
	return &PostsHandler{repo: repo, cache: c, prom: prom}
}

func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	// generation is read before the repository so a concurrent write wins
	cacheKey := ""
	if h.cache != nil {
		if gen, ok := h.cache.Generation(reqCtx, PostsListCacheKey); ok {
			cacheKey = cache.VersionedKey(PostsListCacheKey, gen)
		}
	}

	if cacheKey != "" {
		if body, ok := h.cache.Get(reqCtx, cacheKey); ok {
			h.prom.ObserveCache(true)
			RespondRawJSONWithETag(ctx, http.StatusOK, body)
			return
		}
		h.prom.ObserveCache(false)
	}

	cctx, cancel := context.WithTimeout(reqCtx, 3*time.Second)
	defer cancel()

	posts, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list posts.", err)
		return
	}

	if posts == nil {
		posts = []post.Post{}
	}

	body, err := json.Marshal(posts)

	if err != nil {
		RespondInternal(ctx, "Could not list posts.", err)
		return
	}

	if cacheKey != "" {
		h.cache.Set(reqCtx, cacheKey, body)
	}

	RespondRawJSONWithETag(ctx, http.StatusOK, body)
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		RespondBadRequest(ctx, "invalid_request", "Missing required fields: content.", gin.H{
			"fields": []FieldError{{Field: "content", Rule: "required", Message: "is required"}},
		})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, post.ErrAuthorNotFound) {
			RespondBadRequest(ctx, "unknown_author", "Unknown author.", nil)
			return
		}

		RespondInternal(ctx, "Could not create post.", err)
		return
	}

	InvalidatePostsList(ctx.Request.Context(), h.cache)

	ctx.JSON(http.StatusCreated, created)
}
