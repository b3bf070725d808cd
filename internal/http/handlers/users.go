package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getlocalbuddy/backend/internal/cache"
	"github.com/getlocalbuddy/backend/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error)
}

type UsersHandler struct {
	repo           ProfileStore
	cache          cache.Store
	avatarTemplate string
}

func NewUsersHandler(repo ProfileStore, c cache.Store, avatarTemplate string) *UsersHandler {
	return &UsersHandler{repo: repo, cache: c, avatarTemplate: avatarTemplate}
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id := ctx.Param("id")

	// malformed ids cannot exist
	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "User not found.")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not fetch user.", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u.Profile(h.avatarTemplate))
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "User not found.")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.repo.UpdateProfile(cctx, id, req.Trimmed())

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not update user.", err)
		return
	}

	// listed posts embed the author name and avatar
	InvalidatePostsList(ctx.Request.Context(), h.cache)

	ctx.JSON(http.StatusOK, u.Profile(h.avatarTemplate))
}
