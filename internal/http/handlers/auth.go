package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/getlocalbuddy/backend/internal/domain/user"
	"github.com/getlocalbuddy/backend/internal/http/middlewares"
	"github.com/getlocalbuddy/backend/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
}

type AuthHandler struct {
	users          UserStore
	tokens         TokenIssuer
	avatarTemplate string
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, avatarTemplate string) *AuthHandler {
	return &AuthHandler{
		users:          users,
		tokens:         tokens,
		avatarTemplate: avatarTemplate,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// binding max counts runes; bcrypt counts bytes
	if len(req.Password) > security.MaxPasswordBytes {
		RespondBadRequest(ctx, "invalid_request", "Invalid request body.", gin.H{
			"fields": []FieldError{{
				Field:   "password",
				Rule:    "max",
				Param:   strconv.Itoa(security.MaxPasswordBytes),
				Message: "must be at most 72 bytes",
			}},
		})
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Internal server error.", err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.Create(cctx, user.NewFromRegisterRequest(req, hash))

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email already exists.")
			return
		}

		RespondInternal(ctx, "Internal server error.", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"userId":  u.ID,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, user.NormalizeEmail(req.Email))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Internal server error.", err)
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "invalid_password", "Invalid password.")
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(found.ID, found.Email, found.Role)

	if err != nil {
		RespondInternal(ctx, "Internal server error.", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Login successful.",
		"user":        found.Profile(h.avatarTemplate),
		"accessToken": accessToken,
	})
}

// Me returns the profile of the access token subject.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing or invalid access token.")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Internal server error.", err)
		return
	}

	ctx.JSON(http.StatusOK, u.Profile(h.avatarTemplate))
}
