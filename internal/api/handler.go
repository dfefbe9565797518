// Package api exposes the account service over HTTP. The caller's user id comes from the
// X-User-ID header set by the authenticating proxy in front of this service.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"social_sync/internal/domain"
)

// AccountService is the slice of the orchestrator the HTTP layer calls.
type AccountService interface {
	Connect(ctx context.Context, userID int64, platform domain.Platform, handle string) (*domain.ConnectResult, error)
	Sync(ctx context.Context, accountID uuid.UUID) (*domain.SyncResult, error)
	Fetch(ctx context.Context, accountID uuid.UUID) (*domain.FetchResult, error)
	Authorize(ctx context.Context, accountID uuid.UUID, userID int64) (*domain.LinkedAccount, error)
	Disconnect(ctx context.Context, accountID uuid.UUID, userID int64) (*domain.LinkedAccount, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	svc      AccountService
	validate *validator.Validate
	health   map[string]Pinger
	logger   *slog.Logger
}

func NewHandler(svc AccountService, health map[string]Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		health:   health,
		logger:   logger.With("component", "api"),
	}
}

type connectRequest struct {
	Platform string `json:"platform" validate:"required,max=32"`
	Handle   string `json:"handle" validate:"required,max=128"`
}

type connectResponse struct {
	Account     *domain.LinkedAccount `json:"account"`
	ItemsStored int                   `json:"items_stored"`
	Warnings    []string              `json:"warnings"`
}

type syncResponse struct {
	Account     *domain.LinkedAccount `json:"account"`
	Freshness   domain.Freshness      `json:"freshness"`
	Rescraped   bool                  `json:"rescraped"`
	ItemsStored int                   `json:"items_stored"`
	Warnings    []string              `json:"warnings"`
}

type fetchResponse struct {
	Account     *domain.LinkedAccount `json:"account"`
	Items       []domain.ContentItem  `json:"items"`
	TopHashtags []string              `json:"top_hashtags"`
	Freshness   domain.Freshness      `json:"freshness"`
}

type disconnectResponse struct {
	AccountID    uuid.UUID       `json:"account_id"`
	Platform     domain.Platform `json:"platform"`
	Disconnected bool            `json:"disconnected"`
}

func (h *Handler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_body", "request body must be JSON with platform and handle")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		badRequest(c, "validation_error", formatValidationError(err))
		return
	}

	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		h.writeError(c, err)
		return
	}

	res, err := h.svc.Connect(c.Request.Context(), userID(c), platform, req.Handle)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, connectResponse{
		Account:     res.Account,
		ItemsStored: res.ItemsStored,
		Warnings:    warnings(res.Warning),
	})
}

func (h *Handler) Sync(c *gin.Context) {
	id, ok := h.ownedAccount(c)
	if !ok {
		return
	}

	res, err := h.svc.Sync(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncResponse{
		Account:     res.Account,
		Freshness:   res.Freshness,
		Rescraped:   res.Rescraped,
		ItemsStored: res.ItemsStored,
		Warnings:    warnings(res.Warning),
	})
}

func (h *Handler) Fetch(c *gin.Context) {
	id, ok := h.ownedAccount(c)
	if !ok {
		return
	}

	res, err := h.svc.Fetch(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fetchResponse{
		Account:     res.Account,
		Items:       res.Items,
		TopHashtags: res.TopHashtags,
		Freshness:   res.Freshness,
	})
}

func (h *Handler) Disconnect(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	account, err := h.svc.Disconnect(c.Request.Context(), id, userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, disconnectResponse{
		AccountID:    account.ID,
		Platform:     account.Platform,
		Disconnected: true,
	})
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(gin.H, len(h.health))
	status := http.StatusOK
	for name, p := range h.health {
		if err := p.PingContext(ctx); err != nil {
			checks[name] = "failure: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "failure"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}

// ownedAccount parses the :id parameter and checks the caller owns it. Foreign and malformed ids
// are reported as not found.
func (h *Handler) ownedAccount(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		notFound(c)
		return uuid.Nil, false
	}
	if _, err := h.svc.Authorize(c.Request.Context(), id, userID(c)); err != nil {
		h.writeError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func warnings(w *domain.PartialStorageFailure) []string {
	if w == nil {
		return []string{}
	}
	return []string{domain.ErrPartialStorage.Error()}
}
