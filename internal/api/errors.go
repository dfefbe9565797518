package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"social_sync/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// writeError maps the domain error taxonomy onto a status code and JSON body.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		already    *domain.AlreadyConnectedError
		failure    *domain.ScrapeFailure
	)

	switch {
	case errors.As(err, &validation):
		badRequest(c, "validation_error", validation.Error())

	case errors.Is(err, domain.ErrUnsupportedPlatform):
		badRequest(c, "unsupported_platform", err.Error())

	case errors.As(err, &already):
		c.JSON(http.StatusConflict, gin.H{
			"error":   errorBody{Code: "already_connected", Message: "account already connected for this platform"},
			"account": already.Account,
		})

	case errors.As(err, &failure):
		status := http.StatusBadGateway
		if failure.Reason == domain.ReasonHandleNotFound {
			status = http.StatusUnprocessableEntity
		}
		h.logger.Warn("scrape failed",
			"platform", failure.Platform,
			"handle", failure.Handle,
			"run_id", failure.RunID,
			"reason", failure.Reason,
		)
		c.JSON(status, gin.H{"error": errorBody{
			Code:    "scrape_failed",
			Message: failure.Message(),
			Reason:  string(failure.Reason),
			RunID:   failure.RunID,
		}})

	case errors.Is(err, domain.ErrNotFound):
		notFound(c)

	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorBody{Code: "internal_error", Message: "internal error"}})
	}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: code, Message: message}})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": errorBody{Code: "not_found", Message: "account not found"}})
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
