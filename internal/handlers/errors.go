package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
)

// respondError maps engine errors to HTTP responses
func respondError(c *gin.Context, err error, fallback string) {
	var (
		se *apperror.SafeguardError
		ve *apperror.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": ve.Violations})
	case errors.As(err, &se):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Blocked by safeguard", "details": se.Reason})
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrUnsupportedCategory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrRollbackExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		logrus.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
	}
}

// bindOptionalJSON binds a request body that may be absent
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
