package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/middleware"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/pagination"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID parses a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id.String(), nil
}

// HistoryQuery holds the history filter parameters shared by the list,
// summary and export endpoints.
type HistoryQuery struct {
	Search   string `form:"search" binding:"max=200"`
	Category string `form:"category" binding:"omitempty,category_filter"`
	DateFrom string `form:"date_from" binding:"omitempty,iso_date"`
	DateTo   string `form:"date_to" binding:"omitempty,iso_date"`
}

// ListExpensesQuery adds paging to HistoryQuery.
type ListExpensesQuery struct {
	HistoryQuery
	pagination.PageRequest
}

// Filter converts the query into a history.Filter with a canonical category.
func (q HistoryQuery) Filter() (history.Filter, error) {
	f := history.Filter{Search: strings.TrimSpace(q.Search)}

	if q.Category != "" && !strings.EqualFold(q.Category, history.AllCategories) {
		category, err := models.ParseCategory(q.Category)
		if err != nil {
			return history.Filter{}, apperrors.ErrInvalidCategory
		}
		f.Category = string(category)
	}
	if q.DateFrom != "" {
		d, err := models.ParseDate(q.DateFrom)
		if err != nil {
			return history.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidDate, err.Error())
		}
		f.From = &d
	}
	if q.DateTo != "" {
		d, err := models.ParseDate(q.DateTo)
		if err != nil {
			return history.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidDate, err.Error())
		}
		f.To = &d
	}
	return f, nil
}

// bindHistoryFilter binds and converts the history query parameters.
func bindHistoryFilter(c *gin.Context) (history.Filter, error) {
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return history.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return q.Filter()
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	log := middleware.RequestLogger(c)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			log.Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	log.Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}
