package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/services"
)

// SuggestionHandler serves category suggestions and the category list.
type SuggestionHandler struct {
	suggestionService services.SuggestionServicer
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(suggestionService services.SuggestionServicer) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// SuggestRequest is sent while the user types a description.
type SuggestRequest struct {
	Description string `json:"description" binding:"max=500"`
	Editing     bool   `json:"editing"`
}

// Suggest returns the category for a description
// @Summary     Suggest a category
// @Description Categorize a description as the user types. auto_apply tells the form whether to fill the category in.
// @Tags        suggestions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SuggestRequest true "Description being typed"
// @Success     200 {object} services.Suggestion
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /suggestions [post]
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.suggestionService.Suggest(req.Description, req.Editing))
}

// CategoryInfo describes one category of the enumeration.
type CategoryInfo struct {
	Name       models.Category `json:"name"`
	BadgeColor string          `json:"badge_color"`
}

// CategoriesResponse lists the categories in display order.
type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
}

// ListCategories returns the fixed category enumeration
// @Summary     List categories
// @Tags        suggestions
// @Produce     json
// @Success     200 {object} CategoriesResponse
// @Router      /categories [get]
func (h *SuggestionHandler) ListCategories(c *gin.Context) {
	categories := h.suggestionService.Categories()
	resp := CategoriesResponse{Categories: make([]CategoryInfo, 0, len(categories))}
	for _, cat := range categories {
		resp.Categories = append(resp.Categories, CategoryInfo{Name: cat, BadgeColor: cat.BadgeColor()})
	}
	c.JSON(http.StatusOK, resp)
}

// BatchSuggestRequest is sent by ingestion pipelines.
type BatchSuggestRequest struct {
	Descriptions []string `json:"descriptions" binding:"required,min=1,max=500,dive,max=500"`
}

// BatchSuggestResponse holds one suggestion per description, in order.
type BatchSuggestResponse struct {
	Suggestions []services.Suggestion `json:"suggestions"`
}

// SuggestBatch categorizes many descriptions for a pipeline
// @Summary     Suggest categories in bulk
// @Description Categorize up to 500 descriptions. Authenticated with the pipeline API key.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body BatchSuggestRequest true "Descriptions"
// @Success     200 {object} BatchSuggestResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/suggestions [post]
func (h *SuggestionHandler) SuggestBatch(c *gin.Context) {
	var req BatchSuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	c.JSON(http.StatusOK, BatchSuggestResponse{Suggestions: h.suggestionService.SuggestBatch(req.Descriptions)})
}
