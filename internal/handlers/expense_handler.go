package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest represents the payload for creating or updating an expense.
// Amount accepts a JSON number or a decimal string. When category is omitted
// the suggested category is stored.
type ExpenseRequest struct {
	Description string           `json:"description" binding:"required,not_blank,max=500"`
	Amount      *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"12.50"`
	Category    string           `json:"category" binding:"omitempty,expense_category" example:"Food"`
	Date        string           `json:"date" binding:"required,iso_date" example:"2024-01-20"`
}

func (r ExpenseRequest) input() (services.ExpenseInput, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidDate, err.Error())
	}
	return services.ExpenseInput{
		Description: r.Description,
		Amount:      *r.Amount,
		Category:    r.Category,
		Date:        date,
	}, nil
}

// ExpenseResponse wraps a single expense.
type ExpenseResponse struct {
	Expense models.Expense `json:"expense"`
}

// CreateExpense handles the creation of a new expense
// @Summary     Create an expense
// @Description Record an expense. Without a category the description's suggestion is used.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} ExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount.StringFixed(2), "category": expense.Category, "date": expense.Date.String()})

	c.JSON(http.StatusCreated, ExpenseResponse{Expense: *expense})
}

// ListExpenses returns the user's filtered history, one page at a time
// @Summary     List expenses
// @Description Filtered expense history, newest first, with the total and categories of the whole filtered set
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       search    query string false "Case-insensitive match on description or category"
// @Param       category  query string false "Category name or 'all'"
// @Param       date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       date_to   query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 200)"
// @Success     200 {object} services.ExpensePage
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	filter, err := q.Filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.expenseService.ListExpenses(userID, q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetExpense returns a single expense
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseResponse
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Expense: *expense})
}

// UpdateExpense replaces an expense's fields
// @Summary     Update an expense
// @Description All four fields are required; the category is never re-suggested.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} ExpenseResponse "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	// Editing never re-suggests, so the category must be sent.
	if req.Category == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required"))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount.StringFixed(2), "category": expense.Category, "date": expense.Date.String()})

	c.JSON(http.StatusOK, ExpenseResponse{Expense: *expense})
}

// DeleteExpense removes an expense
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteExpense, "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}
