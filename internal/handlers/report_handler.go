package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/export"
	"github.com/ryakubu/auto-categorize-app/internal/services"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// maxImportBytes bounds an uploaded CSV report. Larger uploads are
	// rejected, never truncated.
	maxImportBytes = 5 << 20
)

// ReportHandler serves the aggregated summary and the report downloads.
type ReportHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
	now            func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ReportHandler {
	return &ReportHandler{expenseService: expenseService, auditService: auditService, now: time.Now}
}

// GetSummary returns category totals, monthly totals and statistics
// @Summary     Expense summary
// @Description Category totals, monthly totals and headline statistics over the filtered expenses
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       search    query string false "Case-insensitive match on description or category"
// @Param       category  query string false "Category name or 'all'"
// @Param       date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       date_to   query string false "Inclusive end date (YYYY-MM-DD)"
// @Success     200 {object} aggregator.Report
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := bindHistoryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.expenseService.GetSummary(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportCSV downloads the filtered history as CSV
// @Summary     Export CSV
// @Description Download the filtered history as Date,Description,Category,Amount CSV
// @Tags        reports
// @Produce     text/csv
// @Security    BearerAuth
// @Param       search    query string false "Case-insensitive match on description or category"
// @Param       category  query string false "Category name or 'all'"
// @Param       date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       date_to   query string false "Inclusive end date (YYYY-MM-DD)"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := bindHistoryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ListAllExpenses(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrExportFailed, err))
		return
	}

	h.attach(c, "csv")
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// ExportXLSX downloads the filtered history and its summary as a workbook
// @Summary     Export XLSX
// @Description Download the filtered history on an Expenses sheet and its totals on a Summary sheet
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       search    query string false "Case-insensitive match on description or category"
// @Param       category  query string false "Category name or 'all'"
// @Param       date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       date_to   query string false "Inclusive end date (YYYY-MM-DD)"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export.xlsx [get]
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter, err := bindHistoryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ListAllExpenses(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, expenses, aggregator.Build(expenses)); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrExportFailed, err))
		return
	}

	h.attach(c, "xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportResponse reports how many expenses an import stored.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ImportCSV stores the expenses of a CSV report
// @Summary     Import CSV
// @Description Store every row of a CSV report produced by the export. The batch is rejected as a whole on the first bad row.
// @Tags        reports
// @Accept      multipart/form-data
// @Accept      text/csv
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file false "CSV report (multipart upload)"
// @Success     201 {object} ImportResponse
// @Failure     400 {object} ErrorResponse "Invalid report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/import [post]
func (h *ReportHandler) ImportCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	body, err := importBody(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxImportBytes+1))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidImport, err))
		return
	}
	if len(data) > maxImportBytes {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidImport, "report too large"))
		return
	}

	expenses, err := export.ParseCSV(bytes.NewReader(data))
	if err != nil {
		var perr *export.ParseError
		if errors.As(err, &perr) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidImport, perr.Error()))
			return
		}
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidImport, err))
		return
	}

	n, err := h.expenseService.ImportExpenses(userID, expenses)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditImportExpenses, "expense", "", c.ClientIP(),
		map[string]interface{}{"count": n})

	c.JSON(http.StatusCreated, ImportResponse{Imported: n})
}

// importBody returns the uploaded "file" part, or the raw body for a
// text/csv request.
func importBody(c *gin.Context) (io.ReadCloser, error) {
	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidImport, err)
		}
		return f, nil
	}
	if c.Request.Body == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "request body is required")
	}
	return c.Request.Body, nil
}

func (h *ReportHandler) attach(c *gin.Context, ext string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(h.now(), ext)))
}
