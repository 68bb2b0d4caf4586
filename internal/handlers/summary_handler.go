package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/export"
	"budgetledger/internal/services"
)

// SummaryHandler serves aggregates and exports.
type SummaryHandler struct {
	summaryService services.SummaryServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetSummary returns income, expenses, balance and the category breakdown for a month
// @Summary     Monthly summary
// @Tags        summary
// @Produce     json
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} services.BudgetSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     500 {object} ErrorResponse "Storage error"
// @Router      /budget/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.Summarize(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetYearlySummary returns month-by-month totals for a year
// @Summary     Yearly summary
// @Tags        summary
// @Produce     json
// @Param       year query int false "Year (default current)"
// @Success     200 {object} services.YearlySummary "Yearly summary"
// @Router      /budget/summary/yearly [get]
func (h *SummaryHandler) GetYearlySummary(c *gin.Context) {
	year, err := queryInt(c, "year", now().Year())
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.SummarizeYear(c.Request.Context(), year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export downloads a month as CSV or PDF
// @Summary     Export a month
// @Tags        summary
// @Produce     text/csv
// @Produce     application/pdf
// @Param       month  query int    false "Month 1-12 (default current)"
// @Param       year   query int    false "Year (default current)"
// @Param       format query string false "csv (default) or pdf"
// @Success     200 {file} file "Report"
// @Failure     400 {object} ErrorResponse "Invalid period or format"
// @Router      /budget/export [get]
func (h *SummaryHandler) Export(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	if !format.Valid() {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidArgument, "format must be csv or pdf"))
		return
	}

	report, err := export.Build(c.Request.Context(), h.summaryService, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = export.RenderPDF(report)
	default:
		var buf bytes.Buffer
		err = export.WriteCSV(&buf, report.Transactions)
		body = buf.Bytes()
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), body)
}
