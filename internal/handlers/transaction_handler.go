package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/models"
	"budgetledger/internal/pagination"
	"budgetledger/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	CategoryID  int64                  `json:"category_id" binding:"required,gt=0"`
	Amount      float64                `json:"amount" binding:"required,gt=0"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Description string                 `json:"description" binding:"max=500"`
	Date        string                 `json:"date" binding:"required,ledger_date"`
	Notes       *string                `json:"notes" binding:"omitempty,max=2000"`
}

// DeleteTransactionResponse reports the outcome of a hard delete.
type DeleteTransactionResponse struct {
	Deleted      bool  `json:"deleted"`
	RowsAffected int64 `json:"rows_affected"`
}

// ListTransactions returns a month of transactions, newest first
// @Summary     List transactions in a month
// @Tags        transactions
// @Produce     json
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} map[string][]models.Transaction "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Router      /budget/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	p, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.ListTransactionsInPeriod(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period_start": p.StartDate(),
		"period_end":   p.EndDate(),
		"transactions": transactions,
	})
}

// SearchTransactions returns a page of transactions matching the filters
// @Summary     Search transactions
// @Tags        transactions
// @Produce     json
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 50, max 200)"
// @Param       from_date   query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date     query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       type        query string false "income or expense"
// @Param       category_id query []int  false "Category IDs" collectionFormat(multi)
// @Param       q           query string false "Text to look for in the description"
// @Param       min_amount  query number false "Minimum amount"
// @Param       max_amount  query number false "Maximum amount"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget/transactions/search [get]
func (h *TransactionHandler) SearchTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.SearchTransactions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{
		FromDate: c.Query("from_date"),
		ToDate:   c.Query("to_date"),
		Search:   c.Query("q"),
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if !txType.Valid() {
			return filter, apperrors.ErrInvalidType
		}
		filter.Type = &txType
	}

	for _, v := range c.QueryArray("category_id") {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidArgument, "invalid category_id")
		}
		filter.CategoryIDs = append(filter.CategoryIDs, id)
	}

	amount := func(name string) (*float64, error) {
		v := c.Query(name)
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidArgument, "invalid "+name)
		}
		return &f, nil
	}
	var err error
	if filter.MinAmount, err = amount("min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = amount("max_amount"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetTransactionByID returns one transaction with its category
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /budget/transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// CreateTransaction records a new transaction
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or type mismatch"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /budget/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), services.CreateTransactionInput{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction changes only the fields present in the body
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path int                             true "Transaction ID"
// @Param       request body services.UpdateTransactionInput true "Fields to change"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /budget/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var in services.UpdateTransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction. An unknown id is reported
// with deleted=false rather than a 404.
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} DeleteTransactionResponse "Delete outcome"
// @Router      /budget/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	affected, err := h.transactionService.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteTransactionResponse{Deleted: affected > 0, RowsAffected: affected})
}
