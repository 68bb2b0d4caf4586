package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/middleware"
	"budgetledger/internal/period"
)

// ErrorResponse documents the error envelope for Swagger.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// now is the clock used when a request omits month or year.
var now = time.Now

// parsePathID parses a positive integer path parameter.
// Returns ErrInvalidArgument if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidArgument, "Invalid "+param)
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def when
// the parameter is absent.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidArgument, "invalid "+name)
	}
	return n, nil
}

// parsePeriod resolves ?month=&year= into a Period. Missing values
// default to the current month.
func parsePeriod(c *gin.Context) (period.Period, error) {
	today := now()
	month, err := queryInt(c, "month", int(today.Month()))
	if err != nil {
		return period.Period{}, err
	}
	year, err := queryInt(c, "year", today.Year())
	if err != nil {
		return period.Period{}, err
	}
	return period.Resolve(month, year)
}

// bindError converts a binding or validation failure into an AppError.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidArgument, err.Error())
}

// respondWithError writes the standard JSON error response for err.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}
