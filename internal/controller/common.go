package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, customerrors.ErrInvalidParameter), errors.Is(err, customerrors.ErrUnknownTicker):
		return http.StatusBadRequest
	case errors.Is(err, customerrors.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, customerrors.ErrDataUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func handleError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Str("component", "http").Str("path", c.Request.URL.Path).Err(err).Msg(message)
	}
	c.JSON(status, model.Response{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

func badParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", customerrors.ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func requireSymbol(c *gin.Context) (string, error) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		return "", badParam("symbol parameter is required")
	}
	return strings.ToUpper(symbol), nil
}

// dateRange reads start/end as YYYY-MM-DD, falling back to the given defaults.
func dateRange(c *gin.Context, defStart, defEnd time.Time) (start, end time.Time, err error) {
	start, end = defStart, defEnd
	if v := c.Query("start"); v != "" {
		if start, err = time.Parse(time.DateOnly, v); err != nil {
			return start, end, badParam("start %q is not YYYY-MM-DD", v)
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = time.Parse(time.DateOnly, v); err != nil {
			return start, end, badParam("end %q is not YYYY-MM-DD", v)
		}
	}
	return start, end, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badParam("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// queryOptInt returns nil when key is absent, so an explicit 0 still reaches validation.
func queryOptInt(c *gin.Context, key string) (*int, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, badParam("%s must be an integer, got %q", key, v)
	}
	return &n, nil
}

func queryFloat(c *gin.Context, key string) (*float64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, badParam("%s must be a number, got %q", key, v)
	}
	return &f, nil
}

func queryBool(c *gin.Context, key string, def bool) (bool, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badParam("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

// queryInts parses a comma separated list such as "20,50". An explicit empty
// value disables the list.
func queryInts(c *gin.Context, key string, def []int) ([]int, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, badParam("%s must be a comma separated list of integers, got %q", key, v)
		}
		out = append(out, n)
	}
	return out, nil
}
