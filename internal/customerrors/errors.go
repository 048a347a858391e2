package customerrors

import "errors"

var (
	// ErrInsufficientData means the price series is shorter than the largest window requested.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidParameter means a caller-supplied parameter is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDataUnavailable means the market data source could not supply a series.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrUnknownTicker means the symbol is not in the configured catalog.
	ErrUnknownTicker = errors.New("unknown ticker")
)
