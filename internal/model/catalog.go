package model

import "github.com/shopspring/decimal"

// TickerInfo describes one symbol the application accepts.
type TickerInfo struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
}

// Recommendation is one row of the recommendations table.
type Recommendation struct {
	Stock     string          `json:"stock"`
	Symbol    string          `json:"symbol,omitempty"`
	Return1Y  decimal.Decimal `json:"return_1y"`
	Return3Y  decimal.Decimal `json:"return_3y"`
	Piotroski int             `json:"piotroski_score"`
}

// Fundamentals holds the values behind the fundamentals gauge.
type Fundamentals struct {
	Symbol    string `json:"symbol"`
	Piotroski int    `json:"piotroski_score"`
	MaxScore  int    `json:"max_score"`
	Rating    string `json:"rating"`
}
