package model

// SignalLabel is the action bucket a total score maps to.
type SignalLabel string

const (
	SignalStrongBuy  SignalLabel = "STRONG_BUY"
	SignalBuy        SignalLabel = "BUY"
	SignalHold       SignalLabel = "HOLD"
	SignalSell       SignalLabel = "SELL"
	SignalStrongSell SignalLabel = "STRONG_SELL"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// Signal is the output of the strategy engine for one symbol.
type Signal struct {
	Symbol     string        `json:"symbol"`
	LastClose  float64       `json:"last_close"`
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Label      SignalLabel   `json:"label"`
	WarningMsg string        `json:"warning,omitempty"`
}

// DigestEntry is one ticker's line in the daily digest. Error is set when the
// signal could not be computed.
type DigestEntry struct {
	Ticker TickerInfo `json:"ticker"`
	Signal *Signal    `json:"signal,omitempty"`
	Error  string     `json:"error,omitempty"`
}
