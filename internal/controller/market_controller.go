package controller

import (
	"strings"
	"time"

	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/service"

	"github.com/gin-gonic/gin"
)

type MarketController struct {
	svc *service.AnalysisService
}

func NewMarketController(svc *service.AnalysisService) *MarketController {
	return &MarketController{svc: svc}
}

// RegisterRoutes sets up the market data, indicator and signal endpoints.
func (ctrl *MarketController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tickers", ctrl.GetTickers)
	router.GET("/prices", ctrl.GetPrices)
	router.GET("/indicators", ctrl.GetIndicators)
	router.GET("/signal", ctrl.GetSignal)
	router.GET("/recommendations", ctrl.GetRecommendations)
	router.GET("/fundamentals/:symbol", ctrl.GetFundamentals)
	router.DELETE("/cache/:symbol", ctrl.InvalidateCache)
}

// GetTickers lists the configured catalog.
func (ctrl *MarketController) GetTickers(c *gin.Context) {
	handleSuccess(c, "Fetch Success", ctrl.svc.Tickers())
}

// GetPrices returns daily bars, or weekly bars with interval=1wk.
func (ctrl *MarketController) GetPrices(c *gin.Context) {
	symbol, err := requireSymbol(c)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}
	defStart, defEnd := ctrl.defaultRange()
	start, end, err := dateRange(c, defStart, defEnd)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}
	var weekly bool
	switch interval := c.DefaultQuery("interval", "1d"); interval {
	case "1d":
	case "1wk":
		weekly = true
	default:
		handleError(c, "Invalid request", badParam("interval must be 1d or 1wk, got %q", interval))
		return
	}

	series, err := ctrl.svc.Prices(c.Request.Context(), symbol, start, end, weekly)
	if err != nil {
		handleError(c, "Failed to get prices", err)
		return
	}
	handleSuccess(c, "Fetch Success", series)
}

// GetIndicators computes the indicator set with optional parameter overrides.
func (ctrl *MarketController) GetIndicators(c *gin.Context) {
	symbol, err := requireSymbol(c)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}
	defStart, defEnd := ctrl.defaultRange()
	start, end, err := dateRange(c, defStart, defEnd)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}
	params, err := indicatorParams(c, ctrl.svc.Params())
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}

	res, err := ctrl.svc.Indicators(c.Request.Context(), symbol, start, end, &params)
	if err != nil {
		handleError(c, "Failed to compute indicators", err)
		return
	}
	handleSuccess(c, "Compute Success", res)
}

// GetSignal scores the latest indicator values.
func (ctrl *MarketController) GetSignal(c *gin.Context) {
	symbol, err := requireSymbol(c)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}
	defStart, defEnd := ctrl.defaultRange()
	start, end, err := dateRange(c, defStart, defEnd)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}

	sig, err := ctrl.svc.Signal(c.Request.Context(), symbol, start, end)
	if err != nil {
		handleError(c, "Failed to compute signal", err)
		return
	}
	handleSuccess(c, "Compute Success", sig)
}

// GetRecommendations returns the recommendations table.
func (ctrl *MarketController) GetRecommendations(c *gin.Context) {
	handleSuccess(c, "Fetch Success", ctrl.svc.Recommendations())
}

// GetFundamentals returns the Piotroski gauge value.
func (ctrl *MarketController) GetFundamentals(c *gin.Context) {
	f, err := ctrl.svc.Fundamentals(strings.ToUpper(c.Param("symbol")))
	if err != nil {
		handleError(c, "Failed to get fundamentals", err)
		return
	}
	handleSuccess(c, "Fetch Success", f)
}

// InvalidateCache drops every cached range for a symbol.
func (ctrl *MarketController) InvalidateCache(c *gin.Context) {
	n, err := ctrl.svc.InvalidateCache(c.Request.Context(), strings.ToUpper(c.Param("symbol")))
	if err != nil {
		handleError(c, "Failed to invalidate cache", err)
		return
	}
	handleSuccess(c, "Cache invalidated", gin.H{"removed": n})
}

func (ctrl *MarketController) defaultRange() (start, end time.Time) {
	return ctrl.svc.DefaultRange()
}

// indicatorParams applies query overrides to the configured parameters.
func indicatorParams(c *gin.Context, p calculator.Params) (calculator.Params, error) {
	var err error
	if p.SMAWindows, err = queryInts(c, "sma", p.SMAWindows); err != nil {
		return p, err
	}
	if p.EMAWindows, err = queryInts(c, "ema", p.EMAWindows); err != nil {
		return p, err
	}
	if p.RSIWindow, err = queryInt(c, "rsi", p.RSIWindow); err != nil {
		return p, err
	}
	if p.RSIWilder, err = queryBool(c, "rsi_wilder", p.RSIWilder); err != nil {
		return p, err
	}
	if p.MACDFast, err = queryInt(c, "macd_fast", p.MACDFast); err != nil {
		return p, err
	}
	if p.MACDSlow, err = queryInt(c, "macd_slow", p.MACDSlow); err != nil {
		return p, err
	}
	if p.MACDSignal, err = queryInt(c, "macd_signal", p.MACDSignal); err != nil {
		return p, err
	}
	if p.BBWindow, err = queryInt(c, "bb_window", p.BBWindow); err != nil {
		return p, err
	}
	k, err := queryFloat(c, "bb_k")
	if err != nil {
		return p, err
	}
	if k != nil {
		p.BBK = *k
	}
	return p, p.Validate()
}
