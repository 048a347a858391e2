package controller

import (
	"bytes"
	"net/http"

	"TSNiSAM/internal/render"
	"TSNiSAM/internal/service"

	"github.com/gin-gonic/gin"
)

type ChartController struct {
	svc *service.AnalysisService
}

func NewChartController(svc *service.AnalysisService) *ChartController {
	return &ChartController{svc: svc}
}

// RegisterRoutes sets up the PNG chart endpoints.
func (ctrl *ChartController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/charts/:chart", ctrl.GetChart)
}

// GetChart renders price.png, rsi.png, macd.png, bollinger.png or simulation.png.
// Query parameters match the JSON endpoint of the same data.
func (ctrl *ChartController) GetChart(c *gin.Context) {
	var buf bytes.Buffer
	var err error
	switch name := c.Param("chart"); name {
	case "price.png", "rsi.png", "macd.png", "bollinger.png":
		err = ctrl.indicatorChart(c, name, &buf)
	case "simulation.png":
		err = ctrl.simulationChart(c, &buf)
	default:
		handleError(c, "Unknown chart", badParam("chart %q is not one of price, rsi, macd, bollinger, simulation", name))
		return
	}
	if err != nil {
		handleError(c, "Failed to render chart", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (ctrl *ChartController) indicatorChart(c *gin.Context, name string, buf *bytes.Buffer) error {
	symbol, err := requireSymbol(c)
	if err != nil {
		return err
	}
	defStart, defEnd := ctrl.svc.DefaultRange()
	start, end, err := dateRange(c, defStart, defEnd)
	if err != nil {
		return err
	}
	params, err := indicatorParams(c, ctrl.svc.Params())
	if err != nil {
		return err
	}
	res, err := ctrl.svc.Indicators(c.Request.Context(), symbol, start, end, &params)
	if err != nil {
		return err
	}

	switch name {
	case "price.png":
		return render.Price(buf, symbol, res.Dates, res.Close, res.Indicators)
	case "rsi.png":
		return render.RSI(buf, symbol, res.Dates, res.Indicators)
	case "macd.png":
		return render.MACD(buf, symbol, res.Dates, res.Indicators)
	default:
		return render.Bollinger(buf, symbol, res.Dates, res.Close, res.Indicators)
	}
}

func (ctrl *ChartController) simulationChart(c *gin.Context, buf *bytes.Buffer) error {
	req, _, err := simulationRequest(c, ctrl.svc)
	if err != nil {
		return err
	}
	res, err := ctrl.svc.Simulate(c.Request.Context(), req)
	if err != nil {
		return err
	}
	return render.Simulation(buf, req.Symbol, res.Paths, res.Summary)
}
