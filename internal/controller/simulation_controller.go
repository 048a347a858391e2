package controller

import (
	"strconv"

	"TSNiSAM/internal/service"

	"github.com/gin-gonic/gin"
)

type SimulationController struct {
	svc *service.AnalysisService
}

func NewSimulationController(svc *service.AnalysisService) *SimulationController {
	return &SimulationController{svc: svc}
}

// RegisterRoutes sets up the Monte Carlo endpoint.
func (ctrl *SimulationController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/simulation", ctrl.GetSimulation)
}

// GetSimulation runs the path simulator from the latest close.
// summary=true drops the raw paths from the reply and keeps the bands.
func (ctrl *SimulationController) GetSimulation(c *gin.Context) {
	req, summaryOnly, err := simulationRequest(c, ctrl.svc)
	if err != nil {
		handleError(c, "Invalid request", err)
		return
	}

	res, err := ctrl.svc.Simulate(c.Request.Context(), req)
	if err != nil {
		handleError(c, "Failed to run simulation", err)
		return
	}
	if summaryOnly {
		res.Paths.Paths = nil
	}
	handleSuccess(c, "Simulation Success", res)
}

func simulationRequest(c *gin.Context, svc *service.AnalysisService) (service.SimulationRequest, bool, error) {
	var req service.SimulationRequest
	var err error
	if req.Symbol, err = requireSymbol(c); err != nil {
		return req, false, err
	}
	defStart, defEnd := svc.DefaultRange()
	if req.Start, req.End, err = dateRange(c, defStart, defEnd); err != nil {
		return req, false, err
	}
	if req.Paths, err = queryOptInt(c, "paths"); err != nil {
		return req, false, err
	}
	if req.Days, err = queryOptInt(c, "days"); err != nil {
		return req, false, err
	}
	if req.Drift, err = queryFloat(c, "drift"); err != nil {
		return req, false, err
	}
	if req.Volatility, err = queryFloat(c, "volatility"); err != nil {
		return req, false, err
	}
	if v := c.Query("seed"); v != "" {
		seed, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			return req, false, badParam("seed must be an unsigned integer, got %q", v)
		}
		req.Seed = &seed
	}
	summaryOnly, err := queryBool(c, "summary", false)
	return req, summaryOnly, err
}
