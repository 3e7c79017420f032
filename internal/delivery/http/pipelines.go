package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"stock-digest/internal/dto"
	"stock-digest/internal/service"
	"stock-digest/pkg/utils"
)

func (h *HttpAPIHandler) SetupPipelines(base *echo.Group) {
	v1 := base.Group("/v1")
	{
		v1.POST("/digest/run", h.RunDigest)
		v1.POST("/alerts/run", h.RunAlerts)
		v1.POST("/research/:symbol", h.RunResearch)
	}
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
}

// RunDigest kicks off the digest pipeline in the background. The pipeline
// outlives the request, so it gets its own context.
func (h *HttpAPIHandler) RunDigest(c echo.Context) error {
	utils.GoSafe(func() {
		_ = h.service.DigestService.Run(context.Background())
	})
	return c.JSON(http.StatusAccepted, dto.NewAcceptedResponse("Digest run started"))
}

func (h *HttpAPIHandler) RunAlerts(c echo.Context) error {
	opt := service.AlertRunOption{Force: c.QueryParam("force") == "true"}
	utils.GoSafe(func() {
		_ = h.service.AlertsService.Run(context.Background(), opt)
	})
	return c.JSON(http.StatusAccepted, dto.NewAcceptedResponse("Alerts run started"))
}

// RunResearch generates a research brief synchronously; the LLM call can
// take a while, so the request context carries the deadline. With
// ?email=true the report is also mailed to the configured recipient.
func (h *HttpAPIHandler) RunResearch(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "symbol is required"))
	}

	generate := h.service.ResearchService.Generate
	if c.QueryParam("email") == "true" {
		generate = h.service.ResearchService.GenerateAndSend
	}

	text, err := generate(c.Request().Context(), symbol, c.QueryParam("name"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, err.Error()))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Research generated", map[string]string{
		"symbol":   symbol,
		"research": text,
	}))
}
