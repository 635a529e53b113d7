package http

import (
	"net/http"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AIHandler handles AI advisor requests.
type AIHandler struct {
	adviceService service.AdviceService
	logger        *logger.Logger
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(adviceService service.AdviceService, logger *logger.Logger) *AIHandler {
	return &AIHandler{adviceService: adviceService, logger: logger}
}

// RegisterRoutes registers the advisor routes.
func (h *AIHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/ai/advice", h.Advice)
}

// Advice answers a free-form question with portfolio context attached.
func (h *AIHandler) Advice(c echo.Context) error {
	var req dto.AdviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	resp, err := h.adviceService.GetAdvice(c.Request().Context(), authedUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(resp))
}
