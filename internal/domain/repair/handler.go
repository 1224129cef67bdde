package repair

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/repair/prompt", h.BuildPrompt)
	api.POST("/repair/validate", h.Validate)
	api.POST("/repair/propose", h.Propose)
}

// promptResponse carries the two prompts handed to a planner.
type promptResponse struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

func (h *Handler) BuildPrompt(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	system, user, err := BuildPrompt(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, promptResponse{SystemPrompt: system, UserPrompt: user})
}

// validateBody pairs a request with the response under scrutiny.
type validateBody struct {
	Request  Request  `json:"request"`
	Response Response `json:"response"`
}

func (h *Handler) Validate(c echo.Context) error {
	var body validateBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result := h.svc.Validate(&body.Request, &body.Response)
	return c.JSON(http.StatusOK, result)
}

// proposeResponse returns the planner's patch together with its validation
// outcome. A rejected patch is reported with 422; it is informational only.
type proposeResponse struct {
	Response *Response        `json:"response,omitempty"`
	Result   ValidationResult `json:"result"`
}

func (h *Handler) Propose(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, result, err := h.svc.Propose(c.Request().Context(), &req)
	switch {
	case errors.Is(err, ErrNoPlanner):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrResponseRejected):
		return c.JSON(http.StatusUnprocessableEntity, proposeResponse{Response: resp, Result: result})
	case err != nil:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, proposeResponse{Response: resp, Result: result})
}
