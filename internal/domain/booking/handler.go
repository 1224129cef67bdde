package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/booking/holds", h.CreateHold)
	api.POST("/booking/holds/:id/book", h.Book)
	api.POST("/booking/holds/:id/release", h.Release)
}

type createHoldRequest struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	StaffID        uuid.UUID  `json:"staff_id"`
	RoomID         *uuid.UUID `json:"room_id,omitempty"`
	Date           time.Time  `json:"date"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
}

func (h *Handler) CreateHold(c echo.Context) error {
	var req createHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.OrganizationID == uuid.Nil || req.StaffID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "organization_id and staff_id are required")
	}
	if req.StartTime == "" || req.EndTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "start_time and end_time are required")
	}

	hold := &AppointmentHold{
		OrganizationID: req.OrganizationID,
		StaffID:        req.StaffID,
		RoomID:         req.RoomID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}
	err := h.mgr.CreateHold(c.Request().Context(), hold)
	switch {
	case errors.Is(err, ErrInvalidInterval):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, hold)
}

type bookRequest struct {
	OrganizationID    uuid.UUID  `json:"organization_id"`
	PatientID         uuid.UUID  `json:"patient_id"`
	BookedVia         string     `json:"booked_via"`
	BookedByContactID *uuid.UUID `json:"booked_by_contact_id,omitempty"`
}

func (h *Handler) Book(c echo.Context) error {
	holdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hold id")
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.OrganizationID == uuid.Nil || req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "organization_id and patient_id are required")
	}

	result, err := h.mgr.BookFromHold(c.Request().Context(), holdID, req.OrganizationID,
		req.PatientID, req.BookedVia, req.BookedByContactID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !result.Success {
		return c.JSON(http.StatusConflict, result)
	}
	return c.JSON(http.StatusCreated, result)
}

type releaseRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func (h *Handler) Release(c echo.Context) error {
	holdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hold id")
	}
	var req releaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.mgr.ReleaseHold(c.Request().Context(), holdID, req.OrganizationID)
	switch {
	case errors.Is(err, ErrHoldNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
