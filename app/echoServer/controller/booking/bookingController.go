package booking

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rentaladmin/app/echoServer/principal"
	"rentaladmin/model"
	bs "rentaladmin/service/booking"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) toInput(req BookingReq) (bs.Input, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return bs.Input{}, err
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return bs.Input{}, err
	}
	// an omitted status is resolved by the service: active on create, the
	// persisted status on update
	return bs.Input{
		EquipmentID:   req.EquipmentID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		StartDate:     start,
		EndDate:       end,
		Status:        model.BookingStatus(req.Status),
	}, nil
}

// GET /v1/bookings
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), principal.From(c))
	if err != nil {
		h.Log.Error("booking list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/bookings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Get(c.Request().Context(), principal.From(c), id)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
		case bs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("booking detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// POST /v1/bookings
func (h *Controller) Create(c echo.Context) error {
	var req BookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	in, err := h.toInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date"})
	}

	out, err := h.Svc.Create(c.Request().Context(), principal.From(c), in)
	if err != nil {
		return h.writeErr(c, "booking create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PUT /v1/bookings/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req BookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	in, err := h.toInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date"})
	}

	out, err := h.Svc.Update(c.Request().Context(), principal.From(c), id, in)
	if err != nil {
		return h.writeErr(c, "booking update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// DELETE /v1/bookings/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Svc.Delete(c.Request().Context(), principal.From(c), id); err != nil {
		return h.writeErr(c, "booking delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *Controller) writeErr(c echo.Context, op string, err error) error {
	switch bs.Code(err) {
	case bs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
	case bs.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case bs.ErrEquipmentRequired:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "equipment is required"})
	case bs.ErrEquipmentNotFound:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "equipment not found"})
	case bs.ErrEquipmentUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "equipment not available"})
	case bs.ErrStatusLocked:
		return c.JSON(http.StatusConflict, echo.Map{"message": "completed bookings cannot be reactivated"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
