package payment

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rentaladmin/app/echoServer/principal"
	"rentaladmin/model"
	ps "rentaladmin/service/payment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

func toInput(req PaymentReq) (ps.Input, error) {
	date, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return ps.Input{}, err
	}
	return ps.Input{
		Amount:      req.Amount,
		Method:      model.PaymentMethod(req.Method),
		Status:      model.PaymentStatus(req.Status),
		PaymentDate: date,
		BookingID:   req.BookingID,
	}, nil
}

// GET /v1/payments
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), principal.From(c))
	if err != nil {
		h.Log.Error("payment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/payments/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Get(c.Request().Context(), principal.From(c), id)
	if err != nil {
		return h.writeErr(c, "payment detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// POST /v1/payments
func (h *Controller) Create(c echo.Context) error {
	var req PaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	in, err := toInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date"})
	}

	out, err := h.Svc.Create(c.Request().Context(), principal.From(c), in)
	if err != nil {
		return h.writeErr(c, "payment create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PUT /v1/payments/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req PaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	in, err := toInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date"})
	}

	out, err := h.Svc.Update(c.Request().Context(), principal.From(c), id, in)
	if err != nil {
		return h.writeErr(c, "payment update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// DELETE /v1/payments/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Svc.Delete(c.Request().Context(), principal.From(c), id); err != nil {
		return h.writeErr(c, "payment delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *Controller) writeErr(c echo.Context, op string, err error) error {
	switch ps.Code(err) {
	case ps.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
	case ps.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case ps.ErrBookingNotFound:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "booking not found"})
	case ps.ErrDuplicatePayment:
		msg := "booking already has a payment"
		if id := ps.ExistingPaymentID(err); id > 0 {
			msg = fmt.Sprintf("booking already has payment #%d", id)
		}
		return c.JSON(http.StatusConflict, echo.Map{"message": msg})
	case ps.ErrAmountTooLow:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": fmt.Sprintf("amount must be at least %.2f", ps.RequiredAmount(err)),
		})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
