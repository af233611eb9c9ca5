package equipment

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"rentaladmin/app/echoServer/principal"
	es "rentaladmin/service/equipment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// uploads above this size are rejected before reading the file
const maxImageBytes = 5 << 20

type Controller struct {
	Svc es.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/equipment
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("equipment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/equipment/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if es.Code(err) == es.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "equipment not found"})
		}
		h.Log.Error("equipment detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// POST /v1/equipment
func (h *Controller) Create(c echo.Context) error {
	var req EquipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Create(c.Request().Context(), principal.From(c), es.Input{
		EquipmentType: req.EquipmentType,
		Name:          req.Name,
		Availability:  req.Availability,
		Price:         req.Price,
	})
	if err != nil {
		return h.writeErr(c, "equipment create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PUT /v1/equipment/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req EquipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Update(c.Request().Context(), principal.From(c), id, es.Input{
		EquipmentType: req.EquipmentType,
		Name:          req.Name,
		Availability:  req.Availability,
		Price:         req.Price,
	})
	if err != nil {
		return h.writeErr(c, "equipment update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// DELETE /v1/equipment/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Svc.Delete(c.Request().Context(), principal.From(c), id); err != nil {
		if es.Code(err) == es.ErrInUse {
			return c.JSON(http.StatusConflict, echo.Map{
				"message": fmt.Sprintf("equipment is referenced by %d booking(s)", es.InUseCount(err)),
			})
		}
		return h.writeErr(c, "equipment delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/equipment/:id/image
func (h *Controller) UploadImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "image file required"})
	}
	if fh.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"message": "image too large"})
	}

	f, err := fh.Open()
	if err != nil {
		h.Log.Error("image open", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.Log.Error("image read", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	key, err := h.Svc.AttachImage(c.Request().Context(), principal.From(c), id, data, fh.Filename)
	if err != nil {
		return h.writeErr(c, "equipment image", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"image_url": key})
}

func (h *Controller) writeErr(c echo.Context, op string, err error) error {
	switch es.Code(err) {
	case es.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "equipment not found"})
	case es.ErrBadPayload:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
