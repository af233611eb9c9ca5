package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"rentaladmin/app/echoServer/principal"
	us "rentaladmin/service/user"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc us.Service
	V   *validator.Validate
	Log *slog.Logger
}

func toInput(req UserReq) us.Input {
	return us.Input{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
		Status:    req.Status,
	}
}

// GET /v1/users
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("user list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, "user detail", err)
	}
	out.PasswordHash = ""
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// POST /v1/users
func (h *Controller) Create(c echo.Context) error {
	var req UserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Create(c.Request().Context(), principal.From(c), toInput(req))
	if err != nil {
		return h.writeErr(c, "user create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PUT /v1/users/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Update(c.Request().Context(), principal.From(c), id, toInput(req))
	if err != nil {
		return h.writeErr(c, "user update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// DELETE /v1/users/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if p := principal.From(c); p != nil && p.ID == id {
		return c.JSON(http.StatusConflict, echo.Map{"message": "cannot delete own account"})
	}

	if err := h.Svc.Delete(c.Request().Context(), principal.From(c), id); err != nil {
		return h.writeErr(c, "user delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// PUT /v1/profile/password. Any authenticated user rotates their own
// credential.
func (h *Controller) ChangeOwnPassword(c echo.Context) error {
	var req ChangePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	if err := h.Svc.ChangePassword(c.Request().Context(), principal.From(c), req.Password); err != nil {
		return h.writeErr(c, "password change", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

func (h *Controller) writeErr(c echo.Context, op string, err error) error {
	switch us.Code(err) {
	case us.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case us.ErrUsernameTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "username already taken"})
	case us.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	case us.ErrPasswordRequired:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password is required"})
	case us.ErrWeakPassword:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password must be at least 6 characters"})
	case us.ErrBadRole:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid role"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
