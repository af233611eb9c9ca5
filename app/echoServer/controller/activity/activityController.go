package activity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	as "rentaladmin/service/activity"

	"github.com/labstack/echo/v4"
)

const defaultLimit = 50

type Controller struct {
	Svc *as.Logger
	Log *slog.Logger
}

// GET /v1/activity/logs?username=&action=&date=YYYY-MM-DD&limit=
func (h *Controller) List(c echo.Context) error {
	f := as.Filter{
		Username: c.QueryParam("username"),
		Action:   c.QueryParam("action"),
		Limit:    defaultLimit,
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
		}
		f.Limit = n
	}
	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date"})
		}
		f.Date = &d
	}

	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("activity list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
