package dashboard

import (
	"log/slog"
	"net/http"

	ds "rentaladmin/service/dashboard"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ds.Service
	Log *slog.Logger
}

// GET /v1/dashboard
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/dashboard [get]
func (h *Controller) Stats(c echo.Context) error {
	out, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		h.Log.Error("dashboard stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}
