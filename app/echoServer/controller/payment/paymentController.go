package payment

import (
	"io"
	"net/http"

	ordersvc "clothesrental/service/order"
	paymentsvc "clothesrental/service/payment"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Controller struct {
	Svc paymentsvc.Service
	Log zerolog.Logger
}

// POST /v1/payment/payos/webhook
func (h *Controller) HandleWebhook(c echo.Context) error {
	sig := c.Request().Header.Get("x-payos-signature")
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}

	if err := h.Svc.HandleWebhook(c.Request().Context(), sig, raw); err != nil {
		if ordersvc.Code(err) == ordersvc.ErrOrderNotFound {
			// Unknown order code: nothing to retry on the provider side.
			h.Log.Warn().Err(err).Msg("webhook for unknown order")
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown order"})
		}
		h.Log.Error().Err(err).Msg("payment webhook rejected")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "payment rejected"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// GET /v1/orders/:code/payment
func (h *Controller) Poll(c echo.Context) error {
	status, err := h.Svc.PollStatus(c.Request().Context(), c.Param("code"))
	if err != nil {
		if ordersvc.Code(err) == ordersvc.ErrOrderNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		h.Log.Error().Err(err).Msg("payment poll failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment status unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}
