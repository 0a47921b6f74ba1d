package order

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"clothesrental/app/echoServer/jwtx"
	"clothesrental/model"
	storagerepo "clothesrental/repository/storage"
	ordersvc "clothesrental/service/order"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Controller struct {
	Svc     ordersvc.Service
	Storage storagerepo.Repo
	V       *validator.Validate
	Log     zerolog.Logger
}

func httpStatus(code ordersvc.ErrCode) int {
	switch code {
	case ordersvc.ErrItemNotFound, ordersvc.ErrOrderNotFound:
		return http.StatusNotFound
	case ordersvc.ErrItemUnavailable, ordersvc.ErrRentingConflict,
		ordersvc.ErrStaleTransition, ordersvc.ErrNotCompleted:
		return http.StatusConflict
	case ordersvc.ErrBadDates:
		return http.StatusBadRequest
	case ordersvc.ErrProviderFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := ordersvc.Code(err)
	status := httpStatus(code)
	if status == http.StatusInternalServerError {
		h.Log.Error().Err(err).Str("op", op).Msg("order request failed")
		return c.JSON(status, echo.Map{"message": "internal error"})
	}
	return c.JSON(status, echo.Map{"message": string(code)})
}

// POST /v1/orders (multipart; optional identity_doc file part)
func (h *Controller) Create(c echo.Context) error {
	var req CreateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	rent, _ := time.Parse("2006-01-02", req.RentDate)
	ret, _ := time.Parse("2006-01-02", req.ReturnDate)
	var pickup *time.Time
	if req.PickupTime != "" {
		t, _ := time.Parse("2006-01-02T15:04", req.PickupTime)
		pickup = &t
	}
	uid, _ := jwtx.UserID(c)

	svcReq := ordersvc.CreateReq{
		UserID:        uid,
		ItemID:        req.ItemID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		RentDate:      rent,
		ReturnDate:    ret,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		PickupTime:    pickup,
	}

	// Identity document rides in as an optional multipart file. It is stored
	// first so the order row can reference its URL, and removed again when
	// the creation does not go through.
	var docKey string
	if fh, err := c.FormFile("identity_doc"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable identity document"})
		}
		defer f.Close()
		docKey = fmt.Sprintf("identity/%s", uuid.NewString())
		url, err := h.Storage.Store(c.Request().Context(), docKey, fh.Header.Get("Content-Type"), f)
		if err != nil {
			h.Log.Error().Err(err).Msg("identity document upload failed")
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "document storage unavailable"})
		}
		svcReq.IdentityDoc = &url
	}

	out, err := h.Svc.Create(c.Request().Context(), svcReq)
	if err != nil {
		if docKey != "" {
			if derr := h.Storage.Delete(c.Request().Context(), docKey); derr != nil {
				h.Log.Error().Err(derr).Str("key", docKey).Msg("orphaned identity document")
			}
		}
		return h.fail(c, "create", err)
	}

	resp := echo.Map{
		"order_code":      out.OrderCode,
		"status":          out.Status,
		"total_amount":    out.TotalAmount,
		"hold_expires_at": out.HoldExpires.Format(time.RFC3339),
	}
	if out.PaymentURL != "" {
		resp["payment_url"] = out.PaymentURL
	}
	return c.JSON(http.StatusCreated, resp)
}

// GET /v1/orders/:code/status
func (h *Controller) Status(c echo.Context) error {
	status, err := h.Svc.StatusByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return h.fail(c, "status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// POST /v1/orders/:code/feedback
func (h *Controller) Feedback(c echo.Context) error {
	var req FeedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	if err := h.Svc.AddFeedback(c.Request().Context(), c.Param("code"), req.Rating, req.Message, req.Images); err != nil {
		return h.fail(c, "feedback", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "thank you"})
}

// POST /v1/orders/:code/cancel
func (h *Controller) Cancel(c echo.Context) error {
	uid, ok := jwtx.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.Cancel(c.Request().Context(), c.Param("code"), uid); err != nil {
		return h.fail(c, "cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cancelled"})
}

// GET /v1/items/:id/booked-dates
func (h *Controller) BookedDates(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ranges, err := h.Svc.HeldRanges(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "booked-dates", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": ranges})
}

// GET /v1/admin/orders
func (h *Controller) List(c echo.Context) error {
	orders, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

func (h *Controller) orderID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// PUT /v1/admin/orders/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	return h.adminTransition(c, "approve", h.Svc.Approve)
}

// PUT /v1/admin/orders/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	return h.adminTransition(c, "reject", h.Svc.Reject)
}

// PUT /v1/admin/orders/:id/complete
func (h *Controller) Complete(c echo.Context) error {
	return h.adminTransition(c, "complete", h.Svc.Complete)
}

func (h *Controller) adminTransition(c echo.Context, op string, fn func(ctx context.Context, id int64) error) error {
	id, err := h.orderID(c)
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// DELETE /v1/admin/orders/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := h.orderID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
