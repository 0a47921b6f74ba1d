package item

import (
	"errors"
	"net/http"
	"strconv"

	"clothesrental/model"
	itemsvc "clothesrental/service/item"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Controller struct {
	Svc itemsvc.Service
	V   *validator.Validate
	Log zerolog.Logger
}

type upsertItemReq struct {
	Name        string `json:"name" validate:"required"`
	OwnerName   string `json:"owner_name"`
	RentalPrice int64  `json:"rental_price" validate:"required,gt=0"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"category_id"`
}

func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// GET /v1/items
func (h *Controller) List(c echo.Context) error {
	items, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("item list")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// GET /v1/items/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	it, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, itemsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		}
		h.Log.Error().Err(err).Msg("item detail")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, it)
}

// POST /v1/admin/items
func (h *Controller) Create(c echo.Context) error {
	var req upsertItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	id, err := h.Svc.Create(c.Request().Context(), itemsvc.CreateReq{
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		RentalPrice: req.RentalPrice,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.Log.Error().Err(err).Msg("item create")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// PUT /v1/admin/items/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	var req upsertItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	err = h.Svc.Update(c.Request().Context(), &model.Item{
		ID:          id,
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		RentalPrice: req.RentalPrice,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.Log.Error().Err(err).Msg("item update")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// DELETE /v1/admin/items/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		h.Log.Error().Err(err).Msg("item delete")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/admin/items/:id/image (multipart, file part "image")
func (h *Controller) UploadImage(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing image"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable image"})
	}
	defer f.Close()

	url, err := h.Svc.AttachImage(c.Request().Context(), id, fh.Header.Get("Content-Type"), f)
	if err != nil {
		if errors.Is(err, itemsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		}
		h.Log.Error().Err(err).Msg("item image upload")
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "image storage unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"image_url": url})
}
