package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"sneakerdex/internal/errors"
	"sneakerdex/internal/middleware"
	"sneakerdex/internal/model"
	"sneakerdex/internal/service"
)

// SneakerHandler serves the signed-in user's collection.
type SneakerHandler struct {
	sneakers service.SneakerService
}

// NewSneakerHandler creates a new sneaker handler.
func NewSneakerHandler(sneakers service.SneakerService) *SneakerHandler {
	return &SneakerHandler{sneakers: sneakers}
}

// SneakerRequest represents a new sneaker.
type SneakerRequest struct {
	Brand   string          `json:"brand"`
	Model   string          `json:"model"`
	Price   *decimal.Decimal `json:"price"`
	Color   string          `json:"color"`
	Size    float64         `json:"size"`
	InStock *bool           `json:"inStock"`
}

// SneakerUpdateRequest lists the fields to change. Omitted fields are kept.
type SneakerUpdateRequest struct {
	ID      string           `json:"id,omitempty"`
	Brand   *string          `json:"brand"`
	Model   *string          `json:"model"`
	Price   *decimal.Decimal `json:"price"`
	Color   *string          `json:"color"`
	Size    *float64         `json:"size"`
	InStock *bool            `json:"inStock"`
}

// BulkDeleteRequest lists the sneakers to delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// SneakerListResponse wraps a collection.
type SneakerListResponse struct {
	Sneakers []model.Sneaker `json:"sneakers"`
}

// BulkDeleteResponse reports a completed bulk delete.
type BulkDeleteResponse struct {
	Message         string          `json:"message"`
	Count           int             `json:"count"`
	DeletedSneakers []model.Sneaker `json:"deletedSneakers"`
}

// BulkDeleteMismatchResponse is returned when not every requested sneaker
// could be found. Nothing is deleted.
type BulkDeleteMismatchResponse struct {
	Error           string          `json:"error"`
	DeletedCount    int             `json:"deletedCount"`
	RequestedCount  int             `json:"requestedCount"`
	DeletedSneakers []model.Sneaker `json:"deletedSneakers"`
}

// List godoc
// @Summary List my sneakers
// @Tags sneakers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SneakerListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /sneakers [get]
func (h *SneakerHandler) List(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	sneakers, err := h.sneakers.List(c.Request().Context(), owner)
	if err != nil {
		return respondError(err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, SneakerListResponse{Sneakers: sneakers})
}

// Get godoc
// @Summary Get one of my sneakers
// @Tags sneakers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sneaker ID"
// @Success 200 {object} model.Sneaker
// @Failure 404 {object} errors.ErrorResponse
// @Router /sneakers/{id} [get]
func (h *SneakerHandler) Get(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(errors.ErrSneakerNotFound)
	}

	sneaker, err := h.sneakers.Get(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, sneaker)
}

// Create godoc
// @Summary Add a sneaker
// @Tags sneakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SneakerRequest true "Sneaker"
// @Success 201 {object} model.Sneaker
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /sneakers [post]
func (h *SneakerHandler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req SneakerRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	sneaker, err := h.sneakers.Create(c.Request().Context(), owner, service.SneakerInput{
		Brand:   req.Brand,
		Model:   req.Model,
		Price:   req.Price,
		Color:   req.Color,
		Size:    req.Size,
		InStock: req.InStock,
	})
	if err != nil {
		return respondError(err)
	}

	noStore(c)
	return c.JSON(http.StatusCreated, sneaker)
}

// Update godoc
// @Summary Update a sneaker by the id in the body
// @Tags sneakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SneakerUpdateRequest true "Fields to change"
// @Success 200 {object} model.Sneaker
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /sneakers [put]
func (h *SneakerHandler) Update(c echo.Context) error {
	var req SneakerUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if req.ID == "" {
		return respondError(errors.NewValidationError("the id field is required"))
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return respondError(errors.NewValidationError("the id field must be a valid id"))
	}
	return h.update(c, id, req)
}

// UpdateByID godoc
// @Summary Update a sneaker
// @Tags sneakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sneaker ID"
// @Param request body SneakerUpdateRequest true "Fields to change"
// @Success 200 {object} model.Sneaker
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /sneakers/{id} [put]
func (h *SneakerHandler) UpdateByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(errors.ErrSneakerNotFound)
	}
	var req SneakerUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	return h.update(c, id, req)
}

func (h *SneakerHandler) update(c echo.Context, id uuid.UUID, req SneakerUpdateRequest) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	sneaker, err := h.sneakers.Update(c.Request().Context(), owner, id, model.SneakerUpdate{
		Brand:   req.Brand,
		Model:   req.Model,
		Price:   req.Price,
		Color:   req.Color,
		Size:    req.Size,
		InStock: req.InStock,
	})
	if err != nil {
		return respondError(err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, sneaker)
}

// Delete godoc
// @Summary Delete a sneaker
// @Tags sneakers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sneaker ID"
// @Success 200 {object} model.Sneaker
// @Failure 404 {object} errors.ErrorResponse
// @Router /sneakers/{id} [delete]
func (h *SneakerHandler) Delete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(errors.ErrSneakerNotFound)
	}

	sneaker, err := h.sneakers.Delete(c.Request().Context(), owner, id)
	if err != nil {
		return respondError(err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, sneaker)
}

// BulkDelete godoc
// @Summary Delete several sneakers
// @Description Either every listed sneaker is deleted or none is.
// @Tags sneakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "Sneaker IDs"
// @Success 200 {object} BulkDeleteResponse
// @Failure 400 {object} BulkDeleteMismatchResponse
// @Router /sneakers [delete]
func (h *SneakerHandler) BulkDelete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(errors.NewValidationError("invalid sneaker id %q", raw))
		}
		ids = append(ids, id)
	}

	deleted, err := h.sneakers.BulkDelete(c.Request().Context(), owner, ids)
	if err != nil {
		var mismatch *service.BulkDeleteMismatchError
		if stderrors.As(err, &mismatch) {
			return c.JSON(http.StatusBadRequest, BulkDeleteMismatchResponse{
				Error:           "Some sneaker IDs were not found",
				DeletedCount:    len(mismatch.Found),
				RequestedCount:  mismatch.Requested,
				DeletedSneakers: mismatch.Found,
			})
		}
		return respondError(err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, BulkDeleteResponse{
		Message:         "Sneakers deleted successfully",
		Count:           len(deleted),
		DeletedSneakers: deleted,
	})
}

func ownerID(c echo.Context) (uuid.UUID, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return uuid.Nil, respondError(errors.ErrUnauthorized)
	}
	return user.ID, nil
}

func noStore(c echo.Context) {
	h := c.Response().Header()
	h.Set("Cache-Control", "no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
