package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	dom "guestbook/internal/domain"
	"guestbook/internal/dto"
	"guestbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// EntryService is the subset of service.EntryService the handlers use.
type EntryService interface {
	List(ctx context.Context) ([]dom.Entry, error)
	Create(ctx context.Context, name, message string) (dom.Entry, error)
	Update(ctx context.Context, id int64, name, message string) (dom.Entry, error)
	Delete(ctx context.Context, id int64) error
}

type GuestbookHandler struct {
	svc EntryService
	log zerolog.Logger
}

func NewGuestbookHandler(svc EntryService, log zerolog.Logger) *GuestbookHandler {
	return &GuestbookHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List all guestbook entries
// @Tags         guestbook
// @Produce      json
// @Success      200  {array}   dto.EntryResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /guestbook [get]
func (h *GuestbookHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entriesToResponses(list))
}

// Create godoc
// @Summary      Sign the guestbook
// @Tags         guestbook
// @Accept       json
// @Produce      json
// @Param        body  body      dto.EntryRequest  true  "Entry body"
// @Success      201   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /guestbook [post]
func (h *GuestbookHandler) Create(c *gin.Context) {
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	e, err := h.svc.Create(c.Request.Context(), req.Name, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryToResponse(e))
}

// Update godoc
// @Summary      Edit a guestbook entry
// @Tags         guestbook
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Entry ID"
// @Param        body  body      dto.EntryRequest  true  "Entry body"
// @Success      200   {object}  dto.EntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /guestbook/{id} [put]
func (h *GuestbookHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, req.Name, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entryToResponse(e))
}

// Delete godoc
// @Summary      Delete a guestbook entry
// @Tags         guestbook
// @Produce      json
// @Param        id   path      int  true  "Entry ID"
// @Success      200  {object}  dto.AckResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /guestbook/{id} [delete]
func (h *GuestbookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AckResponse{OK: true})
}

// fail maps service errors to status codes. Unknown errors are logged and
// reported without detail.
func (h *GuestbookHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	default:
		h.log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func entryToResponse(e dom.Entry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:        e.ID,
		Name:      e.Name,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}

func entriesToResponses(list []dom.Entry) []dto.EntryResponse {
	return lo.Map(list, func(e dom.Entry, _ int) dto.EntryResponse {
		return entryToResponse(e)
	})
}
