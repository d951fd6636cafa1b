package v1

import (
	"net/http"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/service"
	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	settlementService service.SettlementService
	logger            *logger.Logger
}

func NewSettlementHandler(settlementService service.SettlementService, logger *logger.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

// PreviewSettlement quotes the settlement breakdown for a sale without
// persisting anything.
func (h *SettlementHandler) PreviewSettlement(c *gin.Context) {
	var req dto.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.settlementService.Preview(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CommitSettlement commits the sale: the transaction record and every ledger
// delta are applied atomically.
func (h *SettlementHandler) CommitSettlement(c *gin.Context) {
	var req dto.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.settlementService.Commit(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("settlement ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.settlementService.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CancelSettlement reverses a committed settlement and restores the ledgers
func (h *SettlementHandler) CancelSettlement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("settlement ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.settlementService.Cancel(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
