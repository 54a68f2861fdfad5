package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
	"github.com/HemantSudarshan/restock-agent/internal/repository"
	"github.com/HemantSudarshan/restock-agent/internal/service"
)

const maxBatchSize = 50

type DecisionHandler struct {
	service *service.DecisionService
	orders  repository.OrderRepository // nil when persistence is disabled
}

func NewDecisionHandler(service *service.DecisionService, orders repository.OrderRepository) *DecisionHandler {
	return &DecisionHandler{service: service, orders: orders}
}

// Trigger runs one restock decision.
func (h *DecisionHandler) Trigger(c *gin.Context) {
	var query domain.InventoryQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.KindInvalidInput, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.service.Decide(c.Request.Context(), query)
	if err != nil {
		status, kind := mapError(err)
		errorResponse(c, status, kind, err.Error())
		return
	}

	if h.orders != nil {
		if err := h.orders.SaveDecision(c.Request.Context(), query.ProductID, outcome); err != nil {
			// Persistence is an audit collaborator; the decision itself
			// already completed.
			log.Warn().Err(err).Str("trace_id", outcome.TraceID).Msg("failed to persist decision")
		}
	}

	c.JSON(http.StatusOK, outcome)
}

type batchRequest struct {
	Requests []domain.InventoryQuery `json:"requests"`
}

// TriggerBatch runs independent decisions for multiple products.
func (h *DecisionHandler) TriggerBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.KindInvalidInput, "invalid request body: "+err.Error())
		return
	}
	if len(req.Requests) == 0 {
		errorResponse(c, http.StatusBadRequest, domain.KindInvalidInput, "requests must not be empty")
		return
	}
	if len(req.Requests) > maxBatchSize {
		errorResponse(c, http.StatusBadRequest, domain.KindInvalidInput, "batch size exceeds maximum of "+strconv.Itoa(maxBatchSize))
		return
	}

	items := h.service.DecideBatch(c.Request.Context(), req.Requests)

	if h.orders != nil {
		for _, item := range items {
			if item.Outcome == nil {
				continue
			}
			if err := h.orders.SaveDecision(c.Request.Context(), item.ProductID, item.Outcome); err != nil {
				log.Warn().Err(err).Str("trace_id", item.Outcome.TraceID).Msg("failed to persist decision")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": items})
}

// Preview returns the deterministic threshold view without reasoning.
func (h *DecisionHandler) Preview(c *gin.Context) {
	query := domain.InventoryQuery{
		ProductID: c.Param("product_id"),
		Mode:      c.DefaultQuery("mode", domain.ModeMock),
	}

	preview, err := h.service.Preview(c.Request.Context(), query)
	if err != nil {
		status, kind := mapError(err)
		errorResponse(c, status, kind, err.Error())
		return
	}

	c.JSON(http.StatusOK, preview)
}

// ListOrders returns persisted orders, newest first.
func (h *DecisionHandler) ListOrders(c *gin.Context) {
	if h.orders == nil {
		errorResponse(c, http.StatusNotImplemented, domain.KindInvalidInput, "order persistence is not enabled")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.orders.ListOrders(c.Request.Context(), limit, offset)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "", err.Error())
		return
	}
	if records == nil {
		records = []repository.OrderRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": records})
}

// GetOrder returns one persisted order by number.
func (h *DecisionHandler) GetOrder(c *gin.Context) {
	if h.orders == nil {
		errorResponse(c, http.StatusNotImplemented, domain.KindInvalidInput, "order persistence is not enabled")
		return
	}

	record, err := h.orders.GetOrder(c.Request.Context(), c.Param("order_number"))
	if err != nil {
		status, kind := mapError(err)
		errorResponse(c, status, kind, err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves a persisted order through the review flow, e.g.
// approving a pending_review order.
func (h *DecisionHandler) UpdateOrderStatus(c *gin.Context) {
	if h.orders == nil {
		errorResponse(c, http.StatusNotImplemented, domain.KindInvalidInput, "order persistence is not enabled")
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.KindInvalidInput, "invalid request body: "+err.Error())
		return
	}
	switch req.Status {
	case domain.StatusExecuted, domain.StatusPendingReview, domain.StatusNoAction:
	default:
		errorResponse(c, http.StatusBadRequest, domain.KindInvalidInput, "unknown status: "+req.Status)
		return
	}

	orderNumber := c.Param("order_number")
	if err := h.orders.UpdateOrderStatus(c.Request.Context(), orderNumber, req.Status); err != nil {
		status, kind := mapError(err)
		errorResponse(c, status, kind, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_number": orderNumber, "status": req.Status})
}

func mapError(err error) (int, domain.ErrorKind) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest, kind
	case domain.KindNotFound:
		return http.StatusNotFound, kind
	case domain.KindAllProvidersFailed:
		return http.StatusBadGateway, kind
	}
	if errors.Is(err, context.Canceled) {
		if kind == "" {
			kind = domain.KindCanceled
		}
		return http.StatusRequestTimeout, kind
	}
	return http.StatusInternalServerError, kind
}

func errorResponse(c *gin.Context, status int, kind domain.ErrorKind, message string) {
	log.Error().Str("kind", string(kind)).Msg(message)
	c.JSON(status, gin.H{
		"status":     "error",
		"error_code": string(kind),
		"message":    message,
	})
}
