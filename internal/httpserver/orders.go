package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	reviewsvc "storefront/internal/service/review"
)

type updateOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

type submitReviewRequest struct {
	ProductID string `json:"product" binding:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *handlers) placeOrder(c *gin.Context) {
	o, err := h.OrderSvc.Place(c.Request.Context(), principal(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(*o))
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.OrderSvc.List(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrders(orders))
}

func (h *handlers) getOrder(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	o, err := h.OrderSvc.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*o))
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	var req updateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.OrderSvc.UpdateStatus(c.Request.Context(), principal(c), id, req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*o))
}

func (h *handlers) submitReview(c *gin.Context) {
	var req submitReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	if !validID(req.ProductID) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	rv, err := h.ReviewSvc.Submit(c.Request.Context(), principal(c).UserID, reviewsvc.SubmitInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}
