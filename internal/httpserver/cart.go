package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type addCartItemRequest struct {
	ProductID string `json:"product" binding:"required"`
	Quantity  *int   `json:"quantity"`
	Override  bool   `json:"override_quantity"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.CartSvc.Get(c.Request.Context(), principal(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCart(*cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if !validID(req.ProductID) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	line, err := h.CartSvc.AddItem(c.Request.Context(), principal(c).UserID, cartsvc.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Override:  req.Override,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "cart updated", "item": toCartItem(*line)})
}

func (h *handlers) updateCartItem(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.CartSvc.UpdateQuantity(c.Request.Context(), principal(c), id, *req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "cart updated", "item": toCartItem(*line)})
}

func (h *handlers) removeCartItem(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	if err := h.CartSvc.RemoveItem(c.Request.Context(), principal(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.CartSvc.Clear(c.Request.Context(), principal(c).UserID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
