package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	catalogsvc "storefront/internal/service/catalog"
)

type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.CatalogSvc.ListProducts(c.Request.Context(), productrepo.ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProducts(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	p, err := h.CatalogSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

func (h *handlers) saveProduct(c *gin.Context) {
	var req catalogsvc.ProductInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.CatalogSvc.SaveProduct(c.Request.Context(), principal(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toProduct(*p))
}

func (h *handlers) setStock(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	var req stockRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.CatalogSvc.SetStock(c.Request.Context(), principal(c), id, *req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

func (h *handlers) listReviews(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	reviews, err := h.ReviewSvc.ListByProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.CatalogSvc.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	c.JSON(http.StatusOK, cats)
}

func (h *handlers) getCategory(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		writeError(c, h.logger, domain.ErrNotFound)
		return
	}
	cat, err := h.CatalogSvc.GetCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}
