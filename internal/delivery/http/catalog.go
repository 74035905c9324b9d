package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/egannguyen/vayam-storefront/internal/service"
)

func (h *Handler) handleListProducts(c *gin.Context) {
	inStock, _ := strconv.ParseBool(c.Query("inStock"))
	filter, err := service.ParseFilter(c.Query("category"), inStock)
	if err != nil {
		h.fail(c, err)
		return
	}

	products, err := h.svc.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) handleGetProduct(c *gin.Context) {
	product, err := h.svc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
