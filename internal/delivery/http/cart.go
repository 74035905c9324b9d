package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) handleGetCart(c *gin.Context) {
	id, err := h.sessions.Resolve(c.Writer, c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}

	view, err := h.svc.Carts.GetCart(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) handleAddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	id, err := h.sessions.Resolve(c.Writer, c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}

	line, err := h.svc.Carts.AddItem(c.Request.Context(), id, req.ProductID, quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart", "item": line})
}

// Item routes only peek at the identity: they never mint a guest session, and
// the zero identity owns no item.
func (h *Handler) handleUpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}
	if req.Quantity == nil {
		h.fail(c, entity.ErrInvalidQuantity)
		return
	}

	id, err := h.sessions.Peek(c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}

	line, err := h.svc.Carts.UpdateItemQuantity(c.Request.Context(), id, c.Param("itemId"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "item": line})
}

func (h *Handler) handleRemoveCartItem(c *gin.Context) {
	id, err := h.sessions.Peek(c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.svc.Carts.RemoveItem(c.Request.Context(), id, c.Param("itemId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}
