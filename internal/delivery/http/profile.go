package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/service"
)

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) handleGetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *Handler) handleUpdateProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}

	user, err := h.svc.Profiles.Update(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

func (h *Handler) handleUpdateNotifications(c *gin.Context) {
	var prefs entity.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.fail(c, errBadBody)
		return
	}

	if err := h.svc.Profiles.UpdateNotifications(c.Request.Context(), currentUser(c).ID, prefs); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification preferences updated", "notifications": prefs})
}

func (h *Handler) handleDeleteProfile(c *gin.Context) {
	if err := h.svc.Profiles.Delete(c.Request.Context(), currentUser(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	h.sessions.ClearSession(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *Handler) handleListAddresses(c *gin.Context) {
	addresses, err := h.svc.Profiles.ListAddresses(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) handleCreateAddress(c *gin.Context) {
	var req entity.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}

	address, err := h.svc.Profiles.CreateAddress(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *Handler) handleUpdateAddress(c *gin.Context) {
	var patch entity.AddressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.fail(c, errBadBody)
		return
	}

	address, err := h.svc.Profiles.UpdateAddress(c.Request.Context(), currentUser(c).ID, c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *Handler) handleDeleteAddress(c *gin.Context) {
	if err := h.svc.Profiles.DeleteAddress(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

func (h *Handler) handleListWishlist(c *gin.Context) {
	items, err := h.svc.Wishlist.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) handleAddToWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}

	item, created, err := h.svc.Wishlist.Add(c.Request.Context(), currentUser(c).ID, req.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Item already in wishlist", "item": item})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to wishlist", "item": item})
}

func (h *Handler) handleRemoveFromWishlist(c *gin.Context) {
	if err := h.svc.Wishlist.Remove(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}
