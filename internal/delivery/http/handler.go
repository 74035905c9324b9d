package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/identity"
	"github.com/egannguyen/vayam-storefront/internal/service"
)

// Sessions resolves cart identities and manages the session cookie.
type Sessions interface {
	identity.Resolver
	identity.Authenticator
	SetSession(w http.ResponseWriter, token string)
	ClearSession(w http.ResponseWriter)
}

// Services groups the application services the handlers call into.
type Services struct {
	Carts    *service.CartService
	Catalog  *service.CatalogService
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Wishlist *service.WishlistService
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler handles HTTP requests for the application.
type Handler struct {
	svc      Services
	sessions Sessions
	checks   map[string]HealthCheck
	logger   *zap.Logger
}

func NewHandler(svc Services, sessions Sessions, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		checks:   checks,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/health", h.handleHealth)

	api.GET("/products", h.handleListProducts)
	api.GET("/products/:id", h.handleGetProduct)

	cart := api.Group("/cart")
	cart.GET("", h.handleGetCart)
	cart.POST("", h.handleAddToCart)
	cart.PUT("/:itemId", h.handleUpdateCartItem)
	cart.DELETE("/:itemId", h.handleRemoveCartItem)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.handleRegister)
	authGroup.POST("/signin", h.handleSignIn)
	authGroup.POST("/signout", h.handleSignOut)

	profile := api.Group("/profile", h.requireUser)
	profile.GET("", h.handleGetProfile)
	profile.PUT("", h.handleUpdateProfile)
	profile.DELETE("", h.handleDeleteProfile)
	profile.PUT("/notifications", h.handleUpdateNotifications)

	profile.GET("/addresses", h.handleListAddresses)
	profile.POST("/addresses", h.handleCreateAddress)
	profile.PUT("/addresses/:id", h.handleUpdateAddress)
	profile.DELETE("/addresses/:id", h.handleDeleteAddress)

	profile.GET("/wishlist", h.handleListWishlist)
	profile.POST("/wishlist", h.handleAddToWishlist)
	profile.DELETE("/wishlist/:id", h.handleRemoveFromWishlist)
}

func (h *Handler) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			status[name] = "down"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "up"
	}
	c.JSON(code, status)
}
