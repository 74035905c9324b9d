package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egannguyen/vayam-storefront/internal/entity"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user.Public()})
}

func (h *Handler) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errBadBody)
		return
	}

	session, err := h.svc.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.sessions.SetSession(c.Writer, session.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"user":    session.User.Public(),
		"token":   session.Token,
	})
}

func (h *Handler) handleSignOut(c *gin.Context) {
	h.sessions.ClearSession(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// requireUser aborts with 401 unless the request carries a valid session.
func (h *Handler) requireUser(c *gin.Context) {
	user, err := h.sessions.Authenticate(c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *entity.User {
	return c.MustGet(userKey).(*entity.User)
}
