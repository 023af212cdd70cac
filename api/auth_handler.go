package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/identity"
)

type IdentityService interface {
	Authenticator
	Register(ctx context.Context, reg identity.Registration) (identity.Session, error)
	Login(ctx context.Context, creds identity.Credentials) (identity.Session, error)
	Logout(ctx context.Context, accessToken string) error
	UpdateProfile(ctx context.Context, id string, patch identity.ProfilePatch) (identity.Principal, error)
	DeleteAccount(ctx context.Context, id, accessToken string) error
}

type AuthHandler struct {
	service IdentityService
}

func NewAuthHandler(service IdentityService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	session := SessionAuth(h.service)
	rg.POST("/register", h.SignUp)
	rg.POST("/login", h.Login)
	rg.POST("/logout", session, h.Logout)
	rg.GET("/me", session, h.Me)
	rg.PATCH("/me", session, h.UpdateMe)
	rg.DELETE("/me", session, h.DeleteMe)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var reg identity.Registration

	if err := c.BindJSON(&reg); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	session, err := h.service.Register(c.Request.Context(), reg)

	if err != nil {
		c.Error(err)
		if errors.Is(err, identity.ErrInvalidRegistration) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration"})
		} else if errors.Is(err, identity.ErrWeakCredential) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password is too weak"})
		} else if errors.Is(err, identity.ErrDuplicateRegistration) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var creds identity.Credentials

	if err := c.BindJSON(&creds); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	session, err := h.service.Login(c.Request.Context(), creds)

	if err != nil {
		c.Error(err)
		if errors.Is(err, identity.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		} else if errors.Is(err, identity.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		} else if errors.Is(err, identity.ErrRoleMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "account is registered with a different role"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		}
		return
	}

	c.IndentedJSON(http.StatusOK, session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), c.GetString("accessToken")); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, currentUser(c))
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var patch identity.ProfilePatch

	if err := c.BindJSON(&patch); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	principal, err := h.service.UpdateProfile(c.Request.Context(), currentUser(c).ID, patch)

	if err != nil {
		c.Error(err)
		if errors.Is(err, identity.ErrInvalidRegistration) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
		} else if errors.Is(err, identity.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		}
		return
	}

	c.IndentedJSON(http.StatusOK, principal)
}

func (h *AuthHandler) DeleteMe(c *gin.Context) {
	err := h.service.DeleteAccount(c.Request.Context(), currentUser(c).ID, c.GetString("accessToken"))

	if err != nil {
		c.Error(err)
		if errors.Is(err, identity.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete account"})
		}
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "account deleted"})
}
