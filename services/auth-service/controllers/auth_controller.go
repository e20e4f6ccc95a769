package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/auth-service/models"
	"github.com/yashrajoria/shopswift/services/auth-service/services"
	"github.com/yashrajoria/shopswift/services/auth-service/types"
	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
)

type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*services.Session, error)
	Login(ctx context.Context, req types.LoginRequest) (*services.Session, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	AddAddress(ctx context.Context, userID string, req types.AddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req types.AddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Domain string
	Secure bool
}

type AuthController struct {
	authService IAuthService
	cookie      CookieOptions
}

func NewAuthController(authService IAuthService, cookie CookieOptions) *AuthController {
	return &AuthController{authService: authService, cookie: cookie}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	session, err := ac.authService.Register(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	ac.setSessionCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": session.User})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}

	session, err := ac.authService.Login(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	ac.setSessionCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": session.User})
}

func (ac *AuthController) Current(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		apperrors.Respond(c, apperrors.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Current user fetched successfully", "user": identity})
}

// Logout works with or without a valid session; the cookie is always cleared.
func (ac *AuthController) Logout(c *gin.Context) {
	token, _ := auth.ExtractToken(c.Request)

	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", ac.cookie.Domain, ac.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetUserInternal serves service-to-service user lookups.
func (ac *AuthController) GetUserInternal(c *gin.Context) {
	user, err := ac.authService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, maxAge, "/", ac.cookie.Domain, ac.cookie.Secure, true)
}
