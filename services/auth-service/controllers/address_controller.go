package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/shopswift/services/auth-service/types"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/middleware"
	"github.com/yashrajoria/shopswift/services/common/validation"
)

func (ac *AuthController) GetAddresses(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	addresses, err := ac.authService.ListAddresses(c.Request.Context(), identity.ID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (ac *AuthController) CreateAddress(c *gin.Context) {
	var req types.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	identity, _ := middleware.CurrentIdentity(c)

	addr, err := ac.authService.AddAddress(c.Request.Context(), identity.ID, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address added", "address": addr})
}

func (ac *AuthController) UpdateAddress(c *gin.Context) {
	var req types.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, validation.BindError(err))
		return
	}
	identity, _ := middleware.CurrentIdentity(c)

	addr, err := ac.authService.UpdateAddress(c.Request.Context(), identity.ID, c.Param("id"), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated successfully", "address": addr})
}

func (ac *AuthController) DeleteAddress(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	if err := ac.authService.DeleteAddress(c.Request.Context(), identity.ID, c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully"})
}
