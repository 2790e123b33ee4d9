package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authgate "github.com/MrEthical07/authgate"
)

type profileUpdateRequest struct {
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email,max=255"`
}

type preferencesUpdateRequest struct {
	Locale string `json:"locale" binding:"required,bcp47_language_tag"`
	Theme  string `json:"theme" binding:"required,oneof=light dark"`
}

type changePasswordRequest struct {
	CurrentPassword      string `json:"currentPassword" binding:"required"`
	NewPassword          string `json:"newPassword" binding:"required,min=8,max=200"`
	ConfirmationPassword string `json:"confirmationPassword" binding:"required"`
}

func (a *API) currentUser(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		a.abortError(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	c.JSON(http.StatusOK, toUserView(user))
}

func (a *API) updateProfile(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		a.abortError(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, http.StatusBadRequest, "Invalid Input", err.Error())
		return
	}

	updated, err := a.engine.UpdateProfile(c.Request.Context(), user.UserID, authgate.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		a.abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(updated))
}

func (a *API) updatePreferences(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		a.abortError(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req preferencesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, http.StatusBadRequest, "Invalid Input", err.Error())
		return
	}

	updated, err := a.engine.UpdatePreferences(c.Request.Context(), user.UserID, authgate.PreferencesUpdate{
		Locale: req.Locale,
		Theme:  req.Theme,
	})
	if err != nil {
		a.abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(updated))
}

func (a *API) changePassword(c *gin.Context) {
	user, ok := principal(c)
	if !ok {
		a.abortError(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abortError(c, http.StatusBadRequest, "Invalid Input", err.Error())
		return
	}

	err := a.engine.ChangePassword(
		c.Request.Context(),
		user.UserID,
		req.CurrentPassword,
		req.NewPassword,
		req.ConfirmationPassword,
	)
	if err != nil {
		a.abortMapped(c, err)
		return
	}
	c.Status(http.StatusOK)
}
