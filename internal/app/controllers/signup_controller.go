package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/services"
	"github.com/campuslink/campuslink/internal/middleware"
)

// SignupController handles the signup endpoints
type SignupController struct {
	signupService services.SignupService
}

// NewSignupController creates a new SignupController
func NewSignupController(signupService services.SignupService) *SignupController {
	return &SignupController{signupService: signupService}
}

// Create godoc
// @Summary Sign up for an opportunity
// @Description Admits the caller unless the opportunity is full or they already signed up
// @Tags signups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 201 {object} dto.APIResponse{data=dto.SignupResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /opportunities/{id}/signups [post]
func (ctrl *SignupController) Create(c *gin.Context) {
	oppID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)

	resp, err := ctrl.signupService.Create(c.Request.Context(), userID, oppID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Delete godoc
// @Summary Withdraw a signup
// @Description Allowed for the signed-up user and the organization's representative
// @Tags signups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Signup ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /signups/{id} [delete]
func (ctrl *SignupController) Delete(c *gin.Context) {
	signupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := ctrl.signupService.Delete(c.Request.Context(), userID, signupID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "signup deleted"}))
}
