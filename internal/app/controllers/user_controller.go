package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/services"
	"github.com/campuslink/campuslink/internal/middleware"
)

// UserController handles the profile endpoints
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetProfile godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (ctrl *UserController) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := ctrl.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetSignups godoc
// @Summary List own signups
// @Description Returns the caller's signups with opportunity details
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserSignupResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me/signups [get]
func (ctrl *UserController) GetSignups(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := ctrl.userService.GetSignups(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetOrganizations godoc
// @Summary List own organizations
// @Description Returns the organizations the caller represents
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationListResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me/organizations [get]
func (ctrl *UserController) GetOrganizations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := ctrl.userService.GetOrganizations(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
