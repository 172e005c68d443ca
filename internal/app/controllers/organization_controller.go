package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/services"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
)

// OrganizationController handles the organization endpoints
type OrganizationController struct {
	orgService    services.OrganizationService
	signupService services.SignupService
	oppService    services.OpportunityService
}

// NewOrganizationController creates a new OrganizationController
func NewOrganizationController(
	orgService services.OrganizationService,
	signupService services.SignupService,
	oppService services.OpportunityService,
) *OrganizationController {
	return &OrganizationController{
		orgService:    orgService,
		signupService: signupService,
		oppService:    oppService,
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrBadRequest, "invalid id parameter"))
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary Create an organization
// @Description The caller becomes the representative. Accepts multipart form data with an optional image.
// @Tags organizations
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Organization name"
// @Param type formData string true "Organization type"
// @Param email formData string true "Contact email"
// @Param image formData file false "Organization image"
// @Success 201 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /organizations [post]
func (ctrl *OrganizationController) Create(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	image, _ := c.FormFile("image")

	resp, err := ctrl.orgService.Create(c.Request.Context(), userID, req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Get godoc
// @Summary Get an organization
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /organizations/{id} [get]
func (ctrl *OrganizationController) Get(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := ctrl.orgService.Get(c.Request.Context(), orgID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Update godoc
// @Summary Update an organization
// @Description Representative only. Identical values are accepted as a no-op.
// @Tags organizations
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param name formData string true "Organization name"
// @Param type formData string true "Organization type"
// @Param email formData string true "Contact email"
// @Param image formData file false "Replacement image"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationUpdateResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /organizations/{id} [put]
func (ctrl *OrganizationController) Update(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrganizationRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	image, _ := c.FormFile("image")

	resp, err := ctrl.orgService.Update(c.Request.Context(), userID, orgID, req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Delete godoc
// @Summary Delete an organization
// @Description Representative only. Removes the organization with its opportunities and signups.
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /organizations/{id} [delete]
func (ctrl *OrganizationController) Delete(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := ctrl.orgService.Delete(c.Request.Context(), userID, orgID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "organization deleted"}))
}

// ListOpportunities godoc
// @Summary List an organization's current opportunities
// @Tags organizations
// @Produce json
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.OpportunityResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /organizations/{id}/opportunities [get]
func (ctrl *OrganizationController) ListOpportunities(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := ctrl.oppService.ListCurrentForOrg(c.Request.Context(), orgID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListSignups godoc
// @Summary List an organization's signup roster
// @Description Representative only. Groups signups under each opportunity.
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=dto.OrgSignupsResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /organizations/{id}/signups [get]
func (ctrl *OrganizationController) ListSignups(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)

	resp, err := ctrl.signupService.GetOrganizationSignups(c.Request.Context(), userID, orgID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
