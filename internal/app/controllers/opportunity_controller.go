package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/services"
	"github.com/campuslink/campuslink/internal/middleware"
)

// OpportunityController handles the opportunity endpoints
type OpportunityController struct {
	oppService services.OpportunityService
}

// NewOpportunityController creates a new OpportunityController
func NewOpportunityController(oppService services.OpportunityService) *OpportunityController {
	return &OpportunityController{oppService: oppService}
}

// List godoc
// @Summary List current opportunities
// @Description Dashboard listing: opportunities whose window covers today, plus their categories
// @Tags opportunities
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityListResponse}
// @Router /opportunities [get]
func (ctrl *OpportunityController) List(c *gin.Context) {
	resp, err := ctrl.oppService.ListCurrent(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Get godoc
// @Summary Get an opportunity
// @Tags opportunities
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityDetailResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /opportunities/{id} [get]
func (ctrl *OpportunityController) Get(c *gin.Context) {
	oppID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := ctrl.oppService.Get(c.Request.Context(), oppID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Create godoc
// @Summary Post an opportunity
// @Description Representative only. Accepts multipart form data with an optional image.
// @Tags opportunities
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param startDate formData string true "Start date (YYYY-MM-DD)"
// @Param endDate formData string false "End date (YYYY-MM-DD)"
// @Param maxSignups formData string false "Signup capacity"
// @Param image formData file false "Opportunity image"
// @Success 201 {object} dto.APIResponse{data=dto.OpportunityDetailResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /organizations/{id}/opportunities [post]
func (ctrl *OpportunityController) Create(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateOpportunityRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	image, _ := c.FormFile("image")

	resp, err := ctrl.oppService.Create(c.Request.Context(), userID, orgID, req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Update godoc
// @Summary Update an opportunity
// @Description Owning representative only
// @Tags opportunities
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param startDate formData string true "Start date (YYYY-MM-DD)"
// @Param endDate formData string false "End date (YYYY-MM-DD)"
// @Param maxSignups formData string false "Signup capacity"
// @Param image formData file false "Replacement image"
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityDetailResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /opportunities/{id} [put]
func (ctrl *OpportunityController) Update(c *gin.Context) {
	oppID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOpportunityRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	image, _ := c.FormFile("image")

	resp, err := ctrl.oppService.Update(c.Request.Context(), userID, oppID, req, image)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Delete godoc
// @Summary Delete an opportunity
// @Description Owning representative only. Removes the opportunity with its signups.
// @Tags opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /opportunities/{id} [delete]
func (ctrl *OpportunityController) Delete(c *gin.Context) {
	oppID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := ctrl.oppService.Delete(c.Request.Context(), userID, oppID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "opportunity deleted"}))
}
