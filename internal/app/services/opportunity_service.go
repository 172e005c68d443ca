package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	orgauth "github.com/campuslink/campuslink/internal/app/auth"
	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/repositories"
	"github.com/campuslink/campuslink/internal/db"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/imagehost"
	"github.com/campuslink/campuslink/internal/pkg/logger"
	"github.com/campuslink/campuslink/internal/pkg/validation"
)

// OpportunityService manages the opportunity lifecycle and the public
// dashboard listing.
type OpportunityService interface {
	Create(ctx context.Context, userID, orgID int64, req dto.CreateOpportunityRequest, image *multipart.FileHeader) (*dto.OpportunityDetailResponse, error)
	Get(ctx context.Context, oppID int64) (*dto.OpportunityDetailResponse, error)
	Update(ctx context.Context, userID, oppID int64, req dto.UpdateOpportunityRequest, image *multipart.FileHeader) (*dto.OpportunityDetailResponse, error)
	Delete(ctx context.Context, userID, oppID int64) error
	ListCurrent(ctx context.Context) (*dto.OpportunityListResponse, error)
	ListCurrentForOrg(ctx context.Context, orgID int64) ([]dto.OpportunityResponse, error)
}

type opportunityService struct {
	oppStore     repositories.OpportunityStore
	orgStore     repositories.OrganizationStore
	signupStore  repositories.SignupStore
	authz        orgauth.AuthorizationService
	txRunner     db.TxRunner
	imageHost    imagehost.ImageHost
	legacyWindow bool
}

// NewOpportunityService creates a new OpportunityService. legacyWindow
// selects the historical dashboard visibility predicate instead of the
// corrected one.
func NewOpportunityService(
	oppStore repositories.OpportunityStore,
	orgStore repositories.OrganizationStore,
	signupStore repositories.SignupStore,
	authz orgauth.AuthorizationService,
	txRunner db.TxRunner,
	imageHost imagehost.ImageHost,
	legacyWindow bool,
) OpportunityService {
	return &opportunityService{
		oppStore:     oppStore,
		orgStore:     orgStore,
		signupStore:  signupStore,
		authz:        authz,
		txRunner:     txRunner,
		imageHost:    imageHost,
		legacyWindow: legacyWindow,
	}
}

// oppFields are the validated, parsed form fields of a create or update
type oppFields struct {
	title       string
	description string
	category    string
	startDate   time.Time
	endDate     *time.Time
	maxSignups  *int
}

func parseOppFields(title, description, category, startDate, endDate, maxSignups string, requireFutureStart bool) (*oppFields, error) {
	title = strings.TrimSpace(title)
	category = strings.TrimSpace(category)

	errs := &validation.Errors{}
	errs.Check(validation.NotEmpty(title), "title", "title is required")
	errs.Check(validation.Description(description), "description", "description is required")
	errs.Check(validation.NotEmpty(category), "category", "category is required")
	errs.Check(validation.Date(startDate), "startDate", "start date must be a valid date (YYYY-MM-DD)")
	if requireFutureStart && validation.Date(startDate) {
		errs.Check(validation.NotPast(startDate), "startDate", "start date cannot be in the past")
	}
	if endDate != "" {
		errs.Check(validation.Date(endDate), "endDate", "end date must be a valid date (YYYY-MM-DD)")
		if validation.Date(startDate) && validation.Date(endDate) {
			errs.Check(validation.StartEndDates(startDate, endDate), "endDate", "end date cannot be before start date")
		}
	}
	if maxSignups != "" {
		errs.Check(validation.MaxSignups(maxSignups), "maxSignups", "max signups must be a positive number")
	}
	if errs.HasErrors() {
		return nil, validationError(errs)
	}

	fields := &oppFields{
		title:       title,
		description: description,
		category:    category,
	}
	fields.startDate, _ = time.Parse(validation.DateLayout, startDate)
	if endDate != "" {
		end, _ := time.Parse(validation.DateLayout, endDate)
		fields.endDate = &end
	}
	if maxSignups != "" {
		n, _ := strconv.Atoi(maxSignups)
		fields.maxSignups = &n
	}
	return fields, nil
}

// Create posts a new opportunity under an organization the user represents.
// Titles are unique within the organization.
func (s *opportunityService) Create(ctx context.Context, userID, orgID int64, req dto.CreateOpportunityRequest, image *multipart.FileHeader) (*dto.OpportunityDetailResponse, error) {
	if _, err := s.authz.ValidateRepresentative(ctx, userID, orgID); err != nil {
		return nil, err
	}

	fields, err := parseOppFields(req.Title, req.Description, req.Category, req.StartDate, req.EndDate, req.MaxSignups, true)
	if err != nil {
		return nil, err
	}

	if existing, err := s.oppStore.GetByOrgAndTitle(ctx, orgID, fields.title); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrOpportunityTitleTaken
	}

	var imageURL *string
	if image != nil {
		url, err := s.imageHost.Upload(image)
		if err != nil {
			logger.Error().Err(err).Msg("Image upload failed during opportunity creation")
			return nil, apperrors.NewUpstreamError("image upload failed")
		}
		imageURL = &url
	}

	opp := &models.Opportunity{
		OrgID:       orgID,
		Title:       fields.title,
		Description: fields.description,
		Category:    fields.category,
		ImageURL:    imageURL,
		StartDate:   fields.startDate,
		EndDate:     fields.endDate,
		MaxSignups:  fields.maxSignups,
	}

	id, err := s.oppStore.Create(ctx, opp)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("oppID", id).Int64("orgID", orgID).Msg("Opportunity created")

	return s.Get(ctx, id)
}

func (s *opportunityService) Get(ctx context.Context, oppID int64) (*dto.OpportunityDetailResponse, error) {
	opp, err := s.oppStore.GetByID(ctx, oppID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, apperrors.ErrOpportunityNotFound
	}

	org, err := s.orgStore.GetByID(ctx, opp.OrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.ErrOpportunityNotFound
	}

	count, err := s.signupStore.CountForOpp(ctx, oppID)
	if err != nil {
		return nil, err
	}

	return &dto.OpportunityDetailResponse{
		OpportunityResponse: *mapOpportunity(opp),
		Description:         opp.Description,
		OrgRepID:            org.RepID,
		SignupCount:         count,
	}, nil
}

// Update applies the submitted fields after the ownership check. The start
// date only needs to lie in the future when it actually changes, so ongoing
// opportunities stay editable.
func (s *opportunityService) Update(ctx context.Context, userID, oppID int64, req dto.UpdateOpportunityRequest, image *multipart.FileHeader) (*dto.OpportunityDetailResponse, error) {
	opp, err := s.authz.ValidateOpportunityOwnership(ctx, userID, oppID)
	if err != nil {
		return nil, err
	}

	requireFutureStart := req.StartDate != opp.StartDate.Format(validation.DateLayout)
	fields, err := parseOppFields(req.Title, req.Description, req.Category, req.StartDate, req.EndDate, req.MaxSignups, requireFutureStart)
	if err != nil {
		return nil, err
	}

	if fields.title != opp.Title {
		if existing, err := s.oppStore.GetByOrgAndTitle(ctx, opp.OrgID, fields.title); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != oppID {
			return nil, apperrors.ErrOpportunityTitleTaken
		}
	}

	if image == nil && fieldsUnchanged(fields, opp) {
		return s.Get(ctx, oppID)
	}

	oldImageURL := opp.ImageURL
	if image != nil {
		url, err := s.imageHost.Upload(image)
		if err != nil {
			logger.Error().Err(err).Msg("Image upload failed during opportunity update")
			return nil, apperrors.NewUpstreamError("image upload failed")
		}
		opp.ImageURL = &url
	}

	opp.Title = fields.title
	opp.Description = fields.description
	opp.Category = fields.category
	opp.StartDate = fields.startDate
	opp.EndDate = fields.endDate
	opp.MaxSignups = fields.maxSignups

	if err := s.oppStore.Update(ctx, opp); err != nil {
		return nil, err
	}

	if image != nil && oldImageURL != nil {
		if err := s.imageHost.Delete(*oldImageURL); err != nil {
			logger.Warn().Err(err).Str("url", *oldImageURL).Msg("Failed to remove replaced opportunity image")
		}
	}

	logger.Info().Int64("oppID", oppID).Msg("Opportunity updated")

	return s.Get(ctx, oppID)
}

// fieldsUnchanged reports whether the submitted fields match the stored row,
// so identical updates skip the write.
func fieldsUnchanged(fields *oppFields, opp *models.Opportunity) bool {
	if fields.title != opp.Title || fields.description != opp.Description || fields.category != opp.Category {
		return false
	}
	if !fields.startDate.Equal(opp.StartDate) {
		return false
	}
	if (fields.endDate == nil) != (opp.EndDate == nil) {
		return false
	}
	if fields.endDate != nil && !fields.endDate.Equal(*opp.EndDate) {
		return false
	}
	if (fields.maxSignups == nil) != (opp.MaxSignups == nil) {
		return false
	}
	if fields.maxSignups != nil && *fields.maxSignups != *opp.MaxSignups {
		return false
	}
	return true
}

// Delete removes an opportunity and its signups in one transaction
func (s *opportunityService) Delete(ctx context.Context, userID, oppID int64) error {
	opp, err := s.authz.ValidateOpportunityOwnership(ctx, userID, oppID)
	if err != nil {
		return err
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.oppStore.DeleteTx(ctx, tx, oppID)
	})
	if err != nil {
		return err
	}

	if opp.ImageURL != nil {
		if err := s.imageHost.Delete(*opp.ImageURL); err != nil {
			logger.Warn().Err(err).Str("url", *opp.ImageURL).Msg("Failed to remove deleted opportunity image")
		}
	}

	logger.Info().Int64("oppID", oppID).Msg("Opportunity deleted")
	return nil
}

// ListCurrent returns the dashboard listing: every opportunity whose window
// covers today, plus the distinct categories they span for filtering.
func (s *opportunityService) ListCurrent(ctx context.Context) (*dto.OpportunityListResponse, error) {
	today := truncateToDate(time.Now())
	opps, err := s.oppStore.ListCurrent(ctx, today, s.legacyWindow)
	if err != nil {
		return nil, err
	}

	result := make([]dto.OpportunityResponse, 0, len(opps))
	seen := make(map[string]struct{})
	var categories []string
	for i := range opps {
		result = append(result, *mapOpportunity(&opps[i]))
		display := humanizeCategory(opps[i].Category)
		if _, ok := seen[display]; !ok {
			seen[display] = struct{}{}
			categories = append(categories, display)
		}
	}
	sort.Strings(categories)

	return &dto.OpportunityListResponse{
		Opportunities: result,
		Categories:    categories,
	}, nil
}

func (s *opportunityService) ListCurrentForOrg(ctx context.Context, orgID int64) ([]dto.OpportunityResponse, error) {
	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}

	today := truncateToDate(time.Now())
	opps, err := s.oppStore.ListCurrentForOrg(ctx, orgID, today, s.legacyWindow)
	if err != nil {
		return nil, err
	}

	result := make([]dto.OpportunityResponse, 0, len(opps))
	for i := range opps {
		result = append(result, *mapOpportunity(&opps[i]))
	}
	return result, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// humanizeCategory turns a stored category key like "community_service"
// into its display form "Community Service".
func humanizeCategory(category string) string {
	words := strings.Split(strings.ReplaceAll(category, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func mapOpportunity(opp *models.Opportunity) *dto.OpportunityResponse {
	return &dto.OpportunityResponse{
		ID:         opp.ID,
		OrgID:      opp.OrgID,
		OrgName:    opp.OrgName,
		Title:      opp.Title,
		Category:   opp.Category,
		ImageURL:   opp.ImageURL,
		StartDate:  formatDate(opp.StartDate),
		EndDate:    formatDatePtr(opp.EndDate),
		MaxSignups: opp.MaxSignups,
	}
}
