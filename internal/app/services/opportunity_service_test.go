package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgauth "github.com/campuslink/campuslink/internal/app/auth"
	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/validation"
)

func newOppFixture(legacyWindow bool) (OpportunityService, *memOppStore, *memOrgStore, int64) {
	orgStore := newMemOrgStore()
	orgID, _ := orgStore.Create(context.Background(), &models.Organization{Name: "Robotics Club", Type: "club", Email: "club@university.edu", RepID: 1})

	oppStore := newMemOppStore()
	signupStore := newMemSignupStore()
	authz := orgauth.NewAuthorizationService(orgStore, oppStore, signupStore)
	svc := NewOpportunityService(oppStore, orgStore, signupStore, authz, &fakeTxRunner{}, &fakeImageHost{}, legacyWindow)
	return svc, oppStore, orgStore, orgID
}

func validOppRequest() dto.CreateOpportunityRequest {
	return dto.CreateOpportunityRequest{
		Title:       "Build Night",
		Description: "Weekly robot assembly session",
		Category:    "engineering",
		StartDate:   time.Now().AddDate(0, 0, 7).Format(validation.DateLayout),
	}
}

func TestOpportunityCreate(t *testing.T) {
	svc, _, _, orgID := newOppFixture(false)

	resp, err := svc.Create(context.Background(), 1, orgID, validOppRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Build Night", resp.Title)
	assert.Equal(t, orgID, resp.OrgID)
	assert.Equal(t, int64(1), resp.OrgRepID)
	assert.Nil(t, resp.MaxSignups)
	assert.Equal(t, 0, resp.SignupCount)
}

func TestOpportunityCreateNotRepresentative(t *testing.T) {
	svc, _, _, orgID := newOppFixture(false)

	_, err := svc.Create(context.Background(), 2, orgID, validOppRequest(), nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestOpportunityCreateValidation(t *testing.T) {
	svc, _, _, orgID := newOppFixture(false)

	tests := []struct {
		name   string
		mutate func(*dto.CreateOpportunityRequest)
	}{
		{"empty title", func(r *dto.CreateOpportunityRequest) { r.Title = " " }},
		{"empty rich text description", func(r *dto.CreateOpportunityRequest) { r.Description = "<p><br></p>" }},
		{"past start date", func(r *dto.CreateOpportunityRequest) {
			r.StartDate = time.Now().AddDate(0, 0, -1).Format(validation.DateLayout)
		}},
		{"malformed start date", func(r *dto.CreateOpportunityRequest) { r.StartDate = "next tuesday" }},
		{"end before start", func(r *dto.CreateOpportunityRequest) {
			r.EndDate = time.Now().AddDate(0, 0, 3).Format(validation.DateLayout)
		}},
		{"non-positive capacity", func(r *dto.CreateOpportunityRequest) { r.MaxSignups = "0" }},
		{"non-numeric capacity", func(r *dto.CreateOpportunityRequest) { r.MaxSignups = "lots" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOppRequest()
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), 1, orgID, req, nil)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestOpportunityCreateDuplicateTitle(t *testing.T) {
	svc, _, _, orgID := newOppFixture(false)

	_, err := svc.Create(context.Background(), 1, orgID, validOppRequest(), nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, orgID, validOppRequest(), nil)
	assert.ErrorIs(t, err, apperrors.ErrOpportunityTitleTaken)
}

func TestOpportunityCreateWithCapacityAndEndDate(t *testing.T) {
	svc, _, _, orgID := newOppFixture(false)

	req := validOppRequest()
	req.EndDate = time.Now().AddDate(0, 0, 14).Format(validation.DateLayout)
	req.MaxSignups = "25"

	resp, err := svc.Create(context.Background(), 1, orgID, req, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.MaxSignups)
	assert.Equal(t, 25, *resp.MaxSignups)
	require.NotNil(t, resp.EndDate)
	assert.Equal(t, req.EndDate, *resp.EndDate)
}

func TestOpportunityUpdate(t *testing.T) {
	svc, _, _, orgID := newOppFixture(false)

	created, err := svc.Create(context.Background(), 1, orgID, validOppRequest(), nil)
	require.NoError(t, err)

	req := dto.UpdateOpportunityRequest{
		Title:       "Build Night v2",
		Description: "Now with more robots",
		Category:    "engineering",
		StartDate:   created.StartDate,
		MaxSignups:  "10",
	}
	resp, err := svc.Update(context.Background(), 1, created.ID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Build Night v2", resp.Title)
	require.NotNil(t, resp.MaxSignups)
	assert.Equal(t, 10, *resp.MaxSignups)
}

// An unchanged start date stays valid even once it lies in the past.
func TestOpportunityUpdateKeepsPastStartDate(t *testing.T) {
	svc, oppStore, _, orgID := newOppFixture(false)

	pastStart := time.Now().AddDate(0, 0, -10).Truncate(24 * time.Hour)
	id := oppStore.add(&models.Opportunity{
		OrgID:       orgID,
		Title:       "Ongoing Mentoring",
		Description: "Semester-long mentoring",
		Category:    "mentoring",
		StartDate:   pastStart,
	})

	req := dto.UpdateOpportunityRequest{
		Title:       "Ongoing Mentoring",
		Description: "Semester-long mentoring, updated",
		Category:    "mentoring",
		StartDate:   pastStart.Format(validation.DateLayout),
	}
	_, err := svc.Update(context.Background(), 1, id, req, nil)
	assert.NoError(t, err)

	// Moving the start date requires a future date again.
	req.StartDate = time.Now().AddDate(0, 0, -3).Format(validation.DateLayout)
	_, err = svc.Update(context.Background(), 1, id, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestOpportunityDelete(t *testing.T) {
	svc, oppStore, _, orgID := newOppFixture(false)

	created, err := svc.Create(context.Background(), 1, orgID, validOppRequest(), nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.Delete(context.Background(), 1, created.ID))

	remaining, err := oppStore.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

type listOppStore struct {
	*memOppStore
	lastLegacy bool
	listed     []models.Opportunity
}

func (s *listOppStore) ListCurrent(ctx context.Context, today time.Time, legacyWindow bool) ([]models.Opportunity, error) {
	s.lastLegacy = legacyWindow
	return s.listed, nil
}

func TestOpportunityListCurrent(t *testing.T) {
	orgStore := newMemOrgStore()
	oppStore := &listOppStore{memOppStore: newMemOppStore()}
	signupStore := newMemSignupStore()
	authz := orgauth.NewAuthorizationService(orgStore, oppStore, signupStore)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	oppStore.listed = []models.Opportunity{
		{ID: 1, OrgID: 1, Title: "Build Night", Category: "community_service", StartDate: start, OrgName: "Robotics Club"},
		{ID: 2, OrgID: 1, Title: "Outreach Day", Category: "academic", StartDate: start, OrgName: "Robotics Club"},
		{ID: 3, OrgID: 1, Title: "Cleanup Drive", Category: "community_service", StartDate: start, OrgName: "Robotics Club"},
	}

	svc := NewOpportunityService(oppStore, orgStore, signupStore, authz, &fakeTxRunner{}, &fakeImageHost{}, false)

	resp, err := svc.ListCurrent(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Opportunities, 3)
	assert.False(t, oppStore.lastLegacy)

	// Categories are deduplicated, humanized and sorted.
	assert.Equal(t, []string{"Academic", "Community Service"}, resp.Categories)
	assert.Equal(t, "Robotics Club", resp.Opportunities[0].OrgName)
}

func TestOpportunityListCurrentLegacyWindowFlag(t *testing.T) {
	orgStore := newMemOrgStore()
	oppStore := &listOppStore{memOppStore: newMemOppStore()}
	signupStore := newMemSignupStore()
	authz := orgauth.NewAuthorizationService(orgStore, oppStore, signupStore)

	svc := NewOpportunityService(oppStore, orgStore, signupStore, authz, &fakeTxRunner{}, &fakeImageHost{}, true)

	_, err := svc.ListCurrent(context.Background())
	require.NoError(t, err)
	assert.True(t, oppStore.lastLegacy)
}

func TestHumanizeCategory(t *testing.T) {
	assert.Equal(t, "Community Service", humanizeCategory("community_service"))
	assert.Equal(t, "Academic", humanizeCategory("academic"))
	assert.Equal(t, "Arts And Culture", humanizeCategory("arts_and_culture"))
}
