package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgauth "github.com/campuslink/campuslink/internal/app/auth"
	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
)

func newSignupFixture(maxSignups *int) (SignupService, *memOppStore, *memSignupStore, *memOrgStore) {
	orgStore := newMemOrgStore()
	orgID, _ := orgStore.Create(context.Background(), &models.Organization{Name: "Robotics Club", Type: "club", Email: "club@university.edu", RepID: 1})

	oppStore := newMemOppStore()
	oppStore.add(&models.Opportunity{
		OrgID:      orgID,
		Title:      "Build Night",
		Category:   "engineering",
		StartDate:  time.Now().AddDate(0, 0, 7),
		MaxSignups: maxSignups,
	})

	signupStore := newMemSignupStore()
	authz := orgauth.NewAuthorizationService(orgStore, oppStore, signupStore)
	svc := NewSignupService(signupStore, oppStore, authz, &fakeTxRunner{})
	return svc, oppStore, signupStore, orgStore
}

func TestSignupCreate(t *testing.T) {
	svc, _, _, _ := newSignupFixture(nil)

	resp, err := svc.Create(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.UserID)
	assert.Equal(t, int64(1), resp.OppID)
	assert.Equal(t, string(models.SignupStatusConfirmed), resp.Status)
}

func TestSignupCreateUnknownOpportunity(t *testing.T) {
	svc, _, _, _ := newSignupFixture(nil)

	_, err := svc.Create(context.Background(), 5, 999)
	assert.ErrorIs(t, err, apperrors.ErrOpportunityNotFound)
}

func TestSignupCreateDuplicate(t *testing.T) {
	svc, _, _, _ := newSignupFixture(nil)

	_, err := svc.Create(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 5, 1)
	assert.ErrorIs(t, err, apperrors.ErrAlreadySignedUp)
}

func TestSignupCreateCapacityReached(t *testing.T) {
	svc, _, _, _ := newSignupFixture(intPtr(2))

	_, err := svc.Create(context.Background(), 5, 1)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 6, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 7, 1)
	assert.ErrorIs(t, err, apperrors.ErrCapacityReached)
}

func TestSignupCreateUnboundedCapacity(t *testing.T) {
	svc, _, signupStore, _ := newSignupFixture(nil)

	for userID := int64(1); userID <= 50; userID++ {
		_, err := svc.Create(context.Background(), userID, 1)
		require.NoError(t, err)
	}

	count, err := signupStore.CountForOpp(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

// With capacity N and many concurrent requests, exactly N must be admitted.
func TestSignupCreateConcurrentAdmission(t *testing.T) {
	const capacity = 10
	const attempts = 50
	svc, _, signupStore, _ := newSignupFixture(intPtr(capacity))

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), userID, 1)
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case assert.ErrorIs(t, err, apperrors.ErrCapacityReached):
			rejected++
		}
	}

	assert.Equal(t, capacity, admitted)
	assert.Equal(t, attempts-capacity, rejected)

	count, err := signupStore.CountForOpp(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}

func TestSignupDelete(t *testing.T) {
	svc, _, signupStore, _ := newSignupFixture(nil)

	resp, err := svc.Create(context.Background(), 5, 1)
	require.NoError(t, err)

	// A stranger cannot delete it.
	err = svc.Delete(context.Background(), 7, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// The signed-up user can.
	err = svc.Delete(context.Background(), 5, resp.ID)
	require.NoError(t, err)

	count, err := signupStore.CountForOpp(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Deleting again reports not-found.
	err = svc.Delete(context.Background(), 5, resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrSignupNotFound)
}

// A withdrawn seat becomes available again.
func TestSignupDeleteFreesCapacity(t *testing.T) {
	svc, _, _, _ := newSignupFixture(intPtr(1))

	resp, err := svc.Create(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 6, 1)
	assert.ErrorIs(t, err, apperrors.ErrCapacityReached)

	require.NoError(t, svc.Delete(context.Background(), 5, resp.ID))

	_, err = svc.Create(context.Background(), 6, 1)
	assert.NoError(t, err)
}

func TestGetOrganizationSignupsRequiresRepresentative(t *testing.T) {
	svc, _, _, _ := newSignupFixture(nil)

	_, err := svc.GetOrganizationSignups(context.Background(), 2, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.GetOrganizationSignups(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)
}

type rosterSignupStore struct {
	*memSignupStore
	rows []models.OrgSignupRow
}

func (s *rosterSignupStore) ListForOrg(ctx context.Context, orgID int64) ([]models.OrgSignupRow, error) {
	return s.rows, nil
}

func TestGetOrganizationSignupsGrouping(t *testing.T) {
	orgStore := newMemOrgStore()
	orgID, _ := orgStore.Create(context.Background(), &models.Organization{Name: "Robotics Club", Type: "club", Email: "club@university.edu", RepID: 1})

	oppStore := newMemOppStore()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	popular := models.Opportunity{ID: 1, OrgID: orgID, Title: "Build Night", StartDate: start}
	empty := models.Opportunity{ID: 2, OrgID: orgID, Title: "Outreach Day", StartDate: start.AddDate(0, 0, 1)}

	signupStore := &rosterSignupStore{memSignupStore: newMemSignupStore()}
	for i := 0; i < 2; i++ {
		signupStore.rows = append(signupStore.rows, models.OrgSignupRow{
			Opportunity: popular,
			Signup: &models.Signup{
				ID:         int64(i + 1),
				UserID:     int64(i + 10),
				OppID:      popular.ID,
				SignupDate: start,
				Status:     models.SignupStatusConfirmed,
			},
			User: &models.User{
				ID:        int64(i + 10),
				FirstName: fmt.Sprintf("Student%d", i),
				LastName:  "Tester",
				Email:     fmt.Sprintf("student%d@university.edu", i),
			},
		})
	}
	// An opportunity with no signups still appears, with an empty roster.
	signupStore.rows = append(signupStore.rows, models.OrgSignupRow{Opportunity: empty})

	authz := orgauth.NewAuthorizationService(orgStore, oppStore, signupStore)
	svc := NewSignupService(signupStore, oppStore, authz, &fakeTxRunner{})

	resp, err := svc.GetOrganizationSignups(context.Background(), 1, orgID)
	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)

	assert.Equal(t, "Build Night", resp.Groups[0].Title)
	assert.Len(t, resp.Groups[0].Signups, 2)
	assert.Equal(t, "student0@university.edu", resp.Groups[0].Signups[0].Email)

	assert.Equal(t, "Outreach Day", resp.Groups[1].Title)
	assert.Empty(t, resp.Groups[1].Signups)
}
