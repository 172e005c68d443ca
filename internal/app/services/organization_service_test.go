package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgauth "github.com/campuslink/campuslink/internal/app/auth"
	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
)

func newOrgFixture() (OrganizationService, *memOrgStore, *fakeImageHost) {
	orgStore := newMemOrgStore()
	oppStore := newMemOppStore()
	signupStore := newMemSignupStore()
	authz := orgauth.NewAuthorizationService(orgStore, oppStore, signupStore)
	images := &fakeImageHost{}
	svc := NewOrganizationService(orgStore, authz, &fakeTxRunner{}, images)
	return svc, orgStore, images
}

func validOrgRequest() dto.CreateOrganizationRequest {
	return dto.CreateOrganizationRequest{
		Name:  "Robotics Club",
		Type:  "club",
		Email: "robotics@university.edu",
	}
}

func TestOrganizationCreate(t *testing.T) {
	svc, _, _ := newOrgFixture()

	resp, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Robotics Club", resp.Name)
	assert.Equal(t, int64(1), resp.RepID)
	assert.Nil(t, resp.ImageURL)
}

func TestOrganizationCreateValidation(t *testing.T) {
	svc, _, _ := newOrgFixture()

	req := dto.CreateOrganizationRequest{Name: "", Type: "club", Email: "bad-email"}
	_, err := svc.Create(context.Background(), 1, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestOrganizationCreateDuplicateName(t *testing.T) {
	svc, _, _ := newOrgFixture()

	_, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)

	req := validOrgRequest()
	req.Email = "other@university.edu"
	_, err = svc.Create(context.Background(), 2, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNameTaken)
}

func TestOrganizationUpdate(t *testing.T) {
	svc, _, _ := newOrgFixture()

	created, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)

	req := dto.UpdateOrganizationRequest{Name: "Robotics Society", Type: "society", Email: "robotics@university.edu"}
	resp, err := svc.Update(context.Background(), 1, created.ID, req, nil)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, "Robotics Society", resp.Organization.Name)
}

func TestOrganizationUpdateNotRepresentative(t *testing.T) {
	svc, _, _ := newOrgFixture()

	created, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)

	req := dto.UpdateOrganizationRequest{Name: "Hijacked", Type: "club", Email: "x@university.edu"}
	_, err = svc.Update(context.Background(), 2, created.ID, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

// Keeping the current name is not a conflict; taking another org's name is.
func TestOrganizationUpdateNameConflict(t *testing.T) {
	svc, _, _ := newOrgFixture()

	first, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)

	other := dto.CreateOrganizationRequest{Name: "Chess Club", Type: "club", Email: "chess@university.edu"}
	_, err = svc.Create(context.Background(), 2, other, nil)
	require.NoError(t, err)

	keepOwn := dto.UpdateOrganizationRequest{Name: "Robotics Club", Type: "society", Email: "robotics@university.edu"}
	resp, err := svc.Update(context.Background(), 1, first.ID, keepOwn, nil)
	require.NoError(t, err)
	assert.True(t, resp.Changed)

	takeTheirs := dto.UpdateOrganizationRequest{Name: "Chess Club", Type: "society", Email: "robotics@university.edu"}
	_, err = svc.Update(context.Background(), 1, first.ID, takeTheirs, nil)
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNameTaken)
}

func TestOrganizationUpdateNoChanges(t *testing.T) {
	svc, orgStore, _ := newOrgFixture()

	created, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)
	before, err := orgStore.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	req := dto.UpdateOrganizationRequest{Name: "Robotics Club", Type: "club", Email: "robotics@university.edu"}
	resp, err := svc.Update(context.Background(), 1, created.ID, req, nil)
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Equal(t, "no changes made", resp.Message)

	after, err := orgStore.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

// An image-host failure must not leave a partially created organization.
func TestOrganizationCreateUploadFailure(t *testing.T) {
	svc, orgStore, images := newOrgFixture()
	images.FailUpload = true

	fh := multipartHeader("logo.png")
	_, err := svc.Create(context.Background(), 1, validOrgRequest(), fh)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	existing, err := orgStore.GetByName(context.Background(), "Robotics Club")
	require.NoError(t, err)
	assert.Nil(t, existing)
}

func TestOrganizationDelete(t *testing.T) {
	svc, orgStore, _ := newOrgFixture()

	created, err := svc.Create(context.Background(), 1, validOrgRequest(), nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.Delete(context.Background(), 1, created.ID))
	assert.Equal(t, []int64{created.ID}, orgStore.deleted)

	err = svc.Delete(context.Background(), 1, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)
}
