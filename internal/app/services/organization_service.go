package services

import (
	"context"
	"mime/multipart"
	"strings"

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

// OrganizationService manages the organization lifecycle. The creating user
// becomes the representative; only the representative may modify or delete
// the organization.
type OrganizationService interface {
	Create(ctx context.Context, userID int64, req dto.CreateOrganizationRequest, image *multipart.FileHeader) (*dto.OrganizationResponse, error)
	Get(ctx context.Context, orgID int64) (*dto.OrganizationResponse, error)
	Update(ctx context.Context, userID, orgID int64, req dto.UpdateOrganizationRequest, image *multipart.FileHeader) (*dto.OrganizationUpdateResponse, error)
	Delete(ctx context.Context, userID, orgID int64) error
}

type organizationService struct {
	orgStore  repositories.OrganizationStore
	authz     orgauth.AuthorizationService
	txRunner  db.TxRunner
	imageHost imagehost.ImageHost
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgStore repositories.OrganizationStore,
	authz orgauth.AuthorizationService,
	txRunner db.TxRunner,
	imageHost imagehost.ImageHost,
) OrganizationService {
	return &organizationService{
		orgStore:  orgStore,
		authz:     authz,
		txRunner:  txRunner,
		imageHost: imageHost,
	}
}

func (s *organizationService) validateFields(name, orgType, email string) error {
	errs := &validation.Errors{}
	errs.Check(validation.NotEmpty(name), "name", "name is required")
	errs.Check(validation.NotEmpty(orgType), "type", "type is required")
	errs.Check(validation.Email(email), "email", "email address is not valid")
	if errs.HasErrors() {
		return validationError(errs)
	}
	return nil
}

// Create validates the submission, uploads the image and inserts the row.
// The upload happens first so an image-host failure leaves no partial
// organization behind; a dangling uploaded file is acceptable, a row
// pointing at a missing image is not.
func (s *organizationService) Create(ctx context.Context, userID int64, req dto.CreateOrganizationRequest, image *multipart.FileHeader) (*dto.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	orgType := strings.TrimSpace(req.Type)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validateFields(name, orgType, email); err != nil {
		return nil, err
	}

	if existing, err := s.orgStore.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.ErrOrganizationNameTaken
	}

	var imageURL *string
	if image != nil {
		url, err := s.imageHost.Upload(image)
		if err != nil {
			logger.Error().Err(err).Msg("Image upload failed during organization creation")
			return nil, apperrors.NewUpstreamError("image upload failed")
		}
		imageURL = &url
	}

	org := &models.Organization{
		Name:     name,
		Type:     orgType,
		Email:    email,
		ImageURL: imageURL,
		RepID:    userID,
	}

	id, err := s.orgStore.Create(ctx, org)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("orgID", id).Int64("repID", userID).Msg("Organization created")

	return s.Get(ctx, id)
}

func (s *organizationService) Get(ctx context.Context, orgID int64) (*dto.OrganizationResponse, error) {
	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return mapOrganization(org), nil
}

// Update applies the submitted fields after the representative check. When
// nothing differs from the stored row and no new image was sent, the call
// succeeds without touching the database.
func (s *organizationService) Update(ctx context.Context, userID, orgID int64, req dto.UpdateOrganizationRequest, image *multipart.FileHeader) (*dto.OrganizationUpdateResponse, error) {
	org, err := s.authz.ValidateRepresentative(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	orgType := strings.TrimSpace(req.Type)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validateFields(name, orgType, email); err != nil {
		return nil, err
	}

	// Renaming to another organization's name is a conflict; keeping the
	// current name is not.
	if name != org.Name {
		if existing, err := s.orgStore.GetByName(ctx, name); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != orgID {
			return nil, apperrors.ErrOrganizationNameTaken
		}
	}

	if image == nil && name == org.Name && orgType == org.Type && email == org.Email {
		return &dto.OrganizationUpdateResponse{
			Organization: *mapOrganization(org),
			Changed:      false,
			Message:      "no changes made",
		}, nil
	}

	oldImageURL := org.ImageURL
	if image != nil {
		url, err := s.imageHost.Upload(image)
		if err != nil {
			logger.Error().Err(err).Msg("Image upload failed during organization update")
			return nil, apperrors.NewUpstreamError("image upload failed")
		}
		org.ImageURL = &url
	}

	org.Name = name
	org.Type = orgType
	org.Email = email

	if err := s.orgStore.Update(ctx, org); err != nil {
		return nil, err
	}

	if image != nil && oldImageURL != nil {
		if err := s.imageHost.Delete(*oldImageURL); err != nil {
			logger.Warn().Err(err).Str("url", *oldImageURL).Msg("Failed to remove replaced organization image")
		}
	}

	logger.Info().Int64("orgID", orgID).Msg("Organization updated")

	resp, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &dto.OrganizationUpdateResponse{
		Organization: *resp,
		Changed:      true,
		Message:      "organization updated",
	}, nil
}

// Delete removes the organization together with its opportunities and their
// signups in one transaction.
func (s *organizationService) Delete(ctx context.Context, userID, orgID int64) error {
	org, err := s.authz.ValidateRepresentative(ctx, userID, orgID)
	if err != nil {
		return err
	}

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.orgStore.DeleteCascadeTx(ctx, tx, orgID)
	})
	if err != nil {
		return err
	}

	// Image cleanup happens after the commit; a leftover file is harmless.
	if org.ImageURL != nil {
		if err := s.imageHost.Delete(*org.ImageURL); err != nil {
			logger.Warn().Err(err).Str("url", *org.ImageURL).Msg("Failed to remove deleted organization image")
		}
	}

	logger.Info().Int64("orgID", orgID).Msg("Organization deleted")
	return nil
}

func mapOrganization(org *models.Organization) *dto.OrganizationResponse {
	resp := &dto.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		Type:      org.Type,
		Email:     org.Email,
		ImageURL:  org.ImageURL,
		RepID:     org.RepID,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
	if org.Rep != nil {
		resp.Rep = &dto.UserBasicResponse{
			ID:        org.Rep.ID,
			FirstName: org.Rep.FirstName,
			LastName:  org.Rep.LastName,
			Email:     org.Rep.Email,
		}
	}
	return resp
}
