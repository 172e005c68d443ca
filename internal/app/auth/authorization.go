package auth

import (
	"context"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/app/repositories"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/logger"
)

// AuthorizationService centralizes the ownership checks behind every
// privileged operation. Resources are always resolved before ownership is
// judged, so a missing resource yields not-found rather than
// permission-denied and callers cannot probe for existence through 403s.
type AuthorizationService interface {
	// IsRepresentative reports whether the user represents the organization
	IsRepresentative(ctx context.Context, userID, orgID int64) (bool, error)

	// ValidateRepresentative resolves the organization and asserts the user
	// represents it. Returns the organization on success so callers avoid a
	// second lookup.
	ValidateRepresentative(ctx context.Context, userID, orgID int64) (*models.Organization, error)

	// ValidateOpportunityOwnership resolves an opportunity and asserts the
	// user represents the organization that posted it.
	ValidateOpportunityOwnership(ctx context.Context, userID, oppID int64) (*models.Opportunity, error)

	// ValidateSignupOwnership resolves a signup and asserts the user may
	// delete it: either the signed-up user or the representative of the
	// organization owning the opportunity.
	ValidateSignupOwnership(ctx context.Context, userID, signupID int64) (*models.SignupAuthz, error)
}

type authorizationService struct {
	orgStore    repositories.OrganizationStore
	oppStore    repositories.OpportunityStore
	signupStore repositories.SignupStore
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(
	orgStore repositories.OrganizationStore,
	oppStore repositories.OpportunityStore,
	signupStore repositories.SignupStore,
) AuthorizationService {
	return &authorizationService{
		orgStore:    orgStore,
		oppStore:    oppStore,
		signupStore: signupStore,
	}
}

func (s *authorizationService) IsRepresentative(ctx context.Context, userID, orgID int64) (bool, error) {
	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return false, err
	}
	if org == nil {
		return false, apperrors.ErrOrganizationNotFound
	}
	return org.RepID == userID, nil
}

func (s *authorizationService) ValidateRepresentative(ctx context.Context, userID, orgID int64) (*models.Organization, error) {
	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}
	if org.RepID != userID {
		logger.Warn().
			Int64("userID", userID).
			Int64("orgID", orgID).
			Msg("User attempted to manage an organization they do not represent")
		return nil, apperrors.ErrPermissionDenied
	}
	return org, nil
}

func (s *authorizationService) ValidateOpportunityOwnership(ctx context.Context, userID, oppID int64) (*models.Opportunity, error) {
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
		// Opportunity rows never outlive their organization; treat a broken
		// chain as a missing resource.
		return nil, apperrors.ErrOpportunityNotFound
	}
	if org.RepID != userID {
		logger.Warn().
			Int64("userID", userID).
			Int64("oppID", oppID).
			Msg("User attempted to manage an opportunity they do not own")
		return nil, apperrors.ErrPermissionDenied
	}
	return opp, nil
}

func (s *authorizationService) ValidateSignupOwnership(ctx context.Context, userID, signupID int64) (*models.SignupAuthz, error) {
	authz, err := s.signupStore.ResolveForAuthz(ctx, signupID)
	if err != nil {
		return nil, err
	}
	if authz == nil {
		return nil, apperrors.ErrSignupNotFound
	}
	if authz.UserID != userID && authz.OrgRepID != userID {
		logger.Warn().
			Int64("userID", userID).
			Int64("signupID", signupID).
			Msg("User attempted to delete a signup they do not own")
		return nil, apperrors.ErrPermissionDenied
	}
	return authz, nil
}
