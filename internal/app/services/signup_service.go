package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	orgauth "github.com/campuslink/campuslink/internal/app/auth"
	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/repositories"
	"github.com/campuslink/campuslink/internal/db"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/logger"
)

// SignupService handles the capacity-gated admission of users into
// opportunities and the organization roster view.
type SignupService interface {
	Create(ctx context.Context, userID, oppID int64) (*dto.SignupResponse, error)
	Delete(ctx context.Context, userID, signupID int64) error
	GetOrganizationSignups(ctx context.Context, userID, orgID int64) (*dto.OrgSignupsResponse, error)
}

type signupService struct {
	signupStore repositories.SignupStore
	oppStore    repositories.OpportunityStore
	authz       orgauth.AuthorizationService
	txRunner    db.TxRunner
}

// NewSignupService creates a new SignupService
func NewSignupService(
	signupStore repositories.SignupStore,
	oppStore repositories.OpportunityStore,
	authz orgauth.AuthorizationService,
	txRunner db.TxRunner,
) SignupService {
	return &signupService{
		signupStore: signupStore,
		oppStore:    oppStore,
		authz:       authz,
		txRunner:    txRunner,
	}
}

// Create admits a user into an opportunity. The whole check-then-insert runs
// in one transaction with the opportunity row locked, so two concurrent
// requests for the last seat cannot both succeed: the second waits on the
// lock and then sees the first one's signup in its count. The unique index
// on (user_id, opp_id) backstops the duplicate check.
func (s *signupService) Create(ctx context.Context, userID, oppID int64) (*dto.SignupResponse, error) {
	var created *models.Signup

	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		opp, err := s.oppStore.GetForUpdateTx(ctx, tx, oppID)
		if err != nil {
			return err
		}
		if opp == nil {
			return apperrors.ErrOpportunityNotFound
		}

		exists, err := s.signupStore.FindByUserAndOppTx(ctx, tx, userID, oppID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrAlreadySignedUp
		}

		if opp.MaxSignups != nil {
			count, err := s.signupStore.CountForOppTx(ctx, tx, oppID)
			if err != nil {
				return err
			}
			if count >= *opp.MaxSignups {
				return apperrors.ErrCapacityReached
			}
		}

		now := time.Now()
		id, err := s.signupStore.InsertTx(ctx, tx, userID, oppID, now, models.SignupStatusConfirmed)
		if err != nil {
			return err
		}

		created = &models.Signup{
			ID:         id,
			UserID:     userID,
			OppID:      oppID,
			SignupDate: now,
			Status:     models.SignupStatusConfirmed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("signupID", created.ID).Int64("userID", userID).Int64("oppID", oppID).Msg("Signup created")

	return &dto.SignupResponse{
		ID:         created.ID,
		UserID:     created.UserID,
		OppID:      created.OppID,
		SignupDate: formatDate(created.SignupDate),
		Status:     string(created.Status),
	}, nil
}

// Delete withdraws a signup. Allowed for the signed-up user and for the
// representative of the organization owning the opportunity.
func (s *signupService) Delete(ctx context.Context, userID, signupID int64) error {
	if _, err := s.authz.ValidateSignupOwnership(ctx, userID, signupID); err != nil {
		return err
	}

	if err := s.signupStore.Delete(ctx, signupID); err != nil {
		return err
	}

	logger.Info().Int64("signupID", signupID).Int64("userID", userID).Msg("Signup deleted")
	return nil
}

// GetOrganizationSignups returns the management roster: every opportunity of
// the organization with the users signed up for it, opportunities without
// signups included.
func (s *signupService) GetOrganizationSignups(ctx context.Context, userID, orgID int64) (*dto.OrgSignupsResponse, error) {
	if _, err := s.authz.ValidateRepresentative(ctx, userID, orgID); err != nil {
		return nil, err
	}

	rows, err := s.signupStore.ListForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by opportunity; consecutive rows for the same
	// opportunity fold into one group.
	groups := make([]dto.OrgSignupGroup, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		opp := row.Opportunity
		i, ok := index[opp.ID]
		if !ok {
			groups = append(groups, dto.OrgSignupGroup{
				OppID:     opp.ID,
				Title:     opp.Title,
				StartDate: formatDate(opp.StartDate),
				EndDate:   formatDatePtr(opp.EndDate),
				Signups:   []dto.OrgSignupEntry{},
			})
			i = len(groups) - 1
			index[opp.ID] = i
		}
		if row.Signup != nil && row.User != nil {
			groups[i].Signups = append(groups[i].Signups, dto.OrgSignupEntry{
				SignupID:   row.Signup.ID,
				UserID:     row.User.ID,
				FirstName:  row.User.FirstName,
				LastName:   row.User.LastName,
				Email:      row.User.Email,
				SignupDate: formatDate(row.Signup.SignupDate),
				Status:     string(row.Signup.Status),
			})
		}
	}

	return &dto.OrgSignupsResponse{Groups: groups}, nil
}
