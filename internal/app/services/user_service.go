package services

import (
	"context"
	"time"

	"github.com/campuslink/campuslink/internal/app/models/dto"
	"github.com/campuslink/campuslink/internal/app/repositories"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/validation"
)

// UserService serves the profile view: who the user is, what they signed up
// for and which organizations they represent.
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	GetSignups(ctx context.Context, userID int64) ([]dto.UserSignupResponse, error)
	GetOrganizations(ctx context.Context, userID int64) (*dto.OrganizationListResponse, error)
}

type userService struct {
	userStore   repositories.UserStore
	orgStore    repositories.OrganizationStore
	signupStore repositories.SignupStore
}

// NewUserService creates a new UserService
func NewUserService(userStore repositories.UserStore, orgStore repositories.OrganizationStore, signupStore repositories.SignupStore) UserService {
	return &userService{
		userStore:   userStore,
		orgStore:    orgStore,
		signupStore: signupStore,
	}
}

func formatDate(t time.Time) string {
	return t.Format(validation.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validation.DateLayout)
	return &s
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	return &dto.UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		NetID:     user.NetID,
		Email:     user.Email,
		Role:      string(user.Role),
	}, nil
}

func (s *userService) GetSignups(ctx context.Context, userID int64) ([]dto.UserSignupResponse, error) {
	signups, err := s.signupStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.UserSignupResponse, 0, len(signups))
	for _, signup := range signups {
		opp := signup.Opportunity
		result = append(result, dto.UserSignupResponse{
			SignupID:   signup.ID,
			OppID:      signup.OppID,
			Title:      opp.Title,
			Category:   opp.Category,
			StartDate:  formatDate(opp.StartDate),
			EndDate:    formatDatePtr(opp.EndDate),
			SignupDate: formatDate(signup.SignupDate),
			Status:     string(signup.Status),
		})
	}

	return result, nil
}

func (s *userService) GetOrganizations(ctx context.Context, userID int64) (*dto.OrganizationListResponse, error) {
	orgs, err := s.orgStore.ListByRep(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		result = append(result, dto.OrganizationResponse{
			ID:        org.ID,
			Name:      org.Name,
			Type:      org.Type,
			Email:     org.Email,
			ImageURL:  org.ImageURL,
			RepID:     org.RepID,
			CreatedAt: org.CreatedAt,
			UpdatedAt: org.UpdatedAt,
		})
	}

	return &dto.OrganizationListResponse{Organizations: result}, nil
}
