package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/dberrors"
)

// SignupStore defines the signup-store contract. The Tx variants run inside
// the capacity-gated admission transaction, after the opportunity row has
// been locked.
type SignupStore interface {
	InsertTx(ctx context.Context, tx pgx.Tx, userID, oppID int64, signupDate time.Time, status models.SignupStatus) (int64, error)
	FindByUserAndOppTx(ctx context.Context, tx pgx.Tx, userID, oppID int64) (bool, error)
	CountForOppTx(ctx context.Context, tx pgx.Tx, oppID int64) (int, error)
	CountForOpp(ctx context.Context, oppID int64) (int, error)
	Delete(ctx context.Context, signupID int64) error
	ResolveForAuthz(ctx context.Context, signupID int64) (*models.SignupAuthz, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Signup, error)
	ListForOrg(ctx context.Context, orgID int64) ([]models.OrgSignupRow, error)
}

// SignupRepository implements SignupStore over PostgreSQL
type SignupRepository struct {
	db *pgxpool.Pool
}

// NewSignupRepository creates a new SignupRepository
func NewSignupRepository(db *pgxpool.Pool) *SignupRepository {
	return &SignupRepository{db: db}
}

// InsertTx inserts a signup within the admission transaction. The unique
// index on (user_id, opp_id) backstops the in-transaction duplicate check.
func (r *SignupRepository) InsertTx(ctx context.Context, tx pgx.Tx, userID, oppID int64, signupDate time.Time, status models.SignupStatus) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO signups (user_id, opp_id, signup_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		userID, oppID, signupDate, status).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "signups_user_id_opp_id_key") {
			return 0, apperrors.ErrAlreadySignedUp
		}
		return 0, fmt.Errorf("error creating signup: %w", err)
	}

	return id, nil
}

// FindByUserAndOppTx reports whether the user already holds a signup for the
// opportunity.
func (r *SignupRepository) FindByUserAndOppTx(ctx context.Context, tx pgx.Tx, userID, oppID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM signups WHERE user_id = $1 AND opp_id = $2)`,
		userID, oppID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking signup: %w", err)
	}
	return exists, nil
}

// CountForOppTx counts signups for an opportunity inside the admission
// transaction.
func (r *SignupRepository) CountForOppTx(ctx context.Context, tx pgx.Tx, oppID int64) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM signups WHERE opp_id = $1`, oppID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting signups: %w", err)
	}
	return count, nil
}

// CountForOpp counts signups for an opportunity outside any transaction,
// for the detail view.
func (r *SignupRepository) CountForOpp(ctx context.Context, oppID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM signups WHERE opp_id = $1`, oppID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting signups: %w", err)
	}
	return count, nil
}

// Delete removes a signup record
func (r *SignupRepository) Delete(ctx context.Context, signupID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM signups WHERE id = $1`, signupID)
	if err != nil {
		return fmt.Errorf("error deleting signup: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSignupNotFound
	}
	return nil
}

// ResolveForAuthz resolves the ownership chain of a signup in one query:
// who signed up, for which opportunity, and who represents the owning
// organization. Returns (nil, nil) when the signup does not exist.
func (r *SignupRepository) ResolveForAuthz(ctx context.Context, signupID int64) (*models.SignupAuthz, error) {
	authz := &models.SignupAuthz{}
	err := r.db.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.opp_id, org.rep_id
		FROM signups s
		JOIN opportunities o ON o.id = s.opp_id
		JOIN organizations org ON org.id = o.org_id
		WHERE s.id = $1`, signupID).Scan(
		&authz.SignupID, &authz.UserID, &authz.OppID, &authz.OrgRepID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error resolving signup: %w", err)
	}

	return authz, nil
}

// ListForUser retrieves a user's signups with their opportunity metadata,
// most recent signup first.
func (r *SignupRepository) ListForUser(ctx context.Context, userID int64) ([]models.Signup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.user_id, s.opp_id, s.signup_date, s.status,
		       o.id, o.org_id, o.title, o.description, o.category, o.image_url,
		       o.start_date, o.end_date, o.max_signups, o.created_at
		FROM signups s
		JOIN opportunities o ON o.id = s.opp_id
		WHERE s.user_id = $1
		ORDER BY s.signup_date DESC, s.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var signups []models.Signup
	for rows.Next() {
		signup := models.Signup{Opportunity: &models.Opportunity{}}
		opp := signup.Opportunity
		err := rows.Scan(
			&signup.ID, &signup.UserID, &signup.OppID, &signup.SignupDate, &signup.Status,
			&opp.ID, &opp.OrgID, &opp.Title, &opp.Description, &opp.Category, &opp.ImageURL,
			&opp.StartDate, &opp.EndDate, &opp.MaxSignups, &opp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		signups = append(signups, signup)
	}

	return signups, rows.Err()
}

// ListForOrg retrieves the roster rows for every opportunity of an
// organization. The LEFT JOIN keeps opportunities without signups in the
// result so the management view can show them with empty rosters.
func (r *SignupRepository) ListForOrg(ctx context.Context, orgID int64) ([]models.OrgSignupRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.org_id, o.title, o.description, o.category, o.image_url,
		       o.start_date, o.end_date, o.max_signups, o.created_at,
		       s.id, s.user_id, s.opp_id, s.signup_date, s.status,
		       u.id, u.first_name, u.last_name, u.email
		FROM opportunities o
		LEFT JOIN signups s ON s.opp_id = o.id
		LEFT JOIN users u ON u.id = s.user_id
		WHERE o.org_id = $1
		ORDER BY o.start_date DESC, o.id DESC, s.signup_date ASC, s.id ASC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var result []models.OrgSignupRow
	for rows.Next() {
		var row models.OrgSignupRow
		var signupID, signupUserID, signupOppID *int64
		var signupDate *time.Time
		var status *string
		var userID *int64
		var firstName, lastName, email *string

		err := rows.Scan(
			&row.Opportunity.ID, &row.Opportunity.OrgID, &row.Opportunity.Title,
			&row.Opportunity.Description, &row.Opportunity.Category, &row.Opportunity.ImageURL,
			&row.Opportunity.StartDate, &row.Opportunity.EndDate, &row.Opportunity.MaxSignups,
			&row.Opportunity.CreatedAt,
			&signupID, &signupUserID, &signupOppID, &signupDate, &status,
			&userID, &firstName, &lastName, &email,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		if signupID != nil {
			row.Signup = &models.Signup{
				ID:         *signupID,
				UserID:     *signupUserID,
				OppID:      *signupOppID,
				SignupDate: *signupDate,
				Status:     models.SignupStatus(*status),
			}
			row.User = &models.User{
				ID:        *userID,
				FirstName: *firstName,
				LastName:  *lastName,
				Email:     *email,
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
