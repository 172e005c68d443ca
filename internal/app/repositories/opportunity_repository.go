package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/dberrors"
)

// Window predicates for "current" opportunities. The corrected form keeps an
// opportunity visible while it has not started yet or has not ended yet. The
// legacy form reproduces the historical listing behavior, where a past
// end_date on its own kept the row visible.
const (
	currentWindowPredicate = "(o.start_date >= $1 OR (o.end_date IS NOT NULL AND o.end_date >= $1))"
	legacyWindowPredicate  = "(o.start_date >= $1 OR o.end_date <= $1)"
)

// OpportunityStore defines the opportunity-store contract. Titles are unique
// within an organization, enforced here and by a database constraint.
type OpportunityStore interface {
	Create(ctx context.Context, opp *models.Opportunity) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	GetByOrgAndTitle(ctx context.Context, orgID int64, title string) (*models.Opportunity, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*models.Opportunity, error)
	Update(ctx context.Context, opp *models.Opportunity) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error
	ListCurrent(ctx context.Context, today time.Time, legacyWindow bool) ([]models.Opportunity, error)
	ListCurrentForOrg(ctx context.Context, orgID int64, today time.Time, legacyWindow bool) ([]models.Opportunity, error)
}

// OpportunityRepository implements OpportunityStore over PostgreSQL
type OpportunityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOpportunityRepository creates a new OpportunityRepository
func NewOpportunityRepository(db *pgxpool.Pool) *OpportunityRepository {
	return &OpportunityRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new opportunity and returns its id
func (r *OpportunityRepository) Create(ctx context.Context, opp *models.Opportunity) (int64, error) {
	sql, args, err := r.sb.Insert("opportunities").
		Columns("org_id", "title", "description", "category", "image_url", "start_date", "end_date", "max_signups").
		Values(opp.OrgID, opp.Title, opp.Description, opp.Category, opp.ImageURL, opp.StartDate, opp.EndDate, opp.MaxSignups).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "opportunities_org_id_title_key") {
			return 0, apperrors.ErrOpportunityTitleTaken
		}
		return 0, fmt.Errorf("error creating opportunity: %w", err)
	}

	return id, nil
}

// GetByID retrieves an opportunity with its organization's name.
// Returns (nil, nil) when absent.
func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	query := `
		SELECT o.id, o.org_id, o.title, o.description, o.category, o.image_url,
		       o.start_date, o.end_date, o.max_signups, o.created_at, org.name
		FROM opportunities o
		JOIN organizations org ON org.id = o.org_id
		WHERE o.id = $1`

	opp := &models.Opportunity{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&opp.ID, &opp.OrgID, &opp.Title, &opp.Description, &opp.Category, &opp.ImageURL,
		&opp.StartDate, &opp.EndDate, &opp.MaxSignups, &opp.CreatedAt, &opp.OrgName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying opportunity: %w", err)
	}

	return opp, nil
}

// GetByOrgAndTitle retrieves an opportunity by its organization and title.
// Returns (nil, nil) when absent.
func (r *OpportunityRepository) GetByOrgAndTitle(ctx context.Context, orgID int64, title string) (*models.Opportunity, error) {
	sql, args, err := r.sb.Select("id", "org_id", "title", "description", "category", "image_url", "start_date", "end_date", "max_signups", "created_at").
		From("opportunities").
		Where(squirrel.Eq{"org_id": orgID, "title": title}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	opp := &models.Opportunity{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&opp.ID, &opp.OrgID, &opp.Title, &opp.Description, &opp.Category, &opp.ImageURL,
		&opp.StartDate, &opp.EndDate, &opp.MaxSignups, &opp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying opportunity: %w", err)
	}

	return opp, nil
}

// GetForUpdateTx locks the opportunity row for the remainder of the
// transaction. Concurrent signup attempts against the same opportunity
// serialize on this lock, so the capacity check that follows sees a stable
// count. Returns (nil, nil) when absent.
func (r *OpportunityRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*models.Opportunity, error) {
	opp := &models.Opportunity{}
	err := tx.QueryRow(ctx, `
		SELECT id, org_id, title, description, category, image_url,
		       start_date, end_date, max_signups, created_at
		FROM opportunities
		WHERE id = $1
		FOR UPDATE`, id).Scan(
		&opp.ID, &opp.OrgID, &opp.Title, &opp.Description, &opp.Category, &opp.ImageURL,
		&opp.StartDate, &opp.EndDate, &opp.MaxSignups, &opp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error locking opportunity: %w", err)
	}

	return opp, nil
}

// Update writes the mutable fields of an opportunity
func (r *OpportunityRepository) Update(ctx context.Context, opp *models.Opportunity) error {
	sql, args, err := r.sb.Update("opportunities").
		Set("title", opp.Title).
		Set("description", opp.Description).
		Set("category", opp.Category).
		Set("image_url", opp.ImageURL).
		Set("start_date", opp.StartDate).
		Set("end_date", opp.EndDate).
		Set("max_signups", opp.MaxSignups).
		Where(squirrel.Eq{"id": opp.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "opportunities_org_id_title_key") {
			return apperrors.ErrOpportunityTitleTaken
		}
		return fmt.Errorf("error updating opportunity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOpportunityNotFound
	}

	return nil
}

// DeleteTx removes an opportunity and its signups inside a transaction
func (r *OpportunityRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM signups WHERE opp_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting opportunity signups: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting opportunity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOpportunityNotFound
	}

	return nil
}

// ListCurrent retrieves all opportunities whose window covers today, newest
// start date first, with the organization name joined in for the dashboard.
func (r *OpportunityRepository) ListCurrent(ctx context.Context, today time.Time, legacyWindow bool) ([]models.Opportunity, error) {
	predicate := currentWindowPredicate
	if legacyWindow {
		predicate = legacyWindowPredicate
	}

	query := `
		SELECT o.id, o.org_id, o.title, o.description, o.category, o.image_url,
		       o.start_date, o.end_date, o.max_signups, o.created_at, org.name
		FROM opportunities o
		JOIN organizations org ON org.id = o.org_id
		WHERE ` + predicate + `
		ORDER BY o.start_date DESC, o.id DESC`

	return r.queryList(ctx, query, today)
}

// ListCurrentForOrg retrieves an organization's opportunities whose window
// covers today.
func (r *OpportunityRepository) ListCurrentForOrg(ctx context.Context, orgID int64, today time.Time, legacyWindow bool) ([]models.Opportunity, error) {
	predicate := currentWindowPredicate
	if legacyWindow {
		predicate = legacyWindowPredicate
	}

	query := `
		SELECT o.id, o.org_id, o.title, o.description, o.category, o.image_url,
		       o.start_date, o.end_date, o.max_signups, o.created_at, org.name
		FROM opportunities o
		JOIN organizations org ON org.id = o.org_id
		WHERE ` + predicate + ` AND o.org_id = $2
		ORDER BY o.start_date DESC, o.id DESC`

	return r.queryList(ctx, query, today, orgID)
}

func (r *OpportunityRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]models.Opportunity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		var opp models.Opportunity
		err := rows.Scan(
			&opp.ID, &opp.OrgID, &opp.Title, &opp.Description, &opp.Category, &opp.ImageURL,
			&opp.StartDate, &opp.EndDate, &opp.MaxSignups, &opp.CreatedAt, &opp.OrgName,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		opps = append(opps, opp)
	}

	return opps, rows.Err()
}
