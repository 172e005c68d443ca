package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/dberrors"
)

// OrganizationStore defines the organization-store contract. Name uniqueness
// is enforced here (and backed by a database constraint).
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	DeleteCascadeTx(ctx context.Context, tx pgx.Tx, orgID int64) error
	ListByRep(ctx context.Context, userID int64) ([]models.Organization, error)
}

// OrganizationRepository implements OrganizationStore over PostgreSQL
type OrganizationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new organization and returns its id
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) (int64, error) {
	sql, args, err := r.sb.Insert("organizations").
		Columns("name", "org_type", "email", "image_url", "rep_id").
		Values(org.Name, org.Type, org.Email, org.ImageURL, org.RepID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "organizations_name_key") {
			return 0, apperrors.ErrOrganizationNameTaken
		}
		return 0, fmt.Errorf("error creating organization: %w", err)
	}

	return id, nil
}

// GetByID retrieves an organization with its representative's details.
// Returns (nil, nil) when absent.
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	query := `
		SELECT o.id, o.name, o.org_type, o.email, o.image_url, o.rep_id,
		       o.created_at, o.updated_at,
		       u.id, u.first_name, u.last_name, u.email
		FROM organizations o
		JOIN users u ON u.id = o.rep_id
		WHERE o.id = $1`

	org := &models.Organization{Rep: &models.User{}}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Type, &org.Email, &org.ImageURL, &org.RepID,
		&org.CreatedAt, &org.UpdatedAt,
		&org.Rep.ID, &org.Rep.FirstName, &org.Rep.LastName, &org.Rep.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying organization: %w", err)
	}

	return org, nil
}

// GetByName retrieves an organization by its unique name. Returns (nil, nil)
// when absent.
func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	sql, args, err := r.sb.Select("id", "name", "org_type", "email", "image_url", "rep_id", "created_at", "updated_at").
		From("organizations").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	org := &models.Organization{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&org.ID, &org.Name, &org.Type, &org.Email, &org.ImageURL, &org.RepID,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying organization: %w", err)
	}

	return org, nil
}

// Update writes the mutable fields of an organization
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	sql, args, err := r.sb.Update("organizations").
		Set("name", org.Name).
		Set("org_type", org.Type).
		Set("email", org.Email).
		Set("image_url", org.ImageURL).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": org.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "organizations_name_key") {
			return apperrors.ErrOrganizationNameTaken
		}
		return fmt.Errorf("error updating organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrganizationNotFound
	}

	return nil
}

// DeleteCascadeTx removes an organization and everything hanging off it:
// signups of its opportunities, its opportunities, then the row itself.
// Must run inside a transaction so a failure leaves nothing orphaned.
func (r *OrganizationRepository) DeleteCascadeTx(ctx context.Context, tx pgx.Tx, orgID int64) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM signups
		WHERE opp_id IN (SELECT id FROM opportunities WHERE org_id = $1)`, orgID); err != nil {
		return fmt.Errorf("error deleting organization signups: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM opportunities WHERE org_id = $1`, orgID); err != nil {
		return fmt.Errorf("error deleting organization opportunities: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("error deleting organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOrganizationNotFound
	}

	return nil
}

// ListByRep retrieves all organizations represented by a user
func (r *OrganizationRepository) ListByRep(ctx context.Context, userID int64) ([]models.Organization, error) {
	sql, args, err := r.sb.Select("id", "name", "org_type", "email", "image_url", "rep_id", "created_at", "updated_at").
		From("organizations").
		Where(squirrel.Eq{"rep_id": userID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		err := rows.Scan(
			&org.ID, &org.Name, &org.Type, &org.Email, &org.ImageURL, &org.RepID,
			&org.CreatedAt, &org.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}
