package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
	"github.com/campuslink/campuslink/internal/pkg/dberrors"
)

// UserStore defines the identity-store contract. Email and net ID uniqueness
// is enforced here (and backed by database constraints).
type UserStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByNetID(ctx context.Context, netID string) (*models.User, error)
}

// UserRepository implements UserStore over PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns its id. A concurrent insert with the
// same email or net ID loses to the unique constraints and surfaces as a
// typed duplicate error rather than corrupt state.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, net_id, email, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		user.FirstName, user.LastName, user.NetID, user.Email, user.Password, user.Role).Scan(&id)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.ErrEmailExists
		}
		if dberrors.IsDuplicateConstraintError(err, "users_net_id_key") {
			return 0, apperrors.ErrNetIDExists
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

// GetByID retrieves a user by id. Returns (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByNetID retrieves a user by institutional net ID. Returns (nil, nil)
// when absent.
func (r *UserRepository) GetByNetID(ctx context.Context, netID string) (*models.User, error) {
	return r.getOne(ctx, "net_id = $1", netID)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, net_id, email, password, role, created_at
		FROM users WHERE `+where,
		arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.NetID,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return user, nil
}
