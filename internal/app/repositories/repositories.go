package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every store so dependency wiring stays in one place
type Repositories struct {
	Users         UserStore
	Tokens        TokenStore
	Organizations OrganizationStore
	Opportunities OpportunityStore
	Signups       SignupStore
}

// NewRepositories constructs all stores over a shared connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Tokens:        NewTokenRepository(db),
		Organizations: NewOrganizationRepository(db),
		Opportunities: NewOpportunityRepository(db),
		Signups:       NewSignupRepository(db),
	}
}
