package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuslink/campuslink/internal/app/models"
	"github.com/campuslink/campuslink/internal/app/repositories"
	"github.com/campuslink/campuslink/internal/db"
	"github.com/campuslink/campuslink/internal/pkg/apperrors"
)

// fakeTxRunner serializes transactions with a mutex, mirroring the row lock
// the real transaction takes on the opportunity.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, nil)
}

type memOrgStore struct {
	repositories.OrganizationStore
	mu      sync.Mutex
	nextID  int64
	orgs    map[int64]*models.Organization
	deleted []int64
}

func newMemOrgStore() *memOrgStore {
	return &memOrgStore{nextID: 1, orgs: map[int64]*models.Organization{}}
}

func (s *memOrgStore) Create(ctx context.Context, org *models.Organization) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orgs {
		if existing.Name == org.Name {
			return 0, apperrors.ErrOrganizationNameTaken
		}
	}
	id := s.nextID
	s.nextID++
	cp := *org
	cp.ID = id
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	s.orgs[id] = &cp
	return id, nil
}

func (s *memOrgStore) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *org
	return &cp, nil
}

func (s *memOrgStore) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.orgs {
		if org.Name == name {
			cp := *org
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memOrgStore) Update(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; !ok {
		return apperrors.ErrOrganizationNotFound
	}
	cp := *org
	cp.UpdatedAt = time.Now()
	s.orgs[org.ID] = &cp
	return nil
}

func (s *memOrgStore) DeleteCascadeTx(ctx context.Context, tx pgx.Tx, orgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[orgID]; !ok {
		return apperrors.ErrOrganizationNotFound
	}
	delete(s.orgs, orgID)
	s.deleted = append(s.deleted, orgID)
	return nil
}

func (s *memOrgStore) ListByRep(ctx context.Context, userID int64) ([]models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Organization
	for _, org := range s.orgs {
		if org.RepID == userID {
			result = append(result, *org)
		}
	}
	return result, nil
}

type memOppStore struct {
	repositories.OpportunityStore
	mu     sync.Mutex
	nextID int64
	opps   map[int64]*models.Opportunity
}

func newMemOppStore() *memOppStore {
	return &memOppStore{nextID: 1, opps: map[int64]*models.Opportunity{}}
}

func (s *memOppStore) add(opp *models.Opportunity) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	cp := *opp
	cp.ID = id
	s.opps[id] = &cp
	return id
}

func (s *memOppStore) Create(ctx context.Context, opp *models.Opportunity) (int64, error) {
	return s.add(opp), nil
}

func (s *memOppStore) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opp, ok := s.opps[id]
	if !ok {
		return nil, nil
	}
	cp := *opp
	return &cp, nil
}

func (s *memOppStore) GetByOrgAndTitle(ctx context.Context, orgID int64, title string) (*models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opp := range s.opps {
		if opp.OrgID == orgID && opp.Title == title {
			cp := *opp
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memOppStore) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*models.Opportunity, error) {
	return s.GetByID(ctx, id)
}

func (s *memOppStore) Update(ctx context.Context, opp *models.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.opps[opp.ID]; !ok {
		return apperrors.ErrOpportunityNotFound
	}
	cp := *opp
	s.opps[opp.ID] = &cp
	return nil
}

func (s *memOppStore) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.opps[id]; !ok {
		return apperrors.ErrOpportunityNotFound
	}
	delete(s.opps, id)
	return nil
}

type memSignupStore struct {
	repositories.SignupStore
	mu      sync.Mutex
	nextID  int64
	signups map[int64]*models.Signup
}

func newMemSignupStore() *memSignupStore {
	return &memSignupStore{nextID: 1, signups: map[int64]*models.Signup{}}
}

func (s *memSignupStore) InsertTx(ctx context.Context, tx pgx.Tx, userID, oppID int64, signupDate time.Time, status models.SignupStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, signup := range s.signups {
		if signup.UserID == userID && signup.OppID == oppID {
			return 0, apperrors.ErrAlreadySignedUp
		}
	}
	id := s.nextID
	s.nextID++
	s.signups[id] = &models.Signup{ID: id, UserID: userID, OppID: oppID, SignupDate: signupDate, Status: status}
	return id, nil
}

func (s *memSignupStore) FindByUserAndOppTx(ctx context.Context, tx pgx.Tx, userID, oppID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, signup := range s.signups {
		if signup.UserID == userID && signup.OppID == oppID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memSignupStore) CountForOppTx(ctx context.Context, tx pgx.Tx, oppID int64) (int, error) {
	return s.CountForOpp(ctx, oppID)
}

func (s *memSignupStore) CountForOpp(ctx context.Context, oppID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, signup := range s.signups {
		if signup.OppID == oppID {
			count++
		}
	}
	return count, nil
}

func (s *memSignupStore) Delete(ctx context.Context, signupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.signups[signupID]; !ok {
		return apperrors.ErrSignupNotFound
	}
	delete(s.signups, signupID)
	return nil
}

func (s *memSignupStore) ResolveForAuthz(ctx context.Context, signupID int64) (*models.SignupAuthz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signup, ok := s.signups[signupID]
	if !ok {
		return nil, nil
	}
	return &models.SignupAuthz{SignupID: signup.ID, UserID: signup.UserID, OppID: signup.OppID}, nil
}

type memUserStore struct {
	repositories.UserStore
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{nextID: 1, users: map[int64]*models.User{}}
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return 0, apperrors.ErrEmailExists
		}
		if existing.NetID == user.NetID {
			return 0, apperrors.ErrNetIDExists
		}
	}
	id := s.nextID
	s.nextID++
	cp := *user
	cp.ID = id
	s.users[id] = &cp
	return id, nil
}

func (s *memUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) GetByNetID(ctx context.Context, netID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.NetID == netID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

type memTokenStore struct {
	repositories.TokenStore
	mu     sync.Mutex
	tokens map[string]struct {
		userID  int64
		expiry  time.Time
		revoked bool
	}
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]struct {
		userID  int64
		expiry  time.Time
		revoked bool
	}{}}
}

func (s *memTokenStore) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct {
		userID  int64
		expiry  time.Time
		revoked bool
	}{userID, expiryDate, false}
	return nil
}

func (s *memTokenStore) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return entry.userID, entry.expiry, entry.revoked, nil
}

func (s *memTokenStore) RevokeToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	entry.revoked = true
	s.tokens[token] = entry
	return nil
}

// fakeImageHost records uploads and deletions; FailUpload makes Upload error
// to simulate an unreachable image host.
type fakeImageHost struct {
	mu         sync.Mutex
	FailUpload bool
	Uploads    int
	Deleted    []string
}

func (h *fakeImageHost) Upload(fileHeader *multipart.FileHeader) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailUpload {
		return "", errors.New("image host unreachable")
	}
	h.Uploads++
	return "http://images.test/file.png", nil
}

func (h *fakeImageHost) Delete(url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Deleted = append(h.Deleted, url)
	return nil
}

// multipartHeader builds a header the fake image host accepts; the fake
// never opens the file.
func multipartHeader(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name}
}

func intPtr(n int) *int { return &n }
