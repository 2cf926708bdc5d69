package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/policies"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/signoffs"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

// In-memory repositories shared by the service tests.

type memUsers struct {
	mu   sync.Mutex
	rows []*models.User
	err  error
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if r.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = int64(len(m.rows) + 1)
	cp := *u
	m.rows = append(m.rows, &cp)
	return u, nil
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) List(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.User, 0, len(m.rows))
	for _, r := range m.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUsers) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	return m.err
}

func (m *memUsers) add(name string) *models.User {
	u, _ := m.Create(context.Background(), &models.User{Name: name, Email: name + "@example.com"})
	return u
}

type memPolicies struct {
	mu     sync.Mutex
	users  *memUsers
	rows   map[int64]*models.Policy
	nextID int64
	err    error
	setErr error
}

func newMemPolicies(u *memUsers) *memPolicies {
	return &memPolicies{users: u, rows: map[int64]*models.Policy{}}
}

func (m *memPolicies) Create(ctx context.Context, p *models.Policy) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	p.ID = m.nextID
	p.FileStatus = models.FileStatusNone
	p.CreatedAt = time.Now()
	cp := *p
	m.rows[p.ID] = &cp
	return p, nil
}

func (m *memPolicies) GetByID(ctx context.Context, id int64) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	if u, err := m.users.GetByID(ctx, p.CreatedBy); err == nil {
		cp.CreatorName = u.Name
	}
	return &cp, nil
}

func (m *memPolicies) List(ctx context.Context) ([]*models.Policy, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	out := make([]*models.Policy, 0, len(ids))
	for _, id := range ids {
		p, _ := m.GetByID(ctx, id)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memPolicies) SetFile(ctx context.Context, id int64, key, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	p, ok := m.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	p.FileKey, p.FileName, p.FileStatus = &key, &name, models.FileStatusPending
	return nil
}

func (m *memPolicies) MarkUploaded(ctx context.Context, id int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.FileKey == nil || *p.FileKey != key {
		return common.ErrNotFound
	}
	p.FileStatus = models.FileStatusUploaded
	return nil
}

func (m *memPolicies) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = map[int64]*models.Policy{}
	return nil
}

type memSignoffs struct {
	mu   sync.Mutex
	rows map[[2]int64]*models.Signoff
	err  error
}

func newMemSignoffs() *memSignoffs {
	return &memSignoffs{rows: map[[2]int64]*models.Signoff{}}
}

func (m *memSignoffs) Record(ctx context.Context, policyID, userID int64, signedAt time.Time) (*models.Signoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	k := [2]int64{policyID, userID}
	if _, ok := m.rows[k]; ok {
		return nil, common.ErrConflict
	}
	s := &models.Signoff{ID: int64(len(m.rows) + 1), PolicyID: policyID, UserID: userID, SignedAt: signedAt}
	m.rows[k] = s
	cp := *s
	return &cp, nil
}

func (m *memSignoffs) ListByPolicy(ctx context.Context, policyID int64) ([]*models.Signoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Signoff
	for k, s := range m.rows {
		if k[0] == policyID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memSignoffs) PolicyIDsSignedBy(ctx context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []int64
	for k := range m.rows {
		if k[1] == userID {
			out = append(out, k[0])
		}
	}
	return out, nil
}

func (m *memSignoffs) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = map[[2]int64]*models.Signoff{}
	return nil
}

type memRefresh struct {
	mu        sync.Mutex
	rows      map[string]*models.RefreshToken
	takeErr   error
	delErr    error
	createErr error
}

func newMemRefresh() *memRefresh {
	return &memRefresh{rows: map[string]*models.RefreshToken{}}
}

func (m *memRefresh) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (m *memRefresh) Take(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeErr != nil {
		return nil, m.takeErr
	}
	rt, ok := m.rows[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(m.rows, token)
	return rt, nil
}

// lookup reads a token without redeeming it.
func (m *memRefresh) lookup(token string) (*models.RefreshToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.rows[token]
	if !ok {
		return nil, false
	}
	cp := *rt
	return &cp, true
}

func (m *memRefresh) Delete(ctx context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	if rt, ok := m.rows[token]; ok && rt.UserID == userID {
		delete(m.rows, token)
	}
	return nil
}

func (m *memRefresh) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, rt := range m.rows {
		if rt.Expires.Before(now) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	users    *memUsers
	policies *memPolicies
	signoffs *memSignoffs
	refresh  *memRefresh
}

func newFakeRepoManager() *fakeRepoManager {
	u := &memUsers{}
	return &fakeRepoManager{
		users:    u,
		policies: newMemPolicies(u),
		signoffs: newMemSignoffs(),
		refresh:  newMemRefresh(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) Policies(dbx.DBTX) policies.Repository           { return m.policies }
func (m *fakeRepoManager) Signoffs(dbx.DBTX) signoffs.Repository           { return m.signoffs }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }

type fakeStore struct {
	putKeys     []string
	putTypes    []string
	putTTL      time.Duration
	getKey      string
	getName     string
	getTTL      time.Duration
	putErr      error
	getErr      error
	exists      bool
	existsErr   error
	existsCalls int
}

func (f *fakeStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, http.Header, error) {
	if f.putErr != nil {
		return "", nil, f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	f.putTypes = append(f.putTypes, contentType)
	f.putTTL = ttl
	signed := http.Header{"Host": {"files.example.test"}, "Content-Type": {contentType}}
	return "http://files.example.test/policies/" + key + "?X-Amz-Signature=put", signed, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key, fileName string, ttl time.Duration) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	f.getKey, f.getName, f.getTTL = key, fileName, ttl
	return "http://files.example.test/policies/" + key + "?X-Amz-Signature=get", nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.existsCalls++
	return f.exists, f.existsErr
}
