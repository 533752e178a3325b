package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/organizations"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/photos"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/tags"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestSigner(t *testing.T) *auth.Signer {
	t.Helper()
	s, err := auth.NewSigner("access-secret", "resource-secret")
	require.NoError(t, err)
	return s.WithClock(func() time.Time { return testNow })
}

func testConfig() *config.Config {
	return &config.Config{
		AdminUsername:                "superadmin",
		AdminPassword:                "admin-pass",
		AccessTokenValidityDuration:  15 * time.Minute,
		AdminTokenValidityDuration:   time.Hour,
		RefreshTokenValidityDuration: 7 * 24 * time.Hour,
	}
}

// prefixHasher is a fast reversible Hasher for tests.
type prefixHasher struct {
	mu       sync.Mutex
	hashErr  error
	verified int
}

func (h *prefixHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "h:" + p, nil
}

func (h *prefixHasher) Verify(p, digest string) bool {
	h.mu.Lock()
	h.verified++
	h.mu.Unlock()
	return digest == "h:"+p
}

// --- users ---

type fakeUsers struct {
	byID      map[string]*models.User
	findErr   error
	createErr error
	updateErr error
	created   []*models.User
	updates   map[string]models.UserUpdate
}

func newFakeUsers(us ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*models.User{}, updates: map[string]models.UserUpdate{}}
	for _, u := range us {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *u
	c.ID = "u-new"
	c.CreatedAt = testNow
	f.created = append(f.created, &c)
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Update(_ context.Context, id string, upd models.UserUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[id] = upd
	return nil
}

// --- organizations ---

type fakeOrgs struct {
	ids       map[string]bool
	existsErr error
	listErr   error
	createErr error
}

func (f *fakeOrgs) Create(_ context.Context, o *models.Organization) (*models.Organization, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *o
	c.ID = "org-new"
	c.CreatedAt = testNow
	return &c, nil
}

func (f *fakeOrgs) List(context.Context) ([]models.Organization, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Organization
	for id := range f.ids {
		out = append(out, models.Organization{ID: id})
	}
	return out, nil
}

func (f *fakeOrgs) Exists(_ context.Context, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.ids[id], nil
}

// --- refresh tokens ---

// memRefresh is an in-memory refreshtokens.Repository with the same
// one-record-per-user and conditional rotation rules as the real stores.
type memRefresh struct {
	mu        sync.Mutex
	byUser    map[string]*models.RefreshToken
	findErr   error
	saveErr   error
	rotateErr error
}

func newMemRefresh() *memRefresh {
	return &memRefresh{byUser: map[string]*models.RefreshToken{}}
}

func (m *memRefresh) Find(_ context.Context, lookupKey string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, t := range m.byUser {
		if t.LookupKey == lookupKey {
			c := *t
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memRefresh) Save(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *t
	m.byUser[t.UserID] = &c
	return nil
}

func (m *memRefresh) Rotate(_ context.Context, expected string, next *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rotateErr != nil {
		return m.rotateErr
	}
	cur, ok := m.byUser[next.UserID]
	if !ok || cur.LookupKey != expected {
		return common.ErrorNotFound
	}
	c := *next
	m.byUser[next.UserID] = &c
	return nil
}

// --- tags ---

type fakeTags struct {
	byID      map[string]*models.Tag
	err       error
	countErr  error
	renamed   map[string]string
	deleted   []string
	lastCount []string
}

func newFakeTags(ts ...*models.Tag) *fakeTags {
	f := &fakeTags{byID: map[string]*models.Tag{}, renamed: map[string]string{}}
	for _, t := range ts {
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTags) Create(_ context.Context, t *models.Tag) (*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *t
	c.ID = "tag-new"
	return &c, nil
}

func (f *fakeTags) FindByID(_ context.Context, id string) (*models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTags) ListByOrganization(_ context.Context, orgID string) ([]models.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Tag{}
	for _, t := range f.byID {
		if t.OrganizationID == orgID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTags) Rename(_ context.Context, id, name string) error {
	f.renamed[id] = name
	return nil
}

func (f *fakeTags) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTags) CountInOrganization(_ context.Context, orgID string, ids []string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.lastCount = ids
	n := 0
	for _, id := range ids {
		if t, ok := f.byID[id]; ok && t.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

// --- items ---

type fakeItems struct {
	byID       map[string]*models.Item
	findErr    error
	createErr  error
	updateErr  error
	listOut    *models.ItemPage
	lastFilter models.ItemFilter
	updates    map[string]models.ItemUpdate
	tagSets    map[string][]string
	deleted    []string
}

func newFakeItems(its ...*models.Item) *fakeItems {
	f := &fakeItems{
		byID:    map[string]*models.Item{},
		updates: map[string]models.ItemUpdate{},
		tagSets: map[string][]string{},
	}
	for _, it := range its {
		f.byID[it.ID] = it
	}
	return f
}

func (f *fakeItems) Create(_ context.Context, it *models.Item) (*models.Item, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *it
	c.ID = "item-new"
	c.CreatedAt, c.UpdatedAt = testNow, testNow
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeItems) FindByID(_ context.Context, id string) (*models.Item, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	it, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *it
	return &c, nil
}

func (f *fakeItems) List(_ context.Context, filter models.ItemFilter) (*models.ItemPage, error) {
	f.lastFilter = filter
	if f.listOut == nil {
		return &models.ItemPage{Items: []models.Item{}, Page: filter.Page, Limit: filter.Limit}, nil
	}
	return f.listOut, nil
}

func (f *fakeItems) Update(_ context.Context, id string, upd models.ItemUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[id] = upd
	return nil
}

func (f *fakeItems) ReplaceTags(_ context.Context, id string, tagIDs []string) error {
	f.tagSets[id] = tagIDs
	return nil
}

func (f *fakeItems) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

// --- photos ---

type fakePhotos struct {
	byID    map[string]*models.Photo
	created []*models.Photo
	deleted []string
	listErr error
}

func newFakePhotos(ps ...*models.Photo) *fakePhotos {
	f := &fakePhotos{byID: map[string]*models.Photo{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePhotos) Create(_ context.Context, p *models.Photo) (*models.Photo, error) {
	c := *p
	f.created = append(f.created, &c)
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakePhotos) FindByID(_ context.Context, id string) (*models.Photo, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePhotos) ListByItems(_ context.Context, itemIDs []string) (map[string][]models.Photo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := map[string][]models.Photo{}
	for _, id := range itemIDs {
		for _, p := range f.byID {
			if p.ItemID == id {
				out[id] = append(out[id], *p)
			}
		}
	}
	return out, nil
}

func (f *fakePhotos) ListStorageKeys(_ context.Context, itemID string) ([]string, error) {
	var keys []string
	for _, p := range f.byID {
		if p.ItemID == itemID {
			keys = append(keys, p.StorageKey)
		}
	}
	return keys, nil
}

func (f *fakePhotos) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

// --- object store ---

type fakeStore struct {
	getErr  error
	putErr  error
	deleted []string
	puts    []string
}

func (s *fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return "https://s3.local/bucket/" + key + "?sig=get", nil
}

func (s *fakeStore) PresignPut(_ context.Context, key, contentType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.puts = append(s.puts, key)
	return "https://s3.local/bucket/" + key + "?sig=put&ct=" + strings.ReplaceAll(contentType, "/", "%2F"), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

// --- repository manager ---

type fakeRepoManager struct {
	users   *fakeUsers
	orgs    *fakeOrgs
	refresh *memRefresh
	tags    *fakeTags
	items   *fakeItems
	photos  *fakePhotos
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) Organizations(dbx.DBTX) organizations.Repository { return m.orgs }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository                   { return m.tags }
func (m *fakeRepoManager) Items(dbx.DBTX) items.Repository                 { return m.items }
func (m *fakeRepoManager) Photos(dbx.DBTX) photos.Repository               { return m.photos }

// --- principals ---

func adminPrincipal() *auth.Principal {
	return &auth.Principal{Username: "superadmin", Role: models.RoleSuperAdmin}
}

func orgPrincipal(orgID string) *auth.Principal {
	return &auth.Principal{UserID: "owner-" + orgID, Role: models.RoleOrganization, OrganizationID: orgID}
}

func userPrincipal(id, orgID string) *auth.Principal {
	return &auth.Principal{UserID: id, Email: id + "@example.com", Role: models.RoleUser, OrganizationID: orgID}
}

func accessClaimsFor(p *auth.Principal) auth.AccessClaims {
	return auth.AccessClaims{
		UserID:         p.UserID,
		Email:          p.Email,
		Username:       p.Username,
		Role:           p.Role,
		OrganizationID: p.OrganizationID,
	}
}
