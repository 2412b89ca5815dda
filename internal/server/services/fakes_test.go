package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/cryptox"
	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/server/models"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/groups"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/roles"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/identitystore/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

var testPasswords = cryptox.NewPasswords(cryptox.Argon2idParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// --- users ---

type fakeUsersRepo struct {
	byID      map[string]*models.User
	createErr error
	updateErr error
	getErr    error
	updates   int
	seq       int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, other := range f.byID {
		if other.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		f.seq++
		u.ID = "u-" + strconv.Itoa(f.seq)
	}
	u.RegTime = time.Unix(1_700_000_000, 0)
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) Update(_ context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	f.updates++
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- roles ---

type fakeRolesRepo struct {
	byName map[string]*models.Role
	nextID int64
}

func newFakeRolesRepo(names ...string) *fakeRolesRepo {
	f := &fakeRolesRepo{byName: map[string]*models.Role{}}
	for _, n := range names {
		f.nextID++
		f.byName[n] = &models.Role{ID: f.nextID, Name: n}
	}
	return f
}

func (f *fakeRolesRepo) Create(_ context.Context, name string) (*models.Role, error) {
	if _, ok := f.byName[name]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	r := &models.Role{ID: f.nextID, Name: name}
	f.byName[name] = r
	return r, nil
}

func (f *fakeRolesRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	r, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeRolesRepo) GetByID(_ context.Context, id int64) (*models.Role, error) {
	for _, r := range f.byName {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRolesRepo) List(context.Context) ([]*models.Role, error) {
	out := make([]*models.Role, 0, len(f.byName))
	for _, r := range f.byName {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- tokens ---

type fakeTokensRepo struct {
	rows      []*models.Token
	createErr error
	findErr   error
}

func (f *fakeTokensRepo) Create(_ context.Context, t *models.Token) error {
	if f.createErr != nil {
		return f.createErr
	}
	t.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, t)
	return nil
}

func (f *fakeTokensRepo) Find(_ context.Context, value string) (*models.Token, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, t := range f.rows {
		if t.Token == value {
			return t, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTokensRepo) ListByUser(_ context.Context, userID string) ([]*models.Token, error) {
	var out []*models.Token
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

// --- groups ---

type fakeGroupsRepo struct {
	users   *fakeUsersRepo
	byName  map[string]*models.Group
	members map[int64][]string
}

func newFakeGroupsRepo(u *fakeUsersRepo) *fakeGroupsRepo {
	return &fakeGroupsRepo{users: u, byName: map[string]*models.Group{}, members: map[int64][]string{}}
}

func (f *fakeGroupsRepo) Create(_ context.Context, name string) (*models.Group, error) {
	if _, ok := f.byName[name]; ok {
		return nil, common.ErrorAlreadyExists
	}
	g := &models.Group{ID: int64(len(f.byName) + 1), Name: name}
	f.byName[name] = g
	return g, nil
}

func (f *fakeGroupsRepo) GetByName(_ context.Context, name string) (*models.Group, error) {
	g, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return g, nil
}

func (f *fakeGroupsRepo) AddMember(_ context.Context, userID string, groupID int64) (*models.UserGroup, error) {
	for _, id := range f.members[groupID] {
		if id == userID {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.members[groupID] = append(f.members[groupID], userID)
	return &models.UserGroup{ID: int64(len(f.members[groupID])), UserID: userID, GroupID: groupID}, nil
}

func (f *fakeGroupsRepo) ListByUser(_ context.Context, userID string) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range f.byName {
		for _, id := range f.members[g.ID] {
			if id == userID {
				out = append(out, g)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeGroupsRepo) ListMembers(_ context.Context, groupID int64) ([]*models.User, error) {
	var out []*models.User
	for _, id := range f.members[groupID] {
		out = append(out, f.users.byID[id])
	}
	return out, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRolesRepo
	t *fakeTokensRepo
	g *fakeGroupsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	u := newFakeUsersRepo()
	return &fakeRepoManager{
		u: u,
		r: newFakeRolesRepo(models.RoleUnVerified, models.RoleAdmin),
		t: &fakeTokensRepo{},
		g: newFakeGroupsRepo(u),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Roles(dbx.DBTX) roles.Repository              { return m.r }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokens.Repository            { return m.t }
func (m *fakeRepoManager) Groups(dbx.DBTX) groups.Repository            { return m.g }
