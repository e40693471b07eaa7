package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-user-service/internal/model"
)

// memoryUserStore is an in-memory userStore for exercising the service
// without PostgreSQL.
type memoryUserStore struct {
	users map[string]model.User

	searchCalls []model.SearchRequest
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]model.User{}}
}

func (m *memoryUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) && u.DeletedAt == nil {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memoryUserStore) FindByName(_ context.Context, name string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if strings.EqualFold(u.Name, name) && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *memoryUserStore) Create(_ context.Context, u model.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memoryUserStore) Update(_ context.Context, u model.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	m.users[userID] = u
	return nil
}

func (m *memoryUserStore) SoftDelete(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	now := u.ModifiedAt
	u.DeletedAt = &now
	m.users[id] = u
	return nil
}

func (m *memoryUserStore) Search(_ context.Context, term string, sortBy string, orderBy string, page int64, pageSize int64) ([]model.User, int64, error) {
	m.searchCalls = append(m.searchCalls, model.SearchRequest{
		SearchTerm: term,
		SortBy:     sortBy,
		OrderBy:    orderBy,
		Page:       page,
		PageSize:   pageSize,
	})

	var out []model.User
	for _, u := range m.users {
		if u.DeletedAt != nil {
			continue
		}
		if term == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(term)) {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func TestRegisterCreatesUser(t *testing.T) {
	store := newMemoryUserStore()
	svc := NewUserService(store)

	created, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:     "  bob  ",
		Email:    "bob@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "bob", created.Name)
	require.Equal(t, model.RoleUser, created.Role)
	require.NotEmpty(t, created.ID)

	stored := store.users[created.ID]
	require.NotEqual(t, "hunter22", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newMemoryUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Email: "x@example.com", Password: "pw"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "x", Password: "pw"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "x", Email: "x@example.com"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "x", Email: "x@example.com", Password: "pw", Role: "superadmin"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewUserService(newMemoryUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Name: "a", Email: "dup@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "b", Email: "dup@example.com", Password: "pw"})
	requireStatus(t, err, http.StatusConflict)
}

func TestGetByIDOrName(t *testing.T) {
	store := newMemoryUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	created, err := svc.Register(ctx, model.RegisterRequest{Name: "carol", Email: "carol@example.com", Password: "pw"})
	require.NoError(t, err)

	byID, err := svc.GetByIDOrName(ctx, created.ID, "")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	require.Equal(t, "carol", byID[0].Name)

	byName, err := svc.GetByIDOrName(ctx, "", "carol")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	_, err = svc.GetByIDOrName(ctx, "", "")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.GetByIDOrName(ctx, "missing-id", "")
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestSearchAppliesPagingDefaults(t *testing.T) {
	store := newMemoryUserStore()
	svc := NewUserService(store)

	_, total, err := svc.Search(context.Background(), model.SearchRequest{SearchTerm: "x"})
	require.NoError(t, err)
	require.Zero(t, total)

	require.Len(t, store.searchCalls, 1)
	require.Equal(t, int64(1), store.searchCalls[0].Page)
	require.Equal(t, int64(10), store.searchCalls[0].PageSize)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	store := newMemoryUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	created, err := svc.Register(ctx, model.RegisterRequest{Name: "dora", Email: "dora@example.com", Password: "pw"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.UpdateUserRequest{Name: "dora2"})
	require.NoError(t, err)
	require.Equal(t, "dora2", updated.Name)
	require.Equal(t, "dora@example.com", updated.Email)

	other, err := svc.Register(ctx, model.RegisterRequest{Name: "eve", Email: "eve@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, model.UpdateUserRequest{Email: "dora@example.com"})
	requireStatus(t, err, http.StatusConflict)

	_, err = svc.Update(ctx, created.ID, model.UpdateUserRequest{Role: "root"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteIsSoft(t *testing.T) {
	store := newMemoryUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	created, err := svc.Register(ctx, model.RegisterRequest{Name: "frank", Email: "frank@example.com", Password: "pw"})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "frank", removed.Name)

	_, err = svc.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, model.ErrUserNotFound)

	// The row is retained, only flagged.
	require.NotNil(t, store.users[created.ID].DeletedAt)
}

func TestChangePassword(t *testing.T) {
	store := newMemoryUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	created, err := svc.Register(ctx, model.RegisterRequest{Name: "gus", Email: "gus@example.com", Password: "oldpw"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, created.ID, "wrong", "newpw")
	requireStatus(t, err, http.StatusUnauthorized)

	err = svc.ChangePassword(ctx, created.ID, "oldpw", "")
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, svc.ChangePassword(ctx, created.ID, "oldpw", "newpw"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.users[created.ID].PasswordHash), []byte("newpw")))
}
