package users

import (
	"context"
	"errors"
	"testing"

	"doctor-registry/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	users      []domain.User
	registered []domain.NewUser
	deleted    []int64
	resets     map[int64]string
	changed    string
	err        error
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	return f.users, f.err
}

func (f *fakeStore) RegisterUser(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.registered = append(f.registered, u)
	return &domain.User{ID: int64(len(f.users) + 1), Username: u.Username, Role: u.Role}, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) ResetPassword(ctx context.Context, id int64, pw string) error {
	if f.resets == nil {
		f.resets = map[int64]string{}
	}
	f.resets[id] = pw
	return nil
}

func (f *fakeStore) ChangePassword(ctx context.Context, pw string) error {
	f.changed = pw
	return nil
}

var (
	admin = domain.Actor{Username: "root", Role: domain.RoleAdmin}
	plain = domain.Actor{Username: "ana", Role: domain.RoleUser}
)

func seeded() *fakeStore {
	return &fakeStore{users: []domain.User{
		{ID: 1, Username: "root", Role: domain.RoleAdmin},
		{ID: 2, Username: "ana", Role: domain.RoleUser},
	}}
}

func TestService_AdminOnly(t *testing.T) {
	st := seeded()
	s := NewService(st, plain, zap.NewNop())
	ctx := context.Background()

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = s.Create(ctx, domain.NewUser{Username: "x", Password: "y"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, s.ResetPassword(ctx, 1, "abcd"), ErrPermissionDenied)
	assert.Empty(t, st.registered)
	assert.Empty(t, st.deleted)
}

func TestService_Create(t *testing.T) {
	st := seeded()
	s := NewService(st, admin, nil)

	u, err := s.Create(context.Background(), domain.NewUser{Username: "  luis ", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "luis", u.Username)
	assert.Equal(t, []domain.NewUser{{Username: "luis", Password: "secreto", Role: domain.RoleUser}}, st.registered)

	_, err = s.Create(context.Background(), domain.NewUser{Username: "luis"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "requeridos")

	_, err = s.Create(context.Background(), domain.NewUser{Username: "luis", Password: "x", Role: "superuser"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_DeleteRefusesOwnAccount(t *testing.T) {
	st := seeded()
	s := NewService(st, admin, zap.NewNop())

	_, err := s.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "propia cuenta")

	u, err := s.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, []int64{2}, st.deleted)

	_, err = s.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_DeleteListFailure(t *testing.T) {
	st := seeded()
	st.err = errors.New("connection refused")
	s := NewService(st, admin, zap.NewNop())

	_, err := s.Delete(context.Background(), 2)
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, st.deleted)
}

func TestService_ResetPassword(t *testing.T) {
	st := seeded()
	s := NewService(st, admin, zap.NewNop())

	assert.ErrorIs(t, s.ResetPassword(context.Background(), 2, "abc"), ErrValidation)
	assert.ErrorIs(t, s.ResetPassword(context.Background(), 2, "    "), ErrValidation)
	require.NoError(t, s.ResetPassword(context.Background(), 2, "temp1"))
	assert.Equal(t, "temp1", st.resets[2])
}

func TestService_ChangeOwnPassword(t *testing.T) {
	st := seeded()
	s := NewService(st, plain, zap.NewNop())

	err := s.ChangeOwnPassword(context.Background(), "nuevaClave1", "nuevaClave2")
	assert.ErrorContains(t, err, "no coinciden")

	err = s.ChangeOwnPassword(context.Background(), "corta", "corta")
	assert.ErrorContains(t, err, "al menos 8")

	require.NoError(t, s.ChangeOwnPassword(context.Background(), "nuevaClave1", "nuevaClave1"))
	assert.Equal(t, "nuevaClave1", st.changed)
}
