package auditlog

import (
	"context"
	"errors"
	"testing"

	"doctor-registry/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const phrase = "ELIMINAR REGISTROS"

type fakeDeleter struct {
	calls int
	ids   []int64
	pin   string
	err   error
}

func (d *fakeDeleter) DeleteAuditLogs(ctx context.Context, ids []int64, pin string) error {
	d.calls++
	d.ids, d.pin = ids, pin
	return d.err
}

type serverErr struct{ msg string }

func (e *serverErr) Error() string         { return "api error: " + e.msg }
func (e *serverErr) ServerMessage() string { return e.msg }

var admin = domain.Actor{Username: "root", Role: domain.RoleAdmin}

func TestPurge_HappyPath(t *testing.T) {
	del := &fakeDeleter{}
	p := NewPurge(del, admin, phrase, zap.NewNop())

	require.NoError(t, p.Select(9, 3))
	require.NoError(t, p.Select(5))
	assert.Equal(t, StateSelected, p.State())
	require.NoError(t, p.Begin())
	assert.Equal(t, StateAwaitingPhrase, p.State())
	require.NoError(t, p.ConfirmPhrase(phrase))
	assert.Equal(t, StateAwaitingPIN, p.State())

	n, err := p.SubmitPIN(context.Background(), "2468")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{3, 5, 9}, del.ids)
	assert.Equal(t, "2468", del.pin)
	assert.Equal(t, StateIdle, p.State())
	assert.Empty(t, p.Selected())
}

func TestPurge_RequiresAdmin(t *testing.T) {
	p := NewPurge(&fakeDeleter{}, domain.Actor{Username: "ana", Role: "editor"}, phrase, zap.NewNop())

	assert.ErrorIs(t, p.Select(1), ErrPermissionDenied)
	assert.Equal(t, StateIdle, p.State())
}

func TestPurge_BeginRequiresSelection(t *testing.T) {
	p := NewPurge(&fakeDeleter{}, admin, phrase, zap.NewNop())

	assert.ErrorIs(t, p.Begin(), ErrInvalidState)

	require.NoError(t, p.Select(1))
	require.NoError(t, p.Deselect(1))
	assert.Equal(t, StateIdle, p.State())
	assert.ErrorIs(t, p.Begin(), ErrInvalidState)
}

func TestPurge_WrongPhraseThreeTimesCancels(t *testing.T) {
	del := &fakeDeleter{}
	p := NewPurge(del, admin, phrase, zap.NewNop())
	require.NoError(t, p.Select(1))
	require.NoError(t, p.Begin())

	assert.ErrorIs(t, p.ConfirmPhrase("eliminar registros"), ErrValidation)
	assert.ErrorIs(t, p.ConfirmPhrase("ELIMINAR REGISTROS "), ErrValidation)
	assert.Equal(t, StateAwaitingPhrase, p.State())
	assert.ErrorIs(t, p.ConfirmPhrase("BORRAR"), ErrCancelled)

	assert.Equal(t, StateIdle, p.State())
	assert.Empty(t, p.Selected())
	assert.Equal(t, 0, del.calls)
}

func TestPurge_InvalidPIN(t *testing.T) {
	del := &fakeDeleter{}
	p := NewPurge(del, admin, phrase, zap.NewNop())
	require.NoError(t, p.Select(1))
	require.NoError(t, p.Begin())
	require.NoError(t, p.ConfirmPhrase(phrase))

	for _, pin := range []string{"123", "123456789", "12a4", ""} {
		_, err := p.SubmitPIN(context.Background(), pin)
		assert.ErrorIs(t, err, ErrValidation, pin)
	}
	assert.Equal(t, StateAwaitingPIN, p.State())
	assert.Equal(t, 0, del.calls)
}

func TestPurge_ServerErrorStaysAwaitingPIN(t *testing.T) {
	del := &fakeDeleter{err: &serverErr{msg: "PIN incorrecto"}}
	p := NewPurge(del, admin, phrase, zap.NewNop())
	require.NoError(t, p.Select(1, 2))
	require.NoError(t, p.Begin())
	require.NoError(t, p.ConfirmPhrase(phrase))

	_, err := p.SubmitPIN(context.Background(), "0000")

	require.Error(t, err)
	assert.Equal(t, StateAwaitingPIN, p.State())
	assert.Equal(t, "PIN incorrecto", p.Message())
	assert.Equal(t, []int64{1, 2}, p.Selected())

	del.err = nil
	n, err := p.SubmitPIN(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPurge_SelectionLockedWhileConfirming(t *testing.T) {
	p := NewPurge(&fakeDeleter{}, admin, phrase, zap.NewNop())
	require.NoError(t, p.Select(1))
	require.NoError(t, p.Begin())

	assert.ErrorIs(t, p.Select(2), ErrInvalidState)
	_, err := p.SubmitPIN(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrInvalidState)

	p.Cancel()
	assert.Equal(t, StateIdle, p.State())
	assert.True(t, errors.Is(p.Begin(), ErrInvalidState))
}
