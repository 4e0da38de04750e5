package auditlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	q, err := NewQuery(3, 0, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, 40, q.Skip)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, "2025-01-01", q.StartDate)

	q, err = NewQuery(0, 50, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, q.Skip)
	assert.Equal(t, 50, q.Limit)

	_, err = NewQuery(1, 20, "01/02/2025", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewQuery(1, 20, "2025-02-01", "2025-01-01")
	assert.ErrorIs(t, err, ErrValidation)
}
