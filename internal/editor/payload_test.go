package editor

import (
	"testing"

	"doctor-registry/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload_DatesAndVisibility(t *testing.T) {
	staged := &domain.Doctor{
		Estatus:           domain.StringPtr(string(domain.StatusRetirementCuba)),
		FechaVuelo:        domain.StringPtr(""),
		Observaciones:     domain.StringPtr(""),
		FechaInicioRetiro: domain.StringPtr("2025-02-01"),
		Turno:             domain.StringPtr("Matutino"),
	}
	staged.FillEmpty()

	payload := BuildPayload(staged, map[string]struct{}{"motivo_baja": {}}, HiddenOmit)

	assert.Nil(t, payload["fecha_vuelo"])
	assert.Contains(t, payload, "fecha_vuelo")
	assert.Equal(t, "", payload["observaciones"])
	assert.Equal(t, "2025-02-01", payload["fecha_inicio_retiro"])
	assert.NotContains(t, payload, "turno")
	assert.Contains(t, payload, "motivo_baja")
	assert.Nil(t, payload["motivo_baja"])
}

func TestParseHiddenFieldPolicy(t *testing.T) {
	p, err := ParseHiddenFieldPolicy("null")
	require.NoError(t, err)
	assert.Equal(t, HiddenNull, p)

	p, err = ParseHiddenFieldPolicy("omit")
	require.NoError(t, err)
	assert.Equal(t, HiddenOmit, p)

	_, err = ParseHiddenFieldPolicy("drop")
	assert.Error(t, err)
}
