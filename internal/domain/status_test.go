package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldGroupFor(t *testing.T) {
	tests := []struct {
		status Status
		want   FieldGroup
	}{
		{StatusActive, GroupActive},
		{StatusRetirementCuba, GroupRetirement},
		{StatusRetirementMexic, GroupRetirement},
		{StatusPersonal, GroupPersonal},
		{StatusDischarge, GroupDischarge},
		{"06 BAJA", GroupDischarge},
		{"05 INCAPACIDAD", GroupLeave},
		{"06 INCAPACIDAD", GroupCommon},
		{StatusDeceased, GroupDeceased},
		{"", GroupCommon},
		{"99 DESCONOCIDO", GroupCommon},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, FieldGroupFor(tt.status))
			// 多次调用结果一致
			assert.Equal(t, FieldGroupFor(tt.status), FieldGroupFor(tt.status))
		})
	}
}

func TestStatuses_AllKnownAndMapped(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Known(), s)
		assert.NotEqual(t, GroupCommon, FieldGroupFor(s), s)
	}
	assert.False(t, Status("otro").Known())
}

func TestLocked(t *testing.T) {
	for _, s := range Statuses() {
		assert.Equal(t, s == StatusDeceased, s.Locked(), s)
	}
}

func TestIsVisible(t *testing.T) {
	assert.True(t, IsVisible(GroupCommon, StatusDischarge))
	assert.True(t, IsVisible(GroupDischarge, StatusDischarge))
	assert.False(t, IsVisible(GroupActive, StatusDischarge))
	assert.False(t, IsVisible(GroupServer, StatusActive))
	assert.False(t, IsVisible(GroupRetirement, "algo"))
}

func activeDoctor() *Doctor {
	return &Doctor{
		ID:                     7,
		Estatus:                StringPtr(string(StatusActive)),
		DireccionUnidad:        StringPtr("Av. Reforma 1"),
		TipoEstablecimiento:    StringPtr("Hospital"),
		SubtipoEstablecimiento: StringPtr("Rural"),
		Municipio:              StringPtr("Tepic"),
		Region:                 StringPtr("Norte"),
		Turno:                  StringPtr("Matutino"),
		NivelAtencion:          StringPtr("Segundo"),
		MotivoBaja:             StringPtr("viejo"),
		FechaFallecimiento:     StringPtr("2020-01-01"),
		MotivoRetiro:           StringPtr("familia"),
	}
}

func TestApplyStatusTransition_ToDischargeNullsActiveFields(t *testing.T) {
	d := activeDoctor()

	nulled := ApplyStatusTransition(d, StatusDischarge)

	assert.Equal(t, StatusDischarge, d.Status())
	for _, f := range FieldsInGroup(GroupActive) {
		v, err := d.Value(f.Name)
		require.NoError(t, err)
		assert.Nil(t, v, f.Name)
		assert.Contains(t, nulled, f.Name)
	}
	// 离职字段保留
	require.NotNil(t, d.MotivoBaja)
	assert.Equal(t, "viejo", *d.MotivoBaja)
	assert.Nil(t, d.FechaFallecimiento)
	// 退休组不受影响
	require.NotNil(t, d.MotivoRetiro)
}

func TestApplyStatusTransition_NotDischargeNullsDischargeFields(t *testing.T) {
	d := activeDoctor()
	d.Estatus = StringPtr(string(StatusDischarge))
	d.FechaExtraccion = StringPtr("2024-03-01")

	nulled := ApplyStatusTransition(d, StatusLeave)

	assert.Nil(t, d.FechaExtraccion)
	assert.Nil(t, d.MotivoBaja)
	assert.Nil(t, d.FechaFallecimiento)
	assert.Contains(t, nulled, "forma_notificacion_baja")
	assert.NotContains(t, nulled, "region")
	require.NotNil(t, d.Region)
}

func TestApplyStatusTransition_StoredBajaCodeNullsActiveFields(t *testing.T) {
	d := activeDoctor()

	nulled := ApplyStatusTransition(d, StatusBaja)

	assert.Equal(t, StatusBaja, d.Status())
	assert.Nil(t, d.Turno)
	assert.Nil(t, d.NivelAtencion)
	assert.Contains(t, nulled, "turno")
	assert.NotContains(t, nulled, "motivo_baja")
	require.NotNil(t, d.MotivoBaja)
}

func TestApplyStatusTransition_ToDeceasedKeepsDeathDate(t *testing.T) {
	d := activeDoctor()

	nulled := ApplyStatusTransition(d, StatusDeceased)

	require.NotNil(t, d.FechaFallecimiento)
	assert.NotContains(t, nulled, "fecha_fallecimiento")
	assert.Nil(t, d.MotivoBaja)
}

func TestApplyStatusTransition_SameStatusIsNoop(t *testing.T) {
	d := activeDoctor()

	nulled := ApplyStatusTransition(d, StatusActive)

	assert.Empty(t, nulled)
	require.NotNil(t, d.MotivoBaja)
	require.NotNil(t, d.FechaFallecimiento)
}
