package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor_EndDate(t *testing.T) {
	tests := []struct {
		name   string
		doctor Doctor
		want   string
		ok     bool
	}{
		{"retirement", Doctor{Estatus: StringPtr("02 RETIRO TEMP. (CUBA)"), FechaFinRetiro: StringPtr("2026-10-20")}, "2026-10-20", true},
		{"personal", Doctor{Estatus: StringPtr("04 SOL. PERSONAL"), FechaFinSolicitud: StringPtr("2026-11-01")}, "2026-11-01", true},
		{"leave", Doctor{Estatus: StringPtr("05 INCAPACIDAD"), FechaFinIncapacidad: StringPtr("2026-10-16")}, "2026-10-16", true},
		{"active has no end date", Doctor{Estatus: StringPtr("01 ACTIVO"), FechaFinRetiro: StringPtr("2026-10-20")}, "", false},
		{"end date of another status ignored", Doctor{Estatus: StringPtr("05 INCAPACIDAD"), FechaFinRetiro: StringPtr("2026-10-20")}, "", false},
		{"unparseable", Doctor{Estatus: StringPtr("05 INCAPACIDAD"), FechaFinIncapacidad: StringPtr("16/10/2026")}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, ok := tt.doctor.EndDate()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, end.Format("2006-01-02"))
			}
		})
	}
}

func TestExpiringWithin(t *testing.T) {
	now := time.Date(2026, 10, 16, 18, 30, 0, 0, time.UTC)
	doctors := []Doctor{
		{ID: 1, NombreCompleto: StringPtr("ZAPATA"), Estatus: StringPtr("05 INCAPACIDAD"), FechaFinIncapacidad: StringPtr("2026-10-20")},
		{ID: 2, NombreCompleto: StringPtr("ALVAREZ"), IdentificadorIMSS: StringPtr("IM-2"), Estatus: StringPtr("04 SOL. PERSONAL"), FechaFinSolicitud: StringPtr("2026-10-20")},
		{ID: 3, NombreCompleto: StringPtr("HOY"), Estatus: StringPtr("02 RETIRO TEMP. (CUBA)"), FechaFinRetiro: StringPtr("2026-10-16")},
		{ID: 4, NombreCompleto: StringPtr("LIMITE"), Estatus: StringPtr("02 RETIRO TEMP. (CUBA)"), FechaFinRetiro: StringPtr("2026-10-31")},
		{ID: 5, NombreCompleto: StringPtr("FUERA"), Estatus: StringPtr("02 RETIRO TEMP. (CUBA)"), FechaFinRetiro: StringPtr("2026-11-01")},
		{ID: 6, NombreCompleto: StringPtr("VENCIDO"), Estatus: StringPtr("05 INCAPACIDAD"), FechaFinIncapacidad: StringPtr("2026-10-15")},
		{ID: 7, NombreCompleto: StringPtr("ACTIVO"), Estatus: StringPtr("01 ACTIVO")},
	}

	alerts := ExpiringWithin(doctors, now, DefaultAlertWindowDays)

	require.Len(t, alerts, 4)
	ids := make([]int64, len(alerts))
	for i, a := range alerts {
		ids[i] = a.DoctorID
	}
	assert.Equal(t, []int64{3, 2, 1, 4}, ids)
	assert.Equal(t, ExpiryAlert{
		DoctorID:       2,
		IDImss:         "IM-2",
		NombreCompleto: "ALVAREZ",
		Estatus:        "04 SOL. PERSONAL",
		FechaFin:       "2026-10-20",
	}, alerts[1])
}

func TestExpiringWithin_Empty(t *testing.T) {
	alerts := ExpiringWithin(nil, time.Now(), DefaultAlertWindowDays)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
