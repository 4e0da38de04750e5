package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCURP(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		curp  string
		ok    bool
		birth string
		sex   string
		age   int
	}{
		{"1900s male", "GODE561231HDFRRN09", true, "1956-12-31", "Masculino", 69},
		{"2000s female lowercase", "pera050101mdfrrn02", true, "2005-01-01", "Femenino", 21},
		{"century boundary stays 2000s", "XAXX310615XDFRRN01", true, "2031-06-15", "Otro", -5},
		{"century boundary 1900s", "XAXX320615HDFRRN01", true, "1932-06-15", "Masculino", 94},
		{"leap day", "XAXX000229MDFRRN01", true, "2000-02-29", "Femenino", 26},
		{"invalid leap day", "XAXX010229MDFRRN01", false, "", "", 0},
		{"invalid month", "XAXX011329MDFRRN01", false, "", "", 0},
		{"short", "GODE561231", false, "", "", 0},
		{"non numeric date", "GODEAB1231HDFRRN09", false, "", "", 0},
		{"signed year", "GODE+11231HDFRRN09", false, "", "", 0},
		{"signed day", "GODE5612+1HDFRRN09", false, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := ParseCURP(tt.curp, now)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.birth, info.BirthDate)
			assert.Equal(t, tt.sex, info.Sex)
			assert.Equal(t, tt.age, info.Age)
		})
	}
}
