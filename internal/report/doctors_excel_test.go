package report

import (
	"bytes"
	"testing"

	"doctor-registry/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportHeader(t *testing.T) {
	header := ExportHeader()

	assert.Equal(t, "ID", header[0])
	assert.Contains(t, header, "Identificador.IMSS")
	assert.Contains(t, header, "Fecha Fallecimiento")
	assert.Len(t, header, len(domain.EditableFields())+1)
}

func TestGenerateDoctorsExport(t *testing.T) {
	doctors := []domain.Doctor{
		{
			ID:                11,
			IdentificadorIMSS: domain.StringPtr("IMSS-001"),
			NombreCompleto:    domain.StringPtr("Ana Pérez"),
			Estatus:           domain.StringPtr(string(domain.StatusActive)),
			FotoURL:           domain.StringPtr("/f/11.jpg"),
		},
		{ID: 12, NombreCompleto: domain.StringPtr("Luis Gómez")},
	}

	data, err := GenerateDoctorsExport(doctors)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ExportHeader(), rows[0])
	assert.Equal(t, "11", rows[1][0])
	assert.Equal(t, "IMSS-001", rows[1][1])
	assert.Equal(t, "Ana Pérez", rows[1][2])
	assert.Equal(t, "01 ACTIVO", rows[1][3])
	assert.Equal(t, "12", rows[2][0])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "Luis Gómez", rows[2][2])
}

func TestGenerateDoctorsExport_Empty(t *testing.T) {
	data, err := GenerateDoctorsExport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
