package report

import (
	"bytes"
	"fmt"

	"doctor-registry/internal/domain"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Doctores"

// ExportHeader 导出表头：ID + 所有可编辑字段（按 schema 顺序）
func ExportHeader() []string {
	header := []string{"ID"}
	for _, f := range domain.EditableFields() {
		header = append(header, f.Column)
	}
	return header
}

// GenerateDoctorsExport 生成医生档案导出 Excel 文件
func GenerateDoctorsExport(doctors []domain.Doctor) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 需要文件保持打开，不能 defer Close

	if _, err := f.NewSheet(SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(SheetName); err == nil {
		f.SetActiveSheet(index)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := ExportHeader()
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 20); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	fields := domain.EditableFields()
	for i := range doctors {
		d := &doctors[i]
		row := i + 2 // 第1行是表头

		if err := setCellValue(f, 1, row, d.ID); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set id at row %d: %w", row, err)
		}
		for j, field := range fields {
			v, _ := d.Value(field.Name)
			if v == nil || *v == "" {
				continue
			}
			if err := setCellValue(f, j+2, row, *v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, j+2, err)
			}
		}
	}

	// 冻结表头
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}
