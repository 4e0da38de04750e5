package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"doctor-registry/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Result 表格读取结果
type Result struct {
	Doctors []domain.Doctor
	Skipped int      // 缺少 identificador_imss 的行
	Ignored []string // 未识别的列
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2/1/2006",
}

// ReadDoctors 读取第一个工作表，表头按 xlsx 列名映射到字段
func ReadDoctors(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	// 读取原始值，日期列保留 Excel 序列号
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	result := &Result{Doctors: []domain.Doctor{}}
	if len(rows) == 0 {
		return result, nil
	}

	byColumn := make(map[string]domain.FieldSpec)
	for _, field := range domain.EditableFields() {
		byColumn[normalizeHeader(field.Column)] = field
	}

	columns := make(map[int]domain.FieldSpec)
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == "" {
			continue
		}
		field, ok := byColumn[normalizeHeader(h)]
		if !ok {
			result.Ignored = append(result.Ignored, h)
			continue
		}
		columns[i] = field
	}

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		var d domain.Doctor
		empty := true

		for colIdx, field := range columns {
			if colIdx >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[colIdx])
			if value == "" {
				continue
			}
			if field.Date {
				value = normalizeDate(value)
				if value == "" {
					continue
				}
			}
			_ = d.SetValue(field.Name, domain.StringPtr(value))
			empty = false
		}

		if empty {
			continue
		}
		if d.IdentificadorIMSS == nil {
			result.Skipped++
			continue
		}
		result.Doctors = append(result.Doctors, d)
	}
	return result, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// normalizeDate 转换为 YYYY-MM-DD；无法识别时返回空字符串
func normalizeDate(value string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
