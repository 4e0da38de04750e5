package auditlog

import (
	"fmt"
	"time"

	"doctor-registry/internal/domain"
)

const DefaultPageSize = 20

// NewQuery 按页码（从 1 开始）和日期范围构造查询条件
func NewQuery(page, pageSize int, startDate, endDate string) (domain.AuditLogQuery, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var start, end time.Time
	var err error
	if startDate != "" {
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			return domain.AuditLogQuery{}, fmt.Errorf("%w: invalid start date %q", ErrValidation, startDate)
		}
	}
	if endDate != "" {
		if end, err = time.Parse("2006-01-02", endDate); err != nil {
			return domain.AuditLogQuery{}, fmt.Errorf("%w: invalid end date %q", ErrValidation, endDate)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return domain.AuditLogQuery{}, fmt.Errorf("%w: end date is before start date", ErrValidation)
	}

	return domain.AuditLogQuery{
		Skip:      (page - 1) * pageSize,
		Limit:     pageSize,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}
