package domain

import "encoding/json"

// AuditLog 审计日志条目（GET /api/admin/audit-logs）
type AuditLog struct {
	ID           int64           `json:"id"`
	Timestamp    string          `json:"timestamp"`
	Username     string          `json:"username"`
	ActionType   string          `json:"action_type"`
	TargetEntity string          `json:"target_entity"`
	TargetID     json.RawMessage `json:"target_id,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
}

// AuditLogPage 审计日志分页结果
type AuditLogPage struct {
	TotalCount int        `json:"total_count"`
	AuditLogs  []AuditLog `json:"audit_logs"`
}

// AuditLogQuery 审计日志查询条件（日期为 YYYY-MM-DD，可为空）
type AuditLogQuery struct {
	Skip      int
	Limit     int
	StartDate string
	EndDate   string
}
