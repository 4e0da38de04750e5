package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

// ListAuditLogs GET /api/admin/audit-logs
//
// 后端可能返回 {"audit_logs": [...], "total_count": n}，也可能直接返回数组。
func (c *Client) ListAuditLogs(ctx context.Context, q domain.AuditLogQuery) (*domain.AuditLogPage, error) {
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	req.SetQueryParam("skip", strconv.Itoa(q.Skip)).
		SetQueryParam("limit", strconv.Itoa(q.Limit))
	if q.StartDate != "" {
		req.SetQueryParam("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		req.SetQueryParam("end_date", q.EndDate)
	}

	resp, err := req.Get("/api/admin/audit-logs")
	if err := c.check("list audit logs", resp, err); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	page := &domain.AuditLogPage{}
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &page.AuditLogs); err != nil {
			return nil, fmt.Errorf("failed to decode audit logs: %w", err)
		}
		page.TotalCount = len(page.AuditLogs)
	} else if err := json.Unmarshal(body, page); err != nil {
		return nil, fmt.Errorf("failed to decode audit logs: %w", err)
	}
	if page.AuditLogs == nil {
		page.AuditLogs = []domain.AuditLog{}
	}
	return page, nil
}

// DeleteAuditLogs DELETE /api/admin/audit-logs/bulk-delete
func (c *Client) DeleteAuditLogs(ctx context.Context, ids []int64, pin string) error {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return err
	}

	c.logger.Info("Deleting audit logs", zap.Int("count", len(ids)))

	resp, err := req.
		SetBody(map[string]any{"ids": ids, "pin": pin}).
		Delete("/api/admin/audit-logs/bulk-delete")
	return c.check("delete audit logs", resp, err)
}
