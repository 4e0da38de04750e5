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

// ListDeletedDoctors GET /api/admin/doctores/eliminados?skip&limit
//
// 与审计日志相同，后端可能返回分页对象或数组。
func (c *Client) ListDeletedDoctors(ctx context.Context, skip, limit int) (*domain.DeletedDoctorPage, error) {
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetQueryParam("skip", strconv.Itoa(skip)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/admin/doctores/eliminados")
	if err := c.check("list deleted doctors", resp, err); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	page := &domain.DeletedDoctorPage{}
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &page.Doctores); err != nil {
			return nil, fmt.Errorf("failed to decode deleted doctors: %w", err)
		}
		page.TotalCount = len(page.Doctores)
	} else if err := json.Unmarshal(body, page); err != nil {
		return nil, fmt.Errorf("failed to decode deleted doctors: %w", err)
	}
	if page.Doctores == nil {
		page.Doctores = []domain.DeletedDoctor{}
	}
	return page, nil
}

// RestoreDoctor POST /api/admin/doctores/{id}/restore
func (c *Client) RestoreDoctor(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return err
	}

	c.logger.Info("Restoring doctor", zap.Int64("doctor_id", id))

	resp, err := req.
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Post("/api/admin/doctores/{id}/restore")
	return c.check("restore doctor", resp, err)
}
