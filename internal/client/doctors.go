package client

import (
	"context"
	"fmt"
	"strconv"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

// GetDoctor GET /api/doctores/{id}
func (c *Client) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	var doctor domain.Doctor
	resp, err := req.
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&doctor).
		Get("/api/doctores/{id}")
	if err := c.check("get doctor", resp, err); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// UpdateDoctor PUT /api/doctores/{id}，返回服务端保存后的完整档案
func (c *Client) UpdateDoctor(ctx context.Context, id int64, payload map[string]any) (*domain.Doctor, error) {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Updating doctor", zap.Int64("doctor_id", id), zap.Int("fields", len(payload)))

	var doctor domain.Doctor
	resp, err := req.
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(payload).
		SetResult(&doctor).
		Put("/api/doctores/{id}")
	if err := c.check("update doctor", resp, err); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// ListDoctors GET /api/doctores?skip&limit
func (c *Client) ListDoctors(ctx context.Context, skip, limit int) (*domain.DoctorPage, error) {
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	var page domain.DoctorPage
	resp, err := req.
		SetQueryParam("skip", strconv.Itoa(skip)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&page).
		Get("/api/doctores")
	if err := c.check("list doctors", resp, err); err != nil {
		return nil, err
	}
	if page.Doctores == nil {
		page.Doctores = []domain.Doctor{}
	}
	return &page, nil
}

// LookupClues GET /api/clues-con-capacidad/{clues}
func (c *Client) LookupClues(ctx context.Context, code string) (*domain.CluesInfo, error) {
	if code == "" {
		return nil, fmt.Errorf("empty CLUES code")
	}
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	var info domain.CluesInfo
	resp, err := req.
		SetPathParam("clues", code).
		SetResult(&info).
		Get("/api/clues-con-capacidad/{clues}")
	if err := c.check("lookup clues", resp, err); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteDoctor DELETE /api/doctores/{id}
func (c *Client) DeleteDoctor(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return err
	}

	c.logger.Info("Deleting doctor", zap.Int64("doctor_id", id))

	resp, err := req.
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete("/api/doctores/{id}")
	return c.check("delete doctor", resp, err)
}

// CheckCURP GET /api/doctores/check-curp/{curp}
func (c *Client) CheckCURP(ctx context.Context, curp string) (*domain.CurpCheck, error) {
	if curp == "" {
		return nil, fmt.Errorf("empty CURP")
	}
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	var check domain.CurpCheck
	resp, err := req.
		SetPathParam("curp", curp).
		SetResult(&check).
		Get("/api/doctores/check-curp/{curp}")
	if err := c.check("check curp", resp, err); err != nil {
		return nil, err
	}
	return &check, nil
}

// ListExpiryAlerts GET /api/doctores/alertas-vencimiento
func (c *Client) ListExpiryAlerts(ctx context.Context) ([]domain.ExpiryAlert, error) {
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	var alerts []domain.ExpiryAlert
	resp, err := req.
		SetResult(&alerts).
		Get("/api/doctores/alertas-vencimiento")
	if err := c.check("list expiry alerts", resp, err); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []domain.ExpiryAlert{}
	}
	return alerts, nil
}
