package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoCredentials = errors.New("no API credentials configured")

// Credentials 提供 bearer token（由调用方注入）
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken 固定 token
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	if t == "" {
		return "", ErrNoCredentials
	}
	return string(t), nil
}

// APIError 后端返回的非 2xx 响应（FastAPI 风格 {"detail": ...}）
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Detail)
}

// HTTPStatus 返回 HTTP 状态码
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// ServerMessage 返回服务端原始信息
func (e *APIError) ServerMessage() string { return e.Detail }

// Options 客户端配置
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int // 仅用于读请求
}

// Client doctor registry REST API 客户端
//
// 读请求按 RetryCount 重试；写请求不重试，避免重复提交。
type Client struct {
	reads  *resty.Client
	writes *resty.Client
	creds  Credentials
	logger *zap.Logger
}

// New 创建客户端
func New(opts Options, creds Credentials, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	reads := newResty(opts).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= 500
		})

	return &Client{
		reads:  reads,
		writes: newResty(opts),
		creds:  creds,
		logger: logger,
	}
}

func newResty(opts Options) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// newRequest 构造带认证头和请求 ID 的请求
func (c *Client) newRequest(ctx context.Context, rc *resty.Client) (*resty.Request, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get API token: %w", err)
	}
	return rc.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-Request-ID", uuid.NewString()).
		ForceContentType("application/json"), nil
}

// check 把传输错误和非 2xx 响应统一转换为 error
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Error("API call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		apiErr := parseAPIError(resp)
		c.logger.Warn("API returned error",
			zap.String("op", op),
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("detail", apiErr.Detail),
		)
		return apiErr
	}
	return nil
}

func parseAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	body := resp.Body()

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			apiErr.Detail = s
		} else {
			// 422 校验错误时 detail 为数组
			apiErr.Detail = string(payload.Detail)
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Detail = text
	}

	if apiErr.Detail == "" {
		apiErr.Detail = fmt.Sprintf("HTTP %d", apiErr.StatusCode)
	}
	return apiErr
}
