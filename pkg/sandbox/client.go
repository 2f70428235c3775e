package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/samarth494/Capstone-sub000/model"
	"go.uber.org/zap"
)

// Runner 沙箱执行能力, 对编排层完全不透明
type Runner interface {
	Execute(ctx context.Context, language, code, input string) (*model.RunResult, error)
}

// Client 沙箱 runner 服务的 HTTP 客户端
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

var _ Runner = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type executeRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Input    string `json:"input"`
}

// Execute 调用 runner 执行一次代码, 超时与资源限制由 runner 自己强制
func (c *Client) Execute(ctx context.Context, language, code, input string) (*model.RunResult, error) {
	body, err := json.Marshal(&executeRequest{
		Language: language,
		Code:     code,
		Input:    input,
	})
	if err != nil {
		return nil, fmt.Errorf("Execute failed at marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("Execute failed at build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Execute failed at call runner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Execute failed: runner returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Execute failed at read response: %w", err)
	}

	var result model.RunResult
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("Execute failed at unmarshal response: %w", err)
	}

	c.log.Debug("sandbox execution finished",
		zap.String("language", language),
		zap.Bool("success", result.Success),
		zap.Duration("roundTrip", time.Since(start)))
	return &result, nil
}

// HealthCheck 确认 runner 可用
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("HealthCheck failed at build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HealthCheck failed at call runner: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runner is not healthy: status %d", resp.StatusCode)
	}
	return nil
}
