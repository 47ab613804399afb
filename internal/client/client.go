// Package client 是 REST API 的类型化客户端以及看板状态层
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"projecttracker/internal/model"
)

// DefaultBaseURL 本地开发默认地址
const DefaultBaseURL = "http://localhost:5000/api"

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New baseURL 形如 http://host:5000/api
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// do 发送请求；out 为 nil 时丢弃响应体
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else if payload.Message != "" {
				apiErr.Message = payload.Message
			}
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- projects ---

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, nil)
}

// --- stages ---

// ListStages projectID 为空时返回全部阶段
func (c *Client) ListStages(ctx context.Context, projectID string) ([]model.Stage, error) {
	var q url.Values
	if projectID != "" {
		q = url.Values{"projectId": {projectID}}
	}
	var out []model.Stage
	err := c.do(ctx, http.MethodGet, "/stages", q, nil, &out)
	return out, err
}

func (c *Client) CreateStage(ctx context.Context, in model.StageInput) (*model.Stage, error) {
	var out model.Stage
	if err := c.do(ctx, http.MethodPost, "/stages", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStage(ctx context.Context, id string, in model.StageInput) (*model.Stage, error) {
	var out model.Stage
	body := model.ProjectInput{Name: in.Name, Description: in.Description}
	if err := c.do(ctx, http.MethodPut, "/stages/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteStage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/stages/"+url.PathEscape(id), nil, nil, nil)
}

// --- tasks ---

// ListTasks stageID 为空时返回全部任务
func (c *Client) ListTasks(ctx context.Context, stageID string) ([]model.Task, error) {
	var q url.Values
	if stageID != "" {
		q = url.Values{"stageId": {stageID}}
	}
	var out []model.Task
	err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask 部分更新，只发送 patch 中非 nil 的字段
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// --- health & diagnostics ---

// Health GET /health 的响应
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Message   string            `json:"message"`
	Database  string            `json:"database"`
	Data      model.TableCounts `json:"data"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Overview 返回完整项目树
func (c *Client) Overview(ctx context.Context) (*model.Overview, error) {
	var out envelope[model.Overview]
	if err := c.do(ctx, http.MethodGet, "/test/all-data", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Seed 写入示例数据
func (c *Client) Seed(ctx context.Context) (*model.SeedResult, error) {
	var out envelope[model.SeedResult]
	if err := c.do(ctx, http.MethodPost, "/test/sample-data", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ClearData 删除全部数据
func (c *Client) ClearData(ctx context.Context) (*model.ClearResult, error) {
	var out envelope[model.ClearResult]
	if err := c.do(ctx, http.MethodDelete, "/test/clear-data", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
