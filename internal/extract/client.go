// Package extract 调用MinerU风格的云端抽取服务，把PDF等文档转换为结构化文本
//
// 抽取服务被当作不透明的协作方：提交任务、轮询状态、下载结果，
// 除粗粒度的元数据外不解析其输出
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config 抽取服务配置
type Config struct {
	APIKey  string        `json:"api_key"`
	APIBase string        `json:"api_base"`
	Timeout time.Duration `json:"timeout"`

	// PollInterval 任务状态轮询间隔
	PollInterval time.Duration `json:"poll_interval"`

	// MaxWait 等待任务完成的上限
	MaxWait time.Duration `json:"max_wait"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		APIBase:      "https://mineru.net/api/v4",
		Timeout:      60 * time.Second,
		PollInterval: 3 * time.Second,
		MaxWait:      5 * time.Minute,
	}
}

// Client 抽取服务客户端
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 创建抽取服务客户端
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.APIBase == "" {
		config.APIBase = "https://mineru.net/api/v4"
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 3 * time.Second
	}
	if config.MaxWait <= 0 {
		config.MaxWait = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// IsConfigured 是否配置了API密钥
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// apiEnvelope 抽取服务的统一响应包装
type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// taskStatus 任务状态
type taskStatus struct {
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
	Result   struct {
		MarkdownContent string `json:"markdown_content,omitempty"`
		MarkdownURL     string `json:"markdown_url,omitempty"`
	} `json:"result"`
}

// Extract 提交文档抽取任务并等待结果
func (c *Client) Extract(ctx context.Context, content []byte, filename string) (*Document, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("extraction API key not configured")
	}

	c.logger.Info("starting document extraction",
		zap.String("filename", filename),
		zap.Int("size", len(content)))

	batchID, err := c.submitTask(ctx, content, filename)
	if err != nil {
		return nil, err
	}

	status, err := c.pollTask(ctx, batchID)
	if err != nil {
		return nil, err
	}

	markdown := status.Result.MarkdownContent
	if markdown == "" && status.Result.MarkdownURL != "" {
		markdown, err = c.downloadMarkdown(ctx, status.Result.MarkdownURL)
		if err != nil {
			return nil, err
		}
	}
	if markdown == "" {
		return nil, fmt.Errorf("extraction result contains no markdown content")
	}

	doc := NewDocument(markdown)
	c.logger.Info("document extraction complete",
		zap.String("batch_id", batchID),
		zap.Int("text_length", len(doc.Text)),
		zap.Int("pages", doc.Pages),
		zap.Stringer("language", doc.Language))

	return doc, nil
}

// submitTask 提交抽取任务，返回用于轮询的批次标识
func (c *Client) submitTask(ctx context.Context, content []byte, filename string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"file":           base64.StdEncoding.EncodeToString(content),
		"file_name":      filename,
		"is_ocr":         true,
		"enable_formula": true,
		"enable_table":   true,
		"output_format":  "markdown",
	})
	if err != nil {
		return "", err
	}

	var data struct {
		BatchID string `json:"batch_id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, c.config.APIBase+"/extract/task", payload, &data); err != nil {
		return "", fmt.Errorf("task submission failed: %w", err)
	}
	if data.BatchID == "" {
		return "", fmt.Errorf("task submission returned no batch id")
	}

	c.logger.Debug("extraction task submitted", zap.String("batch_id", data.BatchID))
	return data.BatchID, nil
}

// pollTask 轮询任务状态直到完成、失败或超时
func (c *Client) pollTask(ctx context.Context, batchID string) (*taskStatus, error) {
	deadline := time.Now().Add(c.config.MaxWait)

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("extraction task %s timed out after %v", batchID, c.config.MaxWait)
		}

		var status taskStatus
		if err := c.doRequest(ctx, http.MethodGet, c.config.APIBase+"/extract/task/"+batchID, nil, &status); err != nil {
			return nil, fmt.Errorf("status check failed: %w", err)
		}

		c.logger.Debug("extraction task status",
			zap.String("batch_id", batchID),
			zap.String("state", status.State),
			zap.Int("progress", status.Progress))

		switch status.State {
		case "completed":
			return &status, nil
		case "failed":
			if status.Error == "" {
				status.Error = "unknown error"
			}
			return nil, fmt.Errorf("extraction failed: %s", status.Error)
		}

		select {
		case <-time.After(c.config.PollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// downloadMarkdown 从结果地址下载markdown内容
func (c *Client) downloadMarkdown(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download markdown: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// doRequest 执行带鉴权的API请求并解开统一响应包装
func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: status %d: %s", resp.StatusCode, string(raw))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("invalid API response: %w", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("API error: %s", envelope.Msg)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("invalid API response data: %w", err)
		}
	}
	return nil
}
