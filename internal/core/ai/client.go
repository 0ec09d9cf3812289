package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TextGenerator 文字生成協作方的抽象：一段提示文字進、一段原始輸出出。
// 測試以替身實作注入。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client OpenRouter 相容端點的文字生成客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建文字生成客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.AI.BaseURL).
		SetTimeout(cfg.AI.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AI.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-keeper.app").
		SetHeader("X-Title", "Recipe Keeper")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate 發送單次生成請求並回傳原始文字輸出。
// 上游過載（429/503）以 Overloaded 標記回報，由呼叫方決定重試策略；
// 此處不做任何重試。
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	// 構建請求
	req := map[string]interface{}{
		"model": c.config.AI.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.AI.MaxTokens,
	}

	start := time.Now()

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		common.LogError("文字生成請求發送失敗",
			zap.Error(err),
			zap.String("model", c.config.AI.Model),
			zap.Duration("耗時", time.Since(start)),
		)
		return "", &common.UpstreamError{Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		// 429/503 視為暫時性過載，其餘非成功狀態直接回報
		overloaded := resp.StatusCode() == http.StatusServiceUnavailable ||
			resp.StatusCode() == http.StatusTooManyRequests
		common.LogError("文字生成端點回傳非成功狀態",
			zap.Int("status_code", resp.StatusCode()),
			zap.Bool("overloaded", overloaded),
			zap.String("model", c.config.AI.Model),
		)
		return "", &common.UpstreamError{
			Status:     resp.StatusCode(),
			Overloaded: overloaded,
			Err:        fmt.Errorf("text generation endpoint returned %s", resp.Status()),
		}
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", &common.MalformedResponseError{Raw: resp.String(), Err: err}
	}

	if len(result.Choices) == 0 {
		return "", &common.MalformedResponseError{
			Raw: resp.String(),
			Err: fmt.Errorf("no choices in response"),
		}
	}

	common.LogDebug("文字生成成功",
		zap.String("model", c.config.AI.Model),
		zap.Int("content_length", len(result.Choices[0].Message.Content)),
		zap.Duration("耗時", time.Since(start)),
	)

	return result.Choices[0].Message.Content, nil
}
