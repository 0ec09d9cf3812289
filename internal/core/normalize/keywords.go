package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-keeper/internal/core/ai"
	"recipe-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// keywordPrompt 指示生成器從自然語言查詢萃取搜尋關鍵字
const keywordPrompt = `You are an expert at understanding user search queries for recipes. Your goal is to extract the key ingredients and search terms from a user's query. The output should be a JSON object with a single key, "keywords", which is an array of strings.

For example, if the user says "I want to make dinner with chicken and rice", the output should be:
{
  "keywords": ["chicken", "rice"]
}

If the user says "show me some dessert recipes", the output should be:
{
  "keywords": ["dessert"]
}

User Query:
%s

JSON Output:`

// maxAttempts 含首次呼叫在內的最大嘗試次數
const maxAttempts = 3

// KeywordExtractor 查詢關鍵字萃取器
type KeywordExtractor struct {
	generator ai.TextGenerator
	sleep     func(time.Duration) // 測試可注入，避免真實等待
}

// NewKeywordExtractor 創建關鍵字萃取器
func NewKeywordExtractor(generator ai.TextGenerator) *KeywordExtractor {
	return &KeywordExtractor{
		generator: generator,
		sleep:     time.Sleep,
	}
}

// Extract 從自然語言查詢萃取正規化的搜尋關鍵字。
// 重試策略：最多 3 次嘗試，只有上游明確回報暫時性過載才重試，
// 其他失敗立即回報。退避為線性：第 n 次嘗試失敗後等待 n 秒。
func (e *KeywordExtractor) Extract(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is blank", common.ErrEmptyInput)
	}

	prompt := fmt.Sprintf(keywordPrompt, query)

	var raw string
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err = e.generator.Generate(ctx, prompt)
		if err == nil {
			break
		}
		if !common.IsOverloaded(err) || attempt == maxAttempts {
			common.LogError("關鍵字萃取失敗",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			return nil, err
		}
		// 真實的時鐘等待，不是忙等
		common.LogWarn("上游過載，延遲後重試",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", time.Duration(attempt)*time.Second),
		)
		e.sleep(time.Duration(attempt) * time.Second)
	}

	payload, fenced := common.ExtractJSONPayload(raw)

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := common.ParseJSON(payload, &parsed); err != nil {
		return nil, &common.MalformedResponseError{Raw: raw, Fenced: fenced, Err: err}
	}

	keywords := make([]string, 0, len(parsed.Keywords))
	for _, kw := range parsed.Keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}

	common.LogInfo("關鍵字萃取完成",
		zap.Strings("keywords", keywords),
	)

	return keywords, nil
}
