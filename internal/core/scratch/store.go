// Package scratch 提供跨頁面交接用的工作階段暫存區。
// 草稿食譜或過濾後的結果集由一頁寫入、下一頁取走；
// 非持久存儲，不屬於核心正確性契約的一部分。
// 取代瀏覽器本地暫存：以明確的工作階段識別碼為範圍，沒有全域狀態。
package scratch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// Store 工作階段暫存
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore 創建暫存存儲；停用時回傳 nil，呼叫方須容忍 nil Store
func NewStore(cfg *config.ScratchConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

// Close 關閉連線
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// PutDraft 存放草稿食譜，供同一工作階段的下一頁取用
func (s *Store) PutDraft(ctx context.Context, sessionID string, draft recipe.Recipe) error {
	return s.put(ctx, draftKey(sessionID), draft)
}

// TakeDraft 取走草稿食譜，取走後即移除；沒有草稿時回傳 nil
func (s *Store) TakeDraft(ctx context.Context, sessionID string) (*recipe.Recipe, error) {
	var draft recipe.Recipe
	found, err := s.take(ctx, draftKey(sessionID), &draft)
	if err != nil || !found {
		return nil, err
	}
	return &draft, nil
}

// PutResults 存放過濾後的結果集
func (s *Store) PutResults(ctx context.Context, sessionID string, results []recipe.Recipe) error {
	return s.put(ctx, resultsKey(sessionID), results)
}

// TakeResults 取走結果集，取走後即移除；沒有結果時回傳 nil
func (s *Store) TakeResults(ctx context.Context, sessionID string) ([]recipe.Recipe, error) {
	var results []recipe.Recipe
	found, err := s.take(ctx, resultsKey(sessionID), &results)
	if err != nil || !found {
		return nil, err
	}
	return results, nil
}

func (s *Store) put(ctx context.Context, key string, value interface{}) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("scratch store is disabled")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal scratch value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set scratch value: %w", err)
	}
	return nil
}

func (s *Store) take(ctx context.Context, key string, value interface{}) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get scratch value: %w", err)
	}

	// 取走即移除，同一份交接資料只消費一次
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("failed to delete scratch value: %w", err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal scratch value: %w", err)
	}
	return true, nil
}

func draftKey(sessionID string) string {
	return "scratch:draft:" + sessionID
}

func resultsKey(sessionID string) string {
	return "scratch:results:" + sessionID
}
