package recipe

import (
	"strings"
	"time"
)

// DefaultGroupName 來源沒有邏輯分組時使用的預設分組名稱
const DefaultGroupName = "Ingredients"

// Categories 固定的分類詞彙表，分類過濾只認得這些值
var Categories = []string{
	"breakfast",
	"snacks",
	"lunch",
	"appetizers",
	"dinner",
	"dessert",
	"sauce",
	"misc",
}

// IngredientGroup 食譜中具名且有序的食材子清單
type IngredientGroup struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// Recipe 標準食譜結構，所有輸入來源正規化後的統一形狀
type Recipe struct {
	ID               string            `json:"id,omitempty"` // 尚未持久化時為空
	Name             string            `json:"recipeName"`
	Categories       []string          `json:"categories"`
	IngredientGroups []IngredientGroup `json:"ingredientGroups"`
	Instructions     []string          `json:"instructions"`
	CreatedAt        time.Time         `json:"createdAt,omitempty"`
	UpdatedAt        time.Time         `json:"updatedAt,omitempty"`
}

// KnownCategory 檢查分類是否屬於固定詞彙表（不分大小寫）
func KnownCategory(category string) bool {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(category), c) {
			return true
		}
	}
	return false
}

// NormalizeCategory 將已知分類統一為小寫；未知分類原樣保留
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if KnownCategory(trimmed) {
		return strings.ToLower(trimmed)
	}
	return trimmed
}

// Sanitize 強制套用標準食譜的不變量：
//   - 名稱與每條說明去除前後空白，空白說明整條移除
//   - 每個食材分組去除空白食材行，分組名稱缺失時補上預設名稱
//   - 完全沒有分組時合成一個預設分組
//   - 已知分類統一為小寫，未知分類原樣保留
func (r Recipe) Sanitize() Recipe {
	out := r
	out.Name = strings.TrimSpace(r.Name)

	out.Instructions = make([]string, 0, len(r.Instructions))
	for _, inst := range r.Instructions {
		if trimmed := strings.TrimSpace(inst); trimmed != "" {
			out.Instructions = append(out.Instructions, trimmed)
		}
	}

	out.Categories = make([]string, 0, len(r.Categories))
	for _, cat := range r.Categories {
		if normalized := NormalizeCategory(cat); normalized != "" {
			out.Categories = append(out.Categories, normalized)
		}
	}

	out.IngredientGroups = make([]IngredientGroup, 0, len(r.IngredientGroups))
	for _, group := range r.IngredientGroups {
		name := strings.TrimSpace(group.Name)
		if name == "" {
			name = DefaultGroupName
		}
		ingredients := make([]string, 0, len(group.Ingredients))
		for _, ing := range group.Ingredients {
			if trimmed := strings.TrimSpace(ing); trimmed != "" {
				ingredients = append(ingredients, trimmed)
			}
		}
		out.IngredientGroups = append(out.IngredientGroups, IngredientGroup{
			Name:        name,
			Ingredients: ingredients,
		})
	}

	// 不變量：正規化完成後至少要有一個食材分組
	if len(out.IngredientGroups) == 0 {
		out.IngredientGroups = []IngredientGroup{{Name: DefaultGroupName, Ingredients: []string{}}}
	}

	return out
}

// FromStoredRow 將存儲層的列形狀映射為標準食譜。
// 存儲層使用 snake_case 欄位（recipe_name、ingredient_groups），
// 標準形狀使用 camelCase（recipeName、ingredientGroups）；
// 兩種命名都接受，同時存在時以存儲層欄位優先。
// 缺失欄位一律產生空字串或空清單，沒有其他失敗模式。
func FromStoredRow(row map[string]interface{}) Recipe {
	r := Recipe{
		ID:           stringField(row, "id", "id"),
		Name:         stringField(row, "recipe_name", "recipeName"),
		Instructions: stringSliceField(row, "instructions", "instructions"),
		Categories:   stringSliceField(row, "categories", "categories"),
	}

	for i, cat := range r.Categories {
		r.Categories[i] = NormalizeCategory(cat)
	}

	groups := field(row, "ingredient_groups", "ingredientGroups")
	if list, ok := groups.([]interface{}); ok {
		r.IngredientGroups = make([]IngredientGroup, 0, len(list))
		for _, item := range list {
			groupRow, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			r.IngredientGroups = append(r.IngredientGroups, IngredientGroup{
				Name:        stringField(groupRow, "name", "name"),
				Ingredients: stringSliceField(groupRow, "ingredients", "ingredients"),
			})
		}
	}
	if r.IngredientGroups == nil {
		r.IngredientGroups = []IngredientGroup{}
	}

	return r
}

// field 依序嘗試存儲層命名與標準命名，回傳第一個存在的值
func field(row map[string]interface{}, storedKey, canonicalKey string) interface{} {
	if v, ok := row[storedKey]; ok && v != nil {
		return v
	}
	if v, ok := row[canonicalKey]; ok && v != nil {
		return v
	}
	return nil
}

func stringField(row map[string]interface{}, storedKey, canonicalKey string) string {
	if s, ok := field(row, storedKey, canonicalKey).(string); ok {
		return s
	}
	return ""
}

func stringSliceField(row map[string]interface{}, storedKey, canonicalKey string) []string {
	switch v := field(row, storedKey, canonicalKey).(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
