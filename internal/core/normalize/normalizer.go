// Package normalize 將非結構化的食譜文字與自然語言查詢，
// 透過外部文字生成協作方轉換為標準結構。
// 語言理解委託給協作方；提示構建、回應萃取與驗證契約由本套件負責。
package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-keeper/internal/core/ai"
	"recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/pkg/common"

	"go.uber.org/zap"
)

// recipePrompt 指示生成器輸出目標 JSON 形狀與改寫規則
const recipePrompt = `You are an expert recipe parser and enhancer. Your goal is to take raw recipe text and transform it into a highly readable, user-friendly, and structured JSON object. Focus on clarity, conciseness, and ease of use for someone actually making the recipe.

The JSON object should have the following keys:
- recipeName: string (e.g., "Classic Chocolate Chip Cookies") - Infer a clear and appealing name if not explicitly stated.
- categories: string[] - Choose relevant categories from: breakfast, snacks, lunch, appetizers, dinner, dessert, sauce, misc. Select all that apply.
- ingredientGroups: { name: string; ingredients: string[] }[] - Group ingredients logically based on their use in the recipe (e.g., "Dry Ingredients", "Wet Ingredients", "For the Sauce", "Garnish"). If no logical groups are apparent, use a single group named "Ingredients". Ensure each ingredient is a separate string.
- instructions: string[] - Break down instructions into clear, concise, actionable steps. DO NOT include any numbering (e.g., "1.", "2.") in the instructions themselves. Remove any unnecessary conversational filler. Start instructions with action verbs.

Recipe Text:

%s

JSON Output:`

// parsedRecipe 生成器輸出的目標形狀
type parsedRecipe struct {
	RecipeName       string                   `json:"recipeName"`
	Categories       []string                 `json:"categories"`
	IngredientGroups []recipe.IngredientGroup `json:"ingredientGroups"`
	Instructions     []string                 `json:"instructions"`
}

// Normalizer 文字轉食譜正規化器
type Normalizer struct {
	generator ai.TextGenerator
}

// NewNormalizer 創建正規化器
func NewNormalizer(generator ai.TextGenerator) *Normalizer {
	return &Normalizer{generator: generator}
}

// Normalize 將原始食譜文字轉換為標準食譜。
// 每次呼叫只發送一個請求、不做內部重試：食譜文字是冪等輸入，
// 失敗直接回報，由呼叫方決定是否重新提交。
func (n *Normalizer) Normalize(ctx context.Context, rawText string) (recipe.Recipe, error) {
	if strings.TrimSpace(rawText) == "" {
		return recipe.Recipe{}, fmt.Errorf("%w: raw recipe text is blank", common.ErrEmptyInput)
	}

	start := time.Now()
	raw, err := n.generator.Generate(ctx, fmt.Sprintf(recipePrompt, rawText))
	if err != nil {
		common.LogError("食譜正規化的生成請求失敗",
			zap.Error(err),
			zap.Duration("耗時", time.Since(start)),
		)
		return recipe.Recipe{}, err
	}

	// 兩階段萃取：先嘗試圍欄代碼塊，找不到再退回整段原文
	payload, fenced := common.ExtractJSONPayload(raw)

	var parsed parsedRecipe
	if err := common.ParseJSON(payload, &parsed); err != nil {
		common.LogError("生成器輸出無法解析為標準形狀",
			zap.Error(err),
			zap.Bool("fenced", fenced),
			zap.Int("raw_length", len(raw)),
		)
		return recipe.Recipe{}, &common.MalformedResponseError{Raw: raw, Fenced: fenced, Err: err}
	}

	result := recipe.Recipe{
		Name:             parsed.RecipeName,
		Categories:       parsed.Categories,
		IngredientGroups: parsed.IngredientGroups,
		Instructions:     parsed.Instructions,
	}.Sanitize()

	// 強化驗證：名稱缺失視為形狀不符，不以預設資料代替
	if result.Name == "" {
		return recipe.Recipe{}, &common.MalformedResponseError{
			Raw:    raw,
			Fenced: fenced,
			Err:    fmt.Errorf("recipe name is missing"),
		}
	}

	common.LogInfo("食譜正規化完成",
		zap.String("recipe_name", result.Name),
		zap.Int("ingredient_groups", len(result.IngredientGroups)),
		zap.Int("instructions", len(result.Instructions)),
		zap.Duration("耗時", time.Since(start)),
	)

	return result, nil
}
