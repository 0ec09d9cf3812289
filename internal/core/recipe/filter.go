package recipe

import "strings"

// CategoryAll 分類過濾的哨兵值，表示不過濾直接通過
const CategoryAll = "all"

// FilterByCategory 保留分類（不分大小寫）包含指定值的食譜。
// 傳入 "all" 或空字串時原樣通過。不修改輸入，回傳保持相對順序的新切片。
func FilterByCategory(recipes []Recipe, category string) []Recipe {
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return append([]Recipe(nil), recipes...)
	}

	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		for _, c := range r.Categories {
			if strings.EqualFold(c, category) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// FilterByLetter 保留名稱（不分大小寫）以指定字母開頭的食譜。
// 傳入空字串時原樣通過。
func FilterByLetter(recipes []Recipe, letter string) []Recipe {
	if letter == "" {
		return append([]Recipe(nil), recipes...)
	}

	prefix := strings.ToLower(letter)
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if strings.HasPrefix(strings.ToLower(r.Name), prefix) {
			out = append(out, r)
		}
	}
	return out
}

// MatchesKeyword 本地搜尋退路的關鍵字比對：
// 關鍵字（不分大小寫）是名稱的子字串，或任一分組中任一食材行的子字串，
// 或任一分類的子字串。三個欄位為 OR 關係，全部檢查完才能判定不符。
func MatchesKeyword(r Recipe, keyword string) bool {
	needle := strings.ToLower(keyword)

	if strings.Contains(strings.ToLower(r.Name), needle) {
		return true
	}
	for _, group := range r.IngredientGroups {
		for _, ing := range group.Ingredients {
			if strings.Contains(strings.ToLower(ing), needle) {
				return true
			}
		}
	}
	for _, c := range r.Categories {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

// FilterByKeyword 保留符合任一關鍵字的食譜
func FilterByKeyword(recipes []Recipe, keywords []string) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		for _, kw := range keywords {
			if kw != "" && MatchesKeyword(r, kw) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// ApplyFilters 組合過濾：先分類、後字母，字母永遠在已過濾的集合內收窄
func ApplyFilters(recipes []Recipe, category, letter string) []Recipe {
	return FilterByLetter(FilterByCategory(recipes, category), letter)
}
