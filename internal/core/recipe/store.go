package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipe-keeper/internal/pkg/common"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store 食譜存儲契約，所有操作以已驗證的擁有者為範圍
type Store interface {
	Create(ctx context.Context, ownerID string, r Recipe) (Recipe, error)
	List(ctx context.Context, ownerID string) ([]Recipe, error)
	Update(ctx context.Context, ownerID, id string, r Recipe) (Recipe, error)
	Delete(ctx context.Context, ownerID, id string) error
	Search(ctx context.Context, ownerID, term string) ([]Recipe, error)
}

// PostgresStore Store 的 PostgreSQL 實作
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore 創建 PostgreSQL 存儲並初始化結構
func NewPostgresStore(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		recipe_name TEXT NOT NULL,
		categories JSONB NOT NULL DEFAULT '[]',
		instructions JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS ingredient_groups (
		id UUID PRIMARY KEY,
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		ingredients JSONB NOT NULL DEFAULT '[]',
		sort_order INT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ingredient_groups_recipe ON ingredient_groups (recipe_id, sort_order);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create ingredient_groups table: %w", err)
	}

	// 伺服器端全文搜尋：名稱、食材與分類任一欄位符合即命中
	schema = `
	CREATE OR REPLACE FUNCTION search_recipes(search_term TEXT, owner_id TEXT)
	RETURNS SETOF recipes AS $$
		SELECT r.* FROM recipes r
		WHERE r.user_id = owner_id
		  AND (
			r.recipe_name ILIKE '%' || search_term || '%'
			OR r.categories::text ILIKE '%' || search_term || '%'
			OR EXISTS (
				SELECT 1 FROM ingredient_groups g
				WHERE g.recipe_id = r.id
				  AND g.ingredients::text ILIKE '%' || search_term || '%'
			)
		  )
		ORDER BY r.created_at DESC
	$$ LANGUAGE sql STABLE;
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create search function: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close 關閉資料庫連線
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Create 持久化食譜標頭與其有序食材分組。
// 分組以位置索引（sort_order）標記，讀回時據此還原順序。
// 標頭與分組在同一交易內寫入。
func (s *PostgresStore) Create(ctx context.Context, ownerID string, r Recipe) (Recipe, error) {
	if ownerID == "" {
		return Recipe{}, common.ErrNotAuthenticated
	}

	categoriesJSON, instructionsJSON, err := marshalRecipeFields(r)
	if err != nil {
		return Recipe{}, &common.PersistenceError{Op: "create", Err: err}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Recipe{}, &common.PersistenceError{Op: "create", Err: err}
	}
	defer tx.Rollback()

	r.ID = uuid.New().String()
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO recipes (id, user_id, recipe_name, categories, instructions)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		r.ID, ownerID, r.Name, categoriesJSON, instructionsJSON,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Recipe{}, &common.PersistenceError{Op: "create", Err: err}
	}

	if err := insertGroups(ctx, tx, r.ID, r.IngredientGroups); err != nil {
		return Recipe{}, &common.PersistenceError{Op: "create", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Recipe{}, &common.PersistenceError{Op: "create", Err: err}
	}

	return r, nil
}

// List 回傳呼叫方擁有的所有食譜，最新建立的在前
func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]Recipe, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}

	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, recipe_name, categories, instructions, created_at, updated_at
		 FROM recipes WHERE user_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, &common.PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, &common.PersistenceError{Op: "list", Err: err}
	}

	if err := s.attachGroups(ctx, recipes); err != nil {
		return nil, &common.PersistenceError{Op: "list", Err: err}
	}

	return recipes, nil
}

// Update 以完整替換方式更新：標頭欄位更新後，刪除該食譜的所有食材分組
// 並重新插入新的有序集合。刪除與重插在同一交易內執行，
// 其他讀取方不會觀察到暫時沒有分組的食譜。
func (s *PostgresStore) Update(ctx context.Context, ownerID, id string, r Recipe) (Recipe, error) {
	if ownerID == "" {
		return Recipe{}, common.ErrNotAuthenticated
	}

	categoriesJSON, instructionsJSON, err := marshalRecipeFields(r)
	if err != nil {
		return Recipe{}, &common.PersistenceError{Op: "update", Err: err}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Recipe{}, &common.PersistenceError{Op: "update", Err: err}
	}
	defer tx.Rollback()

	r.ID = id
	err = tx.QueryRowxContext(ctx,
		`UPDATE recipes
		 SET recipe_name = $1, categories = $2, instructions = $3, updated_at = now()
		 WHERE id = $4 AND user_id = $5
		 RETURNING created_at, updated_at`,
		r.Name, categoriesJSON, instructionsJSON, id, ownerID,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Recipe{}, &common.PersistenceError{Op: "update", Err: fmt.Errorf("recipe %s: %w", id, err)}
	}

	// 先刪後插，順序固定
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ingredient_groups WHERE recipe_id = $1`, id,
	); err != nil {
		return Recipe{}, &common.PersistenceError{Op: "update", Err: err}
	}

	if err := insertGroups(ctx, tx, id, r.IngredientGroups); err != nil {
		return Recipe{}, &common.PersistenceError{Op: "update", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Recipe{}, &common.PersistenceError{Op: "update", Err: err}
	}

	return r, nil
}

// Delete 刪除食譜，食材分組由外鍵級聯一併移除
func (s *PostgresStore) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrNotAuthenticated
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = $1 AND user_id = $2`, id, ownerID,
	)
	if err != nil {
		return &common.PersistenceError{Op: "delete", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &common.PersistenceError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return &common.PersistenceError{Op: "delete", Err: fmt.Errorf("recipe %s not found", id)}
	}

	return nil
}

// Search 委託伺服器端的 search_recipes 函數執行全文搜尋。
// 空白搜尋詞由呼叫方在進入此處前拒絕。
func (s *PostgresStore) Search(ctx context.Context, ownerID, term string) ([]Recipe, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}

	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, recipe_name, categories, instructions, created_at, updated_at
		 FROM search_recipes($1, $2)`,
		term, ownerID,
	)
	if err != nil {
		return nil, &common.PersistenceError{Op: "search", Err: err}
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, &common.PersistenceError{Op: "search", Err: err}
	}

	if err := s.attachGroups(ctx, recipes); err != nil {
		return nil, &common.PersistenceError{Op: "search", Err: err}
	}

	return recipes, nil
}

// marshalRecipeFields 將分類與說明序列化為 JSONB 欄位
func marshalRecipeFields(r Recipe) ([]byte, []byte, error) {
	categoriesJSON, err := json.Marshal(r.Categories)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal categories: %w", err)
	}
	instructionsJSON, err := json.Marshal(r.Instructions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal instructions: %w", err)
	}
	return categoriesJSON, instructionsJSON, nil
}

// insertGroups 依輸入順序插入食材分組並標記位置索引
func insertGroups(ctx context.Context, tx *sqlx.Tx, recipeID string, groups []IngredientGroup) error {
	for i, group := range groups {
		ingredientsJSON, err := json.Marshal(group.Ingredients)
		if err != nil {
			return fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ingredient_groups (id, recipe_id, name, ingredients, sort_order)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), recipeID, group.Name, ingredientsJSON, i,
		); err != nil {
			return fmt.Errorf("failed to insert ingredient group %d: %w", i, err)
		}
	}
	return nil
}

// scanRecipes 掃描食譜標頭列，JSONB 欄位還原為切片
func scanRecipes(rows *sqlx.Rows) ([]Recipe, error) {
	recipes := []Recipe{}
	for rows.Next() {
		var r Recipe
		var categoriesJSON, instructionsJSON []byte
		if err := rows.Scan(&r.ID, &r.Name, &categoriesJSON, &instructionsJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		if err := json.Unmarshal(categoriesJSON, &r.Categories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
		}
		if err := json.Unmarshal(instructionsJSON, &r.Instructions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
		}
		r.IngredientGroups = []IngredientGroup{}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recipes, nil
}

// attachGroups 一次取回所有分組並依 sort_order 還原到各食譜
func (s *PostgresStore) attachGroups(ctx context.Context, recipes []Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]string, len(recipes))
	index := make(map[string]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		index[r.ID] = i
	}

	query, args, err := sqlx.In(
		`SELECT recipe_id, name, ingredients
		 FROM ingredient_groups WHERE recipe_id IN (?)
		 ORDER BY recipe_id, sort_order`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to build groups query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to query ingredient groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID, name string
		var ingredientsJSON []byte
		if err := rows.Scan(&recipeID, &name, &ingredientsJSON); err != nil {
			return fmt.Errorf("failed to scan group row: %w", err)
		}
		var ingredients []string
		if err := json.Unmarshal(ingredientsJSON, &ingredients); err != nil {
			return fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		i := index[recipeID]
		recipes[i].IngredientGroups = append(recipes[i].IngredientGroups, IngredientGroup{
			Name:        name,
			Ingredients: ingredients,
		})
	}

	return rows.Err()
}
