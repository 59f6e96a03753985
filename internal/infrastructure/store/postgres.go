package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/pkg/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore 以 PostgreSQL 為來源的食譜庫。
//
// 使用的資料表：
//
//	recipes(recipe_id BIGSERIAL PRIMARY KEY, title, description, cuisine, difficulty,
//	        cooking_time, ingredients, instructions, image_url, meal_type, diet_type,
//	        serving_size, rating)
//	ingredients(ingredient_id SERIAL PRIMARY KEY, ingredient_name TEXT UNIQUE)
//	recipe_core_ingredients(recipe_id, ingredient_id, is_essential BOOLEAN,
//	        importance_score REAL, category TEXT)
//	substitutes(ingredient_id, substitute_name, reason)
//
// 食譜食材使用 is_essential 的核心食材。
type PostgresStore struct {
	pool *pgxpool.Pool

	mu    sync.RWMutex
	hooks []WriteHook
}

const recipeColumns = `
	r.recipe_id,
	r.title,
	COALESCE(r.description, ''),
	COALESCE(r.cuisine, ''),
	COALESCE(r.difficulty, ''),
	COALESCE(r.cooking_time, 0),
	COALESCE(r.ingredients, ''),
	COALESCE(r.instructions, ''),
	COALESCE(r.image_url, ''),
	COALESCE(r.meal_type, ''),
	COALESCE(r.diet_type, ''),
	COALESCE(r.serving_size, 0),
	COALESCE(r.rating, 0)::float8`

// NewPostgresStore 建立連線池並測試連線
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// 測試連接
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	common.LogInfo("食譜資料庫已連線")
	return &PostgresStore{pool: pool}, nil
}

// OnWrite 註冊寫入後的回呼
func (p *PostgresStore) OnWrite(hook WriteHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, hook)
}

// ListRecipes 只回傳具有核心食材的食譜
func (p *PostgresStore) ListRecipes(ctx context.Context) ([]matching.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `,
			array_agg(DISTINCT i.ingredient_name)
		FROM recipes r
		JOIN recipe_core_ingredients rci ON r.recipe_id = rci.recipe_id AND rci.is_essential
		JOIN ingredients i ON rci.ingredient_id = i.ingredient_id
		GROUP BY r.recipe_id
		ORDER BY r.recipe_id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}
	defer rows.Close()

	recipes := []matching.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		if len(r.Ingredients) > 0 {
			recipes = append(recipes, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows failed: %w", err)
	}

	common.LogDebug("Fetched recipes with core ingredients", zap.Int("count", len(recipes)))
	return recipes, nil
}

// GetRecipe 沒有核心食材時退回解析原始食材文字
func (p *PostgresStore) GetRecipe(ctx context.Context, id int64) (matching.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `,
			COALESCE(array_agg(DISTINCT i.ingredient_name) FILTER (WHERE i.ingredient_name IS NOT NULL), '{}')
		FROM recipes r
		LEFT JOIN recipe_core_ingredients rci ON r.recipe_id = rci.recipe_id AND rci.is_essential
		LEFT JOIN ingredients i ON rci.ingredient_id = i.ingredient_id
		WHERE r.recipe_id = $1
		GROUP BY r.recipe_id
	`

	r, err := scanRecipe(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matching.Recipe{}, ErrNotFound
		}
		return matching.Recipe{}, err
	}
	return r, nil
}

// Substitutes 先精確比對，找不到再以 ILIKE 比對
func (p *PostgresStore) Substitutes(ctx context.Context, ingredient string) ([]Substitute, error) {
	name := strings.ToLower(strings.TrimSpace(ingredient))
	if name == "" {
		return []Substitute{}, nil
	}

	exact := `
		SELECT s.substitute_name, COALESCE(s.reason, '')
		FROM substitutes s
		JOIN ingredients i ON s.ingredient_id = i.ingredient_id
		WHERE lower(i.ingredient_name) = $1
		LIMIT 3
	`
	subs, err := p.querySubstitutes(ctx, exact, name)
	if err != nil || len(subs) > 0 {
		return subs, err
	}

	partial := `
		SELECT s.substitute_name, COALESCE(s.reason, '')
		FROM substitutes s
		JOIN ingredients i ON s.ingredient_id = i.ingredient_id
		WHERE i.ingredient_name ILIKE $1
		LIMIT 3
	`
	return p.querySubstitutes(ctx, partial, "%"+escapeLike(name)+"%")
}

func (p *PostgresStore) querySubstitutes(ctx context.Context, query string, arg string) ([]Substitute, error) {
	rows, err := p.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}
	defer rows.Close()

	var subs []Substitute
	for rows.Next() {
		var s Substitute
		if err := rows.Scan(&s.Substitute, &s.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan substitute: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows failed: %w", err)
	}
	return limitSubstitutes(subs), nil
}

const advanceRecipeSequence = `
	SELECT setval(pg_get_serial_sequence('recipes', 'recipe_id'),
		GREATEST((SELECT COALESCE(MAX(recipe_id), 0) FROM recipes), 1))
`

// SaveRecipe 在交易中寫入食譜與核心食材
func (p *PostgresStore) SaveRecipe(ctx context.Context, recipe matching.Recipe) (matching.Recipe, error) {
	recipe = cloneRecipe(recipe)
	recipe.Ingredients = matching.ParseIngredients(recipe.Ingredients, "")
	if len(recipe.Ingredients) == 0 {
		return matching.Recipe{}, common.NewValidationError("recipe must have at least one ingredient")
	}
	applyDefaults(&recipe)

	ingredientsJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return matching.Recipe{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(recipe.Instructions)
	if err != nil {
		return matching.Recipe{}, fmt.Errorf("failed to marshal instructions: %w", err)
	}

	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		args := []any{
			recipe.Title, recipe.Description, recipe.Cuisine, recipe.Difficulty, recipe.CookingTime,
			string(ingredientsJSON), string(instructionsJSON), recipe.ImageURL, recipe.MealType,
			recipe.DietType, recipe.ServingSize, recipe.Rating,
		}

		if recipe.ID == 0 {
			insert := `
				INSERT INTO recipes (title, description, cuisine, difficulty, cooking_time, ingredients,
					instructions, image_url, meal_type, diet_type, serving_size, rating)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				RETURNING recipe_id
			`
			if err := tx.QueryRow(ctx, insert, args...).Scan(&recipe.ID); err != nil {
				return fmt.Errorf("postgres insert failed: %w", err)
			}
		} else {
			upsert := `
				INSERT INTO recipes (recipe_id, title, description, cuisine, difficulty, cooking_time,
					ingredients, instructions, image_url, meal_type, diet_type, serving_size, rating)
				VALUES ($13, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
				ON CONFLICT (recipe_id) DO UPDATE SET
					title = EXCLUDED.title,
					description = EXCLUDED.description,
					cuisine = EXCLUDED.cuisine,
					difficulty = EXCLUDED.difficulty,
					cooking_time = EXCLUDED.cooking_time,
					ingredients = EXCLUDED.ingredients,
					instructions = EXCLUDED.instructions,
					image_url = EXCLUDED.image_url,
					meal_type = EXCLUDED.meal_type,
					diet_type = EXCLUDED.diet_type,
					serving_size = EXCLUDED.serving_size,
					rating = EXCLUDED.rating
			`
			if _, err := tx.Exec(ctx, upsert, append(args, recipe.ID)...); err != nil {
				return fmt.Errorf("postgres upsert failed: %w", err)
			}
			// 指定 ID 寫入後推進序列，避免之後自動編號撞號
			if _, err := tx.Exec(ctx, advanceRecipeSequence); err != nil {
				return fmt.Errorf("failed to advance recipe id sequence: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM recipe_core_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
			return fmt.Errorf("failed to clear core ingredients: %w", err)
		}

		for _, name := range recipe.Ingredients {
			var ingredientID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO ingredients (ingredient_name) VALUES ($1)
				ON CONFLICT (ingredient_name) DO UPDATE SET ingredient_name = EXCLUDED.ingredient_name
				RETURNING ingredient_id
			`, name).Scan(&ingredientID)
			if err != nil {
				return fmt.Errorf("failed to upsert ingredient %q: %w", name, err)
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO recipe_core_ingredients (recipe_id, ingredient_id, is_essential)
				VALUES ($1, $2, TRUE)
			`, recipe.ID, ingredientID); err != nil {
				return fmt.Errorf("failed to link ingredient %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return matching.Recipe{}, err
	}

	p.mu.RLock()
	hooks := append([]WriteHook(nil), p.hooks...)
	p.mu.RUnlock()
	for _, hook := range hooks {
		hook(recipe.ID)
	}

	common.LogInfo("食譜已儲存", zap.Int64("recipe_id", recipe.ID), zap.String("title", recipe.Title))
	return recipe, nil
}

// Close 關閉連線池
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (matching.Recipe, error) {
	var (
		r            matching.Recipe
		rawIngreds   string
		instructions string
		core         []string
	)

	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Cuisine, &r.Difficulty, &r.CookingTime,
		&rawIngreds, &instructions, &r.ImageURL, &r.MealType, &r.DietType, &r.ServingSize,
		&r.Rating, &core,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan recipe: %w", err)
	}

	r.Ingredients = matching.ParseIngredients(core, rawIngreds)
	r.Instructions = matching.ParseInstructions(instructions)
	applyDefaults(&r)
	return r, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
