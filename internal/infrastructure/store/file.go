package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// fileData JSON 檔案格式
type fileData struct {
	Recipes     []fileRecipe            `json:"recipes"`
	Substitutes map[string][]Substitute `json:"substitutes,omitempty"`
}

// fileRecipe 可提供核心食材或原始食材文字，步驟可為清單或整段文字
type fileRecipe struct {
	matching.Recipe
	RawIngredients  string `json:"raw_ingredients,omitempty"`
	RawInstructions string `json:"raw_instructions,omitempty"`
}

// FileStore 以 JSON 檔案為來源的食譜庫
type FileStore struct {
	path string

	mu          sync.RWMutex
	recipes     []matching.Recipe
	index       map[int64]int
	substitutes map[string][]Substitute
	hooks       []WriteHook
}

// NewFileStore 載入 JSON 食譜檔
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:        path,
		index:       make(map[int64]int),
		substitutes: make(map[string][]Substitute),
	}

	var data fileData
	if err := common.ReadJSONFile(path, &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			common.LogWarn("食譜檔不存在，使用空的食譜庫", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	for _, fr := range data.Recipes {
		r := fr.Recipe
		r.Ingredients = matching.ParseIngredients(r.Ingredients, fr.RawIngredients)
		if len(r.Instructions) == 0 {
			r.Instructions = matching.ParseInstructions(fr.RawInstructions)
		}
		applyDefaults(&r)
		s.put(r)
	}
	for name, subs := range data.Substitutes {
		key := strings.ToLower(strings.TrimSpace(name))
		s.substitutes[key] = append(s.substitutes[key], subs...)
	}

	common.LogInfo("食譜庫已載入",
		zap.String("path", path),
		zap.Int("recipes", len(s.recipes)),
		zap.Int("substitutes", len(s.substitutes)),
	)
	return s, nil
}

// OnWrite 註冊寫入後的回呼
func (s *FileStore) OnWrite(hook WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// ListRecipes 依 ID 排序回傳有食材的食譜
func (s *FileStore) ListRecipes(ctx context.Context) ([]matching.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]matching.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if len(r.Ingredients) == 0 {
			continue
		}
		out = append(out, cloneRecipe(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetRecipe 依 ID 取得食譜
func (s *FileStore) GetRecipe(ctx context.Context, id int64) (matching.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return matching.Recipe{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return matching.Recipe{}, ErrNotFound
	}
	return cloneRecipe(s.recipes[i]), nil
}

// Substitutes 查詢替代食材
func (s *FileStore) Substitutes(ctx context.Context, ingredient string) ([]Substitute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(ingredient))
	if name == "" {
		return []Substitute{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if subs, ok := s.substitutes[name]; ok && len(subs) > 0 {
		return limitSubstitutes(subs), nil
	}

	keys := make([]string, 0, len(s.substitutes))
	for key := range s.substitutes {
		if strings.Contains(key, name) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var found []Substitute
	for _, key := range keys {
		found = append(found, s.substitutes[key]...)
		if len(found) >= MaxSubstitutes {
			break
		}
	}
	return limitSubstitutes(found), nil
}

// SaveRecipe 新增或更新食譜並寫回檔案
func (s *FileStore) SaveRecipe(ctx context.Context, recipe matching.Recipe) (matching.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return matching.Recipe{}, err
	}

	recipe = cloneRecipe(recipe)
	recipe.Ingredients = matching.ParseIngredients(recipe.Ingredients, "")
	if len(recipe.Ingredients) == 0 {
		return matching.Recipe{}, common.NewValidationError("recipe must have at least one ingredient")
	}
	applyDefaults(&recipe)

	s.mu.Lock()
	if recipe.ID == 0 {
		recipe.ID = s.nextID()
	}
	// 寫檔成功後才更新記憶體內容
	if err := s.persist(s.withRecipe(recipe)); err != nil {
		s.mu.Unlock()
		return matching.Recipe{}, err
	}
	s.put(recipe)
	hooks := append([]WriteHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(recipe.ID)
	}
	common.LogInfo("食譜已儲存", zap.Int64("recipe_id", recipe.ID), zap.String("title", recipe.Title))
	return cloneRecipe(recipe), nil
}

// Close 無需釋放資源
func (s *FileStore) Close() error {
	return nil
}

// put 呼叫端需持有寫鎖（或在初始化階段）
func (s *FileStore) put(r matching.Recipe) {
	if i, ok := s.index[r.ID]; ok {
		s.recipes[i] = r
		return
	}
	s.index[r.ID] = len(s.recipes)
	s.recipes = append(s.recipes, r)
}

func (s *FileStore) nextID() int64 {
	var max int64
	for id := range s.index {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// withRecipe 回傳加入或取代 r 之後的食譜清單副本
func (s *FileStore) withRecipe(r matching.Recipe) []matching.Recipe {
	out := make([]matching.Recipe, len(s.recipes), len(s.recipes)+1)
	copy(out, s.recipes)
	if i, ok := s.index[r.ID]; ok {
		out[i] = r
		return out
	}
	return append(out, r)
}

func (s *FileStore) persist(recipes []matching.Recipe) error {
	data := fileData{
		Recipes:     make([]fileRecipe, len(recipes)),
		Substitutes: s.substitutes,
	}
	for i, r := range recipes {
		data.Recipes[i] = fileRecipe{Recipe: r}
	}

	if err := common.WriteJSONFile(s.path, data); err != nil {
		return fmt.Errorf("failed to write recipes: %w", err)
	}
	return nil
}

func limitSubstitutes(subs []Substitute) []Substitute {
	n := len(subs)
	if n > MaxSubstitutes {
		n = MaxSubstitutes
	}
	out := make([]Substitute, n)
	for i := 0; i < n; i++ {
		out[i] = subs[i]
		if out[i].Reason == "" {
			out[i].Reason = DefaultSubReason
		}
	}
	return out
}
