package ui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ilkoid/woo-ingest/pkg/catalog"
	"github.com/ilkoid/woo-ingest/pkg/config"
	"github.com/ilkoid/woo-ingest/pkg/woo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refreshFetcher — источник для принудительного refetch в тестах.
type refreshFetcher struct {
	categories []woo.Category
	calls      int
}

func (f *refreshFetcher) FetchCategoryPage(_ context.Context, page, _ int) ([]woo.Category, int, error) {
	f.calls++
	if page > 1 {
		return nil, 1, nil
	}
	return f.categories, 1, nil
}

// Дерево:
//   10 Toys      (root)
//     11 Rings
//     12 Plugs
//       13 Small
//   20 Lube      (root, лист)
var testTree = []woo.Category{
	{ID: 10, Name: "Toys", Parent: 0},
	{ID: 20, Name: "Lube", Parent: 0},
	{ID: 11, Name: "Rings", Parent: 10},
	{ID: 12, Name: "Plugs", Parent: 10},
	{ID: 13, Name: "Small", Parent: 12},
}

func newTestModel(t *testing.T, fetcher catalog.PageFetcher, tree []woo.Category) selectorModel {
	t.Helper()

	snapshot := filepath.Join(t.TempDir(), "categories.json")
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(snapshot, data, 0644))

	cache := catalog.NewCache(fetcher, config.CategoryConfig{SnapshotPath: snapshot, PerPage: 100})
	_, err = cache.Load(context.Background())
	require.NoError(t, err)

	return newSelectorModel(context.Background(), cache)
}

// step применяет токен и возвращает модель обратно как selectorModel.
func step(t *testing.T, m selectorModel, token string) selectorModel {
	t.Helper()
	next, _ := m.applyToken(token)
	result, ok := next.(selectorModel)
	require.True(t, ok)
	return result
}

// TestSelector_ConfirmAtRoot: подтверждение без спуска — путь [0].
func TestSelector_ConfirmAtRoot(t *testing.T) {
	m := newTestModel(t, &refreshFetcher{}, testTree)

	m = step(t, m, "c")

	assert.True(t, m.done)
	assert.Equal(t, []int{0}, m.result)
}

// TestSelector_DescendThenConfirm: спуск и подтверждение — каждый id
// один раз, без дублирования последнего.
func TestSelector_DescendThenConfirm(t *testing.T) {
	m := newTestModel(t, &refreshFetcher{}, testTree)

	m = step(t, m, "1") // → Toys (10)
	require.False(t, m.done)
	m = step(t, m, "c")

	assert.True(t, m.done)
	assert.Equal(t, []int{10}, m.result)
}

// TestSelector_LeafTerminatesImmediately: спуск в узел без детей
// завершает обход без дополнительного подтверждения.
func TestSelector_LeafTerminatesImmediately(t *testing.T) {
	m := newTestModel(t, &refreshFetcher{}, testTree)

	m = step(t, m, "1") // Toys (10)
	m = step(t, m, "2") // Plugs (12)
	m = step(t, m, "1") // Small (13) — лист

	assert.True(t, m.done)
	assert.Equal(t, []int{10, 12, 13}, m.result)
}

// TestSelector_InvalidInputReprompts: мусор и номер вне диапазона не
// продвигают обход.
func TestSelector_InvalidInputReprompts(t *testing.T) {
	m := newTestModel(t, &refreshFetcher{}, testTree)

	for _, token := range []string{"abc", "0", "99", "-1", ""} {
		m = step(t, m, token)
		assert.False(t, m.done, "token %q must not advance", token)
		assert.NotEmpty(t, m.errMsg, "token %q must report error", token)
		assert.Equal(t, 0, m.parent)
		assert.Empty(t, m.path)
	}

	// После ошибок валидный выбор всё ещё работает
	m = step(t, m, "2") // Lube (20) — лист
	assert.True(t, m.done)
	assert.Equal(t, []int{20}, m.result)
}

// TestSelector_RestartDiscardsPath: x сбрасывает накопленный путь и
// возвращает на корень.
func TestSelector_RestartDiscardsPath(t *testing.T) {
	m := newTestModel(t, &refreshFetcher{}, testTree)

	m = step(t, m, "1") // Toys (10)
	require.Equal(t, []int{10}, m.path)

	m = step(t, m, "x")

	assert.False(t, m.done)
	assert.Equal(t, 0, m.parent)
	assert.Empty(t, m.path)

	// Свежий обход с корня
	m = step(t, m, "2")
	assert.Equal(t, []int{20}, m.result)
}

// TestSelector_RefetchStaysOnLevel: r перечитывает дерево из сети и
// остаётся на том же уровне с тем же путём.
func TestSelector_RefetchStaysOnLevel(t *testing.T) {
	refreshed := append([]woo.Category{}, testTree...)
	refreshed = append(refreshed, woo.Category{ID: 14, Name: "Huge", Parent: 10})
	fetcher := &refreshFetcher{categories: refreshed}

	m := newTestModel(t, fetcher, testTree)

	m = step(t, m, "1") // Toys (10)
	require.Len(t, m.children, 2)

	m = step(t, m, "r")

	assert.Greater(t, fetcher.calls, 0, "refetch must hit the network source")
	assert.Equal(t, 10, m.parent, "level preserved")
	assert.Equal(t, []int{10}, m.path, "path preserved")
	assert.Len(t, m.children, 3, "refreshed tree visible")
}
