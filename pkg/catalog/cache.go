// Package catalog реализует кэш дерева категорий магазина.
//
// Полная выгрузка категорий — десятки постраничных запросов, а дерево
// меняется редко. Поэтому кэш: локальный JSON снапшот рядом с бинарником,
// сетевая выгрузка только при отсутствии/порче снапшота или по явному
// требованию оператора (refetch в селекторе).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ilkoid/woo-ingest/pkg/config"
	"github.com/ilkoid/woo-ingest/pkg/utils"
	"github.com/ilkoid/woo-ingest/pkg/woo"
)

// PageFetcher — источник постраничной выгрузки категорий.
//
// Реализуется woo.Client; интерфейс нужен для моков в тестах.
type PageFetcher interface {
	FetchCategoryPage(ctx context.Context, page, perPage int) ([]woo.Category, int, error)
}

// Cache — кэш категорий с локальным снапшотом.
//
// Не для конкурентного использования: интерактивная утилита работает
// с деревом строго последовательно.
type Cache struct {
	fetcher      PageFetcher
	snapshotPath string
	perPage      int

	categories []woo.Category // Текущее загруженное дерево (nil до Load)
}

// NewCache создает кэш поверх источника категорий.
func NewCache(fetcher PageFetcher, cfg config.CategoryConfig) *Cache {
	cfg = cfg.GetDefaults()

	return &Cache{
		fetcher:      fetcher,
		snapshotPath: cfg.SnapshotPath,
		perPage:      cfg.PerPage,
	}
}

// Load возвращает полное дерево категорий.
//
// Сначала пробует локальный снапшот; при его отсутствии или порче
// (нечитаемый файл, невалидный JSON) — сетевая выгрузка через Refresh.
func (c *Cache) Load(ctx context.Context) ([]woo.Category, error) {
	data, err := os.ReadFile(c.snapshotPath)
	if err == nil {
		var categories []woo.Category
		if jsonErr := json.Unmarshal(data, &categories); jsonErr == nil {
			c.categories = categories
			return categories, nil
		}
		utils.Warn("category snapshot unreadable, refetching", "path", c.snapshotPath)
	}

	return c.Refresh(ctx)
}

// Refresh выгружает все страницы категорий из магазина и перезаписывает
// снапшот целиком.
//
// Цикл выгрузки: страницы фиксированного размера, остановка на пустой
// странице или когда номер страницы превысил X-WP-TotalPages. Любой
// не-успешный статус — немедленная ошибка, частичный результат
// не принимается и снапшот не трогается.
func (c *Cache) Refresh(ctx context.Context) ([]woo.Category, error) {
	var all []woo.Category

	for page := 1; ; page++ {
		categories, totalPages, err := c.fetcher.FetchCategoryPage(ctx, page, c.perPage)
		if err != nil {
			return nil, fmt.Errorf("fetch categories page %d: %w", page, err)
		}

		if len(categories) == 0 || page > totalPages {
			break
		}

		all = append(all, categories...)
	}

	if err := c.persist(all); err != nil {
		return nil, err
	}

	utils.Info("category tree refreshed", "count", len(all), "snapshot", c.snapshotPath)
	c.categories = all
	return all, nil
}

// ChildrenOf возвращает прямых потомков узла в исходном порядке.
//
// parent == 0 — корневые категории. Требует предварительного Load.
func (c *Cache) ChildrenOf(parent int) []woo.Category {
	var children []woo.Category
	for _, cat := range c.categories {
		if cat.Parent == parent {
			children = append(children, cat)
		}
	}
	return children
}

// persist перезаписывает снапшот целиком.
func (c *Cache) persist(categories []woo.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal category snapshot: %w", err)
	}

	if err := os.WriteFile(c.snapshotPath, data, 0644); err != nil {
		return fmt.Errorf("write category snapshot: %w", err)
	}

	return nil
}
