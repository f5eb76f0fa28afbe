// Package journal ведёт локальный журнал результатов обработки SKU.
//
// Журнал — sqlite файл рядом с бинарником: оператор прогоняет десятки SKU
// за сессию, и "что уже создано и с каким id" должно переживать перезапуск
// утилиты. В пайплайне журнал не участвует, это только аудит.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Регистрируем sqlite3 драйвер
)

// Entry — одна запись журнала: итог обработки одного SKU.
type Entry struct {
	SKU            string
	ListingID      int64 // 0 если листинг не создан
	ImagesUploaded int
	ImagesTotal    int
	Error          string // Пусто при успехе
	CreatedAt      time.Time
}

// Journal — журнал поверх sqlite файла.
type Journal struct {
	db *sql.DB
}

// Open открывает (или создаёт) журнал по пути к sqlite файлу.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT NOT NULL,
		listing_id INTEGER NOT NULL DEFAULT 0,
		images_uploaded INTEGER NOT NULL DEFAULT 0,
		images_total INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record добавляет запись об итоге обработки SKU.
func (j *Journal) Record(entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := j.db.Exec(
		`INSERT INTO outcomes (sku, listing_id, images_uploaded, images_total, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SKU, entry.ListingID, entry.ImagesUploaded, entry.ImagesTotal, entry.Error, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	return nil
}

// LastForSKU возвращает последнюю запись по SKU.
//
// Возвращает (nil, nil) если записей по этому SKU нет.
func (j *Journal) LastForSKU(sku string) (*Entry, error) {
	row := j.db.QueryRow(
		`SELECT sku, listing_id, images_uploaded, images_total, error, created_at
		 FROM outcomes WHERE sku = ? ORDER BY id DESC LIMIT 1`, sku)

	var entry Entry
	err := row.Scan(&entry.SKU, &entry.ListingID, &entry.ImagesUploaded,
		&entry.ImagesTotal, &entry.Error, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query journal entry: %w", err)
	}

	return &entry, nil
}

// Close закрывает журнал.
func (j *Journal) Close() error {
	return j.db.Close()
}
