// "Тупой" S3 клиент для архива нормализованных изображений.
//
// Локальный JPEG артефакт живёт только между нормализацией и загрузкой
// в магазин и удаляется в обоих исходах. Архив (если включён в конфиге)
// сохраняет копию в бакет перед удалением: брошенные загрузки остаётся
// возможным разобрать руками.
package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/woo-ingest/pkg/config"
)

// Sink — приёмник архивных копий.
//
// Интерфейс нужен пайплайну: в тестах и при archive.enabled=false
// подставляется no-op реализация.
type Sink interface {
	Store(ctx context.Context, key string, data []byte) error
}

// Client — S3 архив поверх minio.
type Client struct {
	api    *minio.Client
	bucket string
}

// Проверка что Client реализует Sink
var _ Sink = (*Client)(nil)

// New создает клиент, используя наш конфиг
func New(cfg config.ArchiveConfig) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// Store кладёт JPEG в бакет по ключу (обычно "{sku}/{filename}").
func (c *Client) Store(ctx context.Context, key string, data []byte) error {
	_, err := c.api.PutObject(ctx, c.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return fmt.Errorf("archive put '%s': %w", key, err)
	}
	return nil
}

// Discard — no-op приёмник для выключенного архива.
type Discard struct{}

// Store ничего не делает.
func (Discard) Store(context.Context, string, []byte) error {
	return nil
}
