// Package pipeline оркестрирует обработку одного SKU:
// изображения (fetch → normalize → upload) → описание → цены →
// сборка листинга → создание товара.
//
// Весь flow однопоточный и блокирующий: точки ожидания — интерактивные
// вопросы оператору (2FA код, подтверждение повтора) и сетевые вызовы.
// Никакого разделяемого между SKU состояния: список загруженных
// изображений — значение, возвращаемое вызовом, а не аккумулятор.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilkoid/woo-ingest/pkg/archive"
	"github.com/ilkoid/woo-ingest/pkg/describe"
	"github.com/ilkoid/woo-ingest/pkg/pricing"
	"github.com/ilkoid/woo-ingest/pkg/retry"
	"github.com/ilkoid/woo-ingest/pkg/supplier"
	"github.com/ilkoid/woo-ingest/pkg/utils"
	"github.com/ilkoid/woo-ingest/pkg/woo"
)

// Storefront — write операции магазина, реализуется woo.Client.
type Storefront interface {
	UploadMedia(ctx context.Context, file []byte, filename string) (*woo.Media, error)
	CreateProduct(ctx context.Context, payload *woo.ListingPayload) (*woo.CreatedProduct, error)
	SetTwoFactorCode(code string)
}

// ImageSource — источник байт изображений, реализуется supplier.Client.
type ImageSource interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Normalizer — нормализация изображения, реализуется images.Normalizer.
type Normalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// DescriptionSource — генерация прозы описания, реализуется describe.Generator.
type DescriptionSource interface {
	Generate(ctx context.Context, name, description string) (string, error)
}

// Prompter — интерактивные вопросы оператору.
//
// Выносится в интерфейс чтобы тесты могли скриптовать ответы;
// боевая реализация — bufio поверх stdin в cmd.
type Prompter interface {
	// TwoFactorCode запрашивает одноразовый код.
	TwoFactorCode() (string, error)
	// ConfirmRetry спрашивает, повторять ли загрузку изображения
	// после исчерпания автоматического бюджета попыток.
	ConfirmRetry(filename string) (bool, error)
}

// UploadedImage — успешно загруженное изображение.
type UploadedImage struct {
	ID  int64
	URL string
}

// ImagesResult — итог стадии изображений.
type ImagesResult struct {
	Uploaded []UploadedImage // Только дошедшие до Succeeded, в исходном порядке
	Failed   int             // Пропущенные (fetch/decode/upload сбои)
	Aborted  bool            // Оператор отказался от повтора — хвост батча брошен
}

// Outcome — итог обработки одного SKU, только для отчёта вызывающему.
type Outcome struct {
	SKU       string
	ListingID int64
	Images    ImagesResult
	Err       error // Финальная ошибка создания листинга, nil при успехе
}

// Pipeline — оркестратор per-SKU flow.
type Pipeline struct {
	store      Storefront
	source     ImageSource
	normalizer Normalizer
	generator  DescriptionSource
	prompter   Prompter
	archive    archive.Sink

	attempts    int           // Бюджет попыток на upload и на create
	createDelay time.Duration // Пауза между попытками создания
	workDir     string        // Директория временных артефактов
}

// Options — зависимости и параметры пайплайна.
type Options struct {
	Store      Storefront
	Source     ImageSource
	Normalizer Normalizer
	Generator  DescriptionSource
	Prompter   Prompter
	Archive    archive.Sink // nil — архив выключен

	Attempts    int           // 0 → 3
	CreateDelay time.Duration // 0 → 2s
	WorkDir     string        // "" → текущая директория
}

// New создает пайплайн.
func New(opts Options) *Pipeline {
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.CreateDelay == 0 {
		opts.CreateDelay = 2 * time.Second
	}
	if opts.Archive == nil {
		opts.Archive = archive.Discard{}
	}

	return &Pipeline{
		store:       opts.Store,
		source:      opts.Source,
		normalizer:  opts.Normalizer,
		generator:   opts.Generator,
		prompter:    opts.Prompter,
		archive:     opts.Archive,
		attempts:    opts.Attempts,
		createDelay: opts.CreateDelay,
		workDir:     opts.WorkDir,
	}
}

// Run обрабатывает один SKU до конца.
//
// Порядок жёсткий:
//  1. 2FA код запрашивается один раз, до любой работы с изображениями
//  2. Изображения: fetch → normalize → upload, по одному
//  3. Описание: генерация прозы + вставка URL загруженных изображений
//  4. Цены: корректировки, затем наценка (превью оператор уже видел
//     от сырой цены — это намеренно расходится, см. pricing.Preview)
//  5. Сборка payload и создание товара с retry
//
// Ошибка создания листинга не фатальна для процесса: она возвращается
// в Outcome, решение о следующем SKU принимает вызывающий.
func (p *Pipeline) Run(ctx context.Context, product *supplier.Product, name string, categoryIDs []int) Outcome {
	outcome := Outcome{SKU: product.Barcode}

	// 1. Код до начала работы, один раз на товар
	code, err := p.prompter.TwoFactorCode()
	if err != nil {
		outcome.Err = fmt.Errorf("read 2fa code: %w", err)
		return outcome
	}
	p.store.SetTwoFactorCode(code)

	// 2. Изображения
	outcome.Images = p.uploadImages(ctx, product.Barcode, name, product.ImageURLs())

	// 3. Описание: проза модели + URL успешно загруженных изображений
	raw, err := p.generator.Generate(ctx, name, product.Description)
	if err != nil {
		// Нет текста — не повод бросать товар: описание деградирует
		// до заголовка с изображениями.
		utils.Warn("description generation failed, degrading", "sku", product.Barcode, "error", err)
		raw = ""
	}

	uploadedURLs := make([]string, 0, len(outcome.Images.Uploaded))
	for _, img := range outcome.Images.Uploaded {
		uploadedURLs = append(uploadedURLs, img.URL)
	}
	description := describe.Compose(name, raw, uploadedURLs)

	// 4. Цены от скорректированной оптовой
	quote := pricing.Final(product.Price.Float())

	// 5. Сборка и создание
	imageIDs := make([]int64, 0, len(outcome.Images.Uploaded))
	for _, img := range outcome.Images.Uploaded {
		imageIDs = append(imageIDs, img.ID)
	}

	payload := woo.BuildListing(woo.ListingInput{
		Product:      product,
		Name:         name,
		CategoryIDs:  categoryIDs,
		Description:  description,
		RegularPrice: quote.Regular,
		SalePrice:    quote.Sale,
		ImageIDs:     imageIDs,
	})

	created, err := p.createListing(ctx, payload)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.ListingID = created.ID
	return outcome
}

// uploadImages прогоняет каждое изображение через fetch → normalize →
// upload. Сбои fetch/decode изолированы per-image: пропускаем и идём
// дальше. Отказ оператора от повтора после исчерпания бюджета —
// останавливает обработку ОСТАВШИХСЯ изображений, уже загруженные
// сохраняются в результате.
func (p *Pipeline) uploadImages(ctx context.Context, sku, name string, urls []string) ImagesResult {
	var result ImagesResult

	utils.Info("processing product images", "sku", sku, "count", len(urls))

	for idx, imageURL := range urls {
		data, err := p.source.FetchImage(ctx, imageURL)
		if err != nil {
			utils.Error("image fetch failed, skipping", "sku", sku, "index", idx+1, "url", imageURL, "error", err)
			result.Failed++
			continue
		}

		normalized, err := p.normalizer.Normalize(data)
		if err != nil {
			utils.Error("image normalize failed, skipping", "sku", sku, "index", idx+1, "error", err)
			result.Failed++
			continue
		}

		filename := utils.SanitizeFilename(fmt.Sprintf("%s_%d.jpg", strings.ReplaceAll(name, " ", "_"), idx+1))
		artifactPath := filepath.Join(p.workDir, filename)
		if err := os.WriteFile(artifactPath, normalized, 0644); err != nil {
			utils.Error("write artifact failed, skipping", "sku", sku, "path", artifactPath, "error", err)
			result.Failed++
			continue
		}

		// Копия в архив до загрузки: артефакт ниже будет удалён в любом исходе
		if err := p.archive.Store(ctx, sku+"/"+filename, normalized); err != nil {
			utils.Warn("archive store failed", "sku", sku, "key", sku+"/"+filename, "error", err)
		}

		media, aborted := p.uploadArtifact(ctx, normalized, filename)

		// Артефакт удаляется и при успехе, и при финальном отказе
		if err := os.Remove(artifactPath); err != nil {
			utils.Warn("artifact cleanup failed", "path", artifactPath, "error", err)
		}

		if aborted {
			result.Failed++
			result.Aborted = true
			utils.Warn("operator declined retry, aborting remaining images", "sku", sku, "remaining", len(urls)-idx-1)
			return result
		}
		if media == nil {
			result.Failed++
			continue
		}

		utils.Info("image uploaded", "sku", sku, "index", idx+1, "media_id", media.ID)
		result.Uploaded = append(result.Uploaded, UploadedImage{ID: media.ID, URL: media.SourceURL})
	}

	return result
}

// uploadArtifact гоняет один артефакт до Succeeded или финального отказа.
//
// Внутренний цикл: 2FA challenge — не сбой, запрашиваем код и повторяем
// без расхода бюджета (без ограничения числа challenge/response итераций).
// Любой другой сбой расходует одну из attempts попыток. После исчерпания
// бюджета оператор решает: повторить с нуля (свежий бюджет) или бросить.
//
// Возвращает (media, false) при успехе, (nil, false) — недостижимо
// штатно, (nil, true) — оператор отказался.
func (p *Pipeline) uploadArtifact(ctx context.Context, data []byte, filename string) (*woo.Media, bool) {
	for {
		media, err := p.uploadWithChallenges(ctx, data, filename)
		if err == nil {
			return media, false
		}

		ok, promptErr := p.prompter.ConfirmRetry(filename)
		if promptErr != nil {
			utils.Error("retry prompt failed", "file", filename, "error", promptErr)
			return nil, true
		}
		if !ok {
			return nil, true
		}
	}
}

// uploadWithChallenges — один бюджет из attempts попыток загрузки.
func (p *Pipeline) uploadWithChallenges(ctx context.Context, data []byte, filename string) (*woo.Media, error) {
	attempt := 0
	for {
		media, err := p.store.UploadMedia(ctx, data, filename)
		if err == nil {
			return media, nil
		}

		if errors.Is(err, woo.ErrTwoFactorRequired) {
			// Интерактивный под-шаг, не сбой: бюджет не расходуется
			code, promptErr := p.prompter.TwoFactorCode()
			if promptErr != nil {
				return nil, fmt.Errorf("read 2fa code: %w", promptErr)
			}
			p.store.SetTwoFactorCode(code)
			continue
		}

		attempt++
		utils.Error("image upload attempt failed", "file", filename, "attempt", attempt, "error", err)
		if attempt >= p.attempts {
			return nil, err
		}
	}
}

// createListing создает товар с ограниченным retry.
//
// Транзиентные сбои (транспорт, ответ без id) повторяются attempts раз
// с фиксированной паузой. 2FA challenge бюджет не расходует: запрашиваем
// новый код и начинаем бюджет заново.
func (p *Pipeline) createListing(ctx context.Context, payload *woo.ListingPayload) (*woo.CreatedProduct, error) {
	policy := retry.Policy{
		Attempts:    p.attempts,
		Delay:       p.createDelay,
		IsRetryable: woo.IsRetryable,
		OnAttempt: func(attempt int, err error) {
			utils.Error("create product attempt failed", "sku", payload.SKU, "attempt", attempt, "error", err)
		},
	}

	for {
		var created *woo.CreatedProduct
		err := policy.Do(ctx, func() error {
			var callErr error
			created, callErr = p.store.CreateProduct(ctx, payload)
			return callErr
		})
		if err == nil {
			return created, nil
		}

		if errors.Is(err, woo.ErrTwoFactorRequired) {
			code, promptErr := p.prompter.TwoFactorCode()
			if promptErr != nil {
				return nil, fmt.Errorf("read 2fa code: %w", promptErr)
			}
			p.store.SetTwoFactorCode(code)
			continue
		}

		return nil, fmt.Errorf("create listing: %w", err)
	}
}
