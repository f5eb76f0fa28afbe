// woo-ingest — интерактивная утилита заливки товаров поставщика в WooCommerce.
//
// Использование:
//
//	./woo-ingest [-config config.yaml]
//
// Оператор вводит SKU через пробел, выбирает категорию магазина из
// закэшированной таксономии, подтверждает — утилита скачивает карточку
// поставщика, нормализует изображения, генерирует описание и создаёт
// листинг. "exit" завершает работу.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ilkoid/woo-ingest/internal/ui"
	"github.com/ilkoid/woo-ingest/pkg/archive"
	"github.com/ilkoid/woo-ingest/pkg/catalog"
	"github.com/ilkoid/woo-ingest/pkg/config"
	"github.com/ilkoid/woo-ingest/pkg/describe"
	"github.com/ilkoid/woo-ingest/pkg/images"
	"github.com/ilkoid/woo-ingest/pkg/journal"
	"github.com/ilkoid/woo-ingest/pkg/pipeline"
	"github.com/ilkoid/woo-ingest/pkg/pricing"
	"github.com/ilkoid/woo-ingest/pkg/supplier"
	"github.com/ilkoid/woo-ingest/pkg/utils"
	"github.com/ilkoid/woo-ingest/pkg/woo"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

const summaryWidth = 78

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(14).
			Render

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00")).
		Bold(true).
		Render

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			Render
)

func main() {
	configPath := flag.String("config", "config.yaml", "Путь к config.yaml")
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}

	// Ctrl+C посреди батча отменяет контекст; клиенты прерываются сами
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	utils.Info("Starting woo-ingest", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", *configPath, err)
		utils.Error("Config loading failed", "path", *configPath, "error", err)
		os.Exit(1)
	}
	utils.Info("Config loaded", "path", *configPath)

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		utils.Error("Fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	supplierClient, err := supplier.NewFromConfig(cfg.Supplier)
	if err != nil {
		return fmt.Errorf("supplier client: %w", err)
	}

	wooClient, err := woo.NewFromConfig(cfg.Woo)
	if err != nil {
		return fmt.Errorf("woo client: %w", err)
	}

	cache := catalog.NewCache(wooClient, cfg.Categories)

	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		jrnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer jrnl.Close()
		utils.Info("Journal opened", "path", cfg.Journal.Path)
	}

	var sink archive.Sink
	if cfg.Archive.Enabled {
		client, err := archive.New(cfg.Archive)
		if err != nil {
			return fmt.Errorf("archive client: %w", err)
		}
		sink = client
		utils.Info("Archive enabled", "bucket", cfg.Archive.Bucket)
	}

	workDir, err := os.MkdirTemp("", "woo-ingest-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	retryDelay, err := time.ParseDuration(cfg.Woo.RetryDelay)
	if err != nil {
		return fmt.Errorf("parse woo.retry_delay: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	pipe := pipeline.New(pipeline.Options{
		Store:       wooClient,
		Source:      supplierClient,
		Normalizer:  images.NewNormalizer(cfg.ImageProcessing.MaxEdge, cfg.ImageProcessing.Quality),
		Generator:   describe.NewGenerator(cfg.OpenAI),
		Prompter:    &stdinPrompter{reader: reader},
		Archive:     sink,
		Attempts:    cfg.Woo.RetryAttempts,
		CreateDelay: retryDelay,
		WorkDir:     workDir,
	})

	titler := cases.Title(language.English)

	for {
		fmt.Print("\nSKU через пробел (или 'exit'): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			// stdin закрыт — выходим так же, как по exit
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		skus := strings.Fields(line)

		categoryIDs, err := ui.Select(ctx, cache)
		if err != nil {
			fmt.Println(failStyle("Выбор категории: " + err.Error()))
			utils.Warn("Category selection failed", "error", err)
			continue
		}
		utils.Info("Categories selected", "ids", fmt.Sprint(categoryIDs), "skus", len(skus))

		for _, sku := range skus {
			processSKU(ctx, pipe, supplierClient, wooClient, jrnl, titler, sku, categoryIDs)
		}
	}
}

// processSKU обрабатывает один SKU от карточки поставщика до листинга.
// Любая ошибка печатается и журналируется, батч продолжается.
func processSKU(
	ctx context.Context,
	pipe *pipeline.Pipeline,
	supplierClient *supplier.Client,
	wooClient *woo.Client,
	jrnl *journal.Journal,
	titler cases.Caser,
	sku string,
	categoryIDs []int,
) {
	product, err := supplierClient.GetProduct(ctx, sku)
	if err != nil {
		fmt.Println(failStyle(fmt.Sprintf("%s: карточка поставщика: %v", sku, err)))
		utils.Error("Supplier fetch failed", "sku", sku, "error", err)
		record(jrnl, journal.Entry{SKU: sku, Error: err.Error()})
		return
	}

	exists, err := wooClient.FindBySKU(ctx, product.Barcode)
	if err != nil {
		fmt.Println(failStyle(fmt.Sprintf("%s: проверка дубликата: %v", sku, err)))
		utils.Error("Duplicate check failed", "sku", sku, "error", err)
		record(jrnl, journal.Entry{SKU: sku, Error: err.Error()})
		return
	}
	if exists {
		fmt.Printf("%s: уже есть в магазине, пропускаю\n", sku)
		utils.Info("SKU already listed, skipped", "sku", sku, "barcode", product.Barcode)
		return
	}

	name := titler.String(product.Name)
	printSummary(sku, name, product)

	outcome := pipe.Run(ctx, product, name, categoryIDs)

	if outcome.Err != nil {
		fmt.Println(failStyle(fmt.Sprintf("%s: листинг не создан: %v", sku, outcome.Err)))
	} else {
		fmt.Println(okStyle(fmt.Sprintf("%s: листинг #%d создан (%d/%d изображений)",
			sku, outcome.ListingID, len(outcome.Images.Uploaded), len(product.ImageURLs()))))
	}
	if outcome.Images.Aborted {
		fmt.Println(failStyle("Загрузка изображений прервана оператором"))
	}

	entry := journal.Entry{
		SKU:            sku,
		ListingID:      outcome.ListingID,
		ImagesUploaded: len(outcome.Images.Uploaded),
		ImagesTotal:    len(product.ImageURLs()),
	}
	if outcome.Err != nil {
		entry.Error = outcome.Err.Error()
	}
	record(jrnl, entry)
}

// printSummary показывает оператору карточку перед стартом пайплайна.
// Цены здесь — превью от сырой цены поставщика; финальные цены листинга
// считаются от скорректированной базы и могут отличаться.
func printSummary(sku, name string, product *supplier.Product) {
	quote := pricing.Preview(product.Price.Float())

	fmt.Println()
	fmt.Println(titleStyle.Render(name))
	fmt.Printf("%s %s\n", labelStyle("SKU:"), sku)
	fmt.Printf("%s %s\n", labelStyle("Barcode:"), product.Barcode)
	if product.Manufacturer.Name != "" {
		fmt.Printf("%s %s\n", labelStyle("Производитель:"), product.Manufacturer.Name)
	}
	fmt.Printf("%s %s → %s / %s (распродажа)\n",
		labelStyle("Цена:"), product.Price.String(), quote.Regular, quote.Sale)
	fmt.Printf("%s %d\n", labelStyle("Изображений:"), len(product.ImageURLs()))
	if tags := product.CategoryNames(); len(tags) > 0 {
		fmt.Printf("%s %s\n", labelStyle("Метки:"), strings.Join(tags, ", "))
	}
	if product.Description != "" {
		fmt.Println(wordwrap.String(product.Description, summaryWidth))
	}
}

func record(jrnl *journal.Journal, entry journal.Entry) {
	if jrnl == nil {
		return
	}
	if err := jrnl.Record(entry); err != nil {
		utils.Warn("Journal write failed", "sku", entry.SKU, "error", err)
	}
}

// stdinPrompter задаёт вопросы оператору через стандартный ввод.
type stdinPrompter struct {
	reader *bufio.Reader
}

func (p *stdinPrompter) TwoFactorCode() (string, error) {
	fmt.Print("Код 2FA: ")
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read 2fa code: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *stdinPrompter) ConfirmRetry(filename string) (bool, error) {
	fmt.Printf("Загрузка %s не удалась. Повторить? [y/n]: ", filename)
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "д", "да":
			return true, nil
		case "n", "no", "н", "нет":
			return false, nil
		}
		fmt.Print("Введите y или n: ")
	}
}
