// Package woo реализует клиент WooCommerce/WordPress API магазина.
//
// Клиент покрывает четыре операции пайплайна:
//   - поиск товара по SKU (проверка дубликатов), wc/v3 read
//   - постраничная выгрузка категорий, wc/v3 read
//   - загрузка изображения в медиабиблиотеку, wp/v2 write
//   - создание товара, wc/v3 write
//
// Write endpoints защищены Wordfence 2FA: требование кода приходит
// маркером в теле ответа, код передаётся заголовком X-WP-2FA-Code.
// Клиент хранит код сессионно (как requests.Session в скриптах),
// решение когда запросить код у оператора принимает пайплайн.
//
// Retry логики здесь нет: клиент однократный, бюджеты повторов
// принадлежат пайплайну.
package woo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/woo-ingest/pkg/config"
	"golang.org/x/time/rate"
)

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент API магазина.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter

	wpLogin      string // base64(username:password) для Basic auth write endpoints
	consumerAuth string // base64(consumer_key:consumer_secret) для read endpoints
	consumerKey  string
	consumerSec  string

	mu            sync.Mutex
	twoFactorCode string // Текущий код сессии, задаётся оператором
}

// NewFromConfig создает клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолты через GetDefaults().
func NewFromConfig(cfg config.WooConfig) (*Client, error) {
	cfg = cfg.GetDefaults()

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("woo.base_url is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("woo.username and woo.password are required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("woo.consumer_key and woo.consumer_secret are required")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid woo.timeout format: %w", err)
	}

	ratePerSec := float64(cfg.RateLimit) / 60.0

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(ratePerSec), cfg.Burst),
		wpLogin:      base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password)),
		consumerAuth: base64.StdEncoding.EncodeToString([]byte(cfg.ConsumerKey + ":" + cfg.ConsumerSecret)),
		consumerKey:  cfg.ConsumerKey,
		consumerSec:  cfg.ConsumerSecret,
	}, nil
}

// SetTwoFactorCode запоминает 2FA код для последующих write запросов.
//
// Аналог session.headers.update: код живёт до следующего SetTwoFactorCode.
func (c *Client) SetTwoFactorCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.twoFactorCode = code
}

func (c *Client) currentTwoFactorCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.twoFactorCode
}

// FindBySKU проверяет, существует ли уже товар с таким SKU в магазине.
//
// GET wc/v3/products?sku=...&consumer_key=...&consumer_secret=...
// Непустой список в ответе означает что SKU уже залистингован.
func (c *Client) FindBySKU(ctx context.Context, sku string) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("sku", sku)
	params.Set("consumer_key", c.consumerKey)
	params.Set("consumer_secret", c.consumerSec)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/wc/v3/products?"+params.Encode(), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("duplicate check request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read duplicate check response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var products []json.RawMessage
	if err := json.Unmarshal(body, &products); err != nil {
		return false, fmt.Errorf("unmarshal duplicate check: %w", err)
	}

	return len(products) > 0, nil
}

// FetchCategoryPage возвращает одну страницу категорий и заявленное
// сервером общее число страниц (заголовок X-WP-TotalPages).
//
// GET wc/v3/products/categories?page=N&per_page=M, Basic consumer auth.
// Любой не-200 статус фатален для текущей выгрузки: частичное дерево
// категорий хуже отсутствующего.
func (c *Client) FetchCategoryPage(ctx context.Context, page, perPage int) ([]Category, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/wc/v3/products/categories?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Basic "+c.consumerAuth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("category page request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read category page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var categories []Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, 0, fmt.Errorf("unmarshal categories page %d: %w", page, err)
	}

	// Отсутствующий или кривой заголовок трактуем как 0: цикл выгрузки
	// остановится на первой же странице сверх данных.
	totalPages, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))

	return categories, totalPages, nil
}

// UploadMedia загружает изображение в медиабиблиотеку WordPress.
//
// POST wp/v2/media, multipart: file + description + alt_text.
// Basic auth логином WordPress + текущий 2FA код сессии.
//
// Возвращает:
//   - *Media при 201
//   - ErrTwoFactorRequired если в теле ответа маркер Wordfence
//   - *StatusError при любом другом статусе
func (c *Client) UploadMedia(ctx context.Context, file []byte, filename string) (*Media, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("write multipart file: %w", err)
	}
	if err := writer.WriteField("description", filename); err != nil {
		return nil, fmt.Errorf("write description field: %w", err)
	}
	if err := writer.WriteField("alt_text", filename); err != nil {
		return nil, fmt.Errorf("write alt_text field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wp/v2/media", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setWriteAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read media upload response: %w", err)
	}

	if strings.Contains(string(body), twoFactorMarker) {
		return nil, ErrTwoFactorRequired
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var media Media
	if err := json.Unmarshal(body, &media); err != nil {
		return nil, fmt.Errorf("unmarshal media response: %w", err)
	}

	return &media, nil
}

// CreateProduct создает товар в магазине.
//
// POST wc/v3/products, JSON payload, Basic auth + 2FA код сессии.
//
// Успех — ответ с полем id. Ответ без id (включая 2xx с текстом ошибки,
// WooCommerce так умеет) — ошибка с message из ответа.
func (c *Client) CreateProduct(ctx context.Context, payload *ListingPayload) (*CreatedProduct, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	bodyJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal listing payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wc/v3/products", bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setWriteAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read create product response: %w", err)
	}

	if strings.Contains(string(body), twoFactorMarker) {
		return nil, ErrTwoFactorRequired
	}

	var created CreatedProduct
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("unmarshal create product response (status %d): %w", resp.StatusCode, err)
	}

	if created.ID == 0 {
		msg := created.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("create product failed: %s", msg)
	}

	return &created, nil
}

// setWriteAuth выставляет заголовки write endpoints: Basic auth + 2FA код.
func (c *Client) setWriteAuth(req *http.Request) {
	req.Header.Set("Authorization", "Basic "+c.wpLogin)
	if code := c.currentTwoFactorCode(); code != "" {
		req.Header.Set("X-WP-2FA-Code", code)
	}
}
