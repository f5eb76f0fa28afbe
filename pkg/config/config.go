package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Supplier        SupplierConfig  `yaml:"supplier"`
	Woo             WooConfig       `yaml:"woo"`
	OpenAI          OpenAIConfig    `yaml:"openai"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	Categories      CategoryConfig  `yaml:"categories"`
	Journal         JournalConfig   `yaml:"journal"`
	Archive         ArchiveConfig   `yaml:"archive"`
	App             AppSpecific     `yaml:"app"`
}

// SupplierConfig — настройки read-only API оптового поставщика.
type SupplierConfig struct {
	BaseURL   string `yaml:"base_url"`   // Например, "http://wholesale.williams-trading.com/rest"
	Timeout   string `yaml:"timeout"`    // Timeout для HTTP запросов ("30s")
	RateLimit int    `yaml:"rate_limit"` // Запросов в минуту
	Burst     int    `yaml:"burst"`      // Burst для rate limiter
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *SupplierConfig) GetDefaults() SupplierConfig {
	result := *c

	if result.Timeout == "" {
		result.Timeout = "30s"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 60
	}
	if result.Burst == 0 {
		result.Burst = 5
	}

	return result
}

// WooConfig — настройки WooCommerce/WordPress API магазина.
//
// Два набора credentials:
//   - ConsumerKey/ConsumerSecret — wc/v3 read endpoints (категории, поиск по SKU)
//   - Username/Password — Basic auth для wp/v2/media и wc/v3/products (write)
type WooConfig struct {
	BaseURL        string `yaml:"base_url"`        // Базовый URL wp-json (например, "https://shop.example.org/wp-json")
	Username       string `yaml:"username"`        // Поддерживает ${VAR}
	Password       string `yaml:"password"`        // Поддерживает ${VAR}
	ConsumerKey    string `yaml:"consumer_key"`    // Поддерживает ${VAR}
	ConsumerSecret string `yaml:"consumer_secret"` // Поддерживает ${VAR}
	RateLimit      int    `yaml:"rate_limit"`      // Запросов в минуту
	Burst          int    `yaml:"burst"`           // Burst для rate limiter
	RetryAttempts  int    `yaml:"retry_attempts"`  // Количество retry попыток для upload/create
	RetryDelay     string `yaml:"retry_delay"`     // Пауза между попытками создания товара ("2s")
	Timeout        string `yaml:"timeout"`         // Timeout для HTTP запросов ("60s")
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *WooConfig) GetDefaults() WooConfig {
	result := *c

	if result.RateLimit == 0 {
		result.RateLimit = 60
	}
	if result.Burst == 0 {
		result.Burst = 5
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.RetryDelay == "" {
		result.RetryDelay = "2s"
	}
	if result.Timeout == "" {
		result.Timeout = "60s"
	}

	return result
}

// OpenAIConfig — настройки модели для генерации описаний.
type OpenAIConfig struct {
	APIKey    string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL   string        `yaml:"base_url"`   // Для OpenAI-совместимых провайдеров
	ModelName string        `yaml:"model_name"` // Реальное имя модели в API
	Timeout   time.Duration `yaml:"timeout"`    // Go умеет парсить строки вида "60s", "1m"
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *OpenAIConfig) GetDefaults() OpenAIConfig {
	result := *c

	if result.ModelName == "" {
		result.ModelName = "gpt-3.5-turbo"
	}
	if result.Timeout == 0 {
		result.Timeout = 60 * time.Second
	}

	return result
}

// ImageProcConfig — настройки нормализации изображений.
type ImageProcConfig struct {
	MaxEdge int `yaml:"max_edge"` // Максимальная сторона изображения (дефолт 650)
	Quality int `yaml:"quality"`  // Качество JPEG (1-100)
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ImageProcConfig) GetDefaults() ImageProcConfig {
	result := *c

	if result.MaxEdge == 0 {
		result.MaxEdge = 650
	}
	if result.Quality == 0 {
		result.Quality = 85
	}

	return result
}

// CategoryConfig — настройки кэша дерева категорий.
type CategoryConfig struct {
	SnapshotPath string `yaml:"snapshot_path"` // Путь к categories.json рядом с бинарником
	PerPage      int    `yaml:"per_page"`      // Размер страницы при постраничной выгрузке
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *CategoryConfig) GetDefaults() CategoryConfig {
	result := *c

	if result.SnapshotPath == "" {
		result.SnapshotPath = "categories.json"
	}
	if result.PerPage == 0 {
		result.PerPage = 100
	}

	return result
}

// JournalConfig — настройки локального журнала результатов.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Путь к sqlite файлу
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *JournalConfig) GetDefaults() JournalConfig {
	result := *c

	if result.Path == "" {
		result.Path = "woo-ingest.db"
	}

	return result
}

// ArchiveConfig — настройки S3 архива нормализованных изображений.
//
// Опциональная секция: при Enabled=false архив не используется вовсе.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug bool `yaml:"debug"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Supplier.BaseURL == "" {
		return fmt.Errorf("supplier.base_url is required")
	}
	if c.Woo.BaseURL == "" {
		return fmt.Errorf("woo.base_url is required")
	}
	if c.Woo.Username == "" || c.Woo.Password == "" {
		return fmt.Errorf("woo.username and woo.password are required")
	}
	if c.Woo.ConsumerKey == "" || c.Woo.ConsumerSecret == "" {
		return fmt.Errorf("woo.consumer_key and woo.consumer_secret are required")
	}
	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" {
			return fmt.Errorf("archive.endpoint is required when archive.enabled")
		}
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required when archive.enabled")
		}
	}
	return nil
}
