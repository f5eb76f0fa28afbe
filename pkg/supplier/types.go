// Модели данных wholesale API
package supplier

import (
	"bytes"
	"fmt"
	"strconv"
)

// Decimal — число из wholesale API.
//
// API отдаёт числовые поля непоследовательно: иногда числом, иногда строкой
// ("12.50"), для отсутствующих габаритов — пустой строкой или null.
// Все варианты парсим в float64, пустые значения — ноль.
type Decimal float64

// UnmarshalJSON принимает число, числовую строку, "" и null.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse decimal %q: %w", s, err)
	}

	*d = Decimal(v)
	return nil
}

// Float возвращает значение как float64.
func (d Decimal) Float() float64 {
	return float64(d)
}

// String возвращает компактную десятичную запись ("4.5", "12").
//
// Пустое (нулевое) значение форматируется как "0" — решение о том,
// эмитить ли поле вообще, принимает сборщик листинга.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

// Manufacturer — производитель товара.
type Manufacturer struct {
	Name string `json:"name"`
}

// ProductImage — ссылка на изображение товара у поставщика.
type ProductImage struct {
	ImageLargeURL string `json:"image_large_url"`
}

// ProductCategory — текстовая метка категории в таксономии поставщика.
//
// Не путать с категориями магазина: метки поставщика становятся тегами
// листинга, а категории магазина оператор выбирает отдельно.
type ProductCategory struct {
	Name string `json:"name"`
}

// Product — карточка товара, полученная от поставщика по SKU.
//
// Read-only: никакая стадия пайплайна не мутирует запись поставщика,
// все производные значения (цены, описание) считаются отдельно.
type Product struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Barcode      string            `json:"barcode"` // Становится SKU листинга
	Price        Decimal           `json:"price"`
	Manufacturer Manufacturer      `json:"manufacturer"`
	Height       Decimal           `json:"height"`
	Length       Decimal           `json:"length"`
	Width        Decimal           `json:"width"`
	Diameter     Decimal           `json:"diameter"`
	Weight       Decimal           `json:"weight"`
	Color        string            `json:"color"`
	Material     string            `json:"material"`
	Brand        string            `json:"brand"`
	Images       []ProductImage    `json:"images"`
	Categories   []ProductCategory `json:"categories"`
}

// ImageURLs возвращает упорядоченный список URL изображений товара.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.ImageLargeURL)
	}
	return urls
}

// CategoryNames возвращает метки категорий поставщика (исходный порядок).
func (p *Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, cat := range p.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// productResponse — обёртка ответа wholesale API.
type productResponse struct {
	Product Product `json:"product"`
}
