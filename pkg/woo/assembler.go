package woo

import (
	"github.com/ilkoid/woo-ingest/pkg/supplier"
)

// ListingInput — всё, что нужно для сборки тела запроса создания товара.
//
// Сборка — чистое слияние без сети: карточка поставщика, выбранные
// оператором категории, посчитанные цены, собранное описание и id
// успешно загруженных изображений.
type ListingInput struct {
	Product      *supplier.Product
	Name         string // Уже приведённое к Title Case имя
	CategoryIDs  []int  // Путь, выбранный оператором в таксономии магазина
	Description  string
	RegularPrice string
	SalePrice    string
	ImageIDs     []int64
}

// BuildListing собирает ListingPayload из входных данных.
//
// Правила:
//   - теги 1:1 из меток категорий поставщика (не путать с CategoryIDs)
//   - атрибут добавляется только если поле непустое; пустые поля
//     опускаются целиком, а не эмитятся пустыми атрибутами
//   - габариты наоборот: ключ присутствует всегда, отсутствующее
//     значение — пустая строка
func BuildListing(in ListingInput) *ListingPayload {
	p := in.Product

	tags := make([]Tag, 0, len(p.Categories))
	for _, cat := range p.Categories {
		tags = append(tags, Tag{Name: cat.Name})
	}

	categories := make([]CategoryRef, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		categories = append(categories, CategoryRef{ID: id})
	}

	images := make([]ImageRef, 0, len(in.ImageIDs))
	for _, id := range in.ImageIDs {
		images = append(images, ImageRef{ID: id})
	}

	return &ListingPayload{
		Name:         in.Name,
		Type:         "simple",
		RegularPrice: in.RegularPrice,
		SalePrice:    in.SalePrice,
		Description:  in.Description,
		SKU:          p.Barcode,
		Tags:         tags,
		Categories:   categories,
		Attributes:   buildAttributes(p),
		Dimensions: Dimensions{
			Height: dimensionString(p.Height),
			Length: dimensionString(p.Length),
			Width:  dimensionString(p.Width),
		},
		Weight: dimensionString(p.Weight),
		Images: images,
	}
}

// buildAttributes собирает атрибуты из непустых полей карточки.
func buildAttributes(p *supplier.Product) []Attribute {
	attributes := []Attribute{}

	if p.Manufacturer.Name != "" {
		attributes = append(attributes, Attribute{
			Name:      "Manufacturer",
			Visible:   true,
			Variation: false,
			Options:   []string{p.Manufacturer.Name},
		})
	}

	if p.Color != "" {
		attributes = append(attributes, Attribute{
			Name:      "Color",
			Visible:   true,
			Variation: false,
			Options:   []string{p.Color},
		})
	}

	if p.Material != "" {
		attributes = append(attributes, Attribute{
			Name:      "Material",
			Visible:   true,
			Variation: false,
			Options:   []string{p.Material},
		})
	}

	return attributes
}

// dimensionString форматирует габарит: ноль (отсутствует) — пустая строка.
func dimensionString(d supplier.Decimal) string {
	if d == 0 {
		return ""
	}
	return d.String()
}
