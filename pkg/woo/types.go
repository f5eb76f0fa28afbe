// Модели данных WooCommerce API
package woo

// Category — узел таксономии магазина.
//
// Parent == 0 означает корневую категорию. Множество Category образует лес:
// parent каждого не-корневого узла ссылается на существующий узел либо 0.
type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Parent int    `json:"parent"`
}

// Media — загруженное изображение в медиабиблиотеке WordPress.
type Media struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
}

// Tag — тег листинга. WooCommerce принимает теги объектами {"name": ...}.
type Tag struct {
	Name string `json:"name"`
}

// CategoryRef — ссылка на категорию магазина по id.
type CategoryRef struct {
	ID int `json:"id"`
}

// ImageRef — ссылка на загруженное изображение по id.
type ImageRef struct {
	ID int64 `json:"id"`
}

// Attribute — атрибут листинга (Manufacturer, Color, Material).
//
// Всегда один option, visible=true, variation=false: атрибуты здесь
// информационные, вариативных товаров пайплайн не создаёт.
type Attribute struct {
	Name      string   `json:"name"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// Dimensions — габариты листинга.
//
// Ключи присутствуют всегда; отсутствующий у поставщика габарит — пустая
// строка, а не отсутствующее поле. WooCommerce трактует "" как "не задано".
type Dimensions struct {
	Height string `json:"height"`
	Length string `json:"length"`
	Width  string `json:"width"`
}

// ListingPayload — тело запроса создания товара.
//
// Конструируется один раз сборщиком листинга и не мутируется после.
type ListingPayload struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"` // Всегда "simple"
	RegularPrice string        `json:"regular_price"`
	SalePrice    string        `json:"sale_price"`
	Description  string        `json:"description"`
	SKU          string        `json:"sku"`
	Tags         []Tag         `json:"tags"`
	Categories   []CategoryRef `json:"categories"`
	Attributes   []Attribute   `json:"attributes"`
	Dimensions   Dimensions    `json:"dimensions"`
	Weight       string        `json:"weight"`
	Images       []ImageRef    `json:"images"`
}

// CreatedProduct — ответ на создание товара.
//
// Успех определяется наличием id; при ошибке WooCommerce кладёт
// человекочитаемый текст в message.
type CreatedProduct struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
