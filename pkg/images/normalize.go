// Package images предоставляет нормализацию изображений товара перед загрузкой.
//
// Магазин ожидает квадратные карточки товара, поставщик отдаёт изображения
// произвольных размеров и форматов. Нормализация: даунскейл до вписывания
// в max_edge×max_edge, затем центрирование на белом квадратном фоне.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер

	"github.com/nfnt/resize"
)

// Normalizer нормализует изображения под требования карточки товара.
type Normalizer struct {
	maxEdge int // Максимальная сторона изображения (650 для WooCommerce карточек)
	quality int // Качество JPEG при кодировании (1-100)
}

// NewNormalizer создает нормализатор.
//
// Параметры:
//   - maxEdge: максимальная сторона изображения. Если исходник больше по любой
//     стороне — даунскейл с сохранением пропорций.
//   - quality: качество JPEG (1-100). Рекомендуется 85.
func NewNormalizer(maxEdge, quality int) *Normalizer {
	return &Normalizer{
		maxEdge: maxEdge,
		quality: quality,
	}
}

// Normalize приводит изображение к квадратной карточке.
//
// Алгоритм:
//  1. Декодируем изображение (JPEG, PNG)
//  2. Если любая сторона больше maxEdge — даунскейл с сохранением пропорций,
//     чтобы обе стороны влезли в maxEdge×maxEdge (upscale не делаем)
//  3. Строим белый квадратный фон со стороной max(width, height)
//  4. Центрируем изображение на фоне: offset = ((bg - img) // 2, ...)
//  5. Кодируем в JPEG
//
// Изображение ровно maxEdge×maxEdge проходит без изменений: фон maxEdge,
// offset ноль.
//
// Возвращает байты JPEG. Ошибка декодирования — ошибка этого изображения,
// решение пропускать или нет принимает вызывающий код.
func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	// 1. Декодируем изображение
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// 2. Даунскейл если исходник не влезает в maxEdge×maxEdge.
	// resize.Thumbnail сохраняет пропорции и никогда не делает upscale.
	if width > n.maxEdge || height > n.maxEdge {
		img = resize.Thumbnail(uint(n.maxEdge), uint(n.maxEdge), img, resize.Lanczos3)
		bounds = img.Bounds()
		width = bounds.Dx()
		height = bounds.Dy()
	}

	// 3. Квадратный белый фон со стороной max(width, height)
	side := width
	if height > side {
		side = height
	}

	canvas := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	// 4. Центрируем изображение на фоне (целочисленное деление)
	offset := image.Pt((side-width)/2, (side-height)/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(width, height))}, img, bounds.Min, draw.Over)

	// 5. Кодируем в JPEG
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
