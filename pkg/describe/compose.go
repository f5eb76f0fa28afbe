// Package describe собирает HTML описание листинга: сгенерированный
// моделью текст, перемежённый изображениями товара.
package describe

import (
	"fmt"
	"strings"
)

// Compose строит итоговое описание из сырого текста модели и URL
// загруженных изображений.
//
// Детерминированная политика размещения:
//  1. Первый абзац исходного текста как есть (пустая строка если текста нет)
//  2. Заголовок <h2> с названием товара
//  3. Сразу после заголовка — первое изображение, если есть
//  4. Каждый следующий абзац, и после него очередное изображение —
//     если сам абзац не является <img> строкой и изображения ещё остались
//  5. Неизрасходованные изображения — в конец, по одному на абзац
//
// Каждое изображение оборачивается в <img> с alt "{name} image {N}",
// N — сквозной 1-based счётчик. Абзацы склеиваются пустой строкой.
//
// Пустой сырой текст деградирует до заголовка и изображений: выдумывать
// прозу за модель нельзя.
func Compose(name, raw string, imageURLs []string) string {
	paragraphs := splitParagraphs(raw)

	imageCounter := 0
	nextImage := func() string {
		tag := imageTag(imageURLs[imageCounter], name, imageCounter+1)
		imageCounter++
		return tag
	}

	var final []string

	// 1. Первый абзац (или пустая строка если модель ничего не дала)
	if len(paragraphs) > 0 {
		final = append(final, paragraphs[0])
	} else {
		final = append(final, "")
	}

	// 2. Заголовок
	final = append(final, fmt.Sprintf("<h2>%s</h2>", name))

	// 3. Изображение сразу после заголовка
	if imageCounter < len(imageURLs) {
		final = append(final, nextImage())
	}

	// 4. Остальные абзацы, с изображением после каждого текстового
	rest := paragraphs
	if len(rest) > 0 {
		rest = rest[1:]
	}
	for _, paragraph := range rest {
		final = append(final, paragraph)

		if imageCounter < len(imageURLs) && !strings.HasPrefix(paragraph, "<img") {
			final = append(final, nextImage())
		}
	}

	// 5. Хвост из неизрасходованных изображений
	for imageCounter < len(imageURLs) {
		final = append(final, nextImage())
	}

	return strings.Join(final, "\n\n")
}

// splitParagraphs режет сырой текст на непустые trimmed абзацы.
func splitParagraphs(raw string) []string {
	var paragraphs []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// imageTag оборачивает URL в <img> с описательным alt текстом.
func imageTag(url, name string, index int) string {
	return fmt.Sprintf(`<img src="%s" alt="%s image %d"/>`, url, name, index)
}
