// Package utils предоставляет вспомогательные функции для обработки данных.
package utils

import (
	"strings"
)

// invalidFilenameChars — символы, запрещённые в именах файлов (Windows + Unix).
var invalidFilenameChars = []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"}

// SanitizeFilename заменяет запрещённые символы в имени файла на "_".
//
// Используется для имён локальных артефактов изображений, которые строятся
// из названия товара (название может содержать что угодно).
//
// Примеры:
//   "Red/Blue Toy?" → "Red_Blue_Toy_"
//   "normal name"   → "normal name"
func SanitizeFilename(filename string) string {
	for _, char := range invalidFilenameChars {
		filename = strings.ReplaceAll(filename, char, "_")
	}
	return filename
}
