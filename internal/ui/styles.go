// Красота

package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Цвета
	primaryColor = lipgloss.Color("62")  // Фиолетовый
	grayColor    = lipgloss.Color("240")

	// Заголовок селектора
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1).
			Bold(true)

	// Пункты списка категорий
	indexStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Render

	// Хлебные крошки текущего пути
	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(grayColor).
			Render

	// Ошибки ввода
	errorMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			Render

	// Подсказка по токенам
	helpStyle = lipgloss.NewStyle().
			Foreground(grayColor).
			Render
)
