// Package ui реализует интерактивный селектор категорий магазина.
//
// Обход дерева — явная машина состояний: State{текущий родитель,
// накопленный путь} плюс функция перехода по токену оператора.
// Bubble Tea Update и есть эта функция перехода, поэтому "refetch"
// и "restart" — просто сбросы состояния, без рекурсии и её стека.
//
// Обход строго однопоточный: состояние пути живёт в одной модели
// и не разделяется между конкурентными обходами.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/woo-ingest/pkg/catalog"
	"github.com/ilkoid/woo-ingest/pkg/woo"
)

// Токены оператора помимо числового выбора.
const (
	tokenRefetch = "r" // Перечитать дерево из сети, остаться на уровне
	tokenConfirm = "c" // Зафиксировать текущий путь
	tokenRestart = "x" // Сбросить путь, начать с корня
)

// selectorModel — состояние обхода.
type selectorModel struct {
	ctx   context.Context
	cache *catalog.Cache

	parent   int   // Текущий узел (0 — синтетический корень)
	path     []int // Накопленный путь: id каждого пройденного узла
	children []woo.Category

	input  textinput.Model
	errMsg string

	done    bool
	aborted bool
	result  []int
}

// newSelectorModel создает модель на корне дерева.
func newSelectorModel(ctx context.Context, cache *catalog.Cache) selectorModel {
	ti := textinput.New()
	ti.Placeholder = "номер / r / c / x"
	ti.Focus()
	ti.CharLimit = 8
	ti.Width = 24

	m := selectorModel{
		ctx:   ctx,
		cache: cache,
		input: ti,
	}
	m.enterLevel(0, nil)
	return m
}

// enterLevel переводит модель на узел parent с путём path.
//
// Узел без детей — лист: обход завершается сразу, путь фиксируется.
func (m *selectorModel) enterLevel(parent int, path []int) {
	m.parent = parent
	m.path = path
	m.children = m.cache.ChildrenOf(parent)
	m.errMsg = ""

	if len(m.children) == 0 {
		m.finish()
	}
}

// finish фиксирует результат: накопленный путь, включая текущий узел.
//
// Текущий узел уже в пути, если в него спускались; корень (или узел
// уровня, подтверждённый без спуска) добавляется явно. Каждый id
// попадает в результат один раз.
func (m *selectorModel) finish() {
	result := m.path
	if len(result) == 0 || result[len(result)-1] != m.parent {
		result = append(append([]int{}, result...), m.parent)
	}
	m.result = result
	m.done = true
}

// Init запускает мигание курсора.
func (m selectorModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update — функция перехода машины состояний.
func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit

		case tea.KeyEnter:
			token := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			return m.applyToken(token)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyToken применяет токен оператора к текущему состоянию.
//
// Невалидный ввод (не число, номер вне диапазона) не продвигает обход:
// сообщение об ошибке и тот же уровень заново.
func (m selectorModel) applyToken(token string) (tea.Model, tea.Cmd) {
	switch token {
	case tokenConfirm:
		m.finish()
		return m, tea.Quit

	case tokenRestart:
		m.enterLevel(0, nil)
		if m.done {
			return m, tea.Quit
		}
		return m, nil

	case tokenRefetch:
		// Сетевая выгрузка блокирует обход — для этой утилиты это
		// штатно, других интеракций во время refetch нет.
		if _, err := m.cache.Refresh(m.ctx); err != nil {
			m.errMsg = fmt.Sprintf("refetch failed: %v", err)
			return m, nil
		}
		// Тот же уровень, свежее дерево
		m.enterLevel(m.parent, m.path)
		if m.done {
			return m, tea.Quit
		}
		return m, nil
	}

	idx, err := strconv.Atoi(token)
	if err != nil || idx < 1 || idx > len(m.children) {
		m.errMsg = "Invalid choice, please select a valid category."
		return m, nil
	}

	selected := m.children[idx-1]
	m.enterLevel(selected.ID, append(append([]int{}, m.path...), selected.ID))
	if m.done {
		return m, tea.Quit
	}
	return m, nil
}

// View рисует уровень: хлебные крошки, нумерованный список, ввод.
func (m selectorModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("Выбор категории"))
	b.WriteString("\n")
	b.WriteString(breadcrumbStyle(fmt.Sprintf("путь: %v", m.path)))
	b.WriteString("\n\n")

	for i, cat := range m.children {
		b.WriteString(fmt.Sprintf("%s %s\n", indexStyle(fmt.Sprintf("%d.", i+1)), cat.Name))
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorMsgStyle(m.errMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle("номер — спуститься, c — подтвердить, r — перечитать дерево, x — сначала, esc — отмена"))
	b.WriteString("\n")

	return b.String()
}

// Select запускает интерактивный выбор категории.
//
// Блокирует до решения оператора и возвращает упорядоченный путь id
// от корневого выбора вниз. Отмена (esc) — ошибка.
func Select(ctx context.Context, cache *catalog.Cache) ([]int, error) {
	if _, err := cache.Load(ctx); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	model := newSelectorModel(ctx, cache)
	if model.done {
		// Пустое дерево: корень без детей, выбирать нечего
		return model.result, nil
	}

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("category selector: %w", err)
	}

	m, ok := final.(selectorModel)
	if !ok {
		return nil, fmt.Errorf("unexpected selector model type %T", final)
	}
	if m.aborted {
		return nil, fmt.Errorf("category selection aborted")
	}

	return m.result, nil
}
