// Package pricing считает цены листинга из оптовой цены поставщика.
//
// Все функции чистые и детерминированные: одна и та же оптовая цена
// всегда даёт одни и те же строки цен.
package pricing

import (
	"fmt"
	"math"
)

// Quote — пара цен листинга в виде десятичных строк с двумя знаками.
type Quote struct {
	Regular string
	Sale    string
}

// Correct применяет корректировки к оптовой цене перед расчётом наценки.
//
// Правила, строго в этом порядке:
//  1. p <= 8  → p + 4   (слишком дешёвые товары не окупают обработку)
//  2. p > 99  → p * 0.85 (скидка на дорогие, проверяется уже после правила 1)
func Correct(p float64) float64 {
	if p <= 8 {
		p = p + 4
	}
	if p > 99 {
		p = p * 0.85
	}
	return p
}

// Compute считает розничную и акционную цену из (возможно
// скорректированной) оптовой.
//
//	regular = ceil(p*3.3 - 0.01) + 0.99
//	sale    = ceil(p*3.0 - 0.01) + 0.87
//
// Дробные части .99/.87 литеральные, не результат округления, поэтому
// обе цены по построению имеют ровно два знака после запятой.
func Compute(p float64) Quote {
	regular := math.Ceil(p*3.3-0.01) + 0.99
	sale := math.Ceil(p*3-0.01) + 0.87

	return Quote{
		Regular: fmt.Sprintf("%.2f", regular),
		Sale:    fmt.Sprintf("%.2f", sale),
	}
}

// Preview — цены для предварительного показа оператору.
//
// Считается от СЫРОЙ оптовой цены, без Correct. Отправляемые в магазин
// цены считаются от скорректированной — см. Final. Расхождение превью
// и финала намеренно сохранено как есть; похоже на баг исходного
// процесса, см. заметку в DESIGN.md.
func Preview(rawPrice float64) Quote {
	return Compute(rawPrice)
}

// Final — цены, уходящие в листинг: корректировки, затем наценка.
func Final(rawPrice float64) Quote {
	return Compute(Correct(rawPrice))
}
