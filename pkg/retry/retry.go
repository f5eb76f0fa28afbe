// Package retry предоставляет переиспользуемую политику повторов
// для разовых сетевых операций.
//
// Политика покрывает только ограниченный бюджет транзиентных ошибок.
// Интерактивные под-шаги (2FA challenge) — не сбои и живут вне бюджета:
// вызывающий код обрабатывает их в IsRetryable == false ветке сам.
package retry

import (
	"context"
	"time"
)

// Policy — параметры повторов одного call site.
type Policy struct {
	Attempts int           // Максимум попыток (включая первую)
	Delay    time.Duration // Фиксированная пауза между попытками

	// IsRetryable решает, расходует ли ошибка бюджет повторов.
	// nil — любая ошибка retryable.
	IsRetryable func(error) bool

	// OnAttempt вызывается после каждой неудачной retryable попытки
	// (для логирования деталей). Может быть nil.
	OnAttempt func(attempt int, err error)
}

// Do выполняет fn с повторами по политике.
//
// Возвращает nil при первом успехе. Не-retryable ошибка возвращается
// немедленно без расхода оставшихся попыток. После исчерпания бюджета
// возвращается последняя ошибка.
//
// Пауза уважает контекст: отмена во время ожидания прерывает повторы.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if p.IsRetryable != nil && !p.IsRetryable(err) {
			return err
		}

		lastErr = err
		if p.OnAttempt != nil {
			p.OnAttempt(attempt, err)
		}

		if attempt == p.Attempts {
			break
		}

		if p.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}
	}

	return lastErr
}
