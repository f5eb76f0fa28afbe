package woo

import (
	"errors"
	"fmt"
)

// twoFactorMarker — подстрока в теле ответа Wordfence, сигнализирующая
// что write endpoint требует одноразовый код. Статус при этом не 401,
// поэтому детектим именно по телу.
const twoFactorMarker = "wfls_twofactor_required"

// ErrTwoFactorRequired — endpoint требует 2FA код.
//
// Это не сбой: пайплайн запрашивает код у оператора и повторяет запрос.
// Попытка с этим результатом не расходует retry бюджет.
var ErrTwoFactorRequired = errors.New("two-factor code required")

// StatusError — не-успешный HTTP статус от WooCommerce/WordPress API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("woo api error: status %d, body: %s", e.Code, e.Body)
}

// IsRetryable сообщает, имеет ли смысл повтор запроса после этой ошибки.
//
// 2FA — не сбой, повтор без кода бессмыслен. Всё остальное (транспорт,
// не-2xx статусы) считаем транзиентным в рамках ограниченного retry бюджета.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrTwoFactorRequired)
}
