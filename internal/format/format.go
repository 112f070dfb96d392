package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency форматирует денежную сумму в USD ($2,500.00)
// nil отображается как "-" (нет данных)
func Currency(v *float64) string {
	if v == nil {
		return "-"
	}

	cur := money.GetCurrency(money.USD)
	minor := decimal.NewFromFloat(*v).Shift(int32(cur.Fraction))

	return cur.Formatter().Format(minor.Round(0).IntPart())
}

// CurrencyValue форматирует не-nullable сумму
func CurrencyValue(v float64) string {
	return Currency(&v)
}

// Percent форматирует процентное значение с заданной точностью
func Percent(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64) + "%"
}

// Date форматирует дату для отображения (Jan 2, 2006)
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format("Jan 2, 2006")
}

// DateTime форматирует дату и время для отображения
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format("Jan 2, 2006 15:04")
}

// Duration форматирует длительность сделки (2h 15m, 45m, 30s)
func Duration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	switch {
	case d >= time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60

		return fmt.Sprintf("%dh %dm", h, m)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
