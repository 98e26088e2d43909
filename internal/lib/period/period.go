package period

import (
	"time"
)

// Period расчётный период тарифа.
type Period string

const (
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Yearly    Period = "yearly"
	OneTime   Period = "one_time"
)

// oneTimeYears горизонт разового тарифа: фактически бессрочная подписка.
const oneTimeYears = 100

// Valid сообщает, известен ли период.
func (p Period) Valid() bool {
	switch p {
	case Monthly, Quarterly, Yearly, OneTime:
		return true
	}
	return false
}

// EndDate считает дату окончания подписки, начавшейся в start.
// Неизвестный период считается месячным.
func EndDate(start time.Time, p Period) time.Time {
	switch p {
	case Quarterly:
		return start.AddDate(0, 3, 0)
	case Yearly:
		return start.AddDate(1, 0, 0)
	case OneTime:
		return start.AddDate(oneTimeYears, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// CountMonths считает количество месяцев подписки, попадающих в период после filterStart.
func CountMonths(subStart time.Time, subMonths int, filterStart time.Time) int {
	subEnd := subStart.AddDate(0, subMonths, 0)

	// Если фильтр начинается после окончания подписки
	if !filterStart.Before(subEnd) {
		return 0
	}

	// Если фильтр начинается до или в день начала подписки
	if !filterStart.After(subStart) {
		return subMonths
	}

	monthsDiff := (filterStart.Year()-subStart.Year())*12 +
		int(filterStart.Month()) - int(subStart.Month())

	// Если день фильтра позже дня подписки, вычитаем еще один месяц
	if filterStart.Day() > subStart.Day() {
		monthsDiff++
	}

	remaining := subMonths - monthsDiff
	if remaining < 0 {
		return 0
	}

	return remaining
}

// RemainingMonths сколько месяцев подписки [start, end) осталось на момент now.
func RemainingMonths(start, end, now time.Time) int {
	total := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		total--
	}
	if total < 0 {
		return 0
	}
	return CountMonths(start, total, now)
}
