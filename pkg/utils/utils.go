package utils

import (
	"math"
	"time"
)

// Round2 округляет число до 2 знаков после запятой
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// IsFinite проверяет, является ли число конечным
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}

// DaysInMonth возвращает количество дней в месяце
func DaysInMonth(year int, month time.Month) int {
	// нулевой день следующего месяца = последний день текущего
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthClamped сдвигает дату на один календарный месяц вперед.
// Если в целевом месяце нет такого дня, берется его последний день
// (31 января -> 29 февраля в високосный год).
func AddMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
