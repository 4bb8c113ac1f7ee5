// Package month содержит календарную арифметику для месячного сброса квоты.
package month

import (
	"time"
)

const dayMillis = 24 * 60 * 60 * 1000

// NextResetDate возвращает первое число месяца, следующего за now, в полночь
// локального времени. Именно эта дата хранится как monthlyResetDate.
func NextResetDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
}

// DaysSince считает количество полных суток между сохранённой меткой времени
// (epoch в миллисекундах) и now. Отрицательные значения обрезаются до нуля.
func DaysSince(tsMillis int64, now time.Time) int {
	diff := now.UnixMilli() - tsMillis
	if diff < 0 {
		return 0
	}
	return int(diff / dayMillis)
}
