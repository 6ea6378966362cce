package models

import (
	"fmt"
	"math"
	"time"
)

// FormatMinutes форматирует длительность в минутах: "1h 5m" или "45m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}

	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}

	return fmt.Sprintf("%dm", m)
}

// WeekStart возвращает понедельник недели, в которую попадает t (YYYY-MM-DD).
func WeekStart(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}

	return t.AddDate(0, 0, 1-wd).Format(DateLayout)
}

// WeekLabel — подпись недели вида "Week of Jan 08, 2024".
// Некорректная дата возвращается как есть.
func WeekLabel(weekStart string) string {
	t, err := time.Parse(DateLayout, weekStart)
	if err != nil {
		return weekStart
	}

	return "Week of " + t.Format("Jan 02, 2006")
}

// CompletionRate — доля выполненного в процентах, округлённая до целого.
func CompletionRate(done, total int) int {
	if total <= 0 {
		return 0
	}

	return int(math.Round(float64(done) / float64(total) * 100))
}
