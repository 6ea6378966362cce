package apitest

import (
	"sort"
	"time"

	"github.com/pribylovaa/skilltrack/internal/models"
)

// Вспомогательные агрегаты. Все функции вызываются под s.mu.

func (s *Server) userLogs(uid int64) []*models.ProgressLog {
	out := make([]*models.ProgressLog, 0)
	for _, l := range s.logs {
		if l.UserID == uid {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})

	return out
}

func (s *Server) userSkills(uid int64) []*models.Skill {
	out := make([]*models.Skill, 0)
	for _, sk := range s.skills {
		if sk.UserID == uid {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out
}

func (s *Server) userResources(uid int64) []*models.Resource {
	out := make([]*models.Resource, 0)
	for _, res := range s.resources {
		if sk, ok := s.skills[res.SkillID]; ok && sk.UserID == uid {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out
}

// ownSkill возвращает навык, если он принадлежит uid.
func (s *Server) ownSkill(uid, id int64) (*models.Skill, bool) {
	sk, ok := s.skills[id]
	if !ok || sk.UserID != uid {
		return nil, false
	}

	return sk, true
}

// skillTime пересчитывает total_hours навыка по записям прогресса.
func (s *Server) skillTime(skillID int64) int {
	total := 0
	for _, l := range s.logs {
		if l.SkillID == skillID {
			total += l.TimeSpent
		}
	}

	return total
}

func dateSet(logs []*models.ProgressLog) map[string]bool {
	set := make(map[string]bool, len(logs))
	for _, l := range logs {
		set[l.Date] = true
	}

	return set
}

// currentStreak — число подряд идущих дней с занятиями, заканчивая сегодня
// или вчера.
func currentStreak(logs []*models.ProgressLog, today time.Time) int {
	set := dateSet(logs)

	day := today
	if !set[day.Format(models.DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for set[day.Format(models.DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}

func longestStreak(logs []*models.ProgressLog) int {
	set := dateSet(logs)
	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	best, run := 0, 0
	var prev time.Time
	for _, d := range dates {
		t, err := time.Parse(models.DateLayout, d)
		if err != nil {
			continue
		}
		if run > 0 && t.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = t
	}

	return best
}

// sumBetween — суммарное время записей с датами в [from, to].
func sumBetween(logs []*models.ProgressLog, from, to string) int {
	total := 0
	for _, l := range logs {
		if l.Date >= from && l.Date <= to {
			total += l.TimeSpent
		}
	}

	return total
}

func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekBounds возвращает понедельник и воскресенье недели, содержащей day.
func weekBounds(day time.Time) (time.Time, time.Time) {
	start, _ := time.Parse(models.DateLayout, models.WeekStart(day))
	return start, start.AddDate(0, 0, 6)
}
