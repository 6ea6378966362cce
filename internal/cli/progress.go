package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func runProgressList(ctx context.Context, a *App, args []string) error {
	fs := a.flags("progress list")
	skill := fs.Int64("skill", 0, "skill id")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	page := fs.Int("page", 0, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}

	l, err := a.api.ListProgress(ctx, models.ProgressListParams{SkillID: *skill, StartDate: *from, EndDate: *to, Page: *page})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(l.Logs))
	for _, pl := range l.Logs {
		rows = append(rows, []string{itoa(pl.ID), pl.Date, deref(pl.SkillName), models.FormatMinutes(pl.TimeSpent), deref(pl.Description)})
	}

	return a.out.table(l, []string{"ID", "DATE", "SKILL", "TIME", "DESCRIPTION"}, rows)
}

func runProgressLog(ctx context.Context, a *App, args []string) error {
	fs := a.flags("progress log")
	skill := fs.Int64("skill", 0, "skill id")
	minutes := fs.Int("minutes", 0, "time spent in minutes")
	day := fs.String("date", time.Now().Format(models.DateLayout), "date YYYY-MM-DD")
	desc := fs.String("description", "", "what you did")
	notes := fs.String("notes", "", "notes")
	if err := parse(fs, args); err != nil {
		return err
	}

	pl, err := a.api.CreateProgress(ctx, models.ProgressLogCreate{
		SkillID:     *skill,
		Date:        *day,
		TimeSpent:   *minutes,
		Description: optString(*desc),
		Notes:       optString(*notes),
	})
	if err != nil {
		return err
	}

	return a.out.message("logged %s for %s on %s (id %d)", models.FormatMinutes(pl.TimeSpent), deref(pl.SkillName), pl.Date, pl.ID)
}

func runProgressDelete(ctx context.Context, a *App, args []string) error {
	fs := a.flags("progress delete")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	if err := a.api.DeleteProgress(ctx, id); err != nil {
		return err
	}

	return a.out.message("progress log %d deleted", id)
}

// runProgressStats печатает общую статистику либо срез за день, неделю,
// месяц (YYYY-MM) или по навыку.
func runProgressStats(ctx context.Context, a *App, args []string) error {
	fs := a.flags("progress stats")
	day := fs.String("day", "", "date YYYY-MM-DD")
	week := fs.String("week", "", "week start YYYY-MM-DD")
	month := fs.String("month", "", "month YYYY-MM")
	skill := fs.Int64("skill", 0, "skill id")
	if err := parse(fs, args); err != nil {
		return err
	}

	switch {
	case *day != "":
		d, err := a.api.DailyStats(ctx, *day)
		if err != nil {
			return err
		}
		return a.out.fields(d, [][2]string{
			{"date", d.Date},
			{"time", models.FormatMinutes(d.TotalTime)},
			{"skills", fmt.Sprint(d.SkillsPracticed)},
			{"logs", fmt.Sprint(d.LogCount)},
		})

	case *week != "":
		w, err := a.api.WeeklyStats(ctx, *week)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(w.DailyBreakdown))
		for _, d := range w.DailyBreakdown {
			rows = append(rows, []string{d.Date, models.FormatMinutes(d.TotalTime), fmt.Sprint(d.LogCount)})
		}
		rows = append(rows, []string{"total", models.FormatMinutes(w.TotalTime), fmt.Sprint(w.LogCount)})
		return a.out.table(w, []string{"DATE", "TIME", "LOGS"}, rows)

	case *month != "":
		year, mon, err := parseMonth(*month)
		if err != nil {
			return err
		}
		m, err := a.api.MonthlyStats(ctx, year, mon)
		if err != nil {
			return err
		}
		return a.out.fields(m, [][2]string{
			{"month", m.Month},
			{"time", models.FormatMinutes(m.TotalTime)},
			{"active days", fmt.Sprint(m.ActiveDays)},
			{"skills", fmt.Sprint(m.SkillsPracticed)},
			{"logs", fmt.Sprint(m.LogCount)},
		})

	case *skill > 0:
		s, err := a.api.SkillProgressSummary(ctx, *skill)
		if err != nil {
			return err
		}
		return a.out.fields(s, [][2]string{
			{"skill", s.SkillName},
			{"time", models.FormatMinutes(s.TotalTime)},
			{"logs", fmt.Sprint(s.LogCount)},
			{"last practiced", deref(s.LastPracticed)},
			{"streak", fmt.Sprintf("%d days", s.CurrentStreak)},
			{"daily average", models.FormatMinutes(s.AverageDailyTime)},
		})
	}

	s, err := a.api.OverallStats(ctx)
	if err != nil {
		return err
	}

	return a.out.fields(s, [][2]string{
		{"logs", fmt.Sprint(s.TotalLogs)},
		{"total", models.FormatMinutes(s.TotalTime)},
		{"today", models.FormatMinutes(s.TodayTime)},
		{"this week", models.FormatMinutes(s.ThisWeekTime)},
		{"this month", models.FormatMinutes(s.ThisMonthTime)},
		{"skills tracked", fmt.Sprint(s.SkillsTracked)},
		{"streak", fmt.Sprintf("%d days (longest %d)", s.CurrentStreak, s.LongestStreak)},
	})
}

func parseMonth(s string) (int, int, error) {
	y, m, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: month must be YYYY-MM", errUsage)
	}

	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: month must be YYYY-MM", errUsage)
	}

	return year, month, nil
}
