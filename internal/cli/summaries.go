package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func runSummariesList(ctx context.Context, a *App, args []string) error {
	fs := a.flags("summaries list")
	year := fs.Int("year", 0, "year")
	month := fs.Int("month", 0, "month 1-12")
	page := fs.Int("page", 0, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}

	l, err := a.api.ListSummaries(ctx, models.SummaryListParams{Year: *year, Month: *month, Page: *page})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(l.Summaries))
	for _, s := range l.Summaries {
		rows = append(rows, []string{itoa(s.ID), models.WeekLabel(s.WeekStart), models.FormatMinutes(s.TotalHours), fmt.Sprint(s.SkillsWorkedOn)})
	}

	return a.out.table(l, []string{"ID", "WEEK", "TIME", "SKILLS"}, rows)
}

func runSummariesShow(ctx context.Context, a *App, args []string) error {
	fs := a.flags("summaries show")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	s, err := a.api.GetSummary(ctx, id, true)
	if err != nil {
		return err
	}

	return a.printSummary(s)
}

func runSummariesCurrent(ctx context.Context, a *App, args []string) error {
	fs := a.flags("summaries current")
	last := fs.Bool("last", false, "show last week instead")
	if err := parse(fs, args); err != nil {
		return err
	}

	get := a.api.CurrentWeekSummary
	if *last {
		get = a.api.LastWeekSummary
	}

	s, err := get(ctx)
	if err != nil {
		return err
	}

	return a.printSummary(s)
}

func runSummariesGenerate(ctx context.Context, a *App, args []string) error {
	fs := a.flags("summaries generate")
	week := fs.String("week", models.WeekStart(time.Now()), "any date of the week, YYYY-MM-DD")
	force := fs.Bool("force", false, "regenerate an existing summary")
	if err := parse(fs, args); err != nil {
		return err
	}

	// Backend ждёт понедельник недели.
	if t, err := time.Parse(models.DateLayout, *week); err == nil {
		*week = models.WeekStart(t)
	}

	s, err := a.api.GenerateSummary(ctx, models.SummaryGenerate{WeekStart: *week, ForceRegenerate: *force})
	if err != nil {
		return err
	}

	return a.out.fields(s, [][2]string{
		{"id", itoa(s.ID)},
		{"week", models.WeekLabel(s.WeekStart)},
		{"time", models.FormatMinutes(s.TotalHours)},
		{"skills", fmt.Sprint(s.SkillsWorkedOn)},
		{"summary", deref(s.SummaryText)},
	})
}

func (a *App) printSummary(s models.WeeklySummaryDetails) error {
	kv := [][2]string{
		{"id", itoa(s.ID)},
		{"week", models.WeekLabel(s.WeekStart) + " - " + s.WeekEnd},
		{"time", models.FormatMinutes(s.TotalHours)},
		{"skills", fmt.Sprint(s.SkillsWorkedOn)},
		{"top skill", deref(s.TopSkill)},
		{"daily average", models.FormatMinutes(s.AverageDailyTime)},
		{"summary", deref(s.SummaryText)},
	}
	for _, b := range s.SkillsBreakdown {
		kv = append(kv, [2]string{"  " + b.SkillName, fmt.Sprintf("%s (%.0f%%)", models.FormatMinutes(b.TimeSpent), b.Percentage)})
	}

	return a.out.fields(s, kv)
}
