package cli

import (
	"context"
	"fmt"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func skillRows(skills []models.Skill) [][]string {
	rows := make([][]string, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, []string{
			itoa(s.ID), s.Name, string(s.Status),
			string(s.CurrentLevel) + " -> " + string(s.TargetLevel),
			models.FormatMinutes(s.TotalHours),
		})
	}

	return rows
}

func runSkillsList(ctx context.Context, a *App, args []string) error {
	fs := a.flags("skills list")
	status := fs.String("status", "", "active|paused|completed")
	search := fs.String("search", "", "name substring")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("page-size", 0, "items per page")
	if err := parse(fs, args); err != nil {
		return err
	}

	l, err := a.api.ListSkills(ctx, models.SkillListParams{
		Status:   models.SkillStatus(*status),
		Search:   *search,
		Page:     *page,
		PageSize: *size,
	})
	if err != nil {
		return err
	}

	return a.out.table(l, []string{"ID", "NAME", "STATUS", "LEVEL", "TIME"}, skillRows(l.Skills))
}

func runSkillsShow(ctx context.Context, a *App, args []string) error {
	fs := a.flags("skills show")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	s, err := a.api.GetSkill(ctx, id)
	if err != nil {
		return err
	}

	last := "-"
	if s.LastPracticed != nil {
		last = date(*s.LastPracticed)
	}

	return a.out.fields(s, [][2]string{
		{"id", itoa(s.ID)},
		{"name", s.Name},
		{"description", deref(s.Description)},
		{"status", string(s.Status)},
		{"level", string(s.CurrentLevel) + " -> " + string(s.TargetLevel)},
		{"time", models.FormatMinutes(s.TotalHours)},
		{"progress logs", fmt.Sprint(s.ProgressCount)},
		{"resources", fmt.Sprint(s.ResourceCount)},
		{"streak", fmt.Sprintf("%d days", s.StreakDays)},
		{"last practiced", last},
	})
}

func runSkillsAdd(ctx context.Context, a *App, args []string) error {
	fs := a.flags("skills add")
	name := fs.String("name", "", "skill name")
	desc := fs.String("description", "", "description")
	target := fs.String("target", string(models.LevelIntermediate), "target level")
	current := fs.String("current", string(models.LevelBeginner), "current level")
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := a.api.CreateSkill(ctx, models.SkillCreate{
		Name:         *name,
		Description:  optString(*desc),
		TargetLevel:  models.SkillLevel(*target),
		CurrentLevel: models.SkillLevel(*current),
	})
	if err != nil {
		return err
	}

	return a.out.table(s, []string{"ID", "NAME", "STATUS", "LEVEL", "TIME"}, skillRows([]models.Skill{s}))
}

func runSkillsUpdate(ctx context.Context, a *App, args []string) error {
	fs := a.flags("skills update")
	name := fs.String("name", "", "skill name")
	desc := fs.String("description", "", "description")
	target := fs.String("target", "", "target level")
	current := fs.String("current", "", "current level")
	status := fs.String("status", "", "active|paused|completed")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	upd := models.SkillUpdate{Name: optString(*name), Description: optString(*desc)}
	if *target != "" {
		l := models.SkillLevel(*target)
		upd.TargetLevel = &l
	}
	if *current != "" {
		l := models.SkillLevel(*current)
		upd.CurrentLevel = &l
	}
	if *status != "" {
		st := models.SkillStatus(*status)
		upd.Status = &st
	}

	s, err := a.api.UpdateSkill(ctx, id, upd)
	if err != nil {
		return err
	}

	return a.out.table(s, []string{"ID", "NAME", "STATUS", "LEVEL", "TIME"}, skillRows([]models.Skill{s}))
}

func runSkillsDelete(ctx context.Context, a *App, args []string) error {
	fs := a.flags("skills delete")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	if err := a.api.DeleteSkill(ctx, id); err != nil {
		return err
	}

	return a.out.message("skill %d deleted", id)
}

func runSkillsStats(ctx context.Context, a *App, _ []string) error {
	s, err := a.api.SkillStats(ctx)
	if err != nil {
		return err
	}

	return a.out.fields(s, [][2]string{
		{"total", fmt.Sprint(s.TotalSkills)},
		{"active", fmt.Sprint(s.ActiveSkills)},
		{"paused", fmt.Sprint(s.PausedSkills)},
		{"completed", fmt.Sprint(s.CompletedSkills)},
		{"learning time", models.FormatMinutes(s.TotalLearningTime)},
	})
}
