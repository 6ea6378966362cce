package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func resourceRows(res []models.Resource) [][]string {
	rows := make([][]string, 0, len(res))
	for _, r := range res {
		done := " "
		if r.IsCompleted {
			done = "x"
		}
		rows = append(rows, []string{itoa(r.ID), "[" + done + "]", r.Title, string(r.ResourceType), deref(r.SkillName), deref(r.URL)})
	}

	return rows
}

var resourceHeader = []string{"ID", "DONE", "TITLE", "TYPE", "SKILL", "URL"}

func runResourcesList(ctx context.Context, a *App, args []string) error {
	fs := a.flags("resources list")
	skill := fs.Int64("skill", 0, "skill id")
	kind := fs.String("type", "", "resource type")
	completed := fs.String("completed", "", "true|false")
	page := fs.Int("page", 0, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}

	p := models.ResourceListParams{SkillID: *skill, ResourceType: models.ResourceType(*kind), Page: *page}
	if *completed != "" {
		b, err := strconv.ParseBool(*completed)
		if err != nil {
			return fmt.Errorf("%w: --completed must be true or false", errUsage)
		}
		p.Completed = &b
	}

	l, err := a.api.ListResources(ctx, p)
	if err != nil {
		return err
	}

	return a.out.table(l, resourceHeader, resourceRows(l.Resources))
}

func runResourcesAdd(ctx context.Context, a *App, args []string) error {
	fs := a.flags("resources add")
	skill := fs.Int64("skill", 0, "skill id")
	title := fs.String("title", "", "title")
	kind := fs.String("type", string(models.ResourceArticle), "article|video|book|course|documentation|other")
	link := fs.String("url", "", "link")
	desc := fs.String("description", "", "description")
	if err := parse(fs, args); err != nil {
		return err
	}

	r, err := a.api.CreateResource(ctx, models.ResourceCreate{
		SkillID:      *skill,
		Title:        *title,
		URL:          optString(*link),
		ResourceType: models.ResourceType(*kind),
		Description:  optString(*desc),
	})
	if err != nil {
		return err
	}

	return a.out.table(r, resourceHeader, resourceRows([]models.Resource{r}))
}

func runResourcesComplete(ctx context.Context, a *App, args []string) error {
	fs := a.flags("resources complete")
	undo := fs.Bool("undo", false, "mark as not completed")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	r, err := a.api.MarkResourceCompleted(ctx, id, !*undo)
	if err != nil {
		return err
	}

	return a.out.table(r, resourceHeader, resourceRows([]models.Resource{r}))
}

func runResourcesDelete(ctx context.Context, a *App, args []string) error {
	fs := a.flags("resources delete")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	if err := a.api.DeleteResource(ctx, id); err != nil {
		return err
	}

	return a.out.message("resource %d deleted", id)
}

func runResourcesStats(ctx context.Context, a *App, _ []string) error {
	s, err := a.api.ResourceStats(ctx)
	if err != nil {
		return err
	}

	kv := [][2]string{
		{"total", fmt.Sprint(s.TotalResources)},
		{"completed", fmt.Sprintf("%d (%.0f%%)", s.CompletedResources, s.CompletionRate)},
	}
	for _, t := range []models.ResourceType{
		models.ResourceArticle, models.ResourceVideo, models.ResourceBook,
		models.ResourceCourse, models.ResourceDocumentation, models.ResourceOther,
	} {
		if n := s.ByType[string(t)]; n > 0 {
			kv = append(kv, [2]string{string(t), fmt.Sprint(n)})
		}
	}

	return a.out.fields(s, kv)
}
