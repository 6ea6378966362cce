package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pribylovaa/skilltrack/internal/cache"
	"github.com/pribylovaa/skilltrack/internal/client"
	"github.com/pribylovaa/skilltrack/internal/models"
)

func progressQuery(p models.ProgressListParams) url.Values {
	q := url.Values{}
	if p.SkillID > 0 {
		q.Set("skill_id", strconv.FormatInt(p.SkillID, 10))
	}
	if p.StartDate != "" {
		q.Set("start_date", p.StartDate)
	}
	if p.EndDate != "" {
		q.Set("end_date", p.EndDate)
	}
	page(q, p.Page, p.PageSize)

	return q
}

// statsTags — все агрегаты прогресса делят один тег Progress:STATS.
func statsTags[T any](T) []cache.Tag { return []cache.Tag{tag(cache.TypeProgress, cache.IDStats)} }

func (a *API) ListProgress(ctx context.Context, p models.ProgressListParams) (models.ProgressList, error) {
	const op = "api.ListProgress"

	if err := validate(op, p); err != nil {
		return models.ProgressList{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/progress/", Query: progressQuery(p)},
		func(l models.ProgressList) []cache.Tag {
			tags := []cache.Tag{tag(cache.TypeProgress, cache.IDList)}
			for _, pl := range l.Logs {
				tags = append(tags, entity(cache.TypeProgress, pl.ID))
			}
			return tags
		},
	)
}

func (a *API) GetProgress(ctx context.Context, id int64) (models.ProgressLog, error) {
	const op = "api.GetProgress"

	if err := checkID(op, id); err != nil {
		return models.ProgressLog{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: idPath("/progress/", id)},
		func(models.ProgressLog) []cache.Tag { return []cache.Tag{entity(cache.TypeProgress, id)} },
	)
}

// CreateProgress записывает занятие. Меняет total_hours навыка.
func (a *API) CreateProgress(ctx context.Context, req models.ProgressLogCreate) (models.ProgressLog, error) {
	const op = "api.CreateProgress"

	if err := validate(op, req); err != nil {
		return models.ProgressLog{}, err
	}

	return mutate(ctx, a, op, MutationCreateProgress,
		client.Request{Method: http.MethodPost, Path: "/progress/", Body: req},
		func(l models.ProgressLog) Target { return Target{ID: l.ID, SkillID: l.SkillID} },
	)
}

func (a *API) UpdateProgress(ctx context.Context, id int64, req models.ProgressLogUpdate) (models.ProgressLog, error) {
	const op = "api.UpdateProgress"

	if err := checkID(op, id); err != nil {
		return models.ProgressLog{}, err
	}
	if err := validate(op, req); err != nil {
		return models.ProgressLog{}, err
	}

	return mutate(ctx, a, op, MutationUpdateProgress,
		client.Request{Method: http.MethodPut, Path: idPath("/progress/", id), Body: req},
		func(l models.ProgressLog) Target { return Target{ID: id, SkillID: l.SkillID} },
	)
}

// DeleteProgress удаляет запись. Навык записи не известен, поэтому
// инвалидируются все навыки.
func (a *API) DeleteProgress(ctx context.Context, id int64) error {
	const op = "api.DeleteProgress"

	if err := checkID(op, id); err != nil {
		return err
	}

	_, err := mutate(ctx, a, op, MutationDeleteProgress,
		client.Request{Method: http.MethodDelete, Path: idPath("/progress/", id)},
		func(empty) Target { return Target{ID: id} },
	)

	return err
}

func (a *API) OverallStats(ctx context.Context) (models.ProgressStats, error) {
	return query(ctx, a, "api.OverallStats",
		client.Request{Method: http.MethodGet, Path: "/progress/stats"},
		statsTags[models.ProgressStats],
	)
}

// DailyStats — статистика за день date (YYYY-MM-DD); пустая строка — сегодня.
func (a *API) DailyStats(ctx context.Context, date string) (models.DailyStats, error) {
	const op = "api.DailyStats"

	q := url.Values{}
	if date != "" {
		if err := validate(op, struct {
			Date string `json:"target_date" validate:"datetime=2006-01-02"`
		}{date}); err != nil {
			return models.DailyStats{}, err
		}
		q.Set("target_date", date)
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/progress/stats/daily", Query: q},
		statsTags[models.DailyStats],
	)
}

// WeeklyStats — статистика недели, начинающейся weekStart; пустая строка — текущая.
func (a *API) WeeklyStats(ctx context.Context, weekStart string) (models.WeeklyStats, error) {
	const op = "api.WeeklyStats"

	q := url.Values{}
	if weekStart != "" {
		if err := validate(op, struct {
			WeekStart string `json:"week_start" validate:"datetime=2006-01-02"`
		}{weekStart}); err != nil {
			return models.WeeklyStats{}, err
		}
		q.Set("week_start", weekStart)
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/progress/stats/weekly", Query: q},
		statsTags[models.WeeklyStats],
	)
}

// MonthlyStats — статистика месяца. Нулевые year/month — текущие.
func (a *API) MonthlyStats(ctx context.Context, year, month int) (models.MonthlyStats, error) {
	const op = "api.MonthlyStats"

	if err := validate(op, struct {
		Year  int `json:"year" validate:"omitempty,min=2000,max=9999"`
		Month int `json:"month" validate:"omitempty,min=1,max=12"`
	}{year, month}); err != nil {
		return models.MonthlyStats{}, err
	}

	q := url.Values{}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	if month > 0 {
		q.Set("month", strconv.Itoa(month))
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/progress/stats/monthly", Query: q},
		statsTags[models.MonthlyStats],
	)
}

func (a *API) SkillProgressSummary(ctx context.Context, skillID int64) (models.SkillProgressSummary, error) {
	const op = "api.SkillProgressSummary"

	if err := checkID(op, skillID); err != nil {
		return models.SkillProgressSummary{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/progress/skills/" + strconv.FormatInt(skillID, 10) + "/summary"},
		func(models.SkillProgressSummary) []cache.Tag { return []cache.Tag{skillSummaryTag(skillID)} },
	)
}
