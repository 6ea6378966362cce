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

// GenerateSummary строит сводку недели. Существующая сводка возвращается
// как есть, если не задан ForceRegenerate.
func (a *API) GenerateSummary(ctx context.Context, req models.SummaryGenerate) (models.WeeklySummary, error) {
	const op = "api.GenerateSummary"

	if err := validate(op, req); err != nil {
		return models.WeeklySummary{}, err
	}

	return mutate(ctx, a, op, MutationGenerateSummary,
		client.Request{Method: http.MethodPost, Path: "/summaries/generate", Body: req},
		func(s models.WeeklySummary) Target { return Target{ID: s.ID} },
	)
}

func (a *API) ListSummaries(ctx context.Context, p models.SummaryListParams) (models.SummaryList, error) {
	const op = "api.ListSummaries"

	if err := validate(op, p); err != nil {
		return models.SummaryList{}, err
	}

	q := url.Values{}
	if p.Year > 0 {
		q.Set("year", strconv.Itoa(p.Year))
	}
	if p.Month > 0 {
		q.Set("month", strconv.Itoa(p.Month))
	}
	page(q, p.Page, p.PageSize)

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/summaries/", Query: q},
		func(l models.SummaryList) []cache.Tag {
			tags := []cache.Tag{tag(cache.TypeSummaries, cache.IDList)}
			for _, s := range l.Summaries {
				tags = append(tags, entity(cache.TypeSummaries, s.ID))
			}
			return tags
		},
	)
}

// GetSummary — сводка по id; withDetails добавляет разбивку по навыкам и дням.
func (a *API) GetSummary(ctx context.Context, id int64, withDetails bool) (models.WeeklySummaryDetails, error) {
	const op = "api.GetSummary"

	if err := checkID(op, id); err != nil {
		return models.WeeklySummaryDetails{}, err
	}

	return query(ctx, a, op,
		client.Request{
			Method: http.MethodGet,
			Path:   idPath("/summaries/", id),
			Query:  url.Values{"with_details": {strconv.FormatBool(withDetails)}},
		},
		func(models.WeeklySummaryDetails) []cache.Tag { return []cache.Tag{entity(cache.TypeSummaries, id)} },
	)
}

// CurrentWeekSummary — сводка текущей недели; backend создаёт её при отсутствии.
func (a *API) CurrentWeekSummary(ctx context.Context) (models.WeeklySummaryDetails, error) {
	return a.weekSummary(ctx, "api.CurrentWeekSummary", "/summaries/current-week", cache.IDCurrent)
}

func (a *API) LastWeekSummary(ctx context.Context) (models.WeeklySummaryDetails, error) {
	return a.weekSummary(ctx, "api.LastWeekSummary", "/summaries/last-week", cache.IDLast)
}

func (a *API) weekSummary(ctx context.Context, op, path, id string) (models.WeeklySummaryDetails, error) {
	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: path},
		func(s models.WeeklySummaryDetails) []cache.Tag {
			return []cache.Tag{tag(cache.TypeSummaries, id), entity(cache.TypeSummaries, s.ID)}
		},
	)
}

func (a *API) DeleteSummary(ctx context.Context, id int64) error {
	const op = "api.DeleteSummary"

	if err := checkID(op, id); err != nil {
		return err
	}

	_, err := mutate(ctx, a, op, MutationDeleteSummary,
		client.Request{Method: http.MethodDelete, Path: idPath("/summaries/", id)},
		func(empty) Target { return Target{ID: id} },
	)

	return err
}

func (a *API) SummaryStats(ctx context.Context) (models.SummaryStats, error) {
	return query(ctx, a, "api.SummaryStats",
		client.Request{Method: http.MethodGet, Path: "/summaries/stats"},
		func(models.SummaryStats) []cache.Tag { return []cache.Tag{tag(cache.TypeSummaries, cache.IDStats)} },
	)
}
