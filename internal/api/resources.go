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

func resourceQuery(p models.ResourceListParams) url.Values {
	q := url.Values{}
	if p.SkillID > 0 {
		q.Set("skill_id", strconv.FormatInt(p.SkillID, 10))
	}
	if p.ResourceType != "" {
		q.Set("resource_type", string(p.ResourceType))
	}
	if p.Completed != nil {
		q.Set("is_completed", strconv.FormatBool(*p.Completed))
	}
	page(q, p.Page, p.PageSize)

	return q
}

func (a *API) ListResources(ctx context.Context, p models.ResourceListParams) (models.ResourceList, error) {
	const op = "api.ListResources"

	if err := validate(op, p); err != nil {
		return models.ResourceList{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/resources/", Query: resourceQuery(p)},
		func(l models.ResourceList) []cache.Tag {
			tags := []cache.Tag{tag(cache.TypeResources, cache.IDList)}
			for _, r := range l.Resources {
				tags = append(tags, entity(cache.TypeResources, r.ID))
			}
			return tags
		},
	)
}

func (a *API) GetResource(ctx context.Context, id int64) (models.Resource, error) {
	const op = "api.GetResource"

	if err := checkID(op, id); err != nil {
		return models.Resource{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: idPath("/resources/", id)},
		func(models.Resource) []cache.Tag { return []cache.Tag{entity(cache.TypeResources, id)} },
	)
}

func (a *API) CreateResource(ctx context.Context, req models.ResourceCreate) (models.Resource, error) {
	const op = "api.CreateResource"

	if err := validate(op, req); err != nil {
		return models.Resource{}, err
	}

	return mutate(ctx, a, op, MutationCreateResource,
		client.Request{Method: http.MethodPost, Path: "/resources/", Body: req},
		func(r models.Resource) Target { return Target{ID: r.ID, SkillID: r.SkillID} },
	)
}

func (a *API) UpdateResource(ctx context.Context, id int64, req models.ResourceUpdate) (models.Resource, error) {
	const op = "api.UpdateResource"

	if err := checkID(op, id); err != nil {
		return models.Resource{}, err
	}
	if err := validate(op, req); err != nil {
		return models.Resource{}, err
	}

	return mutate(ctx, a, op, MutationUpdateResource,
		client.Request{Method: http.MethodPatch, Path: idPath("/resources/", id), Body: req},
		func(r models.Resource) Target { return Target{ID: id, SkillID: r.SkillID} },
	)
}

// DeleteResource удаляет материал; его навык не известен после удаления.
func (a *API) DeleteResource(ctx context.Context, id int64) error {
	const op = "api.DeleteResource"

	if err := checkID(op, id); err != nil {
		return err
	}

	_, err := mutate(ctx, a, op, MutationDeleteResource,
		client.Request{Method: http.MethodDelete, Path: idPath("/resources/", id)},
		func(empty) Target { return Target{ID: id} },
	)

	return err
}

// MarkResourceCompleted выставляет или снимает отметку о завершении.
func (a *API) MarkResourceCompleted(ctx context.Context, id int64, completed bool) (models.Resource, error) {
	const op = "api.MarkResourceCompleted"

	if err := checkID(op, id); err != nil {
		return models.Resource{}, err
	}

	return mutate(ctx, a, op, MutationMarkResourceCompleted,
		client.Request{
			Method: http.MethodPost,
			Path:   idPath("/resources/", id) + "/complete",
			Query:  url.Values{"completed": {strconv.FormatBool(completed)}},
		},
		func(r models.Resource) Target { return Target{ID: id, SkillID: r.SkillID} },
	)
}

func (a *API) ResourceStats(ctx context.Context) (models.ResourceStats, error) {
	return query(ctx, a, "api.ResourceStats",
		client.Request{Method: http.MethodGet, Path: "/resources/stats"},
		func(models.ResourceStats) []cache.Tag { return []cache.Tag{tag(cache.TypeResources, cache.IDStats)} },
	)
}
