package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pribylovaa/skilltrack/internal/cache"
	"github.com/pribylovaa/skilltrack/internal/client"
	"github.com/pribylovaa/skilltrack/internal/models"
)

func skillQuery(p models.SkillListParams) url.Values {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.CurrentLevel != "" {
		q.Set("current_level", string(p.CurrentLevel))
	}
	if p.TargetLevel != "" {
		q.Set("target_level", string(p.TargetLevel))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	page(q, p.Page, p.PageSize)

	return q
}

// ListSkills — GET /skills/. Ответ предоставляет Skills:LIST и тег каждого навыка.
func (a *API) ListSkills(ctx context.Context, p models.SkillListParams) (models.SkillList, error) {
	const op = "api.ListSkills"

	if err := validate(op, p); err != nil {
		return models.SkillList{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: "/skills/", Query: skillQuery(p)},
		func(l models.SkillList) []cache.Tag {
			tags := []cache.Tag{tag(cache.TypeSkills, cache.IDList)}
			for _, s := range l.Skills {
				tags = append(tags, entity(cache.TypeSkills, s.ID))
			}
			return tags
		},
	)
}

// GetSkill — навык со статистикой.
func (a *API) GetSkill(ctx context.Context, id int64) (models.SkillWithStats, error) {
	const op = "api.GetSkill"

	if err := checkID(op, id); err != nil {
		return models.SkillWithStats{}, err
	}

	return query(ctx, a, op,
		client.Request{Method: http.MethodGet, Path: idPath("/skills/", id), Query: url.Values{"with_stats": {"true"}}},
		func(models.SkillWithStats) []cache.Tag { return []cache.Tag{entity(cache.TypeSkills, id)} },
	)
}

func (a *API) CreateSkill(ctx context.Context, req models.SkillCreate) (models.Skill, error) {
	const op = "api.CreateSkill"

	if err := validate(op, req); err != nil {
		return models.Skill{}, err
	}

	return mutate(ctx, a, op, MutationCreateSkill,
		client.Request{Method: http.MethodPost, Path: "/skills/", Body: req},
		func(s models.Skill) Target { return Target{ID: s.ID, SkillID: s.ID} },
	)
}

func (a *API) UpdateSkill(ctx context.Context, id int64, req models.SkillUpdate) (models.Skill, error) {
	const op = "api.UpdateSkill"

	if err := checkID(op, id); err != nil {
		return models.Skill{}, err
	}
	if err := validate(op, req); err != nil {
		return models.Skill{}, err
	}

	return mutate(ctx, a, op, MutationUpdateSkill,
		client.Request{Method: http.MethodPut, Path: idPath("/skills/", id), Body: req},
		func(models.Skill) Target { return Target{ID: id, SkillID: id} },
	)
}

// DeleteSkill удаляет навык; backend удаляет и его записи и материалы.
func (a *API) DeleteSkill(ctx context.Context, id int64) error {
	const op = "api.DeleteSkill"

	if err := checkID(op, id); err != nil {
		return err
	}

	_, err := mutate(ctx, a, op, MutationDeleteSkill,
		client.Request{Method: http.MethodDelete, Path: idPath("/skills/", id)},
		func(empty) Target { return Target{ID: id, SkillID: id} },
	)

	return err
}

func (a *API) SkillStats(ctx context.Context) (models.SkillStats, error) {
	return query(ctx, a, "api.SkillStats",
		client.Request{Method: http.MethodGet, Path: "/skills/stats"},
		func(models.SkillStats) []cache.Tag { return []cache.Tag{tag(cache.TypeSkills, cache.IDStats)} },
	)
}

func (a *API) BulkUpdateSkills(ctx context.Context, req models.BulkSkillUpdate) (models.BulkSkillUpdateResult, error) {
	const op = "api.BulkUpdateSkills"

	if err := validate(op, req); err != nil {
		return models.BulkSkillUpdateResult{}, err
	}

	return mutate(ctx, a, op, MutationBulkUpdateSkills,
		client.Request{Method: http.MethodPatch, Path: "/skills/bulk-update", Body: req},
		none[models.BulkSkillUpdateResult],
	)
}
