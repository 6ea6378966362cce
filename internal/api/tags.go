package api

import (
	"strconv"

	"github.com/pribylovaa/skilltrack/internal/cache"
)

// Mutation — операция записи, после успеха которой инвалидируется кэш.
type Mutation string

const (
	MutationRegister       Mutation = "register"
	MutationLogin          Mutation = "login"
	MutationLogout         Mutation = "logout"
	MutationChangePassword Mutation = "change_password"

	MutationUpdateProfile Mutation = "update_profile"
	MutationUpdateEmail   Mutation = "update_email"
	MutationDeactivate    Mutation = "deactivate"

	MutationCreateSkill      Mutation = "create_skill"
	MutationUpdateSkill      Mutation = "update_skill"
	MutationDeleteSkill      Mutation = "delete_skill"
	MutationBulkUpdateSkills Mutation = "bulk_update_skills"

	MutationCreateProgress Mutation = "create_progress"
	MutationUpdateProgress Mutation = "update_progress"
	MutationDeleteProgress Mutation = "delete_progress"

	MutationCreateResource        Mutation = "create_resource"
	MutationUpdateResource        Mutation = "update_resource"
	MutationDeleteResource        Mutation = "delete_resource"
	MutationMarkResourceCompleted Mutation = "mark_resource_completed"

	MutationGenerateSummary Mutation = "generate_summary"
	MutationDeleteSummary   Mutation = "delete_summary"
)

// Target — сущность, которую затронула мутация. Нулевые поля — «неизвестно».
type Target struct {
	ID      int64
	SkillID int64
}

func tag(typ, id string) cache.Tag { return cache.Tag{Type: typ, ID: id} }

func all(typ string) cache.Tag { return cache.Tag{Type: typ} }

func entity(typ string, id int64) cache.Tag { return tag(typ, strconv.FormatInt(id, 10)) }

// skillTag — конкретный навык, если он известен, иначе все навыки.
func skillTag(id int64) cache.Tag {
	if id <= 0 {
		return all(cache.TypeSkills)
	}

	return entity(cache.TypeSkills, id)
}

// skillSummaryTag — сводка прогресса по навыку (Progress:SKILL_<id>).
func skillSummaryTag(id int64) cache.Tag {
	if id <= 0 {
		return all(cache.TypeProgress)
	}

	return tag(cache.TypeProgress, "SKILL_"+strconv.FormatInt(id, 10))
}

// everything — смена пользователя: устаревает весь кэш.
func everything(Target) []cache.Tag {
	return []cache.Tag{
		all(cache.TypeAuth),
		all(cache.TypeUser),
		all(cache.TypeSkills),
		all(cache.TypeProgress),
		all(cache.TypeResources),
		all(cache.TypeSummaries),
	}
}

// userAggregates — дашборд и быстрая статистика пользователя.
var userAggregates = []cache.Tag{
	tag(cache.TypeUser, cache.IDDashboard),
	tag(cache.TypeUser, cache.IDStats),
}

func join(groups ...[]cache.Tag) []cache.Tag {
	var out []cache.Tag
	for _, g := range groups {
		out = append(out, g...)
	}

	return out
}

// invalidations — какие чтения устаревают после каждой мутации.
// Запись прогресса меняет агрегаты навыков (total_hours), материалы
// меняют resource_count навыка, навыки фигурируют по имени в логах,
// материалах и недельных сводках.
var invalidations = map[Mutation]func(Target) []cache.Tag{
	MutationRegister: everything,
	MutationLogin:    everything,
	MutationLogout:   everything,
	MutationChangePassword: func(Target) []cache.Tag {
		return []cache.Tag{all(cache.TypeAuth)}
	},

	MutationUpdateProfile: func(Target) []cache.Tag {
		return []cache.Tag{all(cache.TypeUser), all(cache.TypeAuth)}
	},
	MutationUpdateEmail: func(Target) []cache.Tag {
		return []cache.Tag{all(cache.TypeUser), all(cache.TypeAuth)}
	},
	MutationDeactivate: everything,

	MutationCreateSkill: func(Target) []cache.Tag {
		return join([]cache.Tag{
			tag(cache.TypeSkills, cache.IDList),
			tag(cache.TypeSkills, cache.IDStats),
		}, userAggregates)
	},
	MutationUpdateSkill: func(t Target) []cache.Tag {
		return join([]cache.Tag{
			skillTag(t.ID),
			tag(cache.TypeSkills, cache.IDList),
			tag(cache.TypeSkills, cache.IDStats),
			all(cache.TypeProgress),
			all(cache.TypeResources),
			all(cache.TypeSummaries),
		}, userAggregates)
	},
	MutationDeleteSkill: func(t Target) []cache.Tag {
		return join([]cache.Tag{
			skillTag(t.ID),
			tag(cache.TypeSkills, cache.IDList),
			tag(cache.TypeSkills, cache.IDStats),
			all(cache.TypeProgress),
			all(cache.TypeResources),
			all(cache.TypeSummaries),
		}, userAggregates)
	},
	MutationBulkUpdateSkills: func(Target) []cache.Tag {
		return join([]cache.Tag{all(cache.TypeSkills)}, userAggregates)
	},

	MutationCreateProgress: func(t Target) []cache.Tag {
		return progressChanged(t)
	},
	MutationUpdateProgress: func(t Target) []cache.Tag {
		return append(progressChanged(t), entity(cache.TypeProgress, t.ID))
	},
	MutationDeleteProgress: func(t Target) []cache.Tag {
		return append(progressChanged(t), entity(cache.TypeProgress, t.ID))
	},

	MutationCreateResource: func(t Target) []cache.Tag {
		return resourcesChanged(t)
	},
	MutationUpdateResource: func(t Target) []cache.Tag {
		return append(resourcesChanged(t), entity(cache.TypeResources, t.ID))
	},
	MutationDeleteResource: func(t Target) []cache.Tag {
		return append(resourcesChanged(t), entity(cache.TypeResources, t.ID))
	},
	MutationMarkResourceCompleted: func(t Target) []cache.Tag {
		return append(resourcesChanged(t), entity(cache.TypeResources, t.ID))
	},

	MutationGenerateSummary: func(Target) []cache.Tag {
		return []cache.Tag{all(cache.TypeSummaries)}
	},
	MutationDeleteSummary: func(t Target) []cache.Tag {
		return []cache.Tag{
			entity(cache.TypeSummaries, t.ID),
			tag(cache.TypeSummaries, cache.IDList),
			tag(cache.TypeSummaries, cache.IDStats),
			tag(cache.TypeSummaries, cache.IDCurrent),
			tag(cache.TypeSummaries, cache.IDLast),
		}
	},
}

func progressChanged(t Target) []cache.Tag {
	return join([]cache.Tag{
		tag(cache.TypeProgress, cache.IDList),
		tag(cache.TypeProgress, cache.IDStats),
		skillSummaryTag(t.SkillID),
		skillTag(t.SkillID),
		tag(cache.TypeSkills, cache.IDList),
		tag(cache.TypeSkills, cache.IDStats),
		all(cache.TypeSummaries),
	}, userAggregates)
}

func resourcesChanged(t Target) []cache.Tag {
	return []cache.Tag{
		tag(cache.TypeResources, cache.IDList),
		tag(cache.TypeResources, cache.IDStats),
		skillTag(t.SkillID),
		tag(cache.TypeUser, cache.IDDashboard),
	}
}
