package models

// SkillLevel — уровень владения навыком.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
	LevelExpert       SkillLevel = "expert"
)

// SkillStatus — состояние работы над навыком.
type SkillStatus string

const (
	StatusActive    SkillStatus = "active"
	StatusPaused    SkillStatus = "paused"
	StatusCompleted SkillStatus = "completed"
)

// Skill — навык пользователя. TotalHours, вопреки имени, в минутах.
type Skill struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	Name         string      `json:"name"`
	Description  *string     `json:"description"`
	TargetLevel  SkillLevel  `json:"target_level"`
	CurrentLevel SkillLevel  `json:"current_level"`
	Status       SkillStatus `json:"status"`
	TotalHours   int         `json:"total_hours"`
	CreatedAt    Timestamp   `json:"created_at"`
	UpdatedAt    *Timestamp  `json:"updated_at"`
}

// SkillWithStats — навык с агрегатами (GET /skills/{id}).
type SkillWithStats struct {
	Skill
	ProgressCount int        `json:"progress_count"`
	ResourceCount int        `json:"resource_count"`
	LastPracticed *Timestamp `json:"last_practiced"`
	StreakDays    int        `json:"streak_days"`
}

type SkillCreate struct {
	Name         string     `json:"name" validate:"required,min=2,max=100,notblank"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	TargetLevel  SkillLevel `json:"target_level" validate:"required,oneof=beginner intermediate advanced expert"`
	CurrentLevel SkillLevel `json:"current_level" validate:"required,oneof=beginner intermediate advanced expert"`
}

type SkillUpdate struct {
	Name         *string      `json:"name,omitempty" validate:"omitempty,min=2,max=100,notblank"`
	Description  *string      `json:"description,omitempty" validate:"omitempty,max=500"`
	TargetLevel  *SkillLevel  `json:"target_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	CurrentLevel *SkillLevel  `json:"current_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Status       *SkillStatus `json:"status,omitempty" validate:"omitempty,oneof=active paused completed"`
}

type SkillList struct {
	Skills     []Skill `json:"skills"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

// SkillStats — агрегаты по всем навыкам. TotalLearningTime в минутах.
type SkillStats struct {
	TotalSkills       int `json:"total_skills"`
	ActiveSkills      int `json:"active_skills"`
	PausedSkills      int `json:"paused_skills"`
	CompletedSkills   int `json:"completed_skills"`
	TotalLearningTime int `json:"total_learning_time"`
}

// SkillListParams — фильтры GET /skills/. Нулевые значения не отправляются.
type SkillListParams struct {
	Status       SkillStatus `validate:"omitempty,oneof=active paused completed"`
	CurrentLevel SkillLevel  `validate:"omitempty,oneof=beginner intermediate advanced expert"`
	TargetLevel  SkillLevel  `validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Search       string
	Page         int `validate:"omitempty,min=1"`
	PageSize     int `validate:"omitempty,min=1,max=100"`
}

// BulkSkillUpdate — смена статуса у нескольких навыков сразу.
type BulkSkillUpdate struct {
	SkillIDs []int64     `json:"skill_ids" validate:"required,min=1"`
	Status   SkillStatus `json:"status" validate:"required,oneof=active paused completed"`
}

type BulkSkillUpdateResult struct {
	UpdatedCount int         `json:"updated_count"`
	NewStatus    SkillStatus `json:"new_status"`
}
