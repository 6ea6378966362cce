package models

// ResourceType — вид учебного материала.
type ResourceType string

const (
	ResourceArticle       ResourceType = "article"
	ResourceVideo         ResourceType = "video"
	ResourceBook          ResourceType = "book"
	ResourceCourse        ResourceType = "course"
	ResourceDocumentation ResourceType = "documentation"
	ResourceOther         ResourceType = "other"
)

type Resource struct {
	ID           int64        `json:"id"`
	SkillID      int64        `json:"skill_id"`
	SkillName    *string      `json:"skill_name"`
	Title        string       `json:"title"`
	URL          *string      `json:"url"`
	ResourceType ResourceType `json:"resource_type"`
	Description  *string      `json:"description"`
	IsCompleted  bool         `json:"is_completed"`
	CreatedAt    Timestamp    `json:"created_at"`
}

type ResourceCreate struct {
	SkillID      int64        `json:"skill_id" validate:"required,gt=0"`
	Title        string       `json:"title" validate:"required,min=2,max=200,notblank"`
	URL          *string      `json:"url,omitempty" validate:"omitempty,max=500,url"`
	ResourceType ResourceType `json:"resource_type" validate:"required,oneof=article video book course documentation other"`
	Description  *string      `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type ResourceUpdate struct {
	Title        *string       `json:"title,omitempty" validate:"omitempty,min=2,max=200,notblank"`
	URL          *string       `json:"url,omitempty" validate:"omitempty,max=500,url"`
	ResourceType *ResourceType `json:"resource_type,omitempty" validate:"omitempty,oneof=article video book course documentation other"`
	Description  *string       `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsCompleted  *bool         `json:"is_completed,omitempty"`
}

type ResourceList struct {
	Resources  []Resource `json:"resources"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// ResourceListParams — фильтры GET /resources/. Completed == nil — без фильтра.
type ResourceListParams struct {
	SkillID      int64        `validate:"omitempty,gt=0"`
	ResourceType ResourceType `validate:"omitempty,oneof=article video book course documentation other"`
	Completed    *bool
	Page         int `validate:"omitempty,min=1"`
	PageSize     int `validate:"omitempty,min=1,max=100"`
}

// ResourceStats — статистика материалов. CompletionRate в процентах.
type ResourceStats struct {
	TotalResources     int            `json:"total_resources"`
	CompletedResources int            `json:"completed_resources"`
	ByType             map[string]int `json:"by_type"`
	CompletionRate     float64        `json:"completion_rate"`
}
