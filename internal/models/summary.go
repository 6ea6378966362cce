package models

// WeeklySummary — недельная сводка. TotalHours, вопреки имени, в минутах.
type WeeklySummary struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	WeekStart      string    `json:"week_start"`
	WeekEnd        string    `json:"week_end"`
	TotalHours     int       `json:"total_hours"`
	SummaryText    *string   `json:"summary_text"`
	SkillsWorkedOn int       `json:"skills_worked_on"`
	CreatedAt      Timestamp `json:"created_at"`
}

type SkillBreakdown struct {
	SkillName  string  `json:"skill_name"`
	TimeSpent  int     `json:"time_spent"`
	Percentage float64 `json:"percentage"`
}

type DayBreakdown struct {
	Date      string `json:"date"`
	TimeSpent int    `json:"time_spent"`
}

// WeeklySummaryDetails — сводка с разбивкой по навыкам и дням.
type WeeklySummaryDetails struct {
	WeeklySummary
	SkillsBreakdown  []SkillBreakdown `json:"skills_breakdown"`
	DailyBreakdown   []DayBreakdown   `json:"daily_breakdown"`
	TopSkill         *string          `json:"top_skill"`
	AverageDailyTime int              `json:"average_daily_time"`
}

type SummaryGenerate struct {
	WeekStart       string `json:"week_start" validate:"required,datetime=2006-01-02"`
	ForceRegenerate bool   `json:"force_regenerate"`
}

type SummaryList struct {
	Summaries  []WeeklySummary `json:"summaries"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// SummaryListParams — фильтры GET /summaries/.
type SummaryListParams struct {
	Year     int `validate:"omitempty,min=2000,max=9999"`
	Month    int `validate:"omitempty,min=1,max=12"`
	Page     int `validate:"omitempty,min=1"`
	PageSize int `validate:"omitempty,min=1,max=100"`
}

type SummaryStats struct {
	TotalSummaries         int     `json:"total_summaries"`
	TotalWeeksTracked      int     `json:"total_weeks_tracked"`
	AverageWeeklyTime      int     `json:"average_weekly_time"`
	MostProductiveWeek     *string `json:"most_productive_week"`
	MostProductiveWeekTime int     `json:"most_productive_week_time"`
}
