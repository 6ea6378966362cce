package models

// ProgressLog — запись о занятии. Date в формате YYYY-MM-DD, TimeSpent в минутах.
type ProgressLog struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	SkillID     int64      `json:"skill_id"`
	SkillName   *string    `json:"skill_name"`
	Date        string     `json:"date"`
	TimeSpent   int        `json:"time_spent"`
	Description *string    `json:"description"`
	Notes       *string    `json:"notes"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at"`
}

type ProgressLogCreate struct {
	SkillID     int64   `json:"skill_id" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSpent   int     `json:"time_spent" validate:"required,gt=0,max=1440"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ProgressLogUpdate struct {
	TimeSpent   *int    `json:"time_spent,omitempty" validate:"omitempty,gt=0,max=1440"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ProgressList struct {
	Logs       []ProgressLog `json:"logs"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// ProgressListParams — фильтры GET /progress/.
type ProgressListParams struct {
	SkillID   int64  `validate:"omitempty,gt=0"`
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
	Page      int    `validate:"omitempty,min=1"`
	PageSize  int    `validate:"omitempty,min=1,max=100"`
}

// ProgressStats — общая статистика занятий. Время в минутах.
type ProgressStats struct {
	TotalLogs     int `json:"total_logs"`
	TotalTime     int `json:"total_time"`
	SkillsTracked int `json:"skills_tracked"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	TodayTime     int `json:"today_time"`
	ThisWeekTime  int `json:"this_week_time"`
	ThisMonthTime int `json:"this_month_time"`
}

type DailyStats struct {
	Date            string `json:"date"`
	TotalTime       int    `json:"total_time"`
	SkillsPracticed int    `json:"skills_practiced"`
	LogCount        int    `json:"log_count"`
}

type WeeklyStats struct {
	WeekStart       string       `json:"week_start"`
	WeekEnd         string       `json:"week_end"`
	TotalTime       int          `json:"total_time"`
	SkillsPracticed int          `json:"skills_practiced"`
	LogCount        int          `json:"log_count"`
	DailyBreakdown  []DailyStats `json:"daily_breakdown"`
}

// MonthlyStats — статистика за месяц; Month в формате YYYY-MM.
type MonthlyStats struct {
	Month           string `json:"month"`
	TotalTime       int    `json:"total_time"`
	SkillsPracticed int    `json:"skills_practiced"`
	LogCount        int    `json:"log_count"`
	ActiveDays      int    `json:"active_days"`
}

type SkillProgressSummary struct {
	SkillID          int64   `json:"skill_id"`
	SkillName        string  `json:"skill_name"`
	TotalTime        int     `json:"total_time"`
	LogCount         int     `json:"log_count"`
	LastPracticed    *string `json:"last_practiced"`
	CurrentStreak    int     `json:"current_streak"`
	AverageDailyTime int     `json:"average_daily_time"`
}
