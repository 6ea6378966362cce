package models

// User — пользователь, как его отдаёт backend (/auth/me, /users/profile).
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FullName   *string   `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  Timestamp `json:"created_at"`
}

// TokenPair — пара токенов в ответах login/register/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthResponse — ответ login/register.
type AuthResponse struct {
	User    User      `json:"user"`
	Tokens  TokenPair `json:"tokens"`
	Message string    `json:"message"`
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Username string  `json:"username" validate:"required,min=3,max=50,username"`
	Password string  `json:"password" validate:"required,min=8,max=100,password"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest — тело logout. Backend принимает refresh-токен опционально.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,password"`
}

// VerifyTokenResponse — ответ /auth/verify-token.
type VerifyTokenResponse struct {
	Valid    bool   `json:"valid"`
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type UserProfileUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
}

type UserEmailUpdate struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDashboard — сводка для главного экрана. Время в минутах.
type UserDashboard struct {
	Profile            User `json:"profile"`
	TotalSkills        int  `json:"total_skills"`
	ActiveSkills       int  `json:"active_skills"`
	TotalProgressLogs  int  `json:"total_progress_logs"`
	TotalLearningTime  int  `json:"total_learning_time"`
	CurrentStreak      int  `json:"current_streak"`
	TotalResources     int  `json:"total_resources"`
	CompletedResources int  `json:"completed_resources"`
}

// UserQuickStats — короткая статистика (/users/stats). Время в минутах.
type UserQuickStats struct {
	TotalSkills       int `json:"total_skills"`
	ActiveSkills      int `json:"active_skills"`
	TotalLearningTime int `json:"total_learning_time"`
	CurrentStreak     int `json:"current_streak"`
	TodayTime         int `json:"today_time"`
	ThisWeekTime      int `json:"this_week_time"`
}

type DeactivateRequest struct {
	Password string `json:"password" validate:"required"`
}
