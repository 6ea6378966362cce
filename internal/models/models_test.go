package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestFormatMinutes(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 0m"},
		{65, "1h 5m"},
		{605, "10h 5m"},
		{-3, "0m"},
	}
	for _, tc := range tcs {
		require.Equal(t, tc.want, FormatMinutes(tc.in), "minutes=%d", tc.in)
	}
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		day  string
		want string
	}{
		{"2024-01-08", "2024-01-08"}, // понедельник
		{"2024-01-10", "2024-01-08"},
		{"2024-01-14", "2024-01-08"}, // воскресенье относится к прошлой неделе
		{"2024-01-01", "2024-01-01"},
		{"2023-12-31", "2023-12-25"},
	}
	for _, tc := range tcs {
		d, err := time.Parse(DateLayout, tc.day)
		require.NoError(t, err)
		require.Equal(t, tc.want, WeekStart(d), tc.day)
	}
}

func TestWeekLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Week of Jan 08, 2024", WeekLabel("2024-01-08"))
	require.Equal(t, "garbage", WeekLabel("garbage"))
}

func TestCompletionRate(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, CompletionRate(3, 0))
	require.Equal(t, 33, CompletionRate(1, 3))
	require.Equal(t, 67, CompletionRate(2, 3))
	require.Equal(t, 100, CompletionRate(4, 4))
}

func TestTimestamp_Unmarshal(t *testing.T) {
	t.Parallel()

	var s Skill
	body := `{"id":1,"user_id":2,"name":"Go","description":null,"target_level":"expert",
		"current_level":"beginner","status":"active","total_hours":90,
		"created_at":"2024-01-08T10:11:12.123456","updated_at":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	require.True(t, time.Date(2024, 1, 8, 10, 11, 12, 123456000, time.UTC).Equal(s.CreatedAt.Time))
	require.Nil(t, s.UpdatedAt)
	require.Nil(t, s.Description)

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-08T10:11:12+03:00"`), &ts))
	require.Equal(t, 7, ts.Hour())

	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	require.Error(t, json.Unmarshal([]byte(`12`), &ts))
}

func TestValidate_Requests(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		in      any
		wantErr string
	}{
		{
			name: "register_ok",
			in:   RegisterRequest{Email: "a@b.io", Username: "jane_doe-1", Password: "Secret123"},
		},
		{
			name:    "register_bad_email",
			in:      RegisterRequest{Email: "nope", Username: "jane", Password: "Secret123"},
			wantErr: "email is invalid",
		},
		{
			name:    "register_short_username",
			in:      RegisterRequest{Email: "a@b.io", Username: "jo", Password: "Secret123"},
			wantErr: "username must be min 3",
		},
		{
			name:    "register_username_symbols",
			in:      RegisterRequest{Email: "a@b.io", Username: "jane doe", Password: "Secret123"},
			wantErr: "username is invalid",
		},
		{
			name:    "register_weak_password",
			in:      RegisterRequest{Email: "a@b.io", Username: "jane", Password: "secretsecret"},
			wantErr: "password must contain a digit and an uppercase letter",
		},
		{
			name:    "login_missing_password",
			in:      LoginRequest{Email: "a@b.io"},
			wantErr: "password is required",
		},
		{
			name:    "skill_blank_name",
			in:      SkillCreate{Name: "   ", TargetLevel: LevelExpert, CurrentLevel: LevelBeginner},
			wantErr: "name is invalid",
		},
		{
			name:    "skill_bad_level",
			in:      SkillCreate{Name: "Go", TargetLevel: "guru", CurrentLevel: LevelBeginner},
			wantErr: "target_level is invalid",
		},
		{
			name: "skill_update_partial_ok",
			in:   SkillUpdate{Description: strptr("more")},
		},
		{
			name:    "progress_zero_time",
			in:      ProgressLogCreate{SkillID: 1, Date: "2024-01-08"},
			wantErr: "time_spent is required",
		},
		{
			name:    "progress_too_long",
			in:      ProgressLogCreate{SkillID: 1, Date: "2024-01-08", TimeSpent: 1441},
			wantErr: "time_spent must be max 1440",
		},
		{
			name:    "progress_bad_date",
			in:      ProgressLogCreate{SkillID: 1, Date: "08.01.2024", TimeSpent: 30},
			wantErr: "date is invalid",
		},
		{
			name:    "resource_bad_url",
			in:      ResourceCreate{SkillID: 1, Title: "Tour", URL: strptr("not a url"), ResourceType: ResourceCourse},
			wantErr: "url is invalid",
		},
		{
			name:    "list_page_size_cap",
			in:      SkillListParams{PageSize: 101},
			wantErr: "pagesize must be max 100",
		},
		{
			name:    "bulk_empty_ids",
			in:      BulkSkillUpdate{Status: StatusPaused},
			wantErr: "skill_ids is required",
		},
		{
			name: "summary_generate_ok",
			in:   SummaryGenerate{WeekStart: "2024-01-08"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate.Struct(tc.in)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, Describe(err), tc.wantErr)
		})
	}
}
