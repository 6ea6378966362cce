package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/skilltrack/internal/models"
	"github.com/pribylovaa/skilltrack/internal/session"
	"github.com/pribylovaa/skilltrack/pkg/log"
	"github.com/pribylovaa/skilltrack/pkg/redact"
)

func runRegister(ctx context.Context, a *App, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	fullName := fs.String("full-name", "", "full name")
	if err := parse(fs, args); err != nil {
		return err
	}

	auth, err := a.api.Register(ctx, models.RegisterRequest{
		Email:    *email,
		Username: *username,
		Password: *password,
		FullName: optString(*fullName),
	})
	if err != nil {
		return err
	}

	log.From(ctx).Info("registered", "email", redact.Email(auth.User.Email))

	return a.out.message("registered as %s", auth.User.Username)
}

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	auth, err := a.api.Login(ctx, models.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}

	log.From(ctx).Info("logged_in", "email", redact.Email(auth.User.Email))

	return a.out.message("logged in as %s", auth.User.Username)
}

func runLogout(ctx context.Context, a *App, _ []string) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}

	return a.out.message("logged out")
}

type statusView struct {
	LoggedIn     bool      `json:"logged_in"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Subject      string    `json:"subject,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Expired      bool      `json:"expired"`
}

// runStatus показывает состояние локальной сессии без обращения к серверу.
func runStatus(ctx context.Context, a *App, _ []string) error {
	creds, err := a.store.Get(ctx)
	if err != nil {
		return err
	}

	v := statusView{
		LoggedIn:     creds.Valid(),
		AccessToken:  redact.Presence(creds.AccessToken),
		RefreshToken: redact.Presence(creds.RefreshToken),
	}
	if creds.Valid() {
		if c, err := session.Inspect(creds.AccessToken); err == nil {
			v.Subject = c.Subject
			v.ExpiresAt = c.ExpiresAt
			v.Expired = c.Expired(time.Now())
		}
	}

	expires := "-"
	if !v.ExpiresAt.IsZero() {
		expires = v.ExpiresAt.Local().Format(time.DateTime)
	}

	return a.out.fields(v, [][2]string{
		{"logged in", fmt.Sprint(v.LoggedIn)},
		{"access token", v.AccessToken},
		{"refresh token", v.RefreshToken},
		{"user id", orDash(v.Subject)},
		{"access expires", expires},
		{"access expired", fmt.Sprint(v.Expired)},
	})
}

func runMe(ctx context.Context, a *App, _ []string) error {
	u, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}

	return a.out.fields(u, [][2]string{
		{"id", itoa(u.ID)},
		{"username", u.Username},
		{"email", u.Email},
		{"full name", deref(u.FullName)},
		{"verified", fmt.Sprint(u.IsVerified)},
		{"member since", date(u.CreatedAt)},
	})
}

func runDashboard(ctx context.Context, a *App, _ []string) error {
	d, err := a.api.Dashboard(ctx)
	if err != nil {
		return err
	}

	return a.out.fields(d, [][2]string{
		{"user", d.Profile.Username},
		{"skills", fmt.Sprintf("%d (%d active)", d.TotalSkills, d.ActiveSkills)},
		{"progress logs", fmt.Sprint(d.TotalProgressLogs)},
		{"learning time", models.FormatMinutes(d.TotalLearningTime)},
		{"current streak", fmt.Sprintf("%d days", d.CurrentStreak)},
		{"resources", fmt.Sprintf("%d/%d completed (%d%%)", d.CompletedResources, d.TotalResources,
			models.CompletionRate(d.CompletedResources, d.TotalResources))},
	})
}

func runQuickStats(ctx context.Context, a *App, _ []string) error {
	s, err := a.api.QuickStats(ctx)
	if err != nil {
		return err
	}

	return a.out.fields(s, [][2]string{
		{"skills", fmt.Sprintf("%d (%d active)", s.TotalSkills, s.ActiveSkills)},
		{"today", models.FormatMinutes(s.TodayTime)},
		{"this week", models.FormatMinutes(s.ThisWeekTime)},
		{"total", models.FormatMinutes(s.TotalLearningTime)},
		{"current streak", fmt.Sprintf("%d days", s.CurrentStreak)},
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
