package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/pribylovaa/skilltrack/internal/guard"
	"github.com/pribylovaa/skilltrack/internal/models"
)

var errUsage = errors.New("usage")

type command struct {
	name   string
	args   string
	help   string
	access guard.Access
	run    func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{}

func register(c command) { commands[c.name] = c }

func init() {
	register(command{name: "register", args: "--email --username --password", help: "create an account", access: guard.GuestOnly, run: runRegister})
	register(command{name: "login", args: "--email --password", help: "log in", access: guard.GuestOnly, run: runLogin})
	register(command{name: "logout", help: "log out", access: guard.Public, run: runLogout})
	register(command{name: "status", help: "show session state", access: guard.Public, run: runStatus})
	register(command{name: "me", help: "show current user", access: guard.Protected, run: runMe})
	register(command{name: "dashboard", help: "show dashboard", access: guard.Protected, run: runDashboard})
	register(command{name: "stats", help: "show quick stats", access: guard.Protected, run: runQuickStats})

	register(command{name: "skills list", args: "[--status --search --page]", help: "list skills", access: guard.Protected, run: runSkillsList})
	register(command{name: "skills show", args: "<id>", help: "show a skill", access: guard.Protected, run: runSkillsShow})
	register(command{name: "skills add", args: "--name --target --current", help: "add a skill", access: guard.Protected, run: runSkillsAdd})
	register(command{name: "skills update", args: "<id> [--name --status ...]", help: "update a skill", access: guard.Protected, run: runSkillsUpdate})
	register(command{name: "skills delete", args: "<id>", help: "delete a skill", access: guard.Protected, run: runSkillsDelete})
	register(command{name: "skills stats", help: "skill totals", access: guard.Protected, run: runSkillsStats})

	register(command{name: "progress list", args: "[--skill --from --to]", help: "list progress logs", access: guard.Protected, run: runProgressList})
	register(command{name: "progress log", args: "--skill --minutes [--date]", help: "log practice time", access: guard.Protected, run: runProgressLog})
	register(command{name: "progress delete", args: "<id>", help: "delete a progress log", access: guard.Protected, run: runProgressDelete})
	register(command{name: "progress stats", args: "[--day|--week|--month|--skill]", help: "progress statistics", access: guard.Protected, run: runProgressStats})

	register(command{name: "resources list", args: "[--skill --type --completed]", help: "list resources", access: guard.Protected, run: runResourcesList})
	register(command{name: "resources add", args: "--skill --title --type [--url]", help: "add a resource", access: guard.Protected, run: runResourcesAdd})
	register(command{name: "resources complete", args: "<id> [--undo]", help: "mark a resource completed", access: guard.Protected, run: runResourcesComplete})
	register(command{name: "resources delete", args: "<id>", help: "delete a resource", access: guard.Protected, run: runResourcesDelete})
	register(command{name: "resources stats", help: "resource statistics", access: guard.Protected, run: runResourcesStats})

	register(command{name: "summaries list", args: "[--year --month]", help: "list weekly summaries", access: guard.Protected, run: runSummariesList})
	register(command{name: "summaries show", args: "<id>", help: "show a summary", access: guard.Protected, run: runSummariesShow})
	register(command{name: "summaries current", args: "[--last]", help: "this (or last) week's summary", access: guard.Protected, run: runSummariesCurrent})
	register(command{name: "summaries generate", args: "[--week --force]", help: "generate a weekly summary", access: guard.Protected, run: runSummariesGenerate})
}

// lookup находит команду: сначала из двух слов ("skills list"), затем из одного.
func lookup(args []string) (command, []string, bool) {
	if len(args) >= 2 {
		if c, ok := commands[args[0]+" "+args[1]]; ok {
			return c, args[2:], true
		}
	}
	if len(args) >= 1 {
		if c, ok := commands[args[0]]; ok {
			return c, args[1:], true
		}
	}

	return command{}, nil, false
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.err)

	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}

	return nil
}

// argID читает обязательный позиционный id.
func argID(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() < 1 {
		return 0, fmt.Errorf("%w: %s requires <id>", errUsage, fs.Name())
	}

	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", errUsage, fs.Arg(0))
	}

	return id, nil
}

// parseWithID разбирает флаги и позиционный id в любом порядке.
func parseWithID(fs *flag.FlagSet, args []string) (int64, error) {
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		args = append(append([]string{}, args[1:]...), args[0])
	}
	if err := parse(fs, args); err != nil {
		return 0, err
	}

	return argID(fs)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func date(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}

	return ts.Local().Format(time.DateOnly)
}
