// Package cli is the command front end: `schedbot` with no command runs the
// Telegram bot, while today/week/all render a view to stdout for local
// preview without credentials.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"schedbot/internal/bot"
	"schedbot/internal/config"
	"schedbot/internal/query"
	"schedbot/internal/render"
	"schedbot/internal/repo"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitInternal = 10
)

type GlobalFlags struct {
	Todo string // task directory override
	TZ   string // timezone override
}

func Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitUsage
	}

	cmd := "serve"
	if len(rest) > 0 {
		cmd = rest[0]
	}

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return ExitOK
	case "serve":
		return cmdServe()
	case "today", "week", "all":
		return cmdView(cmd, gf)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		return ExitUsage
	}
}

func cmdServe() int {
	if v := os.Getenv("DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		log.SetLevel(log.DebugLevel)
	}
	static, err := config.LoadStatic()
	if err != nil {
		log.Errorf("config: %v", err)
		return ExitInternal
	}
	b, err := bot.New(static)
	if err != nil {
		log.Errorf("telegram: %v", err)
		return ExitInternal
	}
	if err := b.Run(); err != nil {
		log.Errorf("bot: %v", err)
		return ExitInternal
	}
	return ExitOK
}

func cmdView(cmd string, gf GlobalFlags) int {
	todo := gf.Todo
	if todo == "" {
		todo = os.Getenv("TODO_LISTS_PATH")
	}
	if todo == "" {
		todo = "./obsidian/Todo Lists"
	}

	tz := gf.TZ
	if tz == "" {
		tz = config.DefaultDynamic().Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedbot: unknown timezone %q\n", tz)
		return ExitUsage
	}
	now := time.Now().In(loc)

	set := repo.Scan(todo)
	r := render.Renderer{}
	if set.Empty() {
		fmt.Println(r.Nothing())
		return ExitOK
	}

	var out string
	switch cmd {
	case "week":
		out = r.Week(query.Week(set.Incomplete, now, loc), now)
	case "all":
		dated, undated := query.AllPending(set.Incomplete, now, loc)
		out = r.All(dated, undated)
	default:
		overdue := query.Overdue(set.Incomplete, now, loc)
		today := query.Today(set.Incomplete, now, loc)
		out = r.Daily(now, overdue, today)
	}
	fmt.Println(out)
	return ExitOK
}

func printHelp() {
	fmt.Print(`schedbot — Obsidian task notification bot

Usage:
  schedbot [global flags] [command]

Global flags:
  --todo <path>   Task directory (default: TODO_LISTS_PATH or ./obsidian/Todo Lists)
  --tz <name>     Timezone for preview commands (default: config default)

Commands:
  serve           Run the Telegram bot (default; needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)
  today           Print today's schedule with overdue tasks
  week            Print the Monday-Sunday week view
  all             Print every pending task
  help
`)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	gf := GlobalFlags{}
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--todo":
			if i+1 >= len(args) {
				return gf, nil, fmt.Errorf("--todo requires a value")
			}
			i++
			gf.Todo = args[i]
		case strings.HasPrefix(a, "--todo="):
			gf.Todo = strings.TrimPrefix(a, "--todo=")
		case a == "--tz":
			if i+1 >= len(args) {
				return gf, nil, fmt.Errorf("--tz requires a value")
			}
			i++
			gf.TZ = args[i]
		case strings.HasPrefix(a, "--tz="):
			gf.TZ = strings.TrimPrefix(a, "--tz=")
		default:
			out = append(out, a)
		}
	}
	return gf, out, nil
}
