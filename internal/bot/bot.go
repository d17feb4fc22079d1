// Package bot is the Telegram front end: command handlers, inline keyboards
// and the notification scheduler. Triggers are processed strictly one at a
// time; every cycle works from a fresh config snapshot and a fresh scan.
package bot

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"schedbot/internal/config"
	"schedbot/internal/gitsync"
	"schedbot/internal/query"
	"schedbot/internal/render"
	"schedbot/internal/repo"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	static config.Static

	mu       sync.Mutex // serializes cycles across timer and command triggers
	cron     *cron.Cron
	awaiting string // pending settings input, e.g. "add_time"
}

func New(static config.Static) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(static.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, static: static}, nil
}

// Run starts the scheduler and blocks on the update long-poll loop.
func (b *Bot) Run() error {
	log.WithField("account", b.api.Self.UserName).Info("bot running")
	b.restartScheduler()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	for update := range b.api.GetUpdatesChan(u) {
		switch {
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery)
		case update.Message != nil && update.Message.IsCommand():
			b.handleCommand(update.Message)
		case update.Message != nil:
			b.handleText(update.Message)
		}
	}
	return nil
}

func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Refresh", "refresh"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("This Week", "weekly"),
			tgbotapi.NewInlineKeyboardButtonData("All Pending", "all"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Settings", "settings"),
		),
	)
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Toggle Test Mode", "toggle_test"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Add Time", "add_time"),
			tgbotapi.NewInlineKeyboardButtonData("Remove Time", "remove_time"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back", "refresh"),
		),
	)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.send(chatID, "<b>Obsidian Schedule Bot</b>\n\nAutomatic notifications at scheduled times.\nUse the buttons below to check your schedule.", mainKeyboard())
	case "help":
		b.send(chatID, helpText, nil)
	case "today":
		b.send(chatID, b.buildView(viewToday), mainKeyboard())
	case "week":
		b.send(chatID, b.buildView(viewWeek), mainKeyboard())
	case "all":
		b.send(chatID, b.buildView(viewAll), mainKeyboard())
	case "sync":
		if err := gitsync.Pull(context.Background(), b.static.VaultPath); err != nil {
			b.send(chatID, "Sync failed", nil)
			return
		}
		b.send(chatID, "Synced", nil)
	case "settings":
		b.send(chatID, b.settingsText(), settingsKeyboard())
	default:
		b.send(chatID, "Unknown command. /help", nil)
	}
}

const helpText = "<b>Commands</b>\n\n" +
	"/start - start bot\n" +
	"/today - today's schedule\n" +
	"/week - this week\n" +
	"/all - all pending\n" +
	"/settings - bot settings\n" +
	"/sync - sync vault\n" +
	"/help - help"

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		// The originating message can expire on Telegram's side; there
		// is no chat to answer into.
		log.WithField("data", q.Data).Debug("callback without message")
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Errorf("callback ack: %v", err)
	}
	chatID := q.Message.Chat.ID

	switch {
	case q.Data == "refresh":
		b.send(chatID, b.buildView(viewToday), mainKeyboard())
	case q.Data == "weekly":
		b.send(chatID, b.buildView(viewWeek), mainKeyboard())
	case q.Data == "all":
		b.send(chatID, b.buildView(viewAll), mainKeyboard())
	case q.Data == "settings":
		b.send(chatID, b.settingsText(), settingsKeyboard())
	case q.Data == "toggle_test":
		b.editConfig(func(d *config.Dynamic) { d.TestMode = !d.TestMode })
		b.send(chatID, b.settingsText(), settingsKeyboard())
	case q.Data == "add_time":
		b.awaiting = "add_time"
		b.send(chatID, "Send time to add (HH:MM format):\ne.g. <code>14:30</code>", nil)
	case q.Data == "remove_time":
		b.sendRemoveMenu(chatID)
	case strings.HasPrefix(q.Data, "rm_"):
		b.editConfig(func(d *config.Dynamic) { d.RemoveTime(strings.TrimPrefix(q.Data, "rm_")) })
		b.send(chatID, b.settingsText(), settingsKeyboard())
	default:
		b.send(chatID, "Unknown action", mainKeyboard())
	}
}

// handleText consumes plain messages only while a settings prompt is
// pending; everything else is ignored.
func (b *Bot) handleText(msg *tgbotapi.Message) {
	if b.awaiting != "add_time" {
		return
	}
	b.awaiting = ""
	input := strings.TrimSpace(msg.Text)
	var bad bool
	b.editConfig(func(d *config.Dynamic) {
		if err := d.AddTime(input); err != nil {
			bad = true
		}
	})
	if bad {
		b.send(msg.Chat.ID, "Invalid time. Use HH:MM (e.g. 14:30)", nil)
		return
	}
	b.send(msg.Chat.ID, b.settingsText(), settingsKeyboard())
}

func (b *Bot) sendRemoveMenu(chatID int64) {
	d := config.LoadDynamic(b.static.ConfigPath)
	if len(d.NotificationTimes) == 0 {
		b.send(chatID, "No times to remove.", settingsKeyboard())
		return
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(d.NotificationTimes)+1)
	for _, t := range d.NotificationTimes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t, "rm_"+t),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", "settings"),
	))
	b.send(chatID, "Select time to remove:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// editConfig applies fn to a fresh snapshot, persists it and restarts the
// scheduler. Changes take effect on the next trigger.
func (b *Bot) editConfig(fn func(*config.Dynamic)) {
	d := config.LoadDynamic(b.static.ConfigPath)
	fn(&d)
	if err := config.SaveDynamic(b.static.ConfigPath, d); err != nil {
		log.Errorf("save config: %v", err)
		return
	}
	b.restartScheduler()
}

func (b *Bot) settingsText() string {
	d := config.LoadDynamic(b.static.ConfigPath)
	return render.Renderer{HTML: true}.Settings(d.NotificationTimes, d.Timezone, d.TestMode)
}

type viewKind int

const (
	viewToday viewKind = iota
	viewWeek
	viewAll
)

// buildView runs one full query cycle: config snapshot, vault sync, scan,
// query, render. One cycle at a time.
func (b *Bot) buildView(kind viewKind) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	cycle := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	logger := log.WithField("cycle", cycle)

	d := config.LoadDynamic(b.static.ConfigPath)
	loc := d.Location()
	now := time.Now().In(loc)

	if err := gitsync.Pull(context.Background(), b.static.VaultPath); err != nil {
		logger.Warnf("sync before scan: %v", err)
	}
	set := repo.Scan(b.static.TodoPath)
	logger.WithField("tasks", len(set.Incomplete)+len(set.Completed)).Debug("scan done")

	r := render.Renderer{HTML: true}
	if set.Empty() {
		return r.Nothing()
	}

	switch kind {
	case viewWeek:
		return r.Week(query.Week(set.Incomplete, now, loc), now)
	case viewAll:
		dated, undated := query.AllPending(set.Incomplete, now, loc)
		return r.All(dated, undated)
	default:
		overdue := query.Overdue(set.Incomplete, now, loc)
		today := query.Today(set.Incomplete, now, loc)
		return r.Daily(now, overdue, today)
	}
}

func (b *Bot) send(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		// Delivery failure never alters task state; the scheduler will
		// fire again on its own policy.
		log.Errorf("send: %v", err)
	}
}
