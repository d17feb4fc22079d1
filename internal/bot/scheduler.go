package bot

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"schedbot/internal/config"
	"schedbot/internal/task"
)

// cronSpec maps a notification time onto a daily cron entry.
func cronSpec(t task.TimeOfDay) string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

// restartScheduler rebuilds the cron from the current config snapshot. Test
// mode replaces the configured times with a one-minute interval.
func (b *Bot) restartScheduler() {
	if b.cron != nil {
		b.cron.Stop()
	}
	d := config.LoadDynamic(b.static.ConfigPath)
	c := cron.New(cron.WithLocation(d.Location()))

	if d.TestMode {
		if _, err := c.AddFunc("@every 1m", b.notify); err != nil {
			log.Errorf("schedule test tick: %v", err)
		}
		log.Info("TEST MODE: notification every 1 minute")
	} else {
		for _, t := range d.Times() {
			spec := cronSpec(t)
			if _, err := c.AddFunc(spec, b.notify); err != nil {
				log.WithField("spec", spec).Errorf("schedule: %v", err)
				continue
			}
			log.WithField("time", t.String()).Info("scheduled")
		}
	}
	c.Start()
	b.cron = c
}

// notify is the timer trigger: build the daily view and deliver it to the
// configured chat.
func (b *Bot) notify() {
	log.Info("sending scheduled notification")
	b.send(b.static.ChatID, b.buildView(viewToday), mainKeyboard())
}
