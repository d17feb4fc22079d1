// Package config holds the two configuration layers: static settings from
// the environment (credentials, paths) and dynamic settings from config.yml
// (notification times, timezone, test mode). Dynamic settings are reloaded
// per cycle and passed down explicitly; nothing reads them ambiently.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"schedbot/internal/task"
)

var ErrInvalid = errors.New("invalid")

// Static is the immutable startup configuration. Token and ChatID are
// required; the process refuses to start without them.
type Static struct {
	Token      string
	ChatID     int64
	VaultPath  string // git repository root of the vault
	TodoPath   string // directory scanned for task files
	ConfigPath string // location of config.yml
}

// LoadStatic reads .env if present, then the environment. A missing .env is
// fine; missing credentials are not.
func LoadStatic() (Static, error) {
	_ = godotenv.Load()

	s := Static{
		Token:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		VaultPath:  envOr("OBSIDIAN_PATH", "./obsidian"),
		TodoPath:   envOr("TODO_LISTS_PATH", "./obsidian/Todo Lists"),
		ConfigPath: envOr("CONFIG_PATH", "./config.yml"),
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Static{}, fmt.Errorf("%w: TELEGRAM_CHAT_ID: %v", ErrInvalid, err)
		}
		s.ChatID = id
	}
	if s.Token == "" || s.ChatID == 0 {
		return Static{}, fmt.Errorf("%w: TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required", ErrInvalid)
	}
	return s, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Dynamic is the user-editable notification configuration. One snapshot is
// loaded per cycle and used unchanged for the whole cycle.
type Dynamic struct {
	NotificationTimes []string `yaml:"notification_times"`
	Timezone          string   `yaml:"timezone"`
	TestMode          bool     `yaml:"test_mode"`
}

func DefaultDynamic() Dynamic {
	return Dynamic{
		NotificationTimes: []string{"09:00", "12:00", "15:00", "18:00", "21:00", "00:00"},
		Timezone:          "Asia/Seoul",
	}
}

// LoadDynamic reads config.yml, writing the defaults on first run. A broken
// file falls back to defaults rather than failing the cycle.
func LoadDynamic(path string) Dynamic {
	b, err := os.ReadFile(path)
	if err != nil {
		def := DefaultDynamic()
		_ = SaveDynamic(path, def)
		return def
	}
	var d Dynamic
	if err := yaml.Unmarshal(b, &d); err != nil {
		return DefaultDynamic()
	}
	if d.Timezone == "" {
		d.Timezone = DefaultDynamic().Timezone
	}
	d.NotificationTimes = normalizeTimes(d.NotificationTimes)
	return d
}

func SaveDynamic(path string, d Dynamic) error {
	d.NotificationTimes = normalizeTimes(d.NotificationTimes)
	b, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, b, 0o644)
}

// Location resolves the configured timezone, falling back to UTC when the
// name does not load.
func (d Dynamic) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Times returns the notification times parsed and validated; malformed
// entries are dropped.
func (d Dynamic) Times() []task.TimeOfDay {
	out := make([]task.TimeOfDay, 0, len(d.NotificationTimes))
	for _, s := range d.NotificationTimes {
		if t, ok := task.ParseTimeOfDay(s); ok {
			out = append(out, t)
		}
	}
	return out
}

// AddTime inserts an HH:MM entry, keeping the set unique and sorted.
func (d *Dynamic) AddTime(s string) error {
	t, ok := task.ParseTimeOfDay(s)
	if !ok {
		return fmt.Errorf("%w: time %q", ErrInvalid, s)
	}
	d.NotificationTimes = normalizeTimes(append(d.NotificationTimes, t.String()))
	return nil
}

// RemoveTime drops an entry; removing an absent time is a no-op.
func (d *Dynamic) RemoveTime(s string) {
	t, ok := task.ParseTimeOfDay(s)
	if !ok {
		return
	}
	want := t.String()
	out := d.NotificationTimes[:0]
	for _, v := range d.NotificationTimes {
		if v != want {
			out = append(out, v)
		}
	}
	d.NotificationTimes = out
}

func normalizeTimes(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		t, ok := task.ParseTimeOfDay(s)
		if !ok {
			continue
		}
		key := t.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
