package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDynamicWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	d := LoadDynamic(path)
	assert.Equal(t, "Asia/Seoul", d.Timezone)
	assert.Len(t, d.NotificationTimes, 6)
	assert.False(t, d.TestMode)

	_, err := os.Stat(path)
	assert.NoError(t, err, "defaults should be persisted")
}

func TestDynamicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	d := Dynamic{
		NotificationTimes: []string{"21:00", "09:00", "09:00", "bogus"},
		Timezone:          "Europe/Berlin",
		TestMode:          true,
	}
	require.NoError(t, SaveDynamic(path, d))

	got := LoadDynamic(path)
	assert.Equal(t, []string{"09:00", "21:00"}, got.NotificationTimes, "sorted, deduped, validated")
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.True(t, got.TestMode)
}

func TestLoadDynamicBrokenFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))
	d := LoadDynamic(path)
	assert.Equal(t, DefaultDynamic().Timezone, d.Timezone)
}

func TestAddRemoveTime(t *testing.T) {
	d := Dynamic{NotificationTimes: []string{"09:00"}}
	require.NoError(t, d.AddTime("14:30"))
	assert.Equal(t, []string{"09:00", "14:30"}, d.NotificationTimes)

	require.NoError(t, d.AddTime("14:30"), "duplicate add is a no-op")
	assert.Len(t, d.NotificationTimes, 2)

	assert.Error(t, d.AddTime("25:00"))
	assert.Error(t, d.AddTime("lunch"))

	d.RemoveTime("09:00")
	assert.Equal(t, []string{"14:30"}, d.NotificationTimes)
	d.RemoveTime("09:00") // absent: no-op
	assert.Len(t, d.NotificationTimes, 1)
}

func TestTimesParsesEntries(t *testing.T) {
	d := Dynamic{NotificationTimes: []string{"09:00", "21:30"}}
	times := d.Times()
	require.Len(t, times, 2)
	assert.Equal(t, 9, times[0].Hour)
	assert.Equal(t, 30, times[1].Minute)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, "UTC", Dynamic{Timezone: "Not/AZone"}.Location().String())
	assert.Equal(t, "Asia/Seoul", DefaultDynamic().Location().String())
}

func TestLoadStaticRequiresCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	_, err := LoadStatic()
	assert.ErrorIs(t, err, ErrInvalid)

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	s, err := LoadStatic()
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.ChatID)
	assert.Equal(t, "./config.yml", s.ConfigPath)

	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err = LoadStatic()
	assert.ErrorIs(t, err, ErrInvalid)
}
