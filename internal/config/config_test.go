package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHATWORK_API_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.chatwork.com/v2", cfg.ChatworkBaseURL)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, time.Second, cfg.SendInterval)
	assert.Equal(t, "0 0 * * *", cfg.GreetingSchedule)
	assert.Equal(t, RosterTrust, cfg.RosterFailurePolicy)
	assert.True(t, cfg.SerializeRooms)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}

func TestLoad_RoomsAndLogNames(t *testing.T) {
	t.Setenv("CHATWORK_API_TOKEN", "token")
	t.Setenv("ROOM_IDS", "100,200")
	t.Setenv("ROOM_LOG_NAMES", "100:main-log,200:sub-log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "200"}, cfg.RoomIDs)
	assert.Equal(t, "main-log", cfg.LogName("100"))
	assert.Equal(t, "sub-log", cfg.LogName("200"))
	assert.Equal(t, "300", cfg.LogName("300"))
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{}},
		{"bad timezone", map[string]string{"CHATWORK_API_TOKEN": "x", "TIMEZONE": "Mars/Olympus"}},
		{"bad policy", map[string]string{"CHATWORK_API_TOKEN": "x", "ROSTER_FAILURE_POLICY": "maybe"}},
		{"bad level", map[string]string{"CHATWORK_API_TOKEN": "x", "LOG_LEVEL": "loud"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CHATWORK_API_TOKEN", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
