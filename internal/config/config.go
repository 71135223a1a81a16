package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
)

// RosterFailurePolicy decides how a room is treated when its roster cannot be fetched.
type RosterFailurePolicy string

const (
	// RosterTrust treats an unavailable roster like a direct chat (sender trusted, no log).
	RosterTrust RosterFailurePolicy = "trust"
	// RosterDistrust treats an unavailable roster as a group chat with a non-admin sender.
	RosterDistrust RosterFailurePolicy = "distrust"
)

type Config struct {
	ChatworkAPIToken string `env:"CHATWORK_API_TOKEN,required,notEmpty"`
	ChatworkBaseURL  string `env:"CHATWORK_BASE_URL" envDefault:"https://api.chatwork.com/v2"`

	// Rooms greeted by the daily task
	RoomIDs []string `env:"ROOM_IDS" envSeparator:","`
	// Per-room label attached to message log rows
	RoomLogNames map[string]string `env:"ROOM_LOG_NAMES" envSeparator:"," envKeyValSeparator:":"`

	// HTTP
	Port          int           `env:"PORT" envDefault:"3000"`
	HandleTimeout time.Duration `env:"HANDLE_TIMEOUT" envDefault:"2m"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"data/chatwork_bot.db"`

	// Scheduling and pacing
	Timezone         string        `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	GreetingSchedule string        `env:"GREETING_SCHEDULE" envDefault:"0 0 * * *"`
	SendInterval     time.Duration `env:"SEND_INTERVAL" envDefault:"1s"`
	RoomInterval     time.Duration `env:"ROOM_INTERVAL" envDefault:"1s"`

	// Rule engine
	SerializeRooms      bool                `env:"SERIALIZE_ROOMS" envDefault:"true"`
	RosterFailurePolicy RosterFailurePolicy `env:"ROSTER_FAILURE_POLICY" envDefault:"trust"`

	// Lookups
	OracleURL      string `env:"ORACLE_URL" envDefault:"https://yesno.wtf/api"`
	WikipediaURL   string `env:"WIKIPEDIA_URL" envDefault:"https://ja.wikipedia.org"`
	ScratchAPIURL  string `env:"SCRATCH_API_URL" envDefault:"https://api.scratch.mit.edu"`
	ScratchSiteURL string `env:"SCRATCH_SITE_URL" envDefault:"https://scratch.mit.edu"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	location *time.Location
	level    logrus.Level
}

// Load parses the environment into a Config and validates derived values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc
	switch cfg.RosterFailurePolicy {
	case RosterTrust, RosterDistrust:
	default:
		return nil, fmt.Errorf("unknown roster failure policy %q", cfg.RosterFailurePolicy)
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.level = lvl
	return cfg, nil
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		logrus.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Location is the time zone used for "today".
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) Level() logrus.Level { return c.level }

// LogName returns the log label configured for a room, or the room id itself.
func (c *Config) LogName(roomID string) string {
	if name, ok := c.RoomLogNames[roomID]; ok && name != "" {
		return name
	}
	return roomID
}
