package workout_constants

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Timer policy defaults. These numbers are behavioral contract with the
// mobile clients, not tuning knobs: changing WorkSeconds changes every
// displayed countdown. Override via WORKOUT_* env vars only for testing.
const (
	PrepareSeconds   = 10
	WorkSeconds      = 20
	ShortRestSeconds = 10
	LongRestSeconds  = 60
	SetsPerExercise  = 8
	CaloriesPerSet   = 5

	TickInterval = time.Second

	MinMembersToStart = 2

	LobbyTTL      = 30 * time.Minute
	InvitationTTL = 10 * time.Minute
)

// TimerConfig carries the resolved policy values. A single instance is built
// at startup and handed to the timer engine and the lobby registry.
type TimerConfig struct {
	PrepareSeconds    int
	WorkSeconds       int
	ShortRestSeconds  int
	LongRestSeconds   int
	SetsPerExercise   int
	CaloriesPerSet    int
	TickInterval      time.Duration
	MinMembersToStart int
	LobbyTTL          time.Duration
	InvitationTTL     time.Duration
}

// DefaultTimerConfig returns the stock policy values.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		PrepareSeconds:    PrepareSeconds,
		WorkSeconds:       WorkSeconds,
		ShortRestSeconds:  ShortRestSeconds,
		LongRestSeconds:   LongRestSeconds,
		SetsPerExercise:   SetsPerExercise,
		CaloriesPerSet:    CaloriesPerSet,
		TickInterval:      TickInterval,
		MinMembersToStart: MinMembersToStart,
		LobbyTTL:          LobbyTTL,
		InvitationTTL:     InvitationTTL,
	}
}

// LoadTimerConfig reads WORKOUT_* overrides from the environment on top of
// the defaults. Bad values are logged and ignored.
func LoadTimerConfig() TimerConfig {
	cfg := DefaultTimerConfig()
	cfg.PrepareSeconds = envInt("WORKOUT_PREPARE_SECONDS", cfg.PrepareSeconds)
	cfg.WorkSeconds = envInt("WORKOUT_WORK_SECONDS", cfg.WorkSeconds)
	cfg.ShortRestSeconds = envInt("WORKOUT_SHORT_REST_SECONDS", cfg.ShortRestSeconds)
	cfg.LongRestSeconds = envInt("WORKOUT_LONG_REST_SECONDS", cfg.LongRestSeconds)
	cfg.SetsPerExercise = envInt("WORKOUT_SETS_PER_EXERCISE", cfg.SetsPerExercise)
	cfg.CaloriesPerSet = envInt("WORKOUT_CALORIES_PER_SET", cfg.CaloriesPerSet)
	cfg.MinMembersToStart = envInt("WORKOUT_MIN_MEMBERS", cfg.MinMembersToStart)
	cfg.LobbyTTL = envDuration("WORKOUT_LOBBY_TTL", cfg.LobbyTTL)
	cfg.InvitationTTL = envDuration("WORKOUT_INVITATION_TTL", cfg.InvitationTTL)
	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("[CONFIG] Ignoring invalid %s=%q", key, raw)
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("[CONFIG] Ignoring invalid %s=%q", key, raw)
		return fallback
	}
	return v
}
