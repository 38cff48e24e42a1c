package redis

import (
	"encoding/json"
	"errors"
	"time"
)

// SessionStatus represents the lifecycle of a running workout session.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionStopped   SessionStatus = "stopped"
)

// SessionPhase is one stage of the workout state machine.
type SessionPhase string

const (
	PhasePrepare  SessionPhase = "prepare"
	PhaseWork     SessionPhase = "work"
	PhaseRest     SessionPhase = "rest"
	PhaseComplete SessionPhase = "complete"
)

// WorkoutSession is the live timer state of a started lobby. It lives in
// Redis for the duration of the workout; the tick loop is its only writer
// while status=running. Zero time values on the pause bookkeeping fields
// mean "not set".
type WorkoutSession struct {
	ID                 string          `json:"session_id"` // Matches workout_lobbies.id
	InitiatorID        string          `json:"initiator_id"`
	Status             SessionStatus   `json:"status"`
	Phase              SessionPhase    `json:"phase"`
	TimeRemaining      int             `json:"time_remaining"` // Integer seconds, server-authoritative
	CurrentExercise    int             `json:"current_exercise"`
	CurrentSet         int             `json:"current_set"`
	CurrentRound       int             `json:"current_round"`
	CaloriesBurned     int             `json:"calories_burned"`
	StartedAt          time.Time       `json:"started_at"`
	PausedAt           time.Time       `json:"paused_at"`
	ResumedAt          time.Time       `json:"resumed_at"`
	TotalPauseDuration int64           `json:"total_pause_duration"` // Seconds
	WorkoutData        json.RawMessage `json:"workout_data"`         // Frozen copy of the payload at start time
}

// workoutEnvelope is the only part of the opaque payload the core reads.
type workoutEnvelope struct {
	Exercises []json.RawMessage `json:"exercises"`
}

// ErrMalformedWorkout signals that the frozen payload cannot provide an
// exercise count, which is fatal for the session's state machine.
var ErrMalformedWorkout = errors.New("workout payload is missing or malformed")

// ExerciseCount returns the number of exercises in the frozen workout
// payload. The payload is otherwise opaque to the core.
func (s *WorkoutSession) ExerciseCount() (int, error) {
	if len(s.WorkoutData) == 0 {
		return 0, ErrMalformedWorkout
	}
	var env workoutEnvelope
	if err := json.Unmarshal(s.WorkoutData, &env); err != nil {
		return 0, ErrMalformedWorkout
	}
	if len(env.Exercises) == 0 {
		return 0, ErrMalformedWorkout
	}
	return len(env.Exercises), nil
}

// IsTerminal reports whether the session will never tick again.
func (s *WorkoutSession) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionStopped
}

// SessionSnapshot is the full state broadcast to the session's channel on
// every tick. Re-sent each second as the countdown heartbeat.
type SessionSnapshot struct {
	SessionID       string        `json:"session_id"`
	Status          SessionStatus `json:"status"`
	TimeRemaining   int           `json:"time_remaining"`
	Phase           SessionPhase  `json:"phase"`
	CurrentExercise int           `json:"current_exercise"`
	CurrentSet      int           `json:"current_set"`
	CurrentRound    int           `json:"current_round"`
	CaloriesBurned  int           `json:"calories_burned"`
}

// Snapshot builds the broadcast view of the session.
func (s *WorkoutSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		SessionID:       s.ID,
		Status:          s.Status,
		TimeRemaining:   s.TimeRemaining,
		Phase:           s.Phase,
		CurrentExercise: s.CurrentExercise,
		CurrentSet:      s.CurrentSet,
		CurrentRound:    s.CurrentRound,
		CaloriesBurned:  s.CaloriesBurned,
	}
}
