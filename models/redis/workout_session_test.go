package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExerciseCount(t *testing.T) {
	session := &WorkoutSession{
		WorkoutData: json.RawMessage(`{"name": "Leg day", "exercises": [{"name": "squats"}, {"name": "lunges"}, {"name": "calf raises"}]}`),
	}

	count, err := session.ExerciseCount()
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestExerciseCountMalformed(t *testing.T) {
	cases := []struct {
		name string
		data json.RawMessage
	}{
		{"empty payload", nil},
		{"invalid json", json.RawMessage(`{"exercises": [`)},
		{"missing exercises", json.RawMessage(`{"name": "Leg day"}`)},
		{"empty exercises", json.RawMessage(`{"exercises": []}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &WorkoutSession{WorkoutData: tc.data}
			_, err := session.ExerciseCount()
			assert.ErrorIs(t, err, ErrMalformedWorkout)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&WorkoutSession{Status: SessionRunning}).IsTerminal())
	assert.False(t, (&WorkoutSession{Status: SessionPaused}).IsTerminal())
	assert.True(t, (&WorkoutSession{Status: SessionCompleted}).IsTerminal())
	assert.True(t, (&WorkoutSession{Status: SessionStopped}).IsTerminal())
}

func TestSnapshotMirrorsSession(t *testing.T) {
	session := &WorkoutSession{
		ID:              "abc123",
		Status:          SessionRunning,
		Phase:           PhaseWork,
		TimeRemaining:   17,
		CurrentExercise: 1,
		CurrentSet:      3,
		CurrentRound:    2,
		CaloriesBurned:  55,
	}

	snap := session.Snapshot()
	assert.Equal(t, "abc123", snap.SessionID)
	assert.Equal(t, SessionRunning, snap.Status)
	assert.Equal(t, PhaseWork, snap.Phase)
	assert.Equal(t, 17, snap.TimeRemaining)
	assert.Equal(t, 1, snap.CurrentExercise)
	assert.Equal(t, 3, snap.CurrentSet)
	assert.Equal(t, 2, snap.CurrentRound)
	assert.Equal(t, 55, snap.CaloriesBurned)
}
