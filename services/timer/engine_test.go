package timer

import (
	workout_constants "Sweatmate/constants/workout"
	redis_models "Sweatmate/models/redis"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory SessionStore. Get returns a copy, like the real
// Redis round-trip does, so mutations only stick after Save.
type fakeStore struct {
	mu       sync.Mutex
	locks    sync.Map
	sessions map[string]redis_models.WorkoutSession
	active   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]redis_models.WorkoutSession),
		active:   make(map[string]bool),
	}
}

func (f *fakeStore) GetWorkoutSession(sessionId string) (*redis_models.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok {
		return nil, errors.New("session does not exist")
	}
	cp := s
	return &cp, nil
}

func (f *fakeStore) SaveWorkoutSession(session *redis_models.WorkoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeStore) ActiveSessionIDs() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.active))
	for id := range f.active {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) RemoveActiveSession(sessionId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, sessionId)
	return nil
}

func (f *fakeStore) LockSession(sessionId string) func() {
	v, _ := f.locks.LoadOrStore(sessionId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (f *fakeStore) addActive(session *redis_models.WorkoutSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = *session
	f.active[session.ID] = true
}

type publishedEvent struct {
	channel string
	name    string
	payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(channelKey, eventName string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{channelKey, eventName, payload})
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeCompleter struct {
	mu        sync.Mutex
	completed []string
}

func (f *fakeCompleter) CompleteLobby(lobbyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, lobbyID)
	return nil
}

func workoutWith(exercises int) json.RawMessage {
	payload := map[string]interface{}{"exercises": make([]map[string]string, exercises)}
	raw, _ := json.Marshal(payload)
	return raw
}

func testEngine() (*Engine, *fakeStore, *fakePublisher, *fakeCompleter) {
	store := newFakeStore()
	pub := &fakePublisher{}
	completer := &fakeCompleter{}
	engine := NewEngine(store, pub, completer, workout_constants.DefaultTimerConfig())
	return engine, store, pub, completer
}

func runningSession(id string, exercises int) *redis_models.WorkoutSession {
	return &redis_models.WorkoutSession{
		ID:            id,
		InitiatorID:   "user1",
		Status:        redis_models.SessionRunning,
		Phase:         redis_models.PhasePrepare,
		TimeRemaining: workout_constants.PrepareSeconds,
		CurrentRound:  1,
		StartedAt:     time.Now(),
		WorkoutData:   workoutWith(exercises),
	}
}

func tick(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.TickAll()
	}
}

func TestTickDecrementsOneSecond(t *testing.T) {
	engine, store, pub, _ := testEngine()
	store.addActive(runningSession("abc123", 2))

	engine.TickAll()

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, workout_constants.PrepareSeconds-1, got.TimeRemaining)
	assert.Equal(t, redis_models.PhasePrepare, got.Phase)
	assert.Equal(t, 1, pub.count(), "every tick broadcasts a snapshot")
}

func TestPrepareTransitionsToWork(t *testing.T) {
	engine, store, _, _ := testEngine()
	store.addActive(runningSession("abc123", 2))

	tick(engine, workout_constants.PrepareSeconds)

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.PhaseWork, got.Phase)
	assert.Equal(t, workout_constants.WorkSeconds, got.TimeRemaining)
	assert.Equal(t, 0, got.CurrentSet)
	assert.Equal(t, 0, got.CurrentExercise)
}

func TestWorkTransitionsToShortRest(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 2)
	session.Phase = redis_models.PhaseWork
	session.TimeRemaining = 1
	store.addActive(session)

	engine.TickAll()

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.PhaseRest, got.Phase)
	assert.Equal(t, workout_constants.ShortRestSeconds, got.TimeRemaining)
	assert.Equal(t, 1, got.CurrentSet)
	assert.Equal(t, 0, got.CurrentExercise)
	assert.Equal(t, workout_constants.CaloriesPerSet, got.CaloriesBurned)
}

func TestLastSetTransitionsToLongRest(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 2)
	session.Phase = redis_models.PhaseWork
	session.CurrentSet = workout_constants.SetsPerExercise - 1
	session.TimeRemaining = 1
	store.addActive(session)

	engine.TickAll()

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.PhaseRest, got.Phase)
	assert.Equal(t, workout_constants.LongRestSeconds, got.TimeRemaining)
	assert.Equal(t, 0, got.CurrentSet, "set counter resets for the next exercise")
	assert.Equal(t, 1, got.CurrentExercise)
	assert.Equal(t, 2, got.CurrentRound)
}

func TestRestTransitionsBackToWork(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 2)
	session.Phase = redis_models.PhaseRest
	session.CurrentSet = 1
	session.TimeRemaining = 1
	store.addActive(session)

	engine.TickAll()

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.PhaseWork, got.Phase)
	assert.Equal(t, workout_constants.WorkSeconds, got.TimeRemaining)
}

func TestLastWorkPhaseCompletesSession(t *testing.T) {
	engine, store, _, completer := testEngine()
	session := runningSession("abc123", 2)
	session.Phase = redis_models.PhaseWork
	session.CurrentExercise = 1 // last exercise
	session.CurrentSet = workout_constants.SetsPerExercise - 1
	session.TimeRemaining = 1
	store.addActive(session)

	engine.TickAll()

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.SessionCompleted, got.Status)
	assert.Equal(t, redis_models.PhaseComplete, got.Phase)
	assert.Equal(t, 0, got.TimeRemaining)
	assert.False(t, store.active["abc123"], "finished session leaves the active set")
	assert.Equal(t, []string{"abc123"}, completer.completed)
}

func TestCompletedSessionNeverMutatesAgain(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 1)
	session.Status = redis_models.SessionCompleted
	session.Phase = redis_models.PhaseComplete
	session.TimeRemaining = 0
	store.addActive(session)

	tick(engine, 3)

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.SessionCompleted, got.Status)
	assert.Equal(t, 0, got.TimeRemaining)
	assert.False(t, store.active["abc123"])
}

func TestPausedSessionIsSkipped(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 2)
	session.Status = redis_models.SessionPaused
	session.TimeRemaining = 7
	store.addActive(session)

	tick(engine, 5)

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, 7, got.TimeRemaining, "paused sessions do not count down")
	assert.True(t, store.active["abc123"], "paused sessions stay in the active set")
}

func TestTickAtZeroDoesNotGoNegative(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 2)
	session.TimeRemaining = 0
	store.addActive(session)

	engine.TickAll()

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, 0, got.TimeRemaining)
	assert.Equal(t, redis_models.PhasePrepare, got.Phase, "no transition fires from the guard path")
}

func TestMalformedWorkoutStopsOnlyThatSession(t *testing.T) {
	engine, store, _, _ := testEngine()
	broken := runningSession("broken", 2)
	broken.WorkoutData = json.RawMessage(`{"exercises": "not an array"`)
	broken.TimeRemaining = 1
	store.addActive(broken)

	healthy := runningSession("healthy", 2)
	healthy.TimeRemaining = 5
	store.addActive(healthy)

	engine.TickAll()

	gotBroken, _ := store.GetWorkoutSession("broken")
	assert.Equal(t, redis_models.SessionStopped, gotBroken.Status)
	assert.False(t, store.active["broken"])

	gotHealthy, _ := store.GetWorkoutSession("healthy")
	assert.Equal(t, redis_models.SessionRunning, gotHealthy.Status)
	assert.Equal(t, 4, gotHealthy.TimeRemaining, "healthy session keeps ticking")
}

func TestOrphanedActiveIDIsHealed(t *testing.T) {
	engine, store, _, _ := testEngine()
	store.mu.Lock()
	store.active["ghost"] = true
	store.mu.Unlock()

	engine.TickAll()

	assert.False(t, store.active["ghost"], "unreadable record is dropped from the active set")
}

func TestBroadcastEveryTick(t *testing.T) {
	engine, store, pub, _ := testEngine()
	store.addActive(runningSession("abc123", 2))

	tick(engine, 4)

	assert.Equal(t, 4, pub.count())
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, "abc123", last.channel)
	snap, ok := last.payload.(redis_models.SessionSnapshot)
	assert.True(t, ok)
	assert.Equal(t, workout_constants.PrepareSeconds-4, snap.TimeRemaining)
}

func TestTickWaitsForSessionLock(t *testing.T) {
	engine, store, _, _ := testEngine()
	session := runningSession("abc123", 2)
	session.TimeRemaining = 5
	store.addActive(session)

	// Another writer holds the session lock, as the lobby registry does
	// while stopping the session of a closed lobby
	unlock := store.LockSession("abc123")

	done := make(chan struct{})
	go func() {
		engine.TickAll()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("tick ran while another writer held the session lock")
	case <-time.After(50 * time.Millisecond):
	}

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, 5, got.TimeRemaining, "no decrement before the lock is released")

	unlock()
	<-done

	got, _ = store.GetWorkoutSession("abc123")
	assert.Equal(t, 4, got.TimeRemaining)
}

func TestFullWorkoutRunsToCompletion(t *testing.T) {
	engine, store, _, completer := testEngine()
	cfg := workout_constants.TimerConfig{
		PrepareSeconds:   2,
		WorkSeconds:      3,
		ShortRestSeconds: 1,
		LongRestSeconds:  2,
		SetsPerExercise:  2,
		CaloriesPerSet:   5,
		TickInterval:     time.Second,
	}
	engine.cfg = cfg

	session := runningSession("abc123", 2)
	session.TimeRemaining = cfg.PrepareSeconds
	store.addActive(session)

	// 2 exercises x 2 sets, with prepare and all rests in between. Generous
	// upper bound; completion deactivates the session so extra ticks no-op.
	tick(engine, 60)

	got, _ := store.GetWorkoutSession("abc123")
	assert.Equal(t, redis_models.SessionCompleted, got.Status)
	assert.Equal(t, redis_models.PhaseComplete, got.Phase)
	assert.Equal(t, 4*cfg.CaloriesPerSet, got.CaloriesBurned, "every completed set burns calories")
	assert.Equal(t, 1, got.CurrentExercise)
	assert.Equal(t, 2, got.CurrentRound)
	assert.Equal(t, []string{"abc123"}, completer.completed)
}
