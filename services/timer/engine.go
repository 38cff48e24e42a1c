package timer

import (
	workout_constants "Sweatmate/constants/workout"
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/broadcast"
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// SessionStore is the persistence surface the engine needs. Implemented by
// services/redis.RedisClient; tests use an in-memory fake.
type SessionStore interface {
	GetWorkoutSession(sessionId string) (*redis_models.WorkoutSession, error)
	SaveWorkoutSession(session *redis_models.WorkoutSession) error
	ActiveSessionIDs() ([]string, error)
	RemoveActiveSession(sessionId string) error
	LockSession(sessionId string) func()
}

// LobbyCompleter flips the lobby row of a session that reached a terminal
// state. Implemented by the lobby registry.
type LobbyCompleter interface {
	CompleteLobby(lobbyID string) error
}

// Engine is the sole writer of time_remaining and phase while a session is
// running. One fixed-rate driver loop enumerates the active sessions every
// second; individual session ticks fan out to goroutines but each session is
// serialized against other writers of the same record through the store's
// per-session lock.
type Engine struct {
	store     SessionStore
	publisher broadcast.Publisher
	completer LobbyCompleter
	cfg       workout_constants.TimerConfig
	now       func() time.Time
}

func NewEngine(store SessionStore, publisher broadcast.Publisher, completer LobbyCompleter,
	cfg workout_constants.TimerConfig) *Engine {
	return &Engine{
		store:     store,
		publisher: publisher,
		completer: completer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run drives the tick loop until the context is cancelled. The sleep is
// computed from actual elapsed time so an overrunning pass continues
// immediately instead of drifting.
func (e *Engine) Run(ctx context.Context) {
	log.Printf("[TICK] Timer engine started, interval %s", e.cfg.TickInterval)
	for {
		started := e.now()
		e.TickAll()
		elapsed := e.now().Sub(started)

		wait := e.cfg.TickInterval - elapsed
		if wait < 0 {
			log.Printf("[TICK-WARN] Tick pass overran the interval by %s", -wait)
			wait = 0
		}

		select {
		case <-ctx.Done():
			log.Println("[TICK] Timer engine stopped")
			return
		case <-time.After(wait):
		}
	}
}

// TickAll runs one tick pass over every active session. Per-session failures
// are logged and isolated; one broken session never stops the others.
func (e *Engine) TickAll() {
	ids, err := e.store.ActiveSessionIDs()
	if err != nil {
		log.Printf("[TICK-ERROR] Could not list active sessions: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			if err := e.tickSession(sessionID); err != nil {
				log.Printf("[TICK-ERROR] Session %s: %v", sessionID, err)
			}
		}(id)
	}
	wg.Wait()
}

// tickSession applies one second to a single session.
func (e *Engine) tickSession(sessionID string) error {
	unlock := e.store.LockSession(sessionID)
	defer unlock()

	session, err := e.store.GetWorkoutSession(sessionID)
	if err != nil {
		// Record gone but id still in the active set: heal the set
		if rerr := e.store.RemoveActiveSession(sessionID); rerr != nil {
			log.Printf("[TICK-ERROR] Could not deactivate orphaned session %s: %v", sessionID, rerr)
		}
		return fmt.Errorf("session record unreadable, deactivated: %v", err)
	}

	if session.Status != redis_models.SessionRunning {
		if session.IsTerminal() {
			if err := e.store.RemoveActiveSession(sessionID); err != nil {
				return fmt.Errorf("error deactivating finished session: %v", err)
			}
		}
		// Paused sessions stay in the set and are simply skipped
		return nil
	}

	if session.TimeRemaining > 0 {
		session.TimeRemaining--
		if session.TimeRemaining == 0 {
			if err := e.advancePhase(session); err != nil {
				// Missing/malformed payload at a transition is fatal for
				// this session only
				log.Printf("[TICK-FATAL] Session %s: %v, forcing stop", sessionID, err)
				session.Status = redis_models.SessionStopped
				if serr := e.store.SaveWorkoutSession(session); serr != nil {
					return fmt.Errorf("error stopping broken session: %v", serr)
				}
				if rerr := e.store.RemoveActiveSession(sessionID); rerr != nil {
					return fmt.Errorf("error deactivating broken session: %v", rerr)
				}
				e.publisher.Publish(sessionID, broadcast.EventSessionState, session.Snapshot())
				return err
			}
		}
	} else {
		// time_remaining was already 0 on a running session: a transition
		// should have fired on the previous tick. Skip the decrement and
		// make noise instead of going negative.
		log.Printf("[TICK-WARN] Session %s ticked at zero without a transition", sessionID)
	}

	if err := e.store.SaveWorkoutSession(session); err != nil {
		return fmt.Errorf("error saving session: %v", err)
	}

	if session.IsTerminal() {
		if err := e.store.RemoveActiveSession(sessionID); err != nil {
			log.Printf("[TICK-ERROR] Could not deactivate completed session %s: %v", sessionID, err)
		}
		if session.Status == redis_models.SessionCompleted {
			if err := e.completer.CompleteLobby(sessionID); err != nil {
				log.Printf("[TICK-ERROR] Could not mark lobby %s completed: %v", sessionID, err)
			}
		}
	}

	// Broadcast the full snapshot every tick, not only on transitions: this
	// is the heartbeat that keeps client countdowns glued to the server clock
	e.publisher.Publish(sessionID, broadcast.EventSessionState, session.Snapshot())
	return nil
}

// advancePhase executes exactly one transition of the phase machine. Called
// only when a decrement just hit zero.
func (e *Engine) advancePhase(session *redis_models.WorkoutSession) error {
	totalExercises, err := session.ExerciseCount()
	if err != nil {
		return err
	}

	switch session.Phase {
	case redis_models.PhasePrepare:
		session.Phase = redis_models.PhaseWork
		session.TimeRemaining = e.cfg.WorkSeconds

	case redis_models.PhaseWork:
		session.CaloriesBurned += e.cfg.CaloriesPerSet
		switch {
		case session.CurrentSet < e.cfg.SetsPerExercise-1:
			session.Phase = redis_models.PhaseRest
			session.TimeRemaining = e.cfg.ShortRestSeconds
			session.CurrentSet++
		case session.CurrentExercise < totalExercises-1:
			session.Phase = redis_models.PhaseRest
			session.TimeRemaining = e.cfg.LongRestSeconds
			session.CurrentExercise++
			session.CurrentSet = 0
			session.CurrentRound++
		default:
			session.Status = redis_models.SessionCompleted
			session.Phase = redis_models.PhaseComplete
			session.TimeRemaining = 0
		}

	case redis_models.PhaseRest:
		session.Phase = redis_models.PhaseWork
		session.TimeRemaining = e.cfg.WorkSeconds

	default:
		return fmt.Errorf("no transition defined from phase %q", session.Phase)
	}
	return nil
}
