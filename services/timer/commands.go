package timer

import (
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/broadcast"
	"Sweatmate/services/lobby"
	"fmt"
	"log"
	"time"
)

// Pause freezes a running session. Only the session initiator may pause.
// The tick loop keeps visiting the session but skips it until resumed.
func (e *Engine) Pause(sessionID, userID string) (*redis_models.SessionSnapshot, error) {
	unlock := e.store.LockSession(sessionID)
	defer unlock()

	session, err := e.loadOwned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != redis_models.SessionRunning {
		return nil, lobby.ErrSessionNotRunning
	}

	session.Status = redis_models.SessionPaused
	session.PausedAt = e.now()
	if err := e.store.SaveWorkoutSession(session); err != nil {
		return nil, fmt.Errorf("error saving paused session: %v", err)
	}

	log.Printf("[SESSION] Session %s paused by %s", sessionID, userID)
	snap := session.Snapshot()
	e.publisher.Publish(sessionID, broadcast.EventSessionState, snap)
	return &snap, nil
}

// Resume unfreezes a paused session, accumulating the elapsed pause time.
func (e *Engine) Resume(sessionID, userID string) (*redis_models.SessionSnapshot, error) {
	unlock := e.store.LockSession(sessionID)
	defer unlock()

	session, err := e.loadOwned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != redis_models.SessionPaused {
		return nil, lobby.ErrSessionNotPaused
	}

	now := e.now()
	if !session.PausedAt.IsZero() {
		session.TotalPauseDuration += int64(now.Sub(session.PausedAt).Seconds())
	}
	session.PausedAt = time.Time{}
	session.ResumedAt = now
	session.Status = redis_models.SessionRunning
	if err := e.store.SaveWorkoutSession(session); err != nil {
		return nil, fmt.Errorf("error saving resumed session: %v", err)
	}

	log.Printf("[SESSION] Session %s resumed by %s", sessionID, userID)
	snap := session.Snapshot()
	e.publisher.Publish(sessionID, broadcast.EventSessionState, snap)
	return &snap, nil
}

// Stop terminally halts a session before its natural completion.
func (e *Engine) Stop(sessionID, userID string) (*redis_models.SessionSnapshot, error) {
	unlock := e.store.LockSession(sessionID)
	defer unlock()

	session, err := e.loadOwned(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, lobby.ErrSessionAlreadyStopped
	}

	session.Status = redis_models.SessionStopped
	if err := e.store.SaveWorkoutSession(session); err != nil {
		return nil, fmt.Errorf("error saving stopped session: %v", err)
	}
	if err := e.store.RemoveActiveSession(sessionID); err != nil {
		log.Printf("[SESSION-ERROR] Could not deactivate stopped session %s: %v", sessionID, err)
	}
	if err := e.completer.CompleteLobby(sessionID); err != nil {
		log.Printf("[SESSION-ERROR] Could not mark lobby %s completed after stop: %v", sessionID, err)
	}

	log.Printf("[SESSION] Session %s stopped by %s", sessionID, userID)
	snap := session.Snapshot()
	e.publisher.Publish(sessionID, broadcast.EventSessionState, snap)
	return &snap, nil
}

// State returns the current snapshot without mutating anything.
func (e *Engine) State(sessionID string) (*redis_models.SessionSnapshot, error) {
	session, err := e.store.GetWorkoutSession(sessionID)
	if err != nil {
		return nil, lobby.ErrSessionNotFound
	}
	snap := session.Snapshot()
	return &snap, nil
}

// loadOwned fetches a session and checks command authority.
func (e *Engine) loadOwned(sessionID, userID string) (*redis_models.WorkoutSession, error) {
	session, err := e.store.GetWorkoutSession(sessionID)
	if err != nil {
		return nil, lobby.ErrSessionNotFound
	}
	if session.InitiatorID != userID {
		return nil, lobby.ErrNotInitiator
	}
	return session, nil
}
