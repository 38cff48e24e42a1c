package lobby

import (
	redis_models "Sweatmate/models/redis"
	"Sweatmate/services/broadcast"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// fakeSessionStore is an in-memory SessionStore. Get returns a copy, like
// the real Redis round-trip does, so mutations only stick after Save.
type fakeSessionStore struct {
	mu       sync.Mutex
	locks    sync.Map
	sessions map[string]redis_models.WorkoutSession
	active   map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]redis_models.WorkoutSession),
		active:   make(map[string]bool),
	}
}

func (f *fakeSessionStore) GetWorkoutSession(sessionId string) (*redis_models.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionId]
	if !ok {
		return nil, errors.New("session does not exist")
	}
	cp := s
	return &cp, nil
}

func (f *fakeSessionStore) SaveWorkoutSession(session *redis_models.WorkoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeSessionStore) AddActiveSession(sessionId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[sessionId] = true
	return nil
}

func (f *fakeSessionStore) RemoveActiveSession(sessionId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, sessionId)
	return nil
}

func (f *fakeSessionStore) LockSession(sessionId string) func() {
	v, _ := f.locks.LoadOrStore(sessionId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type recordedEvent struct {
	channel string
	name    string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(channelKey, eventName string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{channelKey, eventName, payload})
}

func (p *recordingPublisher) find(eventName string) (recordedEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range p.events {
		if ev.name == eventName {
			return ev, true
		}
	}
	return recordedEvent{}, false
}

func lobbyRow(id, groupID, initiatorID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "group_id", "initiator_id", "workout_data", "status", "created_at", "expires_at"}).
		AddRow(id, groupID, initiatorID, []byte(`{"exercises":[{},{}]}`), status, time.Now(), time.Now().Add(time.Hour))
}

func memberColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"lobby_id", "user_id", "display_name", "status", "joined_at"})
}

func TestLeaveTransfersInitiatorToEarliestSurvivor(t *testing.T) {
	registry, mock, _, pub := mockRegistryFull(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "workout_lobbies" WHERE id = \$1`).
		WithArgs("lob001", 1).
		WillReturnRows(lobbyRow("lob001", "grp1", "alice", "waiting"))
	mock.ExpectExec(`UPDATE "lobby_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "workout_invitations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "lobby_members" WHERE lobby_id = \$1 AND status IN`).
		WillReturnRows(memberColumns().AddRow("lob001", "bob", "User bob", "ready", time.Now()))
	mock.ExpectExec(`UPDATE "workout_lobbies" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Post-commit state broadcast re-reads the lobby
	mock.ExpectQuery(`SELECT (.+) FROM "workout_lobbies" WHERE id = \$1`).
		WithArgs("lob001", 1).
		WillReturnRows(lobbyRow("lob001", "grp1", "bob", "waiting"))
	mock.ExpectQuery(`SELECT (.+) FROM "lobby_members" WHERE lobby_id = \$1 AND status IN`).
		WillReturnRows(memberColumns().AddRow("lob001", "bob", "User bob", "ready", time.Now()))

	err := registry.LeaveLobby("lob001", "alice")
	assert.NoError(t, err)

	transfer, ok := pub.find(broadcast.EventInitiatorTransfer)
	assert.True(t, ok, "leadership passes when the initiator leaves")
	notice := transfer.payload.(TransferNotice)
	assert.Equal(t, "alice", notice.OldInitiatorID)
	assert.Equal(t, "bob", notice.NewInitiatorID)

	_, ok = pub.find(broadcast.EventMemberLeft)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveLastMemberClosesLobbyAndStopsSession(t *testing.T) {
	registry, mock, store, pub := mockRegistryFull(t)

	store.SaveWorkoutSession(&redis_models.WorkoutSession{
		ID:     "lob001",
		Status: redis_models.SessionRunning,
	})
	store.AddActiveSession("lob001")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "workout_lobbies" WHERE id = \$1`).
		WithArgs("lob001", 1).
		WillReturnRows(lobbyRow("lob001", "grp1", "alice", "waiting"))
	mock.ExpectExec(`UPDATE "lobby_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "workout_invitations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "lobby_members" WHERE lobby_id = \$1 AND status IN`).
		WillReturnRows(memberColumns())
	mock.ExpectExec(`UPDATE "workout_lobbies" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := registry.LeaveLobby("lob001", "alice")
	assert.NoError(t, err)

	session, _ := store.GetWorkoutSession("lob001")
	assert.Equal(t, redis_models.SessionStopped, session.Status, "live session stops with its lobby")
	assert.False(t, store.active["lob001"])

	_, ok := pub.find(broadcast.EventLobbyDeleted)
	assert.True(t, ok)
	_, ok = pub.find(broadcast.EventSessionState)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKickMemberNotifiesTarget(t *testing.T) {
	registry, mock, _, pub := mockRegistryFull(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "workout_lobbies" WHERE id = \$1`).
		WithArgs("lob001", 1).
		WillReturnRows(lobbyRow("lob001", "grp1", "alice", "waiting"))
	mock.ExpectExec(`UPDATE "lobby_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "workout_invitations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "lobby_members" WHERE lobby_id = \$1 AND status IN`).
		WillReturnRows(memberColumns().AddRow("lob001", "alice", "User alice", "waiting", time.Now()))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "workout_lobbies" WHERE id = \$1`).
		WithArgs("lob001", 1).
		WillReturnRows(lobbyRow("lob001", "grp1", "alice", "waiting"))
	mock.ExpectQuery(`SELECT (.+) FROM "lobby_members" WHERE lobby_id = \$1 AND status IN`).
		WillReturnRows(memberColumns().AddRow("lob001", "alice", "User alice", "waiting", time.Now()))

	err := registry.KickMember("lob001", "alice", "bob")
	assert.NoError(t, err)

	kicked, ok := pub.find(broadcast.EventMemberKicked)
	assert.True(t, ok)
	assert.Equal(t, broadcast.UserChannel("bob"), kicked.channel, "kicked user gets a personal event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStopSessionWaitsForSessionLock(t *testing.T) {
	registry, _, store, _ := mockRegistryFull(t)

	store.SaveWorkoutSession(&redis_models.WorkoutSession{
		ID:            "lob001",
		Status:        redis_models.SessionRunning,
		TimeRemaining: 10,
	})
	store.AddActiveSession("lob001")

	// Another writer holds the session lock, as the tick loop does mid-tick
	unlock := store.LockSession("lob001")

	done := make(chan struct{})
	go func() {
		registry.stopSessionIfAny("lob001")
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("stop ran while another writer held the session lock")
	case <-time.After(50 * time.Millisecond):
	}

	session, _ := store.GetWorkoutSession("lob001")
	assert.Equal(t, redis_models.SessionRunning, session.Status, "no stop before the lock is released")

	unlock()
	<-done

	session, _ = store.GetWorkoutSession("lob001")
	assert.Equal(t, redis_models.SessionStopped, session.Status)
	assert.False(t, store.active["lob001"])
}
