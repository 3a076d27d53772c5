package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
)

const testPublicBase = "https://proj.supabase.co/storage/v1/object/public"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memDB - общее in-memory состояние для фейковых репозиториев.
type memDB struct {
	mu            sync.Mutex
	players       map[int]models.Player
	sessions      map[int]models.Session
	logs          []models.DebugLog
	nextPlayerID  int
	nextSessionID int

	sessionCreateErr error
}

func newMemDB() *memDB {
	return &memDB{
		players:  make(map[int]models.Player),
		sessions: make(map[int]models.Session),
	}
}

func (db *memDB) addPlayer(name, team, email string) models.Player {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextPlayerID++
	p := models.Player{ID: db.nextPlayerID, Name: name, Team: team, UserEmail: email, CreatedAt: time.Now()}
	db.players[p.ID] = p
	return p
}

func (db *memDB) addSession(playerID int, name, email, videoSource string, kinovea *string) models.Session {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextSessionID++
	s := models.Session{
		ID:          db.nextSessionID,
		PlayerID:    playerID,
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		SessionName: name,
		VideoSource: videoSource,
		KinoveaCSV:  kinovea,
		UserEmail:   email,
	}
	db.sessions[s.ID] = s
	return s
}

func (db *memDB) playerCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.players)
}

func (db *memDB) sessionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sessions)
}

func (db *memDB) logCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.logs)
}

// fakeTxManager снимает снимок состояния и откатывает его при ошибке.
type fakeTxManager struct {
	db    *memDB
	calls int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.calls++
	m.db.mu.Lock()
	players := make(map[int]models.Player, len(m.db.players))
	for k, v := range m.db.players {
		players[k] = v
	}
	sessions := make(map[int]models.Session, len(m.db.sessions))
	for k, v := range m.db.sessions {
		sessions[k] = v
	}
	m.db.mu.Unlock()

	if err := fn(nil); err != nil {
		m.db.mu.Lock()
		m.db.players = players
		m.db.sessions = sessions
		m.db.mu.Unlock()
		return err
	}
	return nil
}

type fakePlayerRepo struct {
	db *memDB
}

func (r *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.players {
		if p.Name == player.Name && p.Team == player.Team && p.UserEmail == player.UserEmail {
			return repositories.ErrPlayerConflict
		}
	}
	r.db.nextPlayerID++
	player.ID = r.db.nextPlayerID
	player.CreatedAt = time.Now()
	r.db.players[player.ID] = *player
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.players[id]
	if !ok || !scope.Allows(p.UserEmail) {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r *fakePlayerRepo) FindByNameTeam(ctx context.Context, exec repositories.SQLExecutor, scope models.Scope, name, team string) (*models.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var found *models.Player
	for _, p := range r.db.players {
		p := p
		if p.Name == name && p.Team == team && scope.Allows(p.UserEmail) {
			if found == nil || p.ID < found.ID {
				found = &p
			}
		}
	}
	if found == nil {
		return nil, repositories.ErrPlayerNotFound
	}
	return found, nil
}

func (r *fakePlayerRepo) List(ctx context.Context, scope models.Scope) ([]models.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Player, 0)
	for _, p := range r.db.players {
		if scope.Allows(p.UserEmail) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) UpdateNotes(ctx context.Context, exec repositories.SQLExecutor, id int, notes string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Notes = notes
	r.db.players[id] = p
	return nil
}

func (r *fakePlayerRepo) Reassign(ctx context.Context, exec repositories.SQLExecutor, id int, userEmail string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.UserEmail = userEmail
	r.db.players[id] = p
	return nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, scope models.Scope, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.players[id]
	if !ok || !scope.Allows(p.UserEmail) {
		return repositories.ErrPlayerNotFound
	}
	for _, s := range r.db.sessions {
		if s.PlayerID == id && !scope.Allows(s.UserEmail) {
			return repositories.ErrPlayerHasForeignSessions
		}
	}
	delete(r.db.players, id)
	for sid, s := range r.db.sessions {
		if s.PlayerID == id {
			delete(r.db.sessions, sid)
		}
	}
	return nil
}

func (r *fakePlayerRepo) DeleteIfEmpty(ctx context.Context, exec repositories.SQLExecutor, id int) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.players[id]; !ok {
		return false, nil
	}
	for _, s := range r.db.sessions {
		if s.PlayerID == id {
			return false, nil
		}
	}
	delete(r.db.players, id)
	return true, nil
}

func (r *fakePlayerRepo) orphans(scope models.Scope) []models.Player {
	out := make([]models.Player, 0)
	for _, p := range r.db.players {
		if !scope.Allows(p.UserEmail) {
			continue
		}
		hasSessions := false
		for _, s := range r.db.sessions {
			if s.PlayerID == p.ID {
				hasSessions = true
				break
			}
		}
		if !hasSessions {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakePlayerRepo) ListWithoutSessions(ctx context.Context, scope models.Scope) ([]models.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.orphans(scope), nil
}

func (r *fakePlayerRepo) DeleteWithoutSessions(ctx context.Context, exec repositories.SQLExecutor, scope models.Scope) ([]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ids := make([]int, 0)
	for _, p := range r.orphans(scope) {
		delete(r.db.players, p.ID)
		ids = append(ids, p.ID)
	}
	return ids, nil
}

type fakeSessionRepo struct {
	db *memDB
}

func (r *fakeSessionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, session *models.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.sessionCreateErr != nil {
		return r.db.sessionCreateErr
	}
	if _, ok := r.db.players[session.PlayerID]; !ok {
		return repositories.ErrSessionPlayerInvalid
	}
	r.db.nextSessionID++
	session.ID = r.db.nextSessionID
	session.CreatedAt = time.Now()
	r.db.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok || !scope.Allows(s.UserEmail) {
		return nil, repositories.ErrSessionNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) List(ctx context.Context, scope models.Scope, playerID *int) ([]models.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Session, 0)
	for _, s := range r.db.sessions {
		if playerID != nil && s.PlayerID != *playerID {
			continue
		}
		if scope.Allows(s.UserEmail) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, scope models.Scope, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok || !scope.Allows(s.UserEmail) {
		return repositories.ErrSessionNotFound
	}
	delete(r.db.sessions, id)
	return nil
}

func (r *fakeSessionRepo) CountByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, s := range r.db.sessions {
		if s.PlayerID == playerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) ReassignByPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID int, userEmail string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, s := range r.db.sessions {
		if s.PlayerID == playerID && s.UserEmail != userEmail {
			s.UserEmail = userEmail
			r.db.sessions[id] = s
			n++
		}
	}
	return n, nil
}

type fakeDebugLogRepo struct {
	db *memDB
}

func (r *fakeDebugLogRepo) Create(ctx context.Context, entry *models.DebugLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	entry.ID = len(r.db.logs) + 1
	entry.CreatedAt = time.Now()
	r.db.logs = append(r.db.logs, *entry)
	return nil
}

func (r *fakeDebugLogRepo) List(ctx context.Context) ([]models.DebugLog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]models.DebugLog(nil), r.db.logs...), nil
}

// fakeBlobStore хранит объекты в памяти и запоминает удаления.
type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	uploadErr error
	removeErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (b *fakeBlobStore) Upload(ctx context.Context, namespace, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[namespace+"/"+key] = data
	return &storage.UploadResult{
		Namespace: namespace,
		Key:       key,
		Location:  b.PublicURL(namespace, key),
	}, nil
}

func (b *fakeBlobStore) Remove(ctx context.Context, namespace string, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range keys {
		b.removed = append(b.removed, namespace+"/"+key)
	}
	if b.removeErr != nil {
		return b.removeErr
	}
	for _, key := range keys {
		delete(b.objects, namespace+"/"+key)
	}
	return nil
}

func (b *fakeBlobStore) Open(ctx context.Context, namespace, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[namespace+"/"+key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlobStore) PublicURL(namespace, key string) string {
	return storage.BuildPublicURL(testPublicBase, namespace, key)
}

func (b *fakeBlobStore) ObjectFromURL(rawURL string) (string, string, bool) {
	return storage.ParseStoredURL(testPublicBase, rawURL, models.NamespaceCSV, models.NamespaceVideos)
}

func (b *fakeBlobStore) put(namespace, key string, data []byte) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[namespace+"/"+key] = data
	return b.PublicURL(namespace, key)
}

func strPtr(s string) *string {
	return &s
}

var (
	coach    = models.Principal{ID: "11111111-1111-1111-1111-111111111111", Email: "coach@x.com"}
	otherOne = models.Principal{ID: "22222222-2222-2222-2222-222222222222", Email: "other@x.com"}
	admin    = models.Principal{ID: "33333333-3333-3333-3333-333333333333", Email: "admin@x.com", IsAdmin: true}
)
