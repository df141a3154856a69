package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Service provides the core operations behind the HTTP API. It owns the
// settings store, the exporter and every live session.
type Service struct {
	store    Store
	exporter Exporter
	limiter  *ExportLimiter

	pageSize       int
	maxPageSize    int
	collation      language.Tag
	noticeCapacity int
	exportTimeout  time.Duration
	exportMaxRows  int

	// bg bounds fire-and-forget exports; cancelled by Close.
	bg       context.Context
	bgCancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a new Service instance.
func NewService(store Store, exporter Exporter, cfg *config.Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("new service: nil store")
	}
	if exporter == nil {
		return nil, fmt.Errorf("new service: nil exporter")
	}

	bg, cancel := context.WithCancel(context.Background())
	return &Service{
		store:          store,
		exporter:       exporter,
		limiter:        NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime),
		pageSize:       cfg.View.PageSize,
		maxPageSize:    cfg.View.MaxPageSize,
		collation:      cfg.View.CollationTag(),
		noticeCapacity: cfg.Session.NotificationCapacity,
		exportTimeout:  cfg.Export.Timeout,
		exportMaxRows:  cfg.Export.MaxRows,
		bg:             bg,
		bgCancel:       cancel,
		sessions:       make(map[string]*Session),
	}, nil
}

// Close cancels running background exports.
func (s *Service) Close() {
	s.bgCancel()
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// session returns the session for id, creating it on first use.
func (s *Service) session(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = newSession(id, s.noticeCapacity)
	s.sessions[id] = sess
	slog.Debug("session created", "session", id)
	return sess
}

// lockSession returns the live session for id with its lock held and
// marks it as seen. A session swept between lookup and locking is
// replaced by a fresh one.
func (s *Service) lockSession(id string) *Session {
	for {
		sess := s.session(id)
		sess.mu.Lock()

		s.mu.RLock()
		live := s.sessions[id] == sess
		s.mu.RUnlock()
		if live {
			sess.lastSeen = time.Now()
			return sess
		}
		sess.mu.Unlock()
	}
}

// WithTable runs fn against the session's view of tableKey while holding
// the session lock. The view is created and loaded from the store on first
// use.
func (s *Service) WithTable(ctx context.Context, sessionID, tableKey string, fn func(*TableSession) error) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	def, err := Lookup(tableKey)
	if err != nil {
		return err
	}

	sess := s.lockSession(sessionID)
	defer sess.mu.Unlock()

	ts, ok := sess.tables[tableKey]
	if !ok {
		logger := slog.Default().With("session", sessionID, "table", tableKey)
		view := NewTableViewState(ctx, def.Catalog,
			Namespace(s.store, sessionID+"/"+tableKey),
			ViewOptions{
				MinVisible: def.MinVisible,
				Notifier:   MultiNotifier{sess.notices, LogNotifier{Logger: logger}},
				Logger:     logger,
			},
		)
		ts = &TableSession{Def: def, View: view, applied: make(FilterMap)}
		view.Subscribe(ts.pruneApplied)
		sess.tables[tableKey] = ts
	}

	return fn(ts)
}

// WithView is WithTable for callers that only need the TableViewState.
func (s *Service) WithView(ctx context.Context, sessionID, tableKey string, fn func(*TableViewState) error) error {
	return s.WithTable(ctx, sessionID, tableKey, func(ts *TableSession) error {
		return fn(ts.View)
	})
}

// Notifications drains the queued notifications of a session.
func (s *Service) Notifications(sessionID string) []Notification {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []Notification{}
	}
	return sess.notices.Drain()
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepSessions drops sessions idle for longer than ttl and returns how
// many were removed. Sessions busy with a request are never dropped.
// Persisted view settings stay in the store.
func (s *Service) SweepSessions(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// ExportLimiterStatus returns export slot usage for monitoring.
func (s *Service) ExportLimiterStatus() ExportLimiterStatus {
	return s.limiter.Status()
}

// WaitForExports blocks until running exports finish or ctx ends.
func (s *Service) WaitForExports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// newExportID returns a random export identifier.
func newExportID() string {
	return uuid.NewString()
}
