package core

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/JonMunkholm/tableview/internal/config"
)

func newTestService(t *testing.T, exporter Exporter) (*Service, *fakeStore) {
	t.Helper()
	registerForTest(t, testDefinition("svc_people", "Test"))

	cfg := config.Default()
	cfg.View.PageSize = 2
	store := newFakeStore()
	svc, err := NewService(store, exporter, cfg)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	t.Cleanup(svc.Close)
	return svc, store
}

func TestPaginate(t *testing.T) {
	rows := personRows() // 3 rows

	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantPage   int
		wantTotal  int
		wantKeys   []string
	}{
		{"first page", 1, 2, 1, 2, []string{"1", "2"}},
		{"last partial page", 2, 2, 2, 2, []string{"3"}},
		{"page past end clamps", 9, 2, 2, 2, []string{"3"}},
		{"page zero clamps", 0, 2, 1, 2, []string{"1", "2"}},
		{"single page", 1, 10, 1, 1, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(rows, tt.page, tt.pageSize)
			if p.Page != tt.wantPage || p.TotalPages != tt.wantTotal {
				t.Errorf("page %d/%d, want %d/%d", p.Page, p.TotalPages, tt.wantPage, tt.wantTotal)
			}
			if got := rowKeys(p.Rows); !slices.Equal(got, tt.wantKeys) {
				t.Errorf("rows = %v, want %v", got, tt.wantKeys)
			}
			if p.TotalRows != 3 {
				t.Errorf("TotalRows = %d, want 3", p.TotalRows)
			}
		})
	}

	empty := Paginate(nil, 3, 10)
	if empty.Page != 1 || empty.TotalPages != 1 || len(empty.Rows) != 0 {
		t.Errorf("empty = %+v, want page 1 of 1", empty)
	}
}

func TestService_RequiresSessionAndTable(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())

	err := svc.WithView(bg, "", "svc_people", func(*TableViewState) error { return nil })
	if !errors.Is(err, ErrSessionRequired) {
		t.Errorf("empty session error = %v, want ErrSessionRequired", err)
	}

	err = svc.WithView(bg, "s1", "nope", func(*TableViewState) error { return nil })
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("unknown table error = %v, want ErrUnknownTable", err)
	}
}

func TestService_SessionsAreIsolated(t *testing.T) {
	svc, store := newTestService(t, newStubExporter())

	svc.WithView(bg, "alice", "svc_people", func(v *TableViewState) error {
		v.SetColumnVisible(bg, "age", false)
		v.SetFilter("name", "иван")
		return nil
	})

	var bobVisible bool
	var bobFilters FilterMap
	svc.WithView(bg, "bob", "svc_people", func(v *TableViewState) error {
		bobVisible = v.IsVisible("age")
		bobFilters = v.Filters()
		return nil
	})
	if !bobVisible || len(bobFilters) != 0 {
		t.Errorf("bob sees alice's state: age visible=%v filters=%v", bobVisible, bobFilters)
	}

	if _, ok := store.data["alice/svc_people/"+KeyVisibility]; !ok {
		t.Errorf("settings not namespaced by session and table: %v", store.data)
	}
}

func TestService_GetTableView(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetColumnVisible(bg, "address", false)
		return nil
	})

	res, err := svc.GetTableView(bg, "s1", "svc_people", ViewQuery{
		Page:  1,
		Sorts: []SortSpec{{Column: "age", Dir: "desc"}},
	})
	if err != nil {
		t.Fatalf("GetTableView() error = %v", err)
	}

	if got := columnKeys(res.Columns); !slices.Equal(got, []string{"name", "age"}) {
		t.Errorf("columns = %v, want [name age]", got)
	}
	if len(res.AllColumns) != 3 {
		t.Errorf("AllColumns = %d, want 3", len(res.AllColumns))
	}
	if res.TotalRows != 3 || res.TotalPages != 2 || res.PageSize != 2 {
		t.Errorf("paging = rows %d pages %d size %d", res.TotalRows, res.TotalPages, res.PageSize)
	}
	if len(res.Rows) != 2 || res.Rows[0]["age"] != 42 || res.Rows[0]["_key"] != "2" {
		t.Errorf("rows = %v, want oldest first", res.Rows)
	}
	if _, ok := res.Rows[0]["address"]; ok {
		t.Error("hidden column projected into rows")
	}
}

func TestService_FiltersApplyOnSearch(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetFilter("name", "иван")
		return nil
	})

	// Setting a filter alone does not change the rows.
	before, _ := svc.GetTableView(bg, "s1", "svc_people", ViewQuery{PageSize: 10})
	if before.TotalRows != 3 {
		t.Errorf("rows before search = %d, want 3", before.TotalRows)
	}
	if before.Filters["name"] != "иван" || len(before.AppliedFilters) != 0 {
		t.Errorf("filters = %v applied = %v", before.Filters, before.AppliedFilters)
	}

	res, err := svc.Search(bg, "s1", "svc_people", ViewQuery{PageSize: 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// "Иван Петров" and "Мария Иванова" both contain "иван".
	if res.TotalRows != 2 {
		t.Errorf("rows after search = %d, want 2", res.TotalRows)
	}

	// Later reads keep the searched rows.
	again, _ := svc.GetTableView(bg, "s1", "svc_people", ViewQuery{PageSize: 10})
	if again.TotalRows != 2 {
		t.Errorf("rows on re-read = %d, want 2", again.TotalRows)
	}

	reset, err := svc.ResetSearch(bg, "s1", "svc_people", ViewQuery{PageSize: 10})
	if err != nil {
		t.Fatalf("ResetSearch() error = %v", err)
	}
	if reset.TotalRows != 3 || len(reset.Filters) != 0 || len(reset.AppliedFilters) != 0 {
		t.Errorf("after reset: rows %d filters %v applied %v", reset.TotalRows, reset.Filters, reset.AppliedFilters)
	}
}

func TestService_ExportUsesCurrentView(t *testing.T) {
	exporter := newStubExporter()
	svc, _ := newTestService(t, exporter)

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetColumnVisible(bg, "address", false)
		v.SetFilter("name", "мария")
		return nil
	})
	svc.Search(bg, "s1", "svc_people", ViewQuery{})

	artifact, err := svc.Export(bg, "s1", "svc_people", nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if artifact.Filename != "svc_people.xlsx" {
		t.Errorf("artifact = %+v", artifact)
	}

	req := <-exporter.calls
	if len(req.Columns) != 2 || len(req.Rows) != 1 || req.Rows[0]["name"] != "Мария Иванова" {
		t.Errorf("export request = %+v", req)
	}
}

func TestService_ExportErrors(t *testing.T) {
	exporter := newStubExporter()
	exporter.err = errors.New("disk full")
	svc, _ := newTestService(t, exporter)

	_, err := svc.Export(bg, "s1", "svc_people", nil)
	if !errors.Is(err, ErrExportFailed) {
		t.Errorf("error = %v, want ErrExportFailed", err)
	}

	svc.exportMaxRows = 1
	_, err = svc.Export(bg, "s1", "svc_people", nil)
	if !errors.Is(err, ErrExportTooLarge) {
		t.Errorf("error = %v, want ErrExportTooLarge", err)
	}

	if _, err := svc.ExportRequest(bg, ExportRequest{}); !errors.Is(err, ErrNoColumns) {
		t.Errorf("error = %v, want ErrNoColumns", err)
	}
}

func TestService_ExportAsync(t *testing.T) {
	exporter := newStubExporter()
	svc, _ := newTestService(t, exporter)

	id, err := svc.ExportAsync(bg, "s1", "svc_people", nil)
	if err != nil {
		t.Fatalf("ExportAsync() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var notices []Notification
	for time.Now().Before(deadline) {
		notices = append(notices, svc.Notifications("s1")...)
		if len(notices) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(notices) != 1 || notices[0].Code != "EXP000" {
		t.Fatalf("notifications = %+v, want EXP000", notices)
	}

	artifact, err := svc.TakeExport("s1", id)
	if err != nil {
		t.Fatalf("TakeExport() error = %v", err)
	}
	if artifact.ID != id {
		t.Errorf("artifact ID = %q, want %q", artifact.ID, id)
	}

	if _, err := svc.TakeExport("s1", id); !errors.Is(err, ErrExportNotFound) {
		t.Errorf("second TakeExport error = %v, want ErrExportNotFound", err)
	}
	if _, err := svc.TakeExport("other", id); !errors.Is(err, ErrExportNotFound) {
		t.Errorf("other session TakeExport error = %v, want ErrExportNotFound", err)
	}
}

func TestService_NotificationsForUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())
	if got := svc.Notifications("ghost"); got == nil || len(got) != 0 {
		t.Errorf("Notifications() = %#v, want empty slice", got)
	}
}

func TestService_SweepSessions(t *testing.T) {
	svc, store := newTestService(t, newStubExporter())

	svc.WithView(bg, "old", "svc_people", func(v *TableViewState) error {
		v.SetColumnVisible(bg, "age", false)
		return nil
	})
	svc.WithView(bg, "new", "svc_people", func(*TableViewState) error { return nil })

	svc.session("old").lastSeen = time.Now().Add(-2 * time.Hour)

	if removed := svc.SweepSessions(time.Hour); removed != 1 {
		t.Errorf("SweepSessions() = %d, want 1", removed)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}

	// Persisted settings survive eviction.
	if _, ok := store.data["old/svc_people/"+KeyVisibility]; !ok {
		t.Error("eviction removed persisted settings")
	}
	var visible bool
	svc.WithView(bg, "old", "svc_people", func(v *TableViewState) error {
		visible = v.IsVisible("age")
		return nil
	})
	if visible {
		t.Error("returning session did not reload its settings")
	}
}

func TestService_SweeperStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartSessionSweeper(ctx, SweeperConfig{TTL: time.Minute, CheckInterval: 10 * time.Millisecond})
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestService_HideDropsAppliedFilter(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())
	q := ViewQuery{PageSize: 10}

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetFilter("age", "42")
		return nil
	})
	if res, _ := svc.Search(bg, "s1", "svc_people", q); res.TotalRows != 1 {
		t.Fatalf("rows after search = %d, want 1", res.TotalRows)
	}

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		if !v.SetColumnVisible(bg, "age", false) {
			t.Error("hiding age rejected")
		}
		return nil
	})

	res, err := svc.GetTableView(bg, "s1", "svc_people", q)
	if err != nil {
		t.Fatalf("GetTableView() error = %v", err)
	}
	if res.TotalRows != 3 || len(res.AppliedFilters) != 0 || len(res.Filters) != 0 {
		t.Errorf("rows = %d applied = %v filters = %v, want 3 rows and no filters",
			res.TotalRows, res.AppliedFilters, res.Filters)
	}

	// Showing the column again does not bring the filter back.
	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetColumnVisible(bg, "age", true)
		return nil
	})
	if res, _ := svc.GetTableView(bg, "s1", "svc_people", q); res.TotalRows != 3 {
		t.Errorf("rows after re-show = %d, want 3", res.TotalRows)
	}
}

func TestService_ResetColumnsClearsAppliedFilters(t *testing.T) {
	exporter := newStubExporter()
	svc, _ := newTestService(t, exporter)
	q := ViewQuery{PageSize: 10}

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetFilter("name", "иван")
		return nil
	})
	if res, _ := svc.Search(bg, "s1", "svc_people", q); res.TotalRows != 2 {
		t.Fatalf("rows after search = %d, want 2", res.TotalRows)
	}

	svc.WithTable(bg, "s1", "svc_people", func(ts *TableSession) error {
		ts.ResetColumns(bg)
		return nil
	})

	res, _ := svc.GetTableView(bg, "s1", "svc_people", q)
	if res.TotalRows != 3 || len(res.AppliedFilters) != 0 {
		t.Errorf("rows = %d applied = %v, want 3 rows unfiltered", res.TotalRows, res.AppliedFilters)
	}

	if _, err := svc.Export(bg, "s1", "svc_people", nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if req := <-exporter.calls; len(req.Rows) != 3 {
		t.Errorf("exported rows = %d, want 3", len(req.Rows))
	}
}

func TestService_ColumnOptions(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())

	svc.WithView(bg, "s1", "svc_people", func(v *TableViewState) error {
		v.SetColumnVisible(bg, "age", false)
		v.SetColumnVisible(bg, "address", false)
		return nil
	})

	res, _ := svc.GetTableView(bg, "s1", "svc_people", ViewQuery{})
	want := map[string][2]bool{ // visible, can hide
		"name":    {true, false},
		"age":     {false, false},
		"address": {false, false},
	}
	for _, opt := range res.AllColumns {
		if got := [2]bool{opt.Visible, opt.CanHide}; got != want[opt.Key] {
			t.Errorf("%s = %v, want %v", opt.Key, got, want[opt.Key])
		}
	}
}

func TestLockSession_ReplacesSweptSession(t *testing.T) {
	svc, _ := newTestService(t, newStubExporter())

	stale := svc.session("s1")
	stale.mu.Lock()

	got := make(chan *Session)
	go func() {
		sess := svc.lockSession("s1")
		sess.mu.Unlock()
		got <- sess
	}()

	// Evict the session while the request waits for its lock.
	time.Sleep(20 * time.Millisecond)
	svc.mu.Lock()
	delete(svc.sessions, "s1")
	svc.mu.Unlock()
	stale.mu.Unlock()

	sess := <-got
	if sess == stale {
		t.Fatal("request ran on an evicted session")
	}
	svc.mu.RLock()
	live := svc.sessions["s1"]
	svc.mu.RUnlock()
	if live != sess {
		t.Error("returned session is not registered")
	}
}
