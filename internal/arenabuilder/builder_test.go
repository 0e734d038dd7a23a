package arenabuilder

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/park285/xo-arena/internal/config"
	"github.com/park285/xo-arena/pkg/arenadto"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"API_URL":      "http://127.0.0.1:1",
		"STORE_URL":    "memory://",
		"SNAPSHOT_DIR": t.TempDir(),
		"BEACON_GRACE": "0s",
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestNewWiresEverything(t *testing.T) {
	deps, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Shutdown()

	if deps.Arena == nil || deps.Guard == nil || deps.Client == nil || deps.Store == nil {
		t.Fatalf("missing component: %+v", deps)
	}
	if deps.Teardown.Len() != 1 {
		t.Fatalf("teardown hooks: got %d want 1", deps.Teardown.Len())
	}
	if deps.Arena.Boot(context.Background()) {
		t.Fatalf("empty store must not report a recovery")
	}
	if got := deps.Formatter.Msg("app.title", ""); got != "XO ARENA" {
		t.Fatalf("catalog not wired: %q", got)
	}
}

func TestNewRejectsNilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestNewRejectsUnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreURL = "ftp://nowhere"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestPresenterWritesIntoSnapshotDir(t *testing.T) {
	cfg := testConfig(t)
	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Shutdown()

	view := arenadto.GameView{
		SessionID: "0123456789abcdef",
		Active:    true,
		Player1:   "Ann",
		Player2:   "Bob",
		Decided:   true,
		Winner:    "X",
		Combo:     []int{0, 4, 8},
	}
	view.Cells[0], view.Cells[4], view.Cells[8] = "X", "X", "X"
	view.Cells[1], view.Cells[2] = "O", "O"

	path, err := deps.Presenter.Snapshot(view)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !strings.HasPrefix(path, cfg.SnapshotDir) {
		t.Fatalf("path %q outside %q", path, cfg.SnapshotDir)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("snapshot file: %v", err)
	}
}

func TestMonitorStartsLoading(t *testing.T) {
	deps, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Shutdown()

	mon := deps.Monitor(nil, nil)
	if s := mon.Status(); s != arenadto.DBLoading {
		t.Fatalf("status before the first check: got %q", s)
	}
	mon.Refresh()
	mon.Refresh()
}
