package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/watcher"
)

func startWatcher(t *testing.T, dir string) <-chan string {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Dir:         dir,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	dropped, err := w.Start()
	require.NoError(t, err)
	return dropped
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	dropped := startWatcher(t, dir)

	path := filepath.Join(dir, "report.txt")
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("draft %d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case got := <-dropped:
		require.Equal(t, path, got)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected a drop notification")
	}

	select {
	case got := <-dropped:
		t.Fatalf("unexpected second notification for %s", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherAnnouncesEachFileOnce(t *testing.T) {
	dir := t.TempDir()
	dropped := startWatcher(t, dir)

	first := filepath.Join(dir, "one.txt")
	second := filepath.Join(dir, "two.md")
	require.NoError(t, os.WriteFile(first, []byte("one"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("two"), 0644))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case got := <-dropped:
			seen[got] = true
		case <-time.After(500 * time.Millisecond):
			t.Fatal("expected two drop notifications")
		}
	}
	require.True(t, seen[first])
	require.True(t, seen[second])
}

func TestWatcherIgnoresHiddenAndPartialFiles(t *testing.T) {
	dir := t.TempDir()
	dropped := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "download.part"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0644))

	select {
	case got := <-dropped:
		t.Fatalf("unexpected notification for %s", got)
	case <-time.After(150 * time.Millisecond):
	}
}
