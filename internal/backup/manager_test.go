package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"mdd-forum/internal/storage"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads []string
	listErr error
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) UploadFile(ctx context.Context, localPath string, opts storage.UploadOptions) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[opts.Key] = data
	f.uploads = append(f.uploads, opts.Key)
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.ObjectInfo
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (f *fakeStorage) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.objects, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func writeSnapshot(ctx context.Context, dest string) error {
	return os.WriteFile(dest, []byte("sqlite"), 0o600)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestManager(t *testing.T, store storage.Service, retain int) *manager {
	t.Helper()
	m := NewManager(Config{
		Bucket:    "bucket",
		KeyPrefix: "/backups/",
		Retain:    retain,
		WorkDir:   t.TempDir(),
		Logger:    quietLogger(),
	}, writeSnapshot, store).(*manager)

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return m
}

func TestRunOnceUploadsSnapshot(t *testing.T) {
	store := newFakeStorage()
	m := newTestManager(t, store, 0)

	location, err := m.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if location != "s3://bucket/backups/mdd-20240501T130000Z.db" {
		t.Fatalf("unexpected location %q", location)
	}
	if got := string(store.objects["backups/mdd-20240501T130000Z.db"]); got != "sqlite" {
		t.Fatalf("unexpected object body %q", got)
	}

	entries, err := os.ReadDir(m.cfg.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected local snapshot to be removed, found %d files", len(entries))
	}
}

func TestRunOncePrunesOldest(t *testing.T) {
	store := newFakeStorage()
	store.objects["backups/notes.txt"] = []byte("keep")
	m := newTestManager(t, store, 2)

	for i := 0; i < 4; i++ {
		if _, err := m.RunOnce(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	want := []string{
		"backups/mdd-20240501T150000Z.db",
		"backups/mdd-20240501T160000Z.db",
		"backups/notes.txt",
	}
	got := store.keys()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected objects %v", got)
	}
}

func TestRunOnceSnapshotError(t *testing.T) {
	store := newFakeStorage()
	m := newTestManager(t, store, 1)
	boom := errors.New("disk full")
	m.snapshot = func(context.Context, string) error { return boom }

	if _, err := m.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected snapshot error, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}

func TestRunOnceIgnoresPruneFailure(t *testing.T) {
	store := newFakeStorage()
	store.listErr = errors.New("list denied")
	m := newTestManager(t, store, 1)

	if _, err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("prune failures must not fail the backup: %v", err)
	}
}

func TestStartRequiresBucket(t *testing.T) {
	m := NewManager(Config{WorkDir: t.TempDir(), Logger: quietLogger()}, writeSnapshot, newFakeStorage())
	if err := m.Start(context.Background()); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestStartAndShutdown(t *testing.T) {
	store := newFakeStorage()
	m := NewManager(Config{
		Bucket:   "bucket",
		Interval: 10 * time.Millisecond,
		WorkDir:  filepath.Join(t.TempDir(), "work"),
		Logger:   quietLogger(),
	}, writeSnapshot, store)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(store.keys()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Shutdown()

	if len(store.keys()) == 0 {
		t.Fatalf("expected at least one periodic backup")
	}
}
