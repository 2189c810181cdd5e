package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mdd-forum/internal/storage"
)

const (
	objectPrefix = "mdd-"
	objectSuffix = ".db"
	timeLayout   = "20060102T150405Z"
)

// ErrBusy is returned by RunOnce while another backup is in progress.
var ErrBusy = errors.New("backup already running")

// SnapshotFunc writes a consistent copy of the database to dest.
type SnapshotFunc func(ctx context.Context, dest string) error

// Manager periodically snapshots the database and ships it to object storage.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	RunOnce(ctx context.Context) (string, error)
}

type Config struct {
	Bucket    string
	KeyPrefix string
	Interval  time.Duration
	Retain    int
	WorkDir   string
	Logger    *logrus.Logger
}

type manager struct {
	cfg      Config
	snapshot SnapshotFunc
	storage  storage.Service
	now      func() time.Time

	running sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewManager(cfg Config, snapshot SnapshotFunc, storage storage.Service) Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.Retain < 0 {
		cfg.Retain = 0
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(os.TempDir(), "mdd-backups")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &manager{
		cfg:      cfg,
		snapshot: snapshot,
		storage:  storage,
		now:      time.Now,
	}
}

func (m *manager) Start(ctx context.Context) error {
	if m.cfg.Bucket == "" {
		return fmt.Errorf("backup bucket is required")
	}
	if err := os.MkdirAll(m.cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create backup work dir: %w", err)
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.loop()

	m.cfg.Logger.Infof("backup manager started, every %s to s3://%s/%s", m.cfg.Interval, m.cfg.Bucket, m.cfg.KeyPrefix)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("backup manager stopped")
}

func (m *manager) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.RunOnce(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.cfg.Logger.Errorf("backup failed: %v", err)
			}
		}
	}
}

// RunOnce takes a snapshot, uploads it and prunes old copies.
func (m *manager) RunOnce(ctx context.Context) (string, error) {
	if !m.running.TryLock() {
		return "", ErrBusy
	}
	defer m.running.Unlock()

	name := objectPrefix + m.now().UTC().Format(timeLayout) + objectSuffix
	local := filepath.Join(m.cfg.WorkDir, name)
	logger := m.cfg.Logger.WithField("snapshot", name)

	if err := m.snapshot(ctx, local); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}
	defer func() {
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			logger.Warnf("remove local snapshot: %v", err)
		}
	}()

	location, err := m.storage.UploadFile(ctx, local, storage.UploadOptions{
		Bucket: m.cfg.Bucket,
		Key:    m.objectKey(name),
		ProgressCallback: func(done, total int64) {
			logger.Debugf("upload progress %d/%d bytes", done, total)
		},
	})
	if err != nil {
		return "", err
	}
	logger.Infof("backup uploaded to %s", location)

	if m.cfg.Retain > 0 {
		if err := m.prune(ctx); err != nil {
			logger.Warnf("prune backups: %v", err)
		}
	}
	return location, nil
}

func (m *manager) prune(ctx context.Context) error {
	listPrefix := m.objectKey(objectPrefix)
	objects, err := m.storage.ListObjects(ctx, m.cfg.Bucket, listPrefix)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, objectSuffix) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) <= m.cfg.Retain {
		return nil
	}

	// keys embed a sortable UTC timestamp, newest last
	sort.Strings(keys)
	stale := keys[:len(keys)-m.cfg.Retain]
	if err := m.storage.DeleteObjects(ctx, m.cfg.Bucket, stale); err != nil {
		return err
	}
	m.cfg.Logger.Infof("pruned %d old backups", len(stale))
	return nil
}

func (m *manager) objectKey(name string) string {
	if m.cfg.KeyPrefix == "" {
		return name
	}
	return path.Join(m.cfg.KeyPrefix, name)
}
