package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var backupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bluewater_backups_total",
	Help: "Store snapshots by target and outcome.",
}, []string{"target", "outcome"})

// Snapshotter writes a consistent copy of the store to a new file
type Snapshotter interface {
	SnapshotTo(ctx context.Context, dest string) error
}

// Service takes store snapshots on an interval and hands them to a Target
type Service struct {
	source   Snapshotter
	target   Target
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
	clock    func() time.Time
}

// NewService creates a new backup service
func NewService(source Snapshotter, target Target, interval time.Duration) *Service {
	return &Service{
		source:   source,
		target:   target,
		interval: interval,
		stopChan: make(chan struct{}),
		clock:    time.Now,
	}
}

// Start begins the periodic backups. A zero interval leaves the service idle.
func (s *Service) Start() {
	if s.interval <= 0 {
		log.Println("Backup schedule disabled")
		return
	}

	s.wg.Add(1)
	go s.run()
	log.Printf("✓ Backup service started (%s target, every %s)", s.target.Name(), s.interval)
}

// Stop halts the service and waits for a running backup to finish
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	log.Println("✓ Backup service stopped")
}

func (s *Service) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			if _, err := s.RunOnce(ctx); err != nil {
				log.Printf("❌ Scheduled backup failed: %v", err)
			}
			cancel()
		}
	}
}

// RunOnce snapshots the store and stores it, returning the key it was stored under
func (s *Service) RunOnce(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.backup(ctx)
	if err != nil {
		backupsTotal.WithLabelValues(s.target.Name(), "failed").Inc()
		return "", err
	}

	backupsTotal.WithLabelValues(s.target.Name(), "stored").Inc()
	log.Printf("✓ Backup stored as %s (%s)", key, s.target.Name())
	return key, nil
}

func (s *Service) backup(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "bluewater-backup-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	key := Key(s.clock())
	path := filepath.Join(dir, key)
	if err := s.source.SnapshotTo(ctx, path); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat snapshot: %w", err)
	}

	if err := s.target.Store(ctx, key, f, info.Size()); err != nil {
		return "", err
	}
	return key, nil
}

// Key names a snapshot by its UTC creation time
func Key(t time.Time) string {
	return "bluewater-" + t.UTC().Format("20060102T150405Z") + ".db"
}
