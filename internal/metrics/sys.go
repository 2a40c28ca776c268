package metrics

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"
)

var startedAt = time.Now()

// Health is a snapshot of the process and of the FoodHive database.
type Health struct {
	HeapMB       uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	Uptime       time.Duration
	DatabaseSize string
	Users        int
	Documents    map[string]int // per collection
}

// Health reports runtime figures plus the on-disk size of the SQLite file at
// dbPath (WAL and shared-memory files included) and the stored document
// counts. A missing file reports as 0 B.
func (s *Store) Health(ctx context.Context, dbPath string) (Health, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := Health{
		HeapMB:       m.HeapAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		Uptime:       time.Since(startedAt).Truncate(time.Second),
		DatabaseSize: formatBytes(databaseSize(dbPath)),
		Documents:    make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_id) FROM documents`).Scan(&h.Users); err != nil {
		return h, fmt.Errorf("failed to count users: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT collection, COUNT(*) FROM documents GROUP BY collection`)
	if err != nil {
		return h, fmt.Errorf("failed to count documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return h, fmt.Errorf("failed to scan document count: %w", err)
		}
		h.Documents[name] = n
	}
	return h, rows.Err()
}

func databaseSize(path string) int64 {
	if path == "" {
		return 0
	}
	var size int64
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			size += info.Size()
		}
	}
	return size
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
