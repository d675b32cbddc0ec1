// Package archive keeps every computed report in a rotating JSONL file.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/optimizer"
)

// maxLine bounds a single archived report.
const maxLine = 16 << 20

// Entry is one archived cycle.
type Entry struct {
	ArchivedAt      time.Time              `json:"archived_at"`
	Report          *optimizer.Report      `json:"report"`
	Recommendations []model.Recommendation `json:"recommendations,omitempty"`
}

// Archive appends reports to a JSONL file rotated by lumberjack.
type Archive struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
	now    func() time.Time
}

// New creates an archive with rotation options in megabytes and days.
func New(path string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
	}
	return &Archive{logger: lj, path: path, now: time.Now}, nil
}

// Append writes one entry and rotates the file if needed.
func (a *Archive) Append(_ context.Context, e Entry) error {
	if e.ArchivedAt.IsZero() {
		e.ArchivedAt = a.now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.logger.Write(b)
	return err
}

// Notify archives the report of a completed cycle with the recommendations
// persisted for it.
func (a *Archive) Notify(ctx context.Context, report *optimizer.Report, recs []model.Recommendation) error {
	if report == nil {
		return nil
	}
	return a.Append(ctx, Entry{Report: report, Recommendations: recs})
}

// files lists the live file and its rotated backups. Compressed backups are
// skipped.
func (a *Archive) files() ([]string, error) {
	ext := filepath.Ext(a.path)
	prefix := strings.TrimSuffix(a.path, ext)
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	files := append(backups, a.path)
	return files, nil
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (a *Archive) Recent(ctx context.Context, n int) ([]Entry, error) {
	files, err := a.files()
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var res []Entry
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := readEntries(f)
		if err != nil {
			return nil, err
		}
		res = append(res, entries...)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].ArchivedAt.After(res[j].ArchivedAt) })
	if n > 0 && len(res) > n {
		res = res[:n]
	}
	return res, nil
}

// Find returns the archived entry of a report id.
func (a *Archive) Find(ctx context.Context, reportID string) (Entry, bool, error) {
	entries, err := a.Recent(ctx, 0)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.Report != nil && e.Report.ID == reportID {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func readEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		res = append(res, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying writer.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logger.Close()
}
