package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	apperrors "cryptocap/internal/errors"
)

// SnapshotExtensions are the file types the snapshot loader reads
var SnapshotExtensions = []string{".csv", ".txt", ".xlsx"}

// snapshotDateLayouts are tried in order on each date-like run of a file name,
// e.g. coinmarketcap_06122017.csv or snapshot_2017-12-06.csv
var snapshotDateLayouts = []string{"02012006", "20060102", "2006-01-02", "2006_01_02"}

var dateRun = regexp.MustCompile(`\d{4}[-_]\d{2}[-_]\d{2}|\d{8}`)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	// Date is parsed from the file name; zero when the name carries none
	Date time.Time
}

// Timestamp orders snapshots: the name date when present, else the modification time
func (f FileInfo) Timestamp() time.Time {
	if !f.Date.IsZero() {
		return f.Date
	}
	return f.ModTime
}

// Discovery provides snapshot discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindSnapshots finds every loadable snapshot in dir, oldest first
func (d *Discovery) FindSnapshots(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsSnapshotFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		date, _ := ParseSnapshotDate(entry.Name())
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Date:    date,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		ti, tj := files[i].Timestamp(), files[j].Timestamp()
		if ti.Equal(tj) {
			return files[i].Name < files[j].Name
		}
		return ti.Before(tj)
	})

	return files, nil
}

// IsSnapshotFile reports whether name has a loadable extension. Office lock
// files (~$name.xlsx) are ignored.
func IsSnapshotFile(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range SnapshotExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ParseSnapshotDate extracts the snapshot date from a file name
func ParseSnapshotDate(name string) (time.Time, bool) {
	for _, run := range dateRun.FindAllString(name, -1) {
		for _, layout := range snapshotDateLayouts {
			if len(layout) != len(run) {
				continue
			}
			if t, err := time.Parse(layout, run); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// GetLatestFile returns the most recent snapshot from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.Timestamp().After(latest.Timestamp()) {
			latest = file
		}
	}

	return latest, true
}

// ResolveSnapshot returns path when it names a file, or the latest snapshot
// inside it when it names a directory. Failures are load errors.
func ResolveSnapshot(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", apperrors.NewLoadError(path, "cannot open snapshot", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	snapshots, err := NewDiscovery("").FindSnapshots(path)
	if err != nil {
		return "", apperrors.NewLoadError(path, "cannot list snapshot directory", err)
	}
	latest, ok := GetLatestFile(snapshots)
	if !ok {
		return "", apperrors.NewLoadError(path, "no snapshot found in directory", nil)
	}
	return latest.Path, nil
}
