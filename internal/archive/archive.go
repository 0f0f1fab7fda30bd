// Package archive persists scraped articles and maintains the bounded rolling index.
package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/store"
)

// DefaultCap is the number of items kept in the public index.
const DefaultCap = 50

const maxFilenameRunes = 50

// Archive owns one topic's record directory and its rolling index file.
// The archive directory is the system of record; the index is a view over it.
type Archive struct {
	dir       string
	indexPath string
	cap       int
	index     []domain.NewsItem
	added     int
	logger    *slog.Logger
}

// Open loads the rolling index and makes sure the record directory exists.
// A malformed index is treated as empty.
func Open(indexPath, dir string, capacity int, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	var index []domain.NewsItem
	if _, err := store.ReadJSON(indexPath, &index); err != nil {
		if !errors.Is(err, store.ErrMalformed) {
			return nil, fmt.Errorf("load index: %w", err)
		}
		logger.Warn("index unreadable, starting empty", "path", indexPath, "error", err)
		index = nil
	}

	return &Archive{
		dir:       dir,
		indexPath: indexPath,
		cap:       capacity,
		index:     index,
		logger:    logger,
	}, nil
}

// Items returns a copy of the current index.
func (a *Archive) Items() []domain.NewsItem {
	return append([]domain.NewsItem(nil), a.index...)
}

// Len returns the current index length.
func (a *Archive) Len() int {
	return len(a.index)
}

// Added returns how many items were archived since Open.
func (a *Archive) Added() int {
	return a.added
}

// Dir returns the record directory.
func (a *Archive) Dir() string {
	return a.dir
}

// IndexPath returns the index file location.
func (a *Archive) IndexPath() string {
	return a.indexPath
}

// Archive writes the item's record file and puts it at the head of the index.
// Records are addressed by title; a later item with the same filename replaces
// the earlier record.
func (a *Archive) Archive(item domain.NewsItem) (string, error) {
	name := Filename(item.Title) + ".json"
	path := filepath.Join(a.dir, name)
	if err := store.WriteJSON(path, item, "    "); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}

	a.index = append([]domain.NewsItem{item}, a.index...)
	a.added++
	return name, nil
}

// Flush sorts and truncates the index and writes it. It does nothing and
// reports false when no item was archived since the last flush.
func (a *Archive) Flush() (bool, error) {
	if a.added == 0 {
		return false, nil
	}

	a.index = Rank(a.index, a.cap)
	if err := store.WriteJSON(a.indexPath, a.index, "  "); err != nil {
		return false, fmt.Errorf("write index: %w", err)
	}
	a.added = 0
	return true, nil
}

// Rank orders items by date then score, both descending, keeping the relative
// order of ties, and drops everything past capacity.
func Rank(items []domain.NewsItem, capacity int) []domain.NewsItem {
	ranked := append([]domain.NewsItem(nil), items...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Date != ranked[j].Date {
			return ranked[i].Date > ranked[j].Date
		}
		return ranked[i].Score > ranked[j].Score
	})
	if capacity > 0 && len(ranked) > capacity {
		ranked = ranked[:capacity]
	}
	return ranked
}

// Filename turns a title into a record name: lower case, every rune that is
// not a letter or digit replaced by '-', outer dashes trimmed, 50 runes max.
func Filename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}
	name := []rune(strings.Trim(b.String(), "-"))
	if len(name) > maxFilenameRunes {
		name = name[:maxFilenameRunes]
	}
	if len(name) == 0 {
		return "untitled"
	}
	return string(name)
}

// LoadRecords reads every record in dir. Unreadable records are skipped; a
// missing directory is an error.
func LoadRecords(dir string, logger *slog.Logger) ([]domain.NewsItem, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	var items []domain.NewsItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var item domain.NewsItem
		found, err := store.ReadJSON(filepath.Join(dir, entry.Name()), &item)
		if err != nil || !found {
			logger.Debug("skip record", "file", entry.Name(), "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
