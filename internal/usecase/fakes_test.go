package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/scoring"
)

const etsBody = "The EU ETS now covers shipping emissions. Carriers report CO2 under MRV and IMO rules, and every fleet pays for carbon."

var runDay = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return runDay }

// openTable is the emissions table without the title prefilter.
func openTable() scoring.Table {
	t := scoring.Emissions
	t.Prefilter = nil
	return t
}

type fakeFeeds struct {
	entries map[string][]domain.FeedEntry
	errs    map[string]error
}

func (f *fakeFeeds) Fetch(_ context.Context, feedURL string) ([]domain.FeedEntry, error) {
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return f.entries[feedURL], nil
}

type fakeExtractor struct {
	pages map[string]domain.Extracted
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (domain.Extracted, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return domain.Extracted{}, errors.New("404 not found")
	}
	return page, nil
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f fakeSummarizer) Summarize(context.Context, string, string) (string, error) {
	return f.summary, f.err
}

type fakeGenerator struct {
	body  string
	err   error
	calls []string
}

func (f *fakeGenerator) Generate(_ context.Context, title, _, _ string) (string, error) {
	f.calls = append(f.calls, title)
	return f.body, f.err
}

type fakeImages struct{ url string }

func (f fakeImages) FeaturedImage(context.Context, string) string { return f.url }

type commitCall struct {
	paths   []string
	message string
}

type recordingSyncer struct {
	commits []commitCall
	err     error
}

func (r *recordingSyncer) Commit(_ context.Context, paths []string, message string) error {
	r.commits = append(r.commits, commitCall{paths: append([]string(nil), paths...), message: message})
	return r.err
}

func (r *recordingSyncer) messages() []string {
	out := make([]string, 0, len(r.commits))
	for _, c := range r.commits {
		out = append(out, c.message)
	}
	return out
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

type memoryJournal struct {
	entries []domain.JournalEntry
}

func (m *memoryJournal) Record(_ context.Context, e domain.JournalEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryJournal) Recent(_ context.Context, limit int) ([]domain.JournalEntry, error) {
	out := make([]domain.JournalEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

type fakeLocker struct {
	busy     error
	acquired int
	released int
}

func (f *fakeLocker) Acquire(context.Context) (func() error, error) {
	if f.busy != nil {
		return nil, f.busy
	}
	f.acquired++
	return func() error {
		f.released++
		return nil
	}, nil
}

type fakeObserver struct {
	summaries []domain.Summary
	sizes     map[string]int
}

func (f *fakeObserver) Observe(s domain.Summary, _ int64) {
	f.summaries = append(f.summaries, s)
}

func (f *fakeObserver) IndexSize(topic string, size int) {
	if f.sizes == nil {
		f.sizes = map[string]int{}
	}
	f.sizes[topic] = size
}

type fakeDriver struct {
	mu      sync.Mutex
	specs   []string
	jobs    []func(time.Time)
	started bool
	stopped bool
	addErr  error
}

func (f *fakeDriver) Add(spec string, job func(time.Time)) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, spec)
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeDriver) Start(context.Context) error {
	f.started = true
	return nil
}

func (f *fakeDriver) Stop(context.Context) error {
	f.stopped = true
	return nil
}
