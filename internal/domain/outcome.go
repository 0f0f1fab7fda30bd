package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutcomeKind enumerates how a single processed entry ended.
type OutcomeKind string

const (
	OutcomeOK      OutcomeKind = "ok"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the per-entry result of a run. Key identifies the entry (URL or slug).
type Outcome struct {
	Kind   OutcomeKind
	Topic  string
	Key    string
	Reason string
	Err    error
}

// OK builds a successful outcome.
func OK(topic, key, reason string) Outcome {
	return Outcome{Kind: OutcomeOK, Topic: topic, Key: key, Reason: reason}
}

// Skipped builds an outcome for an entry that was intentionally not processed.
func Skipped(topic, key, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Topic: topic, Key: key, Reason: reason}
}

// Failed builds an outcome for an entry that hit an error.
func Failed(topic, key string, err error) Outcome {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return Outcome{Kind: OutcomeFailed, Topic: topic, Key: key, Reason: reason, Err: err}
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return fmt.Sprintf("%s %s", o.Kind, o.Key)
	}
	return fmt.Sprintf("%s %s (%s)", o.Kind, o.Key, o.Reason)
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	Command   string    `json:"command"`
	RunID     string    `json:"run_id"`
	New       int       `json:"new"`
	Drafted   int       `json:"drafted"`
	Published int       `json:"published"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"-"`
}

// Add folds an outcome into the counters. Successful outcomes count towards
// the bucket matching the run's command.
func (s *Summary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Kind {
	case OutcomeOK:
		switch s.Command {
		case "draft":
			s.Drafted++
		case "tick", "publish":
			s.Published++
		default:
			s.New++
		}
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Merge adds the counters and outcomes of another summary.
func (s *Summary) Merge(other Summary) {
	s.New += other.New
	s.Drafted += other.Drafted
	s.Published += other.Published
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Outcomes = append(s.Outcomes, other.Outcomes...)
}

// MarshalJSON keeps the outcome list out of the printed summary but reports its length.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		Entries int `json:"entries"`
	}{plain(s), len(s.Outcomes)})
}

// JournalEntry is one outcome as stored in the run journal.
type JournalEntry struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	Topic      string    `json:"topic,omitempty"`
	Kind       string    `json:"kind"`
	Key        string    `json:"key"`
	Reason     string    `json:"reason,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewJournalEntry converts an outcome of the given run.
func NewJournalEntry(runID, command string, o Outcome, at time.Time) JournalEntry {
	return JournalEntry{
		RunID:      runID,
		Command:    command,
		Topic:      o.Topic,
		Kind:       string(o.Kind),
		Key:        o.Key,
		Reason:     o.Reason,
		RecordedAt: at,
	}
}
