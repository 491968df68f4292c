package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusNormalizing  Status = "normalizing"
	StatusNormalized   Status = "normalized"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusDiarizing    Status = "diarizing"
	StatusDiarized     Status = "diarized"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusNormalizing,
	StatusNormalized,
	StatusTranscribing,
	StatusTranscribed,
	StatusDiarizing,
	StatusDiarized,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

type statusTransition struct {
	from Status
	to   Status
}

// Rollback targets for items left mid-stage by a crash or kill.
var stageRollbackTransitions = []statusTransition{
	{from: StatusNormalizing, to: StatusPending},
	{from: StatusTranscribing, to: StatusNormalized},
	{from: StatusDiarizing, to: StatusTranscribed},
	{from: StatusRendering, to: StatusDiarized},
}

// Item represents one recording tracked in the queue.
type Item struct {
	ID                int64
	SourcePath        string
	Title             string
	Status            Status
	SourceFingerprint string
	DetectedLanguage  string
	NormalizedFile    string
	TranscriptFile    string
	DiarizationFile   string
	MarkdownFile      string
	PDFFile           string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ProgressStage     string
	ProgressPercent   float64
	ProgressMessage   string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	if _, ok := statusSet[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// IsTerminal reports whether the status ends an item's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing reports whether the status marks an in-flight stage.
func (s Status) IsProcessing() bool {
	switch s {
	case StatusNormalizing, StatusTranscribing, StatusDiarizing, StatusRendering:
		return true
	}
	return false
}
