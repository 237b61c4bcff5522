package model

import "fmt"

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending: true,
		StatusSkipped: true,
	},
	StatusPending: {
		StatusPending: true,
		StatusRunning: true,
		StatusFailed:  true,
		StatusSkipped: true,
	},
	StatusRunning: {
		StatusRunning:   true,
		StatusSucceeded: true,
		StatusFailed:    true,
		StatusPending:   true, // previous run interrupted mid-video
	},
	StatusSucceeded: {
		StatusSucceeded: true,
		StatusPending:   true, // local audio missing, needs re-ingest
		StatusRunning:   true, // duplicate playlist entry, reprocessed idempotently
		StatusSkipped:   true, // resume with --skip-existing
	},
	StatusFailed: {
		StatusFailed:  true,
		StatusPending: true,
		StatusRunning: true, // re-invocation retries failed records
		StatusSkipped: true, // artifacts landed before the failure
	},
	StatusSkipped: {
		StatusSkipped: true,
		StatusPending: true,
		StatusRunning: true,
	},
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionRecordStatus(rec *VideoRecord, toStatus string, reason string) error {
	from := rec.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid record status transition: %q -> %q (video_id=%s)", from, toStatus, rec.VideoID)
	}
	rec.Status = toStatus
	rec.Reason = reason
	return nil
}

// RecomputeCounts refreshes the manifest's aggregate counters from its records.
func RecomputeCounts(mf *Manifest) {
	pending := 0
	running := 0
	succeeded := 0
	failed := 0
	skipped := 0

	for _, v := range mf.Videos {
		switch v.Status {
		case StatusPending:
			pending++
		case StatusRunning:
			running++
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}

	mf.Total = len(mf.Videos)
	mf.Pending = pending
	mf.Running = running
	mf.Succeeded = succeeded
	mf.Failed = failed
	mf.Skipped = skipped
}
