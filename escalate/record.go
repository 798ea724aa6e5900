package escalate

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/Danservfinn/cogkit/tier"
)

// DefaultLogLimit bounds the retained escalation history.
const DefaultLogLimit = 100

// TrainingCandidateThreshold is the repeat count at which a recurring task
// hash is flagged as a candidate for future specialization.
const TrainingCandidateThreshold = 5

// Record is an immutable log entry for one escalation that occurred.
type Record struct {
	// Time is when the escalation happened.
	Time time.Time `json:"time"`

	// Trigger names the rule that caused it.
	Trigger Trigger `json:"trigger"`

	// FromTier and ToTier bracket the move.
	FromTier tier.Tier `json:"from_tier"`
	ToTier   tier.Tier `json:"to_tier"`

	// TaskType classifies the request.
	TaskType string `json:"task_type"`

	// TaskHash is a content hash used for frequency pattern detection.
	TaskHash string `json:"task_hash"`

	// Cost is the USD cost incurred by the escalated call.
	Cost float64 `json:"cost"`

	// Outcome describes how the escalated call ended ("success", ...).
	Outcome string `json:"outcome"`

	// ShouldTrainCustom flags recurring patterns worth specializing.
	// Informational only; nothing in this core acts on it.
	ShouldTrainCustom bool `json:"should_train_custom"`
}

// HashTask returns a stable short hash of task content for frequency
// pattern detection.
func HashTask(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

// Log is a bounded escalation history with aggregate counters. It is safe
// for concurrent use.
type Log struct {
	mu sync.Mutex

	limit      int
	records    []Record
	totalCost  float64
	total      int64
	byTrigger  map[Trigger]int64
	hashCounts map[string]int
}

// NewLog creates an escalation log retaining the most recent limit records.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &Log{
		limit:      limit,
		byTrigger:  make(map[Trigger]int64),
		hashCounts: make(map[string]int),
	}
}

// Record appends an escalation record, accumulates its cost, and updates
// the task-hash frequency counter. Once a hash has recurred
// TrainingCandidateThreshold times, records for it are flagged as training
// candidates. The (possibly flagged) record is returned.
func (l *Log) Record(rec Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	if rec.TaskHash != "" {
		l.hashCounts[rec.TaskHash]++
		if l.hashCounts[rec.TaskHash] >= TrainingCandidateThreshold {
			rec.ShouldTrainCustom = true
		}
	}

	l.total++
	l.totalCost += rec.Cost
	l.byTrigger[rec.Trigger]++

	l.records = append(l.records, rec)
	if len(l.records) > l.limit {
		l.records = l.records[len(l.records)-l.limit:]
	}
	return rec
}

// LogStats is a read-only snapshot of the escalation log.
type LogStats struct {
	// Total is the count of all escalations ever recorded.
	Total int64 `json:"total"`

	// TotalCost is the accumulated USD cost of escalations.
	TotalCost float64 `json:"total_cost"`

	// ByTrigger counts escalations per trigger.
	ByTrigger map[Trigger]int64 `json:"by_trigger"`

	// Recent holds the most recent records (bounded).
	Recent []Record `json:"recent"`

	// TrainingCandidates lists task hashes that recurred enough to be
	// worth specializing, with their counts.
	TrainingCandidates map[string]int `json:"training_candidates"`
}

// Stats returns a snapshot of the log. Recent is limited to the last 20
// records.
func (l *Log) Stats() LogStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	const recentLimit = 20
	recent := l.records
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}

	byTrigger := make(map[Trigger]int64, len(l.byTrigger))
	for k, v := range l.byTrigger {
		byTrigger[k] = v
	}
	candidates := make(map[string]int)
	for hash, count := range l.hashCounts {
		if count >= TrainingCandidateThreshold {
			candidates[hash] = count
		}
	}

	return LogStats{
		Total:              l.total,
		TotalCost:          l.totalCost,
		ByTrigger:          byTrigger,
		Recent:             append([]Record(nil), recent...),
		TrainingCandidates: candidates,
	}
}
