package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity re-derives inventory totals from holdings.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskRestockScan lists products at or below their restock threshold.
	TaskRestockScan = "products:restock-scan"
)

// ScanPayload carries scheduling metadata shared by the periodic scans.
type ScanPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewLedgerIntegrityTask constructs an Asynq task for the ledger integrity scan.
func NewLedgerIntegrityTask(at time.Time) (*asynq.Task, error) {
	return newScanTask(TaskLedgerIntegrity, at)
}

// NewRestockScanTask constructs an Asynq task for the restock scan.
func NewRestockScanTask(at time.Time) (*asynq.Task, error) {
	return newScanTask(TaskRestockScan, at)
}

func newScanTask(taskType string, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{RequestedAt: at.UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

func decodeScan(t *asynq.Task) (ScanPayload, error) {
	var payload ScanPayload
	if len(t.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, asynq.SkipRetry
	}
	return payload, nil
}
