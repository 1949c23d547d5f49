// Package queue defines message payloads exchanged over the message broker.
package queue

// TaskCompletedEvent is published when a task transitions to completed.
// It carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type TaskCompletedEvent struct {
    TaskID      uint64 `json:"task_id"`
    OwnerID     uint64 `json:"owner_id"`
    CategoryID  uint64 `json:"category_id,omitempty"`
    Title       string `json:"title"`
    Priority    string `json:"priority"`
    CompletedAt string `json:"completed_at"`
}
