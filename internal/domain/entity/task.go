package entity

import "time"

type TaskStatus string

const (
	TaskStatusStarting  TaskStatus = "starting"
	TaskStatusProgress  TaskStatus = "progress"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusNotFound  TaskStatus = "not_found"
)

// Terminal reports whether the task will never change again.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskRecord tracks one in-flight orchestration run for polling clients.
// Each record is written only by its own background goroutine; readers
// always get a snapshot copy from the registry.
type TaskRecord struct {
	TaskID             string            `json:"task_id"`
	Status             TaskStatus        `json:"status"`
	CurrentField       string            `json:"current_field,omitempty"`
	FieldsFilled       int               `json:"fields_filled"`
	TotalFields        int               `json:"total_fields"`
	ProgressPercentage int               `json:"progress_percentage"`
	Message            string            `json:"message"`
	Error              string            `json:"error,omitempty"`
	Result             *AutomationResult `json:"result,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	FinishedAt         time.Time         `json:"-"`
}
