package models

import (
	"encoding/json"
	"time"
)

// Agent names used in run log entries.
const (
	AgentSystem      = "System"
	AgentPlanner     = "Planner"
	AgentDealHunter  = "DealHunter"
	AgentLinkBuilder = "LinkBuilder"
)

// Log severities.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// EventType discriminates structured run log entries so consumers never have
// to parse message text to recover structure.
type EventType string

const (
	EventPlan    EventType = "plan"
	EventAction  EventType = "action"
	EventItem    EventType = "item"
	EventSummary EventType = "summary"
	EventError   EventType = "error"
)

// RunLog is an append-only event record. Rows are never mutated after insert;
// the external dashboard polls them for progress.
type RunLog struct {
	ID        string          `json:"id" db:"id"`
	RunID     string          `json:"run_id" db:"run_id"`
	Agent     string          `json:"agent" db:"agent"`
	Level     string          `json:"level" db:"level"`
	EventType EventType       `json:"event_type" db:"event_type"`
	Message   string          `json:"message" db:"message"`
	Payload   json.RawMessage `json:"payload,omitempty" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
