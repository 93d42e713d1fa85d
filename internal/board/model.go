package board

import (
	"fmt"
	"strings"
	"time"
)

// Status is a workflow stage. The order below is the display order of the
// board columns; any status may be set from any status.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusBlocked, StatusDone}

type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMed, PriorityHigh}

type Assignee string

const (
	AssigneeNone  Assignee = "unassigned"
	AssigneeRajin Assignee = "rajin"
	AssigneeAria  Assignee = "aria"
	AssigneeBoth  Assignee = "both"
)

var Assignees = []Assignee{AssigneeNone, AssigneeRajin, AssigneeAria, AssigneeBoth}

func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh:
		return true
	}
	return false
}

func (a Assignee) Valid() bool {
	switch a {
	case AssigneeNone, AssigneeRajin, AssigneeAria, AssigneeBoth:
		return true
	}
	return false
}

// Defaults applied on the create path of an upsert.
const (
	DefaultTitle    = "Untitled"
	DefaultAssignee = AssigneeNone
	DefaultStatus   = StatusBacklog
	DefaultPriority = PriorityMed
)

// Task is the canonical record shared by both backends.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    Assignee  `json:"assignee"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Board is the full task collection, the complete projection of the active
// backend's contents.
type Board struct {
	Tasks []Task `json:"tasks"`
}

// TaskPatch is a partial task keyed by id. Nil fields mean "not provided":
// on create they fall back to defaults, on update they keep the stored value.
type TaskPatch struct {
	ID          string
	Title       *string
	Description *string
	Assignee    *Assignee
	Status      *Status
	Priority    *Priority
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field failures for the 422 envelope.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func validationErr(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validate checks a fully merged task before it is persisted or after it is
// read back from storage.
func (t Task) Validate() error {
	var errs []FieldError
	if t.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "id is required"})
	}
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if !t.Assignee.Valid() {
		errs = append(errs, FieldError{Field: "assignee", Message: fmt.Sprintf("unknown assignee %q", t.Assignee)})
	}
	if !t.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", t.Status)})
	}
	if !t.Priority.Valid() {
		errs = append(errs, FieldError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", t.Priority)})
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Validate checks the provided fields of a patch. A present title must be
// non-empty; partial updates never blank out a title.
func (p TaskPatch) Validate() error {
	var errs []FieldError
	if p.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "id is required"})
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title must not be empty"})
	}
	if p.Assignee != nil && !p.Assignee.Valid() {
		errs = append(errs, FieldError{Field: "assignee", Message: fmt.Sprintf("unknown assignee %q", *p.Assignee)})
	}
	if p.Status != nil && !p.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", *p.Status)})
	}
	if p.Priority != nil && !p.Priority.Valid() {
		errs = append(errs, FieldError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", *p.Priority)})
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Merge is the upsert rule shared by both stores: for each field,
// provided value, else existing value, else default. existing == nil is the
// create path: createdAt is set to now, exactly once; updates keep it and
// only move updatedAt.
func Merge(existing *Task, patch TaskPatch, now time.Time) Task {
	if existing == nil {
		t := Task{
			ID:        patch.ID,
			Title:     DefaultTitle,
			Assignee:  DefaultAssignee,
			Status:    DefaultStatus,
			Priority:  DefaultPriority,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyPatch(&t, patch)
		return t
	}

	t := *existing
	applyPatch(&t, patch)
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = now
	return t
}

func applyPatch(t *Task, patch TaskPatch) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Assignee != nil {
		t.Assignee = *patch.Assignee
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
}
