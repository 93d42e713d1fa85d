package board

import (
	"testing"
	"time"
)

func strptr(s string) *string          { return &s }
func statusptr(s Status) *Status       { return &s }
func prioptr(p Priority) *Priority     { return &p }
func assigneeptr(a Assignee) *Assignee { return &a }

func TestMerge_CreateDefaults(t *testing.T) {
	now := time.Now().UTC()
	got := Merge(nil, TaskPatch{ID: "t_1"}, now)

	if got.Title != DefaultTitle {
		t.Errorf("title = %q, want %q", got.Title, DefaultTitle)
	}
	if got.Assignee != AssigneeNone || got.Status != StatusBacklog || got.Priority != PriorityMed {
		t.Errorf("defaults not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("createdAt and updatedAt must both be now on create: %+v", got)
	}
}

func TestMerge_CreateWithFields(t *testing.T) {
	now := time.Now().UTC()
	got := Merge(nil, TaskPatch{
		ID:       "t_1",
		Title:    strptr("Ship"),
		Status:   statusptr(StatusTodo),
		Priority: prioptr(PriorityHigh),
	}, now)

	if got.Title != "Ship" || got.Status != StatusTodo || got.Priority != PriorityHigh {
		t.Errorf("provided fields must win over defaults: %+v", got)
	}
	if got.Assignee != AssigneeNone {
		t.Errorf("absent assignee should default: %+v", got)
	}
}

func TestMerge_UpdatePreservesAbsentFields(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour)
	existing := Task{
		ID: "t_1", Title: "Ship", Description: "the big one",
		Assignee: AssigneeAria, Status: StatusTodo, Priority: PriorityHigh,
		CreatedAt: created, UpdatedAt: created,
	}
	now := time.Now().UTC()

	got := Merge(&existing, TaskPatch{ID: "t_1", Status: statusptr(StatusDone)}, now)

	if got.Status != StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.Title != "Ship" || got.Description != "the big one" || got.Assignee != AssigneeAria || got.Priority != PriorityHigh {
		t.Errorf("fields absent from the patch must be preserved: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("createdAt must never move: got %v, want %v", got.CreatedAt, created)
	}
	if got.UpdatedAt.Before(existing.UpdatedAt) {
		t.Errorf("updatedAt must be non-decreasing")
	}
}

func TestMerge_TitleDefaultOnlyOnCreate(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour)
	existing := Task{
		ID: "t_1", Title: "Real title",
		Assignee: AssigneeNone, Status: StatusBacklog, Priority: PriorityMed,
		CreatedAt: created, UpdatedAt: created,
	}

	got := Merge(&existing, TaskPatch{ID: "t_1", Priority: prioptr(PriorityLow)}, time.Now().UTC())
	if got.Title != "Real title" {
		t.Errorf("an update without a title must keep the stored title, got %q", got.Title)
	}
}

func TestPatchValidate(t *testing.T) {
	cases := []struct {
		name  string
		patch TaskPatch
		ok    bool
	}{
		{"minimal", TaskPatch{ID: "t_1"}, true},
		{"missing id", TaskPatch{}, false},
		{"empty title", TaskPatch{ID: "t_1", Title: strptr("  ")}, false},
		{"bad status", TaskPatch{ID: "t_1", Status: statusptr("shipped")}, false},
		{"bad priority", TaskPatch{ID: "t_1", Priority: prioptr("urgent")}, false},
		{"bad assignee", TaskPatch{ID: "t_1", Assignee: assigneeptr("mallory")}, false},
		{"all valid", TaskPatch{
			ID: "t_1", Title: strptr("x"),
			Status: statusptr(StatusBlocked), Priority: prioptr(PriorityLow), Assignee: assigneeptr(AssigneeBoth),
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{
		ID: "t_1", Title: "x",
		Assignee: AssigneeNone, Status: StatusBacklog, Priority: PriorityMed,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	bad := valid
	bad.Status = "launched"
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected validation error for unknown status")
	}
	verr, ok := err.(*ValidationError)
	if !ok || len(verr.Fields) != 1 || verr.Fields[0].Field != "status" {
		t.Fatalf("expected a single status field error, got %v", err)
	}
}
