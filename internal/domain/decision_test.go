package domain

import "testing"

func TestCategoryInvert(t *testing.T) {
	if got := CategoryDecline.Invert(); got != CategoryMoveForward {
		t.Errorf("Invert(decline) = %q, want %q", got, CategoryMoveForward)
	}

	if got := CategoryMoveForward.Invert(); got != CategoryDecline {
		t.Errorf("Invert(move forward) = %q, want %q", got, CategoryDecline)
	}

	// Unknown categories are treated as move-forward and invert to decline
	if got := Category("newsletter").Invert(); got != CategoryDecline {
		t.Errorf("Invert(newsletter) = %q, want %q", got, CategoryDecline)
	}
}

func TestMeetingRequested(t *testing.T) {
	affirmative := []string{"yes", "Yes", "YES", "true", "1", " yes "}
	for _, v := range affirmative {
		if !MeetingRequested(v) {
			t.Errorf("MeetingRequested(%q) = false, want true", v)
		}
	}

	negative := []string{"no", "false", "0", "", "maybe", "yess"}
	for _, v := range negative {
		if MeetingRequested(v) {
			t.Errorf("MeetingRequested(%q) = true, want false", v)
		}
	}
}

func TestTaskStatusIsValid(t *testing.T) {
	valid := []TaskStatus{
		TaskStatusIdle,
		TaskStatusStarting,
		TaskStatusRunning,
		TaskStatusDraftCreated,
		TaskStatusCompleted,
		TaskStatusFailed,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []TaskStatus{"", "done", "IDLE", "pending"}
	for _, s := range invalid {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestNewTaskState(t *testing.T) {
	state := NewTaskState()

	if state.Running {
		t.Error("new task state should not be running")
	}
	if state.Status != TaskStatusIdle {
		t.Errorf("new task state status = %q, want %q", state.Status, TaskStatusIdle)
	}
	if state.Results != nil {
		t.Error("new task state should have no results")
	}
}
