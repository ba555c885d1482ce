package screen

import "testing"

func TestConfirmation_Confirm(t *testing.T) {
	var c Confirmation
	m := Mutation{Kind: DeleteTask, ProjectID: "p1", TaskID: "t1"}
	if err := c.Request(m); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if c.State() != PendingConfirmation {
		t.Fatalf("state = %v, want pending", c.State())
	}
	got, ok := c.Confirm()
	if !ok || got != m {
		t.Fatalf("Confirm() = %+v, %v", got, ok)
	}
	if c.State() != Confirmed {
		t.Errorf("state = %v, want confirmed", c.State())
	}
	if _, ok := c.Confirm(); ok {
		t.Error("confirmed twice")
	}
}

func TestConfirmation_Decline(t *testing.T) {
	var c Confirmation
	_ = c.Request(Mutation{Kind: DeleteProject, ProjectID: "p1"})
	c.Decline()
	if c.State() != Cancelled {
		t.Errorf("state = %v, want cancelled", c.State())
	}
	if _, ok := c.Confirm(); ok {
		t.Error("confirmed after decline")
	}
	if _, ok := c.Pending(); ok {
		t.Error("still pending after decline")
	}
}

func TestConfirmation_OnlyDeletes(t *testing.T) {
	var c Confirmation
	if err := c.Request(Mutation{Kind: UpdateProject}); err == nil {
		t.Error("expected error for a non-destructive mutation")
	}
	if c.State() != ConfirmIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestConfirmation_OneAtATime(t *testing.T) {
	var c Confirmation
	_ = c.Request(Mutation{Kind: DeleteTask, TaskID: "t1"})
	if err := c.Request(Mutation{Kind: DeleteTask, TaskID: "t2"}); err == nil {
		t.Error("expected error while a confirmation is pending")
	}
	m, _ := c.Pending()
	if m.TaskID != "t1" {
		t.Errorf("pending task = %q, want t1", m.TaskID)
	}
}
