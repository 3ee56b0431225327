package jobs

import (
	"testing"
)

func TestCreateListRemove(t *testing.T) {
	s := NewStore(func(jobID string, payload any) {})
	defer s.Stop()

	if _, err := s.Create("daily", "0 8 * * *", map[string]any{"title": "Morning"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create("weekly", "0 9 * * 1", nil); err != nil {
		t.Fatal(err)
	}

	jobs := s.List()
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != "daily" || jobs[1].ID != "weekly" {
		t.Errorf("jobs out of order: %v", jobs)
	}
	if jobs[0].Spec != "0 8 * * *" {
		t.Errorf("got spec %q", jobs[0].Spec)
	}

	if err := s.Remove("daily"); err != nil {
		t.Fatal(err)
	}
	if got := s.List(); len(got) != 1 || got[0].ID != "weekly" {
		t.Errorf("after remove: %v", got)
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	s := NewStore(func(jobID string, payload any) {})
	defer s.Stop()

	if _, err := s.Create("j", "@hourly", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create("j", "@daily", nil); err == nil {
		t.Error("duplicate job ID should be rejected")
	}
}

func TestCreateInvalidSpecFails(t *testing.T) {
	s := NewStore(func(jobID string, payload any) {})
	defer s.Stop()

	if _, err := s.Create("bad", "not a cron spec", nil); err == nil {
		t.Error("invalid cron spec should be rejected")
	}
	if len(s.List()) != 0 {
		t.Error("failed create must not register the job")
	}
}

func TestRemoveMissingFails(t *testing.T) {
	s := NewStore(func(jobID string, payload any) {})
	defer s.Stop()

	if err := s.Remove("ghost"); err == nil {
		t.Error("removing a missing job should fail")
	}
}
