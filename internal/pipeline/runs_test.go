package pipeline

import (
	"testing"
	"time"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()

	run := reg.Begin("user-1")
	if run.ID == "" {
		t.Fatal("Begin returned empty run ID")
	}
	if run.Status != RunStatusRunning {
		t.Fatalf("new run status = %q, want %q", run.Status, RunStatusRunning)
	}

	reg.Update(run.ID, 35)
	reg.Update(run.ID, 10) // stale report, must not move progress backwards
	got, ok := reg.Get(run.ID)
	if !ok {
		t.Fatal("Get returned not found for live run")
	}
	if got.Progress != 35 {
		t.Fatalf("progress = %d, want 35", got.Progress)
	}

	reg.Complete(run.ID, "doc-1")
	got, _ = reg.Get(run.ID)
	if got.Status != RunStatusComplete || got.Progress != 100 || got.DocumentID != "doc-1" {
		t.Fatalf("completed run = %+v", got)
	}
}

func TestRegistryFail(t *testing.T) {
	reg := NewRegistry()
	run := reg.Begin("user-1")

	reg.Fail(run.ID, "Failed to upload file to storage")

	got, _ := reg.Get(run.ID)
	if got.Status != RunStatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
	if got.Error == "" {
		t.Fatal("failed run carries no error message")
	}
}

func TestRegistryUnknownRun(t *testing.T) {
	reg := NewRegistry()

	// Updates against unknown IDs are dropped, not panics.
	reg.Update("missing", 50)
	reg.Complete("missing", "doc")
	reg.Fail("missing", "nope")

	if _, ok := reg.Get("missing"); ok {
		t.Fatal("Get returned a run that was never begun")
	}
}

func TestRegistrySweepsTerminalRuns(t *testing.T) {
	reg := NewRegistry()
	current := time.Now()
	reg.now = func() time.Time { return current }

	finished := reg.Begin("user-1")
	reg.Complete(finished.ID, "doc-1")

	failed := reg.Begin("user-1")
	reg.Fail(failed.ID, "Document processing failed")

	inflight := reg.Begin("user-1")

	// Inside the retention window everything is still pollable.
	current = current.Add(runRetention / 2)
	reg.Begin("user-2")
	if _, ok := reg.Get(finished.ID); !ok {
		t.Fatal("terminal run evicted inside the retention window")
	}

	// Past the window the next Begin sweeps the terminal runs; the one
	// still running stays whatever its age.
	current = current.Add(runRetention)
	reg.Begin("user-2")
	if _, ok := reg.Get(finished.ID); ok {
		t.Fatal("completed run survived past retention")
	}
	if _, ok := reg.Get(failed.ID); ok {
		t.Fatal("failed run survived past retention")
	}
	if _, ok := reg.Get(inflight.ID); !ok {
		t.Fatal("running run was swept")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	run := reg.Begin("user-1")

	got, _ := reg.Get(run.ID)
	got.Progress = 99

	fresh, _ := reg.Get(run.ID)
	if fresh.Progress != 0 {
		t.Fatal("mutating a Get result leaked into the registry")
	}
}
