package job

import "testing"

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{from: StatusPending, to: StatusProcessing, want: true},
		{from: StatusPending, to: StatusFailed, want: true},
		{from: StatusProcessing, to: StatusProcessing, want: true},
		{from: StatusProcessing, to: StatusCompleted, want: true},
		{from: StatusProcessing, to: StatusFailed, want: true},
		{from: StatusProcessing, to: StatusPending, want: false},
		{from: StatusCompleted, to: StatusFailed, want: false},
		{from: StatusFailed, to: StatusProcessing, want: false},
		{from: StatusFailed, to: StatusCompleted, want: false},
		{from: StatusPending, to: Status("archived"), want: false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestScrapingJob_RunID(t *testing.T) {
	j := ScrapingJob{}
	if j.RunID() != "" {
		t.Fatalf("expected empty run id on nil result")
	}

	j.Result = map[string]any{ResultRunID: "run-1", ResultDatasetID: 42}
	if j.RunID() != "run-1" {
		t.Fatalf("unexpected run id %q", j.RunID())
	}
	if j.DatasetID() != "" {
		t.Fatalf("non-string dataset id must be ignored")
	}
}
