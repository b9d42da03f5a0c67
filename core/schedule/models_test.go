package schedule

import (
	"testing"
	"time"
)

func TestPatternPeriodKey(t *testing.T) {
	tests := []struct {
		pattern Pattern
		anchor  time.Time
		want    string
	}{
		{PatternMonthly, Date(2026, 1, 31), "2026-01"},
		{PatternMonthly, Date(2026, 12, 1), "2026-12"},
		{PatternQuarterly, Date(2026, 1, 15), "2026-Q1"},
		{PatternQuarterly, Date(2026, 3, 31), "2026-Q1"},
		{PatternQuarterly, Date(2026, 4, 1), "2026-Q2"},
		{PatternQuarterly, Date(2026, 10, 15), "2026-Q4"},
		{PatternHalfYearly, Date(2026, 6, 30), "2026-H1"},
		{PatternHalfYearly, Date(2026, 7, 1), "2026-H2"},
		{PatternYearly, Date(2026, 2, 28), "2026"},
	}
	for _, tt := range tests {
		if got := tt.pattern.PeriodKey(tt.anchor); got != tt.want {
			t.Errorf("%s.PeriodKey(%v) = %q, want %q", tt.pattern, tt.anchor, got, tt.want)
		}
	}
}

func TestPatternInfo(t *testing.T) {
	tests := []struct {
		pattern Pattern
		step    int
		label   string
		badge   string
	}{
		{PatternMonthly, 1, "Monthly", "M"},
		{PatternQuarterly, 3, "Quarterly", "Q"},
		{PatternHalfYearly, 6, "Half-Yearly", "H"},
		{PatternYearly, 12, "Yearly", "Y"},
	}
	for _, tt := range tests {
		if got := tt.pattern.StepMonths(); got != tt.step {
			t.Errorf("%s.StepMonths() = %d, want %d", tt.pattern, got, tt.step)
		}
		if got := tt.pattern.Label(); got != tt.label {
			t.Errorf("%s.Label() = %q, want %q", tt.pattern, got, tt.label)
		}
		if got := tt.pattern.Badge(); got != tt.badge {
			t.Errorf("%s.Badge() = %q, want %q", tt.pattern, got, tt.badge)
		}
		if !tt.pattern.IsValid() {
			t.Errorf("%s.IsValid() = false", tt.pattern)
		}
	}
	if Pattern("weekly").IsValid() {
		t.Error(`Pattern("weekly").IsValid() = true`)
	}
}

func TestClassify(t *testing.T) {
	today := Date(2026, 3, 15)
	tests := []struct {
		name      string
		occ       Occurrence
		completed bool
		want      Status
	}{
		{"completed wins over future", occ("2026-Q2", 2026, 4, 15), true, StatusCompleted},
		{"completed wins over past", occ("2026-Q1", 2026, 1, 15), true, StatusCompleted},
		{"future", occ("2026-Q2", 2026, 4, 15), false, StatusFuture},
		{"past due", occ("2026-Q1", 2026, 1, 15), false, StatusPending},
		{"due today is pending, not future", occ("2026-03", 2026, 3, 15), false, StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.occ, tt.completed, today); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", in: "2026-01-31", want: Date(2026, 1, 31)},
		{name: "rfc3339 is reduced to its date", in: "2026-01-31T22:15:04Z", want: Date(2026, 1, 31)},
		{name: "garbage", in: "31/01/2026", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecurrenceValidate(t *testing.T) {
	valid := Recurrence{StartDate: Date(2026, 1, 15), Pattern: PatternMonthly}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}

	endBeforeStart := Recurrence{StartDate: Date(2026, 6, 1), EndDate: Date(2026, 1, 1), Pattern: PatternMonthly}
	if err := endBeforeStart.Validate(); err != nil {
		t.Errorf("Validate() should tolerate end before start, got %v", err)
	}
}
