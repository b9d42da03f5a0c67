package schedule

import (
	"reflect"
	"testing"
	"time"
)

func occ(key string, y int, m time.Month, d int) Occurrence {
	return Occurrence{PeriodKey: key, Date: Date(y, m, d)}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name        string
		def         Recurrence
		windowStart time.Time
		windowEnd   time.Time
		want        []Occurrence
		wantErr     error
	}{
		{
			name:        "unknown pattern",
			def:         Recurrence{StartDate: Date(2026, 1, 15), Pattern: "weekly"},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			wantErr:     ErrInvalidDefinition,
		},
		{
			name:        "missing start date",
			def:         Recurrence{Pattern: PatternMonthly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			wantErr:     ErrInvalidDefinition,
		},
		{
			name:        "window start after end",
			def:         Recurrence{StartDate: Date(2026, 1, 15), Pattern: PatternMonthly},
			windowStart: Date(2026, 6, 1),
			windowEnd:   Date(2026, 1, 1),
			wantErr:     ErrInvalidWindow,
		},
		{
			name:        "paused yields nothing",
			def:         Recurrence{StartDate: Date(2026, 1, 15), EndDate: Date(2026, 12, 31), Pattern: PatternQuarterly, Paused: true},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			want:        []Occurrence{},
		},
		{
			name:        "end date before start date yields nothing",
			def:         Recurrence{StartDate: Date(2026, 6, 1), EndDate: Date(2026, 1, 1), Pattern: PatternMonthly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			want:        []Occurrence{},
		},
		{
			name:        "quarterly over one year",
			def:         Recurrence{StartDate: Date(2026, 1, 15), EndDate: Date(2026, 12, 31), Pattern: PatternQuarterly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			want: []Occurrence{
				occ("2026-Q1", 2026, 1, 15),
				occ("2026-Q2", 2026, 4, 15),
				occ("2026-Q3", 2026, 7, 15),
				occ("2026-Q4", 2026, 10, 15),
			},
		},
		{
			name:        "month-end clamping in non-leap year",
			def:         Recurrence{StartDate: Date(2026, 1, 31), Pattern: PatternMonthly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 4, 30),
			want: []Occurrence{
				occ("2026-01", 2026, 1, 31),
				occ("2026-02", 2026, 2, 28),
				occ("2026-03", 2026, 3, 31),
				occ("2026-04", 2026, 4, 30),
			},
		},
		{
			name:        "month-end clamping in leap year",
			def:         Recurrence{StartDate: Date(2024, 1, 31), Pattern: PatternMonthly},
			windowStart: Date(2024, 1, 1),
			windowEnd:   Date(2024, 3, 31),
			want: []Occurrence{
				occ("2024-01", 2024, 1, 31),
				occ("2024-02", 2024, 2, 29),
				occ("2024-03", 2024, 3, 31),
			},
		},
		{
			name:        "clamping does not drift to the clamped day",
			def:         Recurrence{StartDate: Date(2026, 1, 31), Pattern: PatternMonthly},
			windowStart: Date(2026, 2, 1),
			windowEnd:   Date(2026, 3, 31),
			want: []Occurrence{
				occ("2026-02", 2026, 2, 28),
				occ("2026-03", 2026, 3, 31), // back to 31, not stuck at 28
			},
		},
		{
			name:        "window excludes periods before start date",
			def:         Recurrence{StartDate: Date(2026, 5, 10), Pattern: PatternMonthly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 6, 30),
			want: []Occurrence{
				occ("2026-05", 2026, 5, 10),
				occ("2026-06", 2026, 6, 10),
			},
		},
		{
			name:        "end date caps the sequence below window end",
			def:         Recurrence{StartDate: Date(2026, 1, 1), EndDate: Date(2026, 3, 15), Pattern: PatternMonthly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			want: []Occurrence{
				occ("2026-01", 2026, 1, 1),
				occ("2026-02", 2026, 2, 1),
				occ("2026-03", 2026, 3, 1),
			},
		},
		{
			name:        "half-yearly crosses year boundary",
			def:         Recurrence{StartDate: Date(2025, 9, 30), Pattern: PatternHalfYearly},
			windowStart: Date(2025, 1, 1),
			windowEnd:   Date(2026, 12, 31),
			want: []Occurrence{
				occ("2025-H2", 2025, 9, 30),
				occ("2026-H1", 2026, 3, 30),
				occ("2026-H2", 2026, 9, 30),
			},
		},
		{
			name:        "yearly on leap day",
			def:         Recurrence{StartDate: Date(2024, 2, 29), Pattern: PatternYearly},
			windowStart: Date(2024, 1, 1),
			windowEnd:   Date(2028, 12, 31),
			want: []Occurrence{
				occ("2024", 2024, 2, 29),
				occ("2025", 2025, 2, 28),
				occ("2026", 2026, 2, 28),
				occ("2027", 2027, 2, 28),
				occ("2028", 2028, 2, 29),
			},
		},
		{
			name:        "window entirely before start date",
			def:         Recurrence{StartDate: Date(2026, 6, 1), Pattern: PatternMonthly},
			windowStart: Date(2026, 1, 1),
			windowEnd:   Date(2026, 5, 31),
			want:        []Occurrence{},
		},
		{
			name: "datetime inputs are reduced to dates",
			def: Recurrence{
				StartDate: time.Date(2026, 1, 15, 23, 30, 0, 0, time.FixedZone("KST", 9*3600)),
				Pattern:   PatternMonthly,
			},
			windowStart: time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local),
			windowEnd:   Date(2026, 2, 28),
			want: []Occurrence{
				occ("2026-01", 2026, 1, 15),
				occ("2026-02", 2026, 2, 15),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.def, tt.windowStart, tt.windowEnd)
			if tt.wantErr != nil {
				if !errIs(err, tt.wantErr) {
					t.Fatalf("Expand() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expand() unexpected error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandIdempotence(t *testing.T) {
	def := Recurrence{StartDate: Date(2026, 1, 31), EndDate: Date(2027, 6, 30), Pattern: PatternQuarterly}
	ws, we := Date(2026, 1, 1), Date(2027, 12, 31)

	first, err := Expand(def, ws, we)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	second, err := Expand(def, ws, we)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expand() is not idempotent: %v != %v", first, second)
	}
}

func TestExpandWindowMonotonicity(t *testing.T) {
	def := Recurrence{StartDate: Date(2025, 3, 31), Pattern: PatternMonthly}

	narrow, err := Expand(def, Date(2026, 2, 1), Date(2026, 6, 30))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	wide, err := Expand(def, Date(2025, 1, 1), Date(2027, 12, 31))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	wideByKey := make(map[string]Occurrence, len(wide))
	for _, o := range wide {
		wideByKey[o.PeriodKey] = o
	}
	for _, o := range narrow {
		w, ok := wideByKey[o.PeriodKey]
		if !ok {
			t.Errorf("widening the window dropped %q", o.PeriodKey)
			continue
		}
		if !w.Date.Equal(o.Date) {
			t.Errorf("widening the window moved %q: %v != %v", o.PeriodKey, w.Date, o.Date)
		}
	}
}

func TestExpandPeriodKeyStability(t *testing.T) {
	def := Recurrence{StartDate: Date(2026, 1, 15), Pattern: PatternQuarterly}

	full, err := Expand(def, Date(2026, 1, 1), Date(2026, 12, 31))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	// a window skipping the first two periods must still number Q3 as Q3
	late, err := Expand(def, Date(2026, 6, 1), Date(2026, 12, 31))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if len(full) != 4 || len(late) != 2 {
		t.Fatalf("unexpected lengths: full=%d late=%d", len(full), len(late))
	}
	if full[2].PeriodKey != late[0].PeriodKey || full[3].PeriodKey != late[1].PeriodKey {
		t.Errorf("period keys depend on the window: %v vs %v", full, late)
	}
}

func TestExpandDoesNotMutateInputs(t *testing.T) {
	def := Recurrence{
		StartDate: time.Date(2026, 1, 31, 10, 0, 0, 0, time.Local),
		Pattern:   PatternMonthly,
	}
	orig := def
	if _, err := Expand(def, Date(2026, 1, 1), Date(2026, 3, 31)); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if !reflect.DeepEqual(def, orig) {
		t.Errorf("Expand() mutated its input: %v != %v", def, orig)
	}
}

// errIs walks the pkg/errors cause chain.
func errIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}
