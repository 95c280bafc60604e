package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Errorf("Now() = %s, want the reference time", clock.Now())
	}

	clock.Advance(30 * time.Minute)
	want := ReferenceTime().Add(30 * time.Minute)
	if !clock.Now().Equal(want) {
		t.Errorf("Now() after advance = %s, want %s", clock.Now(), want)
	}

	explicit := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(explicit)
	if !clock.NowFunc()().Equal(explicit) {
		t.Errorf("NowFunc()() = %s, want %s", clock.NowFunc()(), explicit)
	}
}

func TestIDGeneratorSequence(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("local")
	if got := gen.Next(); got != "local-1" {
		t.Errorf("first id = %s, want local-1", got)
	}
	if got := gen.Next(); got != "local-2" {
		t.Errorf("second id = %s, want local-2", got)
	}

	next := gen.NextFunc()
	if got := next(); got != "local-3" {
		t.Errorf("NextFunc id = %s, want local-3", got)
	}
}

func TestFixturesAreOnReferenceDay(t *testing.T) {
	t.Parallel()

	entry := Entry("entry-1", "tech-1", 9, 11)
	day := ReferenceDay()
	if entry.Start.Year() != day.Year() || entry.Start.YearDay() != day.YearDay() {
		t.Errorf("entry start %s not on the reference day %s", entry.Start, day)
	}
	if got := entry.Duration(); got != 2*time.Hour {
		t.Errorf("entry duration = %s, want 2h", got)
	}
	if len(Technicians()) == 0 || len(WorkItems()) == 0 {
		t.Error("roster fixtures are empty")
	}
}
