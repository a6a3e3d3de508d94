package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurrenceRuleDaily(t *testing.T) {
	rule := RecurrenceRule{Kind: RecurDaily}
	start := date(2025, time.March, 1)
	for i := 0; i < 7; i++ {
		if !rule.Matches(start, start.AddDate(0, 0, i)) {
			t.Fatalf("daily rule must match every day, failed at offset %d", i)
		}
	}
}

func TestRecurrenceRuleAlternate(t *testing.T) {
	rule := RecurrenceRule{Kind: RecurAlternate}
	start := date(2025, time.March, 1)
	for i := 0; i < 10; i++ {
		got := rule.Matches(start, start.AddDate(0, 0, i))
		want := i%2 == 0
		if got != want {
			t.Fatalf("alternate rule offset %d: got %v want %v", i, got, want)
		}
	}
}

func TestRecurrenceRuleWeekly(t *testing.T) {
	rule := RecurrenceRule{Kind: RecurWeekly, Weekdays: []time.Weekday{time.Monday, time.Friday}}
	start := date(2025, time.March, 3) // a Monday
	if !rule.Matches(start, start) {
		t.Fatal("expected Monday to match")
	}
	if rule.Matches(start, start.AddDate(0, 0, 1)) {
		t.Fatal("Tuesday must not match")
	}
	if !rule.Matches(start, start.AddDate(0, 0, 4)) {
		t.Fatal("expected Friday to match")
	}
}

func TestRecurrenceRuleWeeklyEmptySet(t *testing.T) {
	rule := RecurrenceRule{Kind: RecurWeekly}
	start := date(2025, time.March, 3)
	for i := 0; i < 7; i++ {
		if rule.Matches(start, start.AddDate(0, 0, i)) {
			t.Fatal("weekly rule with empty weekday set must never match")
		}
	}
}

func TestPauseWindowContains(t *testing.T) {
	w := PauseWindow{From: date(2025, time.March, 10), To: date(2025, time.March, 12)}
	if !w.Contains(date(2025, time.March, 10)) || !w.Contains(date(2025, time.March, 12)) {
		t.Fatal("window bounds must be inclusive")
	}
	if w.Contains(date(2025, time.March, 9)) || w.Contains(date(2025, time.March, 13)) {
		t.Fatal("dates outside window must not be contained")
	}
}

func TestSubscriptionPausedOn(t *testing.T) {
	sub := Subscription{Pauses: []PauseWindow{
		{From: date(2025, time.March, 10), To: date(2025, time.March, 12)},
		{From: date(2025, time.March, 20), To: date(2025, time.March, 20)},
	}}
	if !sub.PausedOn(date(2025, time.March, 11)) {
		t.Fatal("expected date inside first window to be paused")
	}
	if !sub.PausedOn(date(2025, time.March, 20)) {
		t.Fatal("expected single-day window to be paused")
	}
	if sub.PausedOn(date(2025, time.March, 15)) {
		t.Fatal("date between windows must not be paused")
	}
}

func TestDayNormalization(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	in := time.Date(2025, time.March, 5, 23, 45, 1, 0, loc)
	got := Day(in)
	if got.Hour() != 0 || got.Location() != time.UTC {
		t.Fatalf("expected midnight UTC, got %s", got)
	}
	if got.Day() != 5 {
		t.Fatalf("Day must keep the wall-clock date, got %s", got)
	}
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2025-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(date(2025, time.March, 5)) {
		t.Fatalf("unexpected date: %s", got)
	}
	if _, err := ParseDay("05.03.2025"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleCustomer, RoleVendor, RoleMilkman, RoleAdmin} {
		if !ValidRole(r) {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	if ValidRole("superuser") {
		t.Fatal("unknown role must be invalid")
	}
}

func TestValidReportGroup(t *testing.T) {
	if !ValidReportGroup(GroupByMilkman) {
		t.Fatal("expected milkman grouping to be valid")
	}
	if ValidReportGroup("product") {
		t.Fatal("unknown grouping must be invalid")
	}
}
