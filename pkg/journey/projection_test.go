package journey

import (
	"testing"
	"time"
)

func TestDayGroupsGroupAndSort(t *testing.T) {
	now := localDate(2025, time.June, 20)
	d0 := localDate(2025, time.June, 20)
	d5 := localDate(2025, time.June, 15)
	dOld := localDate(2025, time.January, 1)

	records := []JourneyRecord{
		{ID: "a", StartDate: &d5},
		{ID: "b", StartDate: &d0},
		{ID: "c", StartDate: &d5},
		{ID: "d", StartDate: &dOld},
		{ID: "e"},
	}

	groups := DayGroups(records, now, DefaultDaySpan)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Key != 0 || groups[1].Key != 5 || groups[2].Key != DefaultDaySpan {
		t.Fatalf("unexpected keys: %d %d %d", groups[0].Key, groups[1].Key, groups[2].Key)
	}
	// Day 0 holds the fresh record and the one without a start date.
	if len(groups[0].Records) != 2 {
		t.Fatalf("expected 2 records on day 0, got %d", len(groups[0].Records))
	}
	if len(groups[1].Records) != 2 {
		t.Fatalf("expected 2 records on day 5, got %d", len(groups[1].Records))
	}

	counts := Counts(groups)
	if counts[0] != 2 || counts[5] != 2 || counts[DefaultDaySpan] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestPercentGroups(t *testing.T) {
	now := localDate(2025, time.June, 20)
	book := localDate(2025, time.June, 10)
	clean := localDate(2025, time.June, 30)

	records := []JourneyRecord{
		{ID: "halfway", BookDate: &book, CleanDate: &clean},
		{ID: "missing-anchors"},
	}

	groups := PercentGroups(records, now)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != 0 || groups[1].Key != 50 {
		t.Fatalf("unexpected keys: %d %d", groups[0].Key, groups[1].Key)
	}
	if groups[1].Records[0].ID != "halfway" {
		t.Fatalf("expected halfway record at 50%%, got %s", groups[1].Records[0].ID)
	}
}

func TestSaidNoTimelineOutlivesDefaultSpan(t *testing.T) {
	now := localDate(2025, time.June, 20)
	start := localDate(2025, time.February, 1) // 139 days back

	records := []JourneyRecord{{ID: "s", StartDate: &start}}

	def := DayGroups(records, now, DefaultDaySpan)
	if def[0].Key != DefaultDaySpan {
		t.Fatalf("expected clamp at %d on default span, got %d", DefaultDaySpan, def[0].Key)
	}

	saidNo := DayGroups(records, now, SaidNoDaySpan)
	if saidNo[0].Key != 139 {
		t.Fatalf("expected day 139 on said-no span, got %d", saidNo[0].Key)
	}
	if MonthIndex(saidNo[0].Key) != 4 {
		t.Fatalf("expected month 4 label, got %d", MonthIndex(saidNo[0].Key))
	}
}
