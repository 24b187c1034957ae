package journey

import (
	"sort"
	"time"
)

// Timeline spans. Open funnels run day 0..90; said-no keeps records visible
// for roughly six months; closed runs 0..100 percent between book and clean.
const (
	DefaultDaySpan = 90
	SaidNoDaySpan  = 180
	PercentSpan    = 100
)

// TimelineGroup is one tick on a timeline axis: the discretized key (day
// offset or percent) and the records that share it. Order within a group is
// not significant.
type TimelineGroup struct {
	Key     int             `json:"key"`
	Records []JourneyRecord `json:"records"`
}

// DayGroups buckets records by clamped day offset from their start date,
// sorted ascending by offset. Records without a start date land on day 0.
func DayGroups(records []JourneyRecord, now time.Time, maxDays int) []TimelineGroup {
	byDay := make(map[int][]JourneyRecord)
	for _, rec := range records {
		day := 0
		if rec.StartDate != nil {
			day = DayOffset(*rec.StartDate, now, maxDays)
		}
		byDay[day] = append(byDay[day], rec)
	}
	return sortGroups(byDay)
}

// PercentGroups buckets closed records by how far today sits between their
// book and clean dates. Records missing either anchor land on 0; the
// two-phase close gate exists to keep that from happening.
func PercentGroups(records []JourneyRecord, now time.Time) []TimelineGroup {
	byPct := make(map[int][]JourneyRecord)
	for _, rec := range records {
		pct := 0
		if rec.BookDate != nil && rec.CleanDate != nil {
			pct = PercentBetween(*rec.BookDate, *rec.CleanDate, now)
		}
		byPct[pct] = append(byPct[pct], rec)
	}
	return sortGroups(byPct)
}

// Counts derives the parallel key -> record-count mapping for a grouping.
func Counts(groups []TimelineGroup) map[int]int {
	counts := make(map[int]int, len(groups))
	for _, g := range groups {
		counts[g.Key] = len(g.Records)
	}
	return counts
}

func sortGroups(byKey map[int][]JourneyRecord) []TimelineGroup {
	groups := make([]TimelineGroup, 0, len(byKey))
	for key, recs := range byKey {
		groups = append(groups, TimelineGroup{Key: key, Records: recs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
