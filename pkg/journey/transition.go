package journey

import (
	"errors"
	"time"
)

var (
	ErrNoChange      = errors.New("no state change requested")
	ErrUnknownState  = errors.New("unknown journey state")
	ErrDatesRequired = errors.New("book and clean dates required to close")
)

// Transition is the result of applying a state change: the updated record
// plus the buckets it moved between. From == To for in-bucket restages.
type Transition struct {
	Record JourneyRecord
	From   Bucket
	To     Bucket
}

// Apply validates and applies a journey-state change. Moving into any open
// bucket resets the elapsed-time clock: startDate becomes local midnight of
// now and the record re-enters the day-0 funnel even when it comes back out
// of closed. Entering the closed bucket is refused here with
// ErrDatesRequired; that path must go through StageClose/Commit so the
// caller supplies both anchor dates.
func Apply(rec JourneyRecord, target State, now time.Time) (Transition, error) {
	if target == "" || target == rec.JourneyState {
		return Transition{}, ErrNoChange
	}
	if !target.Valid() {
		return Transition{}, ErrUnknownState
	}

	if target.IsClosed() {
		if rec.Bucket != BucketClosed {
			return Transition{}, ErrDatesRequired
		}
		// Closed-to-closed restage: dates already confirmed, keep them.
		midnight := StartOfLocalDay(now)
		rec.History = appendHistory(rec, now)
		rec.JourneyState = target
		rec.JourneyStageStartedAt = &midnight
		return Transition{Record: rec, From: BucketClosed, To: BucketClosed}, nil
	}

	midnight := StartOfLocalDay(now)
	from := rec.Bucket
	rec.History = appendHistory(rec, now)
	rec.JourneyState = target
	rec.Bucket = target.Bucket()
	rec.StartDate = &midnight
	rec.BookDate = nil
	rec.CleanDate = nil
	rec.JourneyStageStartedAt = &midnight
	return Transition{Record: rec, From: from, To: rec.Bucket}, nil
}

// PendingTransition stages a close request: the record with its history
// entry already appended, the target stage, and draft dates the caller must
// confirm or replace before Commit. Cancel is simply dropping the value;
// the source record is untouched until Commit succeeds.
type PendingTransition struct {
	Record    JourneyRecord
	Target    State
	From      Bucket
	BookDate  time.Time
	CleanDate time.Time
}

// StageClose begins the two-phase move into the closed bucket. Draft book
// and clean dates default to today; the commit step takes them exclusively
// from caller input.
func StageClose(rec JourneyRecord, target State, now time.Time) (PendingTransition, error) {
	if target == "" || target == rec.JourneyState {
		return PendingTransition{}, ErrNoChange
	}
	if !target.Valid() || !target.IsClosed() {
		return PendingTransition{}, ErrUnknownState
	}

	staged := rec
	staged.History = appendHistory(rec, now)
	today := StartOfLocalDay(now)
	return PendingTransition{
		Record:    staged,
		Target:    target,
		From:      rec.Bucket,
		BookDate:  today,
		CleanDate: today,
	}, nil
}

// Commit finalizes the staged close. Both dates must be supplied; a zero
// date refuses the commit and leaves the staging (and the source record)
// unchanged. The percent projection keys off book/clean, so startDate is
// cleared and the stage clock starts at bookDate.
func (p PendingTransition) Commit(book, clean time.Time) (Transition, error) {
	if book.IsZero() || clean.IsZero() {
		return Transition{}, ErrDatesRequired
	}

	b := StartOfLocalDay(book)
	c := StartOfLocalDay(clean)
	rec := p.Record
	rec.JourneyState = p.Target
	rec.Bucket = BucketClosed
	rec.StartDate = nil
	rec.BookDate = &b
	rec.CleanDate = &c
	rec.JourneyStageStartedAt = &b
	return Transition{Record: rec, From: p.From, To: BucketClosed}, nil
}

// appendHistory closes out the record's current state occupancy with one
// new entry. History is carried forward across bucket moves, never reset.
func appendHistory(rec JourneyRecord, now time.Time) []HistoryEntry {
	end := StartOfLocalDay(now)
	start := stageStart(rec, end)
	state := rec.JourneyState
	if state == "" {
		state = DefaultState(rec.Bucket)
	}
	entry := HistoryEntry{
		State:       state,
		StartedAt:   start,
		EndedAt:     end,
		DaysInState: DiffDaysLocal(start, end),
	}
	history := make([]HistoryEntry, 0, len(rec.History)+1)
	history = append(history, rec.History...)
	return append(history, entry)
}

// stageStart resolves when the current state began: the explicit stage
// marker when present, else the bucket's anchor date, else now.
func stageStart(rec JourneyRecord, now time.Time) time.Time {
	if rec.JourneyStageStartedAt != nil {
		return *rec.JourneyStageStartedAt
	}
	if rec.Bucket == BucketClosed && rec.BookDate != nil {
		return *rec.BookDate
	}
	if rec.StartDate != nil {
		return *rec.StartDate
	}
	return now
}
