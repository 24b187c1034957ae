package journey

import (
	"errors"
	"testing"
	"time"
)

func openRecord(state State, start time.Time) JourneyRecord {
	s := start
	return JourneyRecord{
		ID:           "rec-1",
		Name:         "AJ",
		Platform:     "THUMBTACK",
		Bucket:       state.Bucket(),
		JourneyState: state,
		StartDate:    &s,
	}
}

func TestApplyRejectsNoChangeAndUnknown(t *testing.T) {
	now := localDate(2025, time.May, 10)
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	if _, err := Apply(rec, StateNotClosed, now); !errors.Is(err, ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	if _, err := Apply(rec, "", now); !errors.Is(err, ErrNoChange) {
		t.Fatalf("expected ErrNoChange for empty target, got %v", err)
	}
	if _, err := Apply(rec, State("Closed9"), now); !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestApplyOpenBucketMoveResetsClock(t *testing.T) {
	now := time.Date(2025, time.May, 10, 15, 30, 0, 0, time.Local)
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	tr, err := Apply(rec, StateNotRebooked, now)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if tr.From != BucketNotClosed || tr.To != BucketNoRebook {
		t.Fatalf("unexpected buckets: %s -> %s", tr.From, tr.To)
	}

	got := tr.Record
	if got.JourneyState != StateNotRebooked || got.Bucket != BucketNoRebook {
		t.Fatalf("record not moved: state=%s bucket=%s", got.JourneyState, got.Bucket)
	}
	midnight := localDate(2025, time.May, 10)
	if got.StartDate == nil || !got.StartDate.Equal(midnight) {
		t.Fatalf("expected start date reset to %v, got %v", midnight, got.StartDate)
	}
	if got.BookDate != nil || got.CleanDate != nil {
		t.Fatal("expected anchor dates cleared on open-bucket move")
	}

	if len(got.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(got.History))
	}
	entry := got.History[0]
	if entry.State != StateNotClosed {
		t.Fatalf("history recorded wrong state: %s", entry.State)
	}
	if entry.DaysInState != 9 {
		t.Fatalf("expected 9 days in state, got %d", entry.DaysInState)
	}
}

func TestApplyRefusesDirectClose(t *testing.T) {
	now := localDate(2025, time.May, 10)
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	if _, err := Apply(rec, StateClosed1, now); !errors.Is(err, ErrDatesRequired) {
		t.Fatalf("expected ErrDatesRequired, got %v", err)
	}
}

func TestApplyClosedRestageKeepsDates(t *testing.T) {
	now := localDate(2025, time.May, 20)
	book := localDate(2025, time.May, 1)
	clean := localDate(2025, time.May, 30)
	rec := JourneyRecord{
		ID:                    "rec-2",
		Name:                  "Dana",
		Bucket:                BucketClosed,
		JourneyState:          StateClosed1,
		BookDate:              &book,
		CleanDate:             &clean,
		JourneyStageStartedAt: &book,
	}

	tr, err := Apply(rec, StateClosed2, now)
	if err != nil {
		t.Fatalf("restage failed: %v", err)
	}
	got := tr.Record
	if got.JourneyState != StateClosed2 || got.Bucket != BucketClosed {
		t.Fatalf("unexpected restage result: state=%s bucket=%s", got.JourneyState, got.Bucket)
	}
	if got.BookDate == nil || !got.BookDate.Equal(book) || got.CleanDate == nil || !got.CleanDate.Equal(clean) {
		t.Fatal("expected anchor dates preserved on closed restage")
	}
	if len(got.History) != 1 || got.History[0].State != StateClosed1 {
		t.Fatalf("expected Closed1 history entry, got %+v", got.History)
	}
	if got.JourneyStageStartedAt == nil || !got.JourneyStageStartedAt.Equal(now) {
		t.Fatalf("expected stage clock reset to %v, got %v", now, got.JourneyStageStartedAt)
	}
}

func TestStageCloseAndCommit(t *testing.T) {
	now := localDate(2025, time.May, 10)
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	p, err := StageClose(rec, StateClosed1, now)
	if err != nil {
		t.Fatalf("staging failed: %v", err)
	}
	if p.From != BucketNotClosed || p.Target != StateClosed1 {
		t.Fatalf("unexpected staging: from=%s target=%s", p.From, p.Target)
	}
	if !p.BookDate.Equal(now) || !p.CleanDate.Equal(now) {
		t.Fatal("expected draft dates defaulting to today")
	}

	book := localDate(2025, time.May, 8)
	clean := localDate(2025, time.May, 25)
	tr, err := p.Commit(book, clean)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	got := tr.Record
	if got.Bucket != BucketClosed || got.JourneyState != StateClosed1 {
		t.Fatalf("unexpected committed record: bucket=%s state=%s", got.Bucket, got.JourneyState)
	}
	if got.StartDate != nil {
		t.Fatal("expected start date cleared on close")
	}
	if got.BookDate == nil || !got.BookDate.Equal(book) || got.CleanDate == nil || !got.CleanDate.Equal(clean) {
		t.Fatal("expected committed anchor dates")
	}
	if got.JourneyStageStartedAt == nil || !got.JourneyStageStartedAt.Equal(book) {
		t.Fatal("expected stage clock anchored at book date")
	}
	if len(got.History) != 1 || got.History[0].State != StateNotClosed {
		t.Fatalf("expected history closing out Not Closed, got %+v", got.History)
	}
}

func TestCommitRefusesMissingDates(t *testing.T) {
	now := localDate(2025, time.May, 10)
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	p, err := StageClose(rec, StateClosed3, now)
	if err != nil {
		t.Fatalf("staging failed: %v", err)
	}
	if _, err := p.Commit(time.Time{}, localDate(2025, time.May, 25)); !errors.Is(err, ErrDatesRequired) {
		t.Fatalf("expected ErrDatesRequired, got %v", err)
	}
	// The staging itself is untouched and can be committed later.
	if _, err := p.Commit(localDate(2025, time.May, 8), localDate(2025, time.May, 25)); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestStageCloseRejectsOpenTargets(t *testing.T) {
	now := localDate(2025, time.May, 10)
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	if _, err := StageClose(rec, StateSaidNo, now); !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState for open target, got %v", err)
	}
}

func TestHistoryAccumulatesAcrossMoves(t *testing.T) {
	rec := openRecord(StateNotClosed, localDate(2025, time.May, 1))

	tr, err := Apply(rec, StateSaidNo, localDate(2025, time.May, 6))
	if err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	tr, err = Apply(tr.Record, StateNotClosed, localDate(2025, time.May, 16))
	if err != nil {
		t.Fatalf("second move failed: %v", err)
	}

	history := tr.Record.History
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].State != StateNotClosed || history[0].DaysInState != 5 {
		t.Fatalf("unexpected first entry: %+v", history[0])
	}
	if history[1].State != StateSaidNo || history[1].DaysInState != 10 {
		t.Fatalf("unexpected second entry: %+v", history[1])
	}
}
