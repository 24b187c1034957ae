package journey

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/journeyboard/platform/pkg/common/logger"
	"github.com/journeyboard/platform/pkg/common/models"
)

var (
	ErrRecordNotFound    = errors.New("journey record not found")
	ErrNameRequired      = errors.New("record name required")
	ErrStartDateRequired = errors.New("start date required")
	ErrUnknownBucket     = errors.New("unknown bucket")
	ErrUnknownPlatform   = errors.New("unknown platform")
	ErrNoPendingClose    = errors.New("no close staged for record")
	ErrDeleteNotStaged   = errors.New("delete not staged for record")
)

// Service owns the in-memory board. HTTP handlers and the lead consumer
// run concurrently, so unlike the single-threaded original every mutation
// goes through one mutex. Mutations apply in memory first and are then
// mirrored through the coordinator; a failed mirror never rolls them back.
type Service struct {
	mu      sync.Mutex
	state   TrackerState
	pending map[string]PendingTransition
	deletes map[string]struct{}
	coord   *Coordinator
	board   BoardConfig
	today   time.Time
	nowFn   func() time.Time
}

func NewService(coord *Coordinator, board BoardConfig) *Service {
	s := &Service{
		pending: make(map[string]PendingTransition),
		deletes: make(map[string]struct{}),
		coord:   coord,
		board:   board,
		nowFn:   time.Now,
	}
	s.today = StartOfLocalDay(s.nowFn())
	return s
}

// Load reconstructs the board from the authoritative backend at startup.
func (s *Service) Load(ctx context.Context) {
	state := s.coord.Load(ctx)
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	logger.Log.WithField("records", state.Len()).Info("journey board loaded")
}

func (s *Service) Today() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.today
}

// RefreshToday recomputes the board's current day.
func (s *Service) RefreshToday() {
	s.mu.Lock()
	s.today = StartOfLocalDay(s.nowFn())
	s.mu.Unlock()
}

// RunMidnightRefresh advances the board's notion of "today" at each local
// midnight so day and percent projections move without continuous polling.
func (s *Service) RunMidnightRefresh(ctx context.Context) {
	for {
		now := s.nowFn()
		next := StartOfLocalDay(now).AddDate(0, 0, 1)
		delay := next.Sub(now)
		if delay < time.Second {
			delay = time.Second
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.RefreshToday()
			logger.Log.Debug("timeline day advanced")
		}
	}
}

// AddRecord handles manual entry. Open-bucket adds need a start date;
// adds directly into closed need both anchor dates.
func (s *Service) AddRecord(ctx context.Context, req models.AddLeadRequest) (JourneyRecord, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return JourneyRecord{}, ErrNameRequired
	}

	bucket := BucketNotClosed
	if req.Bucket != "" {
		parsed, ok := ParseBucket(req.Bucket)
		if !ok {
			return JourneyRecord{}, ErrUnknownBucket
		}
		bucket = parsed
	}
	if req.Platform != "" && !s.board.ValidPlatform(req.Platform) {
		return JourneyRecord{}, ErrUnknownPlatform
	}

	rec := JourneyRecord{
		ID:           uuid.New().String(),
		Name:         name,
		Platform:     req.Platform,
		Bucket:       bucket,
		JourneyState: DefaultState(bucket),
		Data:         req.Data,
	}

	if bucket == BucketClosed {
		book, err := ParseDateInput(req.BookDate)
		if err != nil {
			return JourneyRecord{}, ErrDatesRequired
		}
		clean, err := ParseDateInput(req.CleanDate)
		if err != nil {
			return JourneyRecord{}, ErrDatesRequired
		}
		rec.BookDate = &book
		rec.CleanDate = &clean
		rec.JourneyStageStartedAt = &book
	} else {
		if req.StartDate == "" {
			return JourneyRecord{}, ErrStartDateRequired
		}
		start, err := ParseDateInput(req.StartDate)
		if err != nil {
			return JourneyRecord{}, ErrStartDateRequired
		}
		rec.StartDate = &start
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Append(rec)
	s.persistLocked(ctx, bucket)
	return rec, nil
}

// IngestLead turns a lead event from the bridge into a fresh not-closed
// record. Event sources are never rejected on soft problems: an unknown
// platform tag is dropped with a warning rather than bouncing the event.
func (s *Service) IngestLead(ctx context.Context, event models.LeadEvent) error {
	name := strings.TrimSpace(event.Name)
	if name == "" {
		return ErrNameRequired
	}

	platform := event.Platform
	if platform != "" && !s.board.ValidPlatform(platform) {
		logger.Log.WithFields(map[string]interface{}{
			"platform": platform,
			"source":   event.Source,
		}).Warn("lead event carried unknown platform tag")
		platform = ""
	}

	start := event.StartDate
	if start.IsZero() {
		start = s.nowFn()
	}
	midnight := StartOfLocalDay(start)

	rec := JourneyRecord{
		ID:           uuid.New().String(),
		Name:         name,
		Platform:     platform,
		Bucket:       BucketNotClosed,
		JourneyState: StateNotClosed,
		StartDate:    &midnight,
		Data:         event.Data,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Append(rec)
	s.persistLocked(ctx, BucketNotClosed)
	logger.Log.WithFields(map[string]interface{}{
		"record_id": rec.ID,
		"source":    event.Source,
	}).Info("lead ingested into journey board")
	return nil
}

// ChangeState requests a transition. Closed targets from outside the
// closed bucket come back as a staged PendingTransition the caller must
// commit with confirmed dates; everything else applies immediately.
func (s *Service) ChangeState(ctx context.Context, id string, target State) (*JourneyRecord, *PendingTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.state.Find(id)
	if !ok {
		return nil, nil, ErrRecordNotFound
	}

	now := s.nowFn()
	if target.IsClosed() && rec.Bucket != BucketClosed {
		p, err := StageClose(rec, target, now)
		if err != nil {
			return nil, nil, err
		}
		s.pending[id] = p
		return nil, &p, nil
	}

	tr, err := Apply(rec, target, now)
	if err != nil {
		return nil, nil, err
	}

	// An applied transition supersedes any close staged for this record;
	// committing the stale snapshot would erase this move and its history.
	delete(s.pending, id)

	s.state.Remove(id)
	s.state.Append(tr.Record)
	s.persistLocked(ctx, tr.From, tr.To)
	return &tr.Record, nil, nil
}

// CommitClose finalizes a staged close with caller-confirmed dates. A
// missing or unparseable date refuses the commit and keeps the staging
// (and the source record) untouched so the caller can correct it.
func (s *Service) CommitClose(ctx context.Context, id, bookInput, cleanInput string) (JourneyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return JourneyRecord{}, ErrNoPendingClose
	}

	book, err := ParseDateInput(bookInput)
	if err != nil {
		return JourneyRecord{}, ErrDatesRequired
	}
	clean, err := ParseDateInput(cleanInput)
	if err != nil {
		return JourneyRecord{}, ErrDatesRequired
	}

	tr, err := p.Commit(book, clean)
	if err != nil {
		return JourneyRecord{}, err
	}

	s.state.Remove(id)
	s.state.Append(tr.Record)
	delete(s.pending, id)
	s.persistLocked(ctx, tr.From, tr.To)
	return tr.Record, nil
}

func (s *Service) CancelClose(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

func (s *Service) PendingClose(id string) (PendingTransition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	return p, ok
}

// StageDelete marks a record for deletion. Nothing reaches any backend
// until ConfirmDelete; there is no undo once it does.
func (s *Service) StageDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Find(id); !ok {
		return ErrRecordNotFound
	}
	s.deletes[id] = struct{}{}
	return nil
}

func (s *Service) ConfirmDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, staged := s.deletes[id]; !staged {
		return ErrDeleteNotStaged
	}
	delete(s.deletes, id)
	delete(s.pending, id)

	rec, ok := s.state.Remove(id)
	if !ok {
		return ErrRecordNotFound
	}
	s.coord.Delete(ctx, s.state, id, rec.Bucket)
	return nil
}

func (s *Service) CancelDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deletes, id)
}

// Snapshot returns a copy of the four collections.
func (s *Service) Snapshot() TrackerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out TrackerState
	for _, b := range Buckets() {
		coll := s.state.Collection(b)
		out.SetCollection(b, append([]JourneyRecord(nil), coll...))
	}
	return out
}

func (s *Service) History(id string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.Find(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]HistoryEntry(nil), rec.History...), nil
}

func (s *Service) GetNote(ctx context.Context, key string) string {
	return s.coord.GetNote(ctx, key)
}

func (s *Service) SetNote(ctx context.Context, key, content string) {
	s.coord.SetNote(ctx, key, content)
}

// TimelineView is one bucket's presentation-ready grouping.
type TimelineView struct {
	Bucket Bucket          `json:"bucket"`
	Axis   string          `json:"axis"`
	Span   int             `json:"span"`
	Groups []TimelineGroup `json:"groups"`
	Counts map[int]int     `json:"counts"`
	Months map[int]int     `json:"months,omitempty"`
}

type BoardView struct {
	Today       time.Time            `json:"today"`
	Platforms   []string             `json:"platforms"`
	Touchpoints []TouchpointTemplate `json:"touchpoints"`
	Timelines   []TimelineView       `json:"timelines"`
}

// Board derives the four timelines from the current collections and the
// board's notion of today.
func (s *Service) Board() BoardView {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today
	notClosed := DayGroups(s.state.NotClosed, today, s.board.DaySpan)
	noRebook := DayGroups(s.state.NoRebook, today, s.board.DaySpan)
	saidNo := DayGroups(s.state.SaidNo, today, s.board.SaidNoSpan)
	closed := PercentGroups(s.state.Closed, today)

	months := make(map[int]int, len(saidNo))
	for _, g := range saidNo {
		months[g.Key] = MonthIndex(g.Key)
	}

	return BoardView{
		Today:       today,
		Platforms:   s.board.Platforms,
		Touchpoints: s.board.Touchpoints,
		Timelines: []TimelineView{
			{Bucket: BucketClosed, Axis: "percent", Span: PercentSpan, Groups: closed, Counts: Counts(closed)},
			{Bucket: BucketNotClosed, Axis: "day", Span: s.board.DaySpan, Groups: notClosed, Counts: Counts(notClosed)},
			{Bucket: BucketNoRebook, Axis: "day", Span: s.board.DaySpan, Groups: noRebook, Counts: Counts(noRebook)},
			{Bucket: BucketSaidNo, Axis: "day", Span: s.board.SaidNoSpan, Groups: saidNo, Counts: Counts(saidNo), Months: months},
		},
	}
}

// persistLocked mirrors the current state; callers hold the mutex. The
// changed-bucket list only matters for the local path.
func (s *Service) persistLocked(ctx context.Context, changed ...Bucket) {
	seen := make(map[Bucket]struct{}, len(changed))
	deduped := changed[:0]
	for _, b := range changed {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		deduped = append(deduped, b)
	}
	s.coord.Persist(ctx, s.state, deduped...)
}
