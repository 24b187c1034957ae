package journey

import (
	"strings"
	"time"
)

// Bucket is one of the four top-level collections a record can live in.
// It is the partition key for storage and is always derived from the
// record's journey state, so the two cannot drift.
type Bucket string

const (
	BucketNotClosed Bucket = "not_closed"
	BucketNoRebook  Bucket = "no_rebook"
	BucketClosed    Bucket = "closed"
	BucketSaidNo    Bucket = "said_no"
)

func Buckets() []Bucket {
	return []Bucket{BucketNotClosed, BucketNoRebook, BucketClosed, BucketSaidNo}
}

func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case BucketNotClosed, BucketNoRebook, BucketClosed, BucketSaidNo:
		return Bucket(s), true
	}
	return "", false
}

// State is the finer-grained journey status. Every state maps to exactly
// one bucket.
type State string

const (
	StateNotClosed   State = "Not Closed"
	StateNotRebooked State = "Not REBOOKED"
	StateSaidNo      State = "SAID NO"
	StateClosed1     State = "Closed1"
	StateClosed2     State = "Closed2"
	StateClosed3     State = "Closed3"
	StateClosed4     State = "Closed4"
)

func AllStates() []State {
	return []State{
		StateNotClosed, StateNotRebooked, StateSaidNo,
		StateClosed1, StateClosed2, StateClosed3, StateClosed4,
	}
}

func (s State) Valid() bool {
	switch s {
	case StateNotClosed, StateNotRebooked, StateSaidNo,
		StateClosed1, StateClosed2, StateClosed3, StateClosed4:
		return true
	}
	return false
}

// IsClosed reports whether the state is one of the Closed1..Closed4 stages.
func (s State) IsClosed() bool {
	return strings.HasPrefix(string(s), "Closed")
}

func (s State) Bucket() Bucket {
	switch s {
	case StateNotRebooked:
		return BucketNoRebook
	case StateSaidNo:
		return BucketSaidNo
	case StateNotClosed:
		return BucketNotClosed
	}
	if s.IsClosed() {
		return BucketClosed
	}
	return BucketNotClosed
}

// DefaultState is the journey state a record lands in when added directly
// to a bucket, and the repair value for stored records missing one.
func DefaultState(b Bucket) State {
	switch b {
	case BucketNoRebook:
		return StateNotRebooked
	case BucketClosed:
		return StateClosed1
	case BucketSaidNo:
		return StateSaidNo
	default:
		return StateNotClosed
	}
}

// HistoryEntry records one completed state occupancy. Entries are append
// only; the active state lives on the record itself.
type HistoryEntry struct {
	State       State     `json:"state"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	DaysInState int       `json:"days_in_state"`
}

type JourneyRecord struct {
	ID                    string                 `json:"id"`
	Name                  string                 `json:"name"`
	Platform              string                 `json:"platform,omitempty"`
	Bucket                Bucket                 `json:"bucket"`
	JourneyState          State                  `json:"journey_state"`
	StartDate             *time.Time             `json:"start_date,omitempty"`
	BookDate              *time.Time             `json:"book_date,omitempty"`
	CleanDate             *time.Time             `json:"clean_date,omitempty"`
	JourneyStageStartedAt *time.Time             `json:"journey_stage_started_at,omitempty"`
	History               []HistoryEntry         `json:"history,omitempty"`
	Data                  map[string]interface{} `json:"data,omitempty"`
}

// TrackerState holds the four in-memory collections, partitioned by bucket.
type TrackerState struct {
	NotClosed []JourneyRecord `json:"not_closed"`
	NoRebook  []JourneyRecord `json:"no_rebook"`
	Closed    []JourneyRecord `json:"closed"`
	SaidNo    []JourneyRecord `json:"said_no"`
}

func (s *TrackerState) Collection(b Bucket) []JourneyRecord {
	switch b {
	case BucketNoRebook:
		return s.NoRebook
	case BucketClosed:
		return s.Closed
	case BucketSaidNo:
		return s.SaidNo
	default:
		return s.NotClosed
	}
}

func (s *TrackerState) SetCollection(b Bucket, records []JourneyRecord) {
	switch b {
	case BucketNoRebook:
		s.NoRebook = records
	case BucketClosed:
		s.Closed = records
	case BucketSaidNo:
		s.SaidNo = records
	default:
		s.NotClosed = records
	}
}

func (s *TrackerState) Append(rec JourneyRecord) {
	s.SetCollection(rec.Bucket, append(s.Collection(rec.Bucket), rec))
}

// Remove takes the record with the given id out of whichever collection
// holds it.
func (s *TrackerState) Remove(id string) (JourneyRecord, bool) {
	for _, b := range Buckets() {
		coll := s.Collection(b)
		for i, rec := range coll {
			if rec.ID == id {
				s.SetCollection(b, append(coll[:i:i], coll[i+1:]...))
				return rec, true
			}
		}
	}
	return JourneyRecord{}, false
}

func (s *TrackerState) Find(id string) (JourneyRecord, bool) {
	for _, b := range Buckets() {
		for _, rec := range s.Collection(b) {
			if rec.ID == id {
				return rec, true
			}
		}
	}
	return JourneyRecord{}, false
}

func (s *TrackerState) IsEmpty() bool {
	return len(s.NotClosed) == 0 && len(s.NoRebook) == 0 && len(s.Closed) == 0 && len(s.SaidNo) == 0
}

func (s *TrackerState) Len() int {
	return len(s.NotClosed) + len(s.NoRebook) + len(s.Closed) + len(s.SaidNo)
}
