package journey

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// CustomerRow is the flat remote-store shape: one row per record across all
// four buckets, keyed by record id with upsert-by-id semantics.
type CustomerRow struct {
	ID                    string `gorm:"primaryKey"`
	Name                  string
	Bucket                string `gorm:"index"`
	Platform              *string
	StartDate             *time.Time
	BookDate              *time.Time
	CleanDate             *time.Time
	JourneyState          string
	JourneyStageStartedAt *time.Time
	History               datatypes.JSON    `gorm:"type:jsonb"`
	Data                  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (CustomerRow) TableName() string {
	return "customers"
}

// StateToRows flattens the four collections to remote rows. Closed rows
// carry book/clean and null start_date; open rows the inverse.
func StateToRows(state TrackerState, now time.Time) []CustomerRow {
	rows := make([]CustomerRow, 0, state.Len())
	for _, b := range Buckets() {
		for _, rec := range state.Collection(b) {
			rows = append(rows, recordToRow(rec, now))
		}
	}
	return rows
}

// RowsToState partitions remote rows back into the four collections. The
// inverse of StateToRows: lossless for every record field.
func RowsToState(rows []CustomerRow) TrackerState {
	var state TrackerState
	for _, row := range rows {
		rec, ok := rowToRecord(row)
		if !ok {
			continue
		}
		state.Append(rec)
	}
	return state
}

func recordToRow(rec JourneyRecord, now time.Time) CustomerRow {
	row := CustomerRow{
		ID:                    rec.ID,
		Name:                  rec.Name,
		Bucket:                string(rec.Bucket),
		JourneyState:          string(rec.JourneyState),
		JourneyStageStartedAt: rec.JourneyStageStartedAt,
		UpdatedAt:             now,
	}
	if rec.Platform != "" {
		platform := rec.Platform
		row.Platform = &platform
	}
	if rec.Bucket == BucketClosed {
		row.BookDate = rec.BookDate
		row.CleanDate = rec.CleanDate
	} else {
		row.StartDate = rec.StartDate
	}
	if len(rec.History) > 0 {
		if raw, err := json.Marshal(rec.History); err == nil {
			row.History = datatypes.JSON(raw)
		}
	}
	if rec.Data != nil {
		row.Data = datatypes.JSONMap(rec.Data)
	}
	return row
}

func rowToRecord(row CustomerRow) (JourneyRecord, bool) {
	bucket, ok := ParseBucket(row.Bucket)
	if !ok {
		return JourneyRecord{}, false
	}

	state := State(row.JourneyState)
	if !state.Valid() {
		state = DefaultState(bucket)
	}

	rec := JourneyRecord{
		ID:                    row.ID,
		Name:                  row.Name,
		Bucket:                bucket,
		JourneyState:          state,
		JourneyStageStartedAt: row.JourneyStageStartedAt,
	}
	if row.Platform != nil {
		rec.Platform = *row.Platform
	}
	if bucket == BucketClosed {
		rec.BookDate = row.BookDate
		rec.CleanDate = row.CleanDate
	} else {
		rec.StartDate = row.StartDate
	}
	if len(row.History) > 0 {
		// Corrupt history is dropped rather than failing the load.
		var history []HistoryEntry
		if err := json.Unmarshal(row.History, &history); err == nil {
			rec.History = history
		}
	}
	if row.Data != nil {
		rec.Data = map[string]interface{}(row.Data)
	}
	return rec, true
}
