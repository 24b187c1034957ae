package journey

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNoteNotFound = errors.New("touchpoint note not found")

// Repository is the remote persistence backend. Callers treat every error
// as non-fatal: a failed write simply means the mutation is not durably
// recorded remotely until a later write succeeds.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NoteRow is a shared touchpoint note template keyed by touchpoint id.
type NoteRow struct {
	Key       string `gorm:"primaryKey"`
	Content   string
	UpdatedAt time.Time
}

func (NoteRow) TableName() string {
	return "touchpoint_notes"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&CustomerRow{}, &NoteRow{})
}

func (r *Repository) FetchAll(ctx context.Context) ([]CustomerRow, error) {
	var rows []CustomerRow
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&rows).Error
	return rows, err
}

// UpsertAll writes the full projected row-set with insert-or-update
// semantics keyed by record id.
func (r *Repository) UpsertAll(ctx context.Context, rows []CustomerRow) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = time.Now().UTC()
		}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&CustomerRow{}, "id = ?", id).Error
}

func (r *Repository) GetNote(ctx context.Context, key string) (string, error) {
	var note NoteRow
	err := r.db.WithContext(ctx).First(&note, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoteNotFound
	}
	if err != nil {
		return "", err
	}
	return note.Content, nil
}

func (r *Repository) SetNote(ctx context.Context, key, content string) error {
	note := NoteRow{Key: key, Content: content, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&note).Error
}
