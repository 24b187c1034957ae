package connect

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTokenNotFound = errors.New("no token stored for provider")

// TokenRow keeps the latest granted token per provider. One row per
// provider; a re-link overwrites.
type TokenRow struct {
	Provider     string `gorm:"primaryKey"`
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	UpdatedAt    time.Time
}

func (TokenRow) TableName() string {
	return "oauth_tokens"
}

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&TokenRow{})
}

func (r *TokenRepository) Save(ctx context.Context, provider string, token *oauth2.Token) error {
	row := TokenRow{
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		UpdatedAt:    time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (r *TokenRepository) Get(ctx context.Context, provider string) (*oauth2.Token, error) {
	var row TokenRow
	err := r.db.WithContext(ctx).First(&row, "provider = ?", provider).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenType:    row.TokenType,
		Expiry:       row.Expiry,
	}, nil
}
