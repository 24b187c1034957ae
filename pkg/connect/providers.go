// Package connect links external lead-source accounts via OAuth
// authorization-code flow and keeps the exchanged tokens on record.
// Tokens are stored as granted; nothing here refreshes them.
package connect

import (
	"errors"

	"github.com/journeyboard/platform/pkg/common/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ProviderThumbtack = "thumbtack"
	ProviderGmail     = "gmail"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

// Providers holds one oauth2.Config per linkable source. A provider with
// no client id configured is simply absent.
type Providers struct {
	configs map[string]*oauth2.Config
}

func NewProviders(cfg *config.Config) *Providers {
	p := &Providers{configs: make(map[string]*oauth2.Config)}

	if cfg.ThumbtackClientID != "" {
		p.configs[ProviderThumbtack] = &oauth2.Config{
			ClientID:     cfg.ThumbtackClientID,
			ClientSecret: cfg.ThumbtackClientSecret,
			RedirectURL:  cfg.ThumbtackRedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://api.thumbtack.com/api/v4/oauth/authorize",
				TokenURL: "https://api.thumbtack.com/api/v4/oauth/token",
			},
			Scopes: []string{"read_businesses", "read_negotiations", "read_messages", "read_reviews"},
		}
	}

	if cfg.GmailClientID != "" {
		p.configs[ProviderGmail] = &oauth2.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RedirectURL:  cfg.GmailRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/gmail.readonly"},
		}
	}
	return p
}

func (p *Providers) Get(name string) (*oauth2.Config, error) {
	cfg, ok := p.configs[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return cfg, nil
}
