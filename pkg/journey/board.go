package journey

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TouchpointTemplate is a reusable checklist shown at a timeline position,
// e.g. the closed-confirmation steps at 0%.
type TouchpointTemplate struct {
	Key   string   `yaml:"key" json:"key"`
	Title string   `yaml:"title" json:"title"`
	Items []string `yaml:"items" json:"items"`
}

// BoardConfig is the presentation-level configuration: the lead-source
// platform set, timeline spans and touchpoint templates. Loaded from YAML
// with compiled-in defaults.
type BoardConfig struct {
	Platforms   []string             `yaml:"platforms" json:"platforms"`
	DaySpan     int                  `yaml:"day_span" json:"day_span"`
	SaidNoSpan  int                  `yaml:"said_no_span" json:"said_no_span"`
	Touchpoints []TouchpointTemplate `yaml:"touchpoints" json:"touchpoints"`
}

func LoadBoardConfig(path string) (BoardConfig, error) {
	if path == "" {
		return DefaultBoardConfig(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultBoardConfig(), err
	}

	cfg := DefaultBoardConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return DefaultBoardConfig(), err
	}
	if cfg.DaySpan <= 0 {
		cfg.DaySpan = DefaultDaySpan
	}
	if cfg.SaidNoSpan <= 0 {
		cfg.SaidNoSpan = SaidNoDaySpan
	}
	return cfg, nil
}

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Platforms:  []string{"LSA", "FACEBOOK", "THUMBTACK", "ORGANIC", "GOOGLE ADS", "REFERRAL"},
		DaySpan:    DefaultDaySpan,
		SaidNoSpan: SaidNoDaySpan,
		Touchpoints: []TouchpointTemplate{
			{
				Key:   "closed:0",
				Title: "Closed confirmation",
				Items: []string{
					"Send SMS thanking them for booking, include clean date/time, ask to save your number.",
					"Send email with the same information.",
					"If onboarded on the call, promise a preference summary within 48 hours.",
					"If an onboarding call was scheduled, include its date/time in the SMS and the email.",
				},
			},
		},
	}
}

func (c BoardConfig) ValidPlatform(platform string) bool {
	for _, p := range c.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}
