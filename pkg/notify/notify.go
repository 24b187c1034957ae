// Package notify delivers operator alerts for incoming lead activity.
package notify

import (
	"context"

	"github.com/journeyboard/platform/pkg/common/logger"
)

// Notifier sends a plain-text alert to the operator channel. Send reports
// whether delivery happened; callers treat a false as degraded, not fatal,
// so a notification outage never blocks lead handling.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

// LogNotifier writes alerts to the structured log. It is the delivery
// backend when no chat credentials are configured, and doubles as the
// fallback sink in tests.
type LogNotifier struct {
	configured bool
}

// NewLogNotifier builds the log-backed notifier. configured records whether
// chat credentials were present; unsent-because-unconfigured alerts are
// reported as undelivered so callers can surface the gap.
func NewLogNotifier(configured bool) *LogNotifier {
	return &LogNotifier{configured: configured}
}

func (n *LogNotifier) Send(ctx context.Context, text string) bool {
	if !n.configured {
		logger.Log.WithField("alert", text).Warn("chat credentials not configured, alert logged only")
		return false
	}
	logger.Log.WithField("alert", text).Info("operator alert")
	return true
}
