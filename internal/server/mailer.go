package server

import (
	"context"
	"strings"

	growthosErrors "growthos/internal/errors"
	"growthos/internal/types"
)

// Mailer delivers share links. Implementations report delivery failure as an
// AppError with errors.ErrCodeDeliveryFailed.
type Mailer interface {
	SendShareLink(ctx context.Context, req types.ShareEmailRequest) error
}

// LogMailer records share requests in the log without sending anything
type LogMailer struct {
	logger *growthosErrors.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *growthosErrors.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendShareLink logs the request with the address masked
func (m *LogMailer) SendShareLink(_ context.Context, req types.ShareEmailRequest) error {
	m.logger.Info("Share link email requested",
		"email", maskEmail(req.Email),
		"share_link", req.ShareLink,
		"has_analysis", req.AnalysisResult != nil)
	return nil
}

// maskEmail keeps the first character of the local part and the domain
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "****"
	}
	return string([]rune(local)[:1]) + "****@" + domain
}
