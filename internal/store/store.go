package store

import (
	"context"
	stderrors "errors"

	"growthos/internal/types"

	"github.com/google/uuid"
)

var (
	// ErrDisabled is returned by every operation of the disabled store
	ErrDisabled = stderrors.New("database not configured")
	// ErrNotFound is returned when a share identifier has no stored analysis
	ErrNotFound = stderrors.New("record not found")
)

// Store persists users, profiles and feedback
type Store interface {
	// Enabled reports whether a database connection is configured
	Enabled() bool
	EnsureUser(ctx context.Context, email, name string) (*types.User, error)
	// GetProfile returns nil, nil when the user has no profile yet
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	SaveAnalysis(ctx context.Context, userID uuid.UUID, input types.AnalysisInput, analysis *types.GapAnalysis) (*types.Profile, error)
	GetAnalysisByShareID(ctx context.Context, shareID uuid.UUID) (*types.GapAnalysis, error)
	InsertFeedback(ctx context.Context, feedback *types.Feedback) error
	Ping(ctx context.Context) error
	Close() error
}

// Disabled is the store used when no database credentials are available
type Disabled struct{}

var _ Store = Disabled{}

func (Disabled) Enabled() bool { return false }

func (Disabled) EnsureUser(context.Context, string, string) (*types.User, error) {
	return nil, ErrDisabled
}

func (Disabled) GetProfile(context.Context, uuid.UUID) (*types.Profile, error) {
	return nil, ErrDisabled
}

func (Disabled) SaveAnalysis(context.Context, uuid.UUID, types.AnalysisInput, *types.GapAnalysis) (*types.Profile, error) {
	return nil, ErrDisabled
}

func (Disabled) GetAnalysisByShareID(context.Context, uuid.UUID) (*types.GapAnalysis, error) {
	return nil, ErrDisabled
}

func (Disabled) InsertFeedback(context.Context, *types.Feedback) error { return ErrDisabled }

func (Disabled) Ping(context.Context) error { return ErrDisabled }

func (Disabled) Close() error { return nil }
