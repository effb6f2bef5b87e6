package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"growthos/internal/errors"
	"growthos/internal/types"
	"growthos/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the configured Store backed by gorm.
// Writes go through the privileged connection, reads through the public one.
type GormStore struct {
	writer        *gorm.DB
	reader        *gorm.DB
	feedbackLimit int
	logger        *errors.Logger
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps existing connections. reader may be nil, in which case writer serves reads.
func NewGormStore(writer, reader *gorm.DB, feedbackLimit int, logger *errors.Logger) *GormStore {
	if reader == nil {
		reader = writer
	}
	return &GormStore{
		writer:        writer,
		reader:        reader,
		feedbackLimit: feedbackLimit,
		logger:        logger,
	}
}

// Migrate creates or updates the tables
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.writer.WithContext(ctx).AutoMigrate(&userRow{}, &profileRow{}, &feedbackRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *GormStore) Enabled() bool { return true }

// EnsureUser returns the stable identity for an email, creating it on first sign-in
func (s *GormStore) EnsureUser(ctx context.Context, email, name string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	var row userRow
	err := s.writer.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&row).Error
		switch {
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			row = userRow{ID: uuid.New(), Email: email, Name: name}
			return tx.Create(&row).Error
		case err != nil:
			return err
		}
		if name != "" && name != row.Name {
			row.Name = name
			return tx.Model(&row).Update("name", name).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return row.toUser(), nil
}

func (s *GormStore) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	var row profileRow
	err := s.reader.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return row.toProfile(), nil
}

// SaveAnalysis stores the onboarding material and analysis, marks onboarding complete
// and assigns a fresh share identifier
func (s *GormStore) SaveAnalysis(ctx context.Context, userID uuid.UUID, input types.AnalysisInput, analysis *types.GapAnalysis) (*types.Profile, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis is required")
	}

	var row profileRow
	err := s.writer.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&row).Error
		if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			row = profileRow{UserID: userID}
		}

		shareID := uuid.New()
		row.applyInput(input)
		row.GapAnalysis = analysis
		row.ShareID = &shareID
		row.OnboardingComplete = true
		row.UpdatedAt = time.Now()

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"github_data", "linkedin_raw", "resume_raw", "website_url",
				"target_role", "current_position", "timeline",
				"gap_analysis", "share_id", "onboarding_complete", "updated_at",
			}),
		}).Create(&row).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("Stored gap analysis", "user_id", userID, "share_id", row.ShareID)
	}
	return row.toProfile(), nil
}

func (s *GormStore) GetAnalysisByShareID(ctx context.Context, shareID uuid.UUID) (*types.GapAnalysis, error) {
	var row profileRow
	err := s.reader.WithContext(ctx).
		Select("user_id", "gap_analysis", "share_id").
		Where("share_id = ?", shareID).
		First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shared analysis: %w", err)
	}
	if row.GapAnalysis == nil {
		return nil, ErrNotFound
	}
	return row.GapAnalysis, nil
}

// InsertFeedback appends a feedback row. The message is truncated to the configured limit.
func (s *GormStore) InsertFeedback(ctx context.Context, feedback *types.Feedback) error {
	row := feedbackRow{
		UserID:  feedback.UserID,
		Type:    string(feedback.Type),
		Message: utils.TruncateRunes(feedback.Message, s.feedbackLimit),
		Page:    feedback.Page,
	}
	if err := s.writer.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	feedback.ID = row.ID
	feedback.Message = row.Message
	feedback.CreatedAt = row.CreatedAt
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.writer.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	var errs []error
	if sqlDB, err := s.writer.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	if s.reader != s.writer {
		if sqlDB, err := s.reader.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return stderrors.Join(errs...)
}
