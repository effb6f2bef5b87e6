package store

import (
	"time"

	"growthos/internal/types"

	"github.com/google/uuid"
)

type userRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toUser() *types.User {
	return &types.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type profileRow struct {
	UserID             uuid.UUID          `gorm:"column:user_id;type:uuid;primaryKey"`
	GitHubData         string             `gorm:"column:github_data;type:text"`
	LinkedInRaw        string             `gorm:"column:linkedin_raw;type:text"`
	ResumeRaw          string             `gorm:"column:resume_raw;type:text"`
	WebsiteURL         string             `gorm:"column:website_url"`
	TargetRole         string             `gorm:"column:target_role"`
	CurrentRole        string             `gorm:"column:current_position"`
	Timeline           string             `gorm:"column:timeline"`
	GapAnalysis        *types.GapAnalysis `gorm:"column:gap_analysis;type:jsonb;serializer:json"`
	ShareID            *uuid.UUID         `gorm:"column:share_id;type:uuid;uniqueIndex"`
	OnboardingComplete bool               `gorm:"column:onboarding_complete;not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (profileRow) TableName() string { return "profiles" }

func (r *profileRow) toProfile() *types.Profile {
	return &types.Profile{
		UserID:             r.UserID,
		GitHubData:         r.GitHubData,
		LinkedInRaw:        r.LinkedInRaw,
		ResumeRaw:          r.ResumeRaw,
		WebsiteURL:         r.WebsiteURL,
		TargetRole:         r.TargetRole,
		CurrentRole:        r.CurrentRole,
		Timeline:           r.Timeline,
		GapAnalysis:        r.GapAnalysis,
		ShareID:            r.ShareID,
		OnboardingComplete: r.OnboardingComplete,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// applyInput overwrites raw onboarding fields that were supplied
func (r *profileRow) applyInput(in types.AnalysisInput) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.ResumeRaw, in.ResumeText)
	set(&r.LinkedInRaw, in.LinkedInText)
	set(&r.GitHubData, in.GitHubData)
	set(&r.WebsiteURL, in.WebsiteURL)
	set(&r.TargetRole, in.TargetRole)
	set(&r.CurrentRole, in.CurrentRole)
	set(&r.Timeline, in.Timeline)
}

type feedbackRow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;index;not null"`
	Type      string    `gorm:"column:type;not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Page      string    `gorm:"column:page"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (feedbackRow) TableName() string { return "feedback" }
