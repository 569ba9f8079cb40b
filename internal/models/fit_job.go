package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// FitAnalysisJob is a fit analysis run in the background.
type FitAnalysisJob struct {
	ID                  uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectDescription  string       `gorm:"type:text;not null" json:"projectDescription"`
	CompanyProfile      string       `gorm:"type:text;not null" json:"companyProfile"`
	SimilarityThreshold float64      `gorm:"not null" json:"similarityThreshold"`
	FitThreshold        float64      `gorm:"not null" json:"fitThreshold"`
	LimitSimilar        int          `gorm:"not null" json:"limitSimilar"`
	Status              JobStatus    `gorm:"not null;default:'queued'" json:"status"`
	Result              *FitAnalysis `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`
	ErrorMessage        *string      `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt           time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (FitAnalysisJob) TableName() string {
	return "fit_analysis_jobs"
}
