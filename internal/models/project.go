package models

import (
	"strings"
	"time"
)

// Project is a solicitation or RFP the company may bid on. The same record is
// mirrored in the projects catalog table and carried as metadata in the
// knowledge base.
type Project struct {
	ID                 string   `gorm:"type:text;primaryKey" json:"id" validate:"required"`
	Description        string   `gorm:"type:text;not null" json:"description" validate:"required"`
	Title              string   `gorm:"type:text" json:"title,omitempty"`
	Agency             string   `gorm:"type:text" json:"agency,omitempty"`
	Status             string   `gorm:"type:text" json:"status,omitempty"`
	PostedDate         string   `gorm:"type:text" json:"postedDate,omitempty"`
	DueDate            string   `gorm:"type:text" json:"dueDate,omitempty"`
	URL                string   `gorm:"type:text" json:"url,omitempty"`
	DocumentURL        string   `gorm:"type:text" json:"documentUrl,omitempty"`
	Budget             *float64 `gorm:"type:numeric" json:"budget,omitempty"`
	AwardAmount        *float64 `gorm:"type:numeric" json:"awardAmount,omitempty"`
	AwardedTo          string   `gorm:"type:text" json:"awardedTo,omitempty"`
	AwardDate          string   `gorm:"type:text" json:"awardDate,omitempty"`
	NAICSCode          string   `gorm:"type:text" json:"naicsCode,omitempty"`
	SolicitationNumber string   `gorm:"type:text" json:"solicitationNumber,omitempty"`
	IsBookmarked       *bool    `json:"isBookmarked,omitempty"`
	IsApplied          *bool    `json:"isApplied,omitempty"`
	IsDismissed        *bool    `json:"isDismissed,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt,omitempty"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// EmbeddingText is the single text unit embedded for a project.
func (p *Project) EmbeddingText() string {
	title := strings.TrimSpace(p.Title)
	description := strings.TrimSpace(p.Description)
	if title == "" {
		return description
	}
	return title + "\n\n" + description
}

// Metadata returns the optional attributes that are set, keyed by their JSON names.
func (p *Project) Metadata() map[string]any {
	md := make(map[string]any)

	strs := map[string]string{
		"title":              p.Title,
		"agency":             p.Agency,
		"status":             p.Status,
		"postedDate":         p.PostedDate,
		"dueDate":            p.DueDate,
		"url":                p.URL,
		"documentUrl":        p.DocumentURL,
		"awardedTo":          p.AwardedTo,
		"awardDate":          p.AwardDate,
		"naicsCode":          p.NAICSCode,
		"solicitationNumber": p.SolicitationNumber,
	}
	for key, value := range strs {
		if value != "" {
			md[key] = value
		}
	}

	if p.Budget != nil {
		md["budget"] = *p.Budget
	}
	if p.AwardAmount != nil {
		md["awardAmount"] = *p.AwardAmount
	}
	if p.IsBookmarked != nil {
		md["isBookmarked"] = *p.IsBookmarked
	}
	if p.IsApplied != nil {
		md["isApplied"] = *p.IsApplied
	}
	if p.IsDismissed != nil {
		md["isDismissed"] = *p.IsDismissed
	}

	return md
}
