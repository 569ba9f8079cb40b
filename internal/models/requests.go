package models

type StoreProjectRequest struct {
	Project  Project        `json:"project"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type StoreProjectsRequest struct {
	Projects []Project `json:"projects"`
}

type MatchRequest struct {
	CompanyProfile string    `json:"companyProfile" validate:"required"`
	Projects       []Project `json:"projects" validate:"min=1,dive"`
	AgentRef       string    `json:"agentRef,omitempty"`
	Threshold      *float64  `json:"threshold,omitempty" validate:"omitempty,min=0,max=100"`
	BatchSize      *int      `json:"batchSize,omitempty" validate:"omitempty,min=1"`
}

type KnowledgeBaseMatchRequest struct {
	CompanyProfile string   `json:"companyProfile" validate:"required"`
	Limit          *int     `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Threshold      *float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=100"`
}

type FitRequest struct {
	ProjectDescription  string   `json:"projectDescription" validate:"required"`
	CompanyProfile      string   `json:"companyProfile" validate:"required"`
	SimilarityThreshold *float64 `json:"similarityThreshold,omitempty" validate:"omitempty,min=0,max=100"`
	FitThreshold        *float64 `json:"fitThreshold,omitempty" validate:"omitempty,min=0,max=100"`
	LimitSimilar        *int     `json:"limitSimilar,omitempty" validate:"omitempty,min=1,max=100"`
}

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	PageCount    int    `json:"pageCount"`
}

type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type JobResultResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Result       *FitAnalysis `json:"result,omitempty"`
	ErrorMessage *string      `json:"errorMessage,omitempty"`
}
