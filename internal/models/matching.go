package models

// MatchingResult is the per-project outcome of matching a company profile.
type MatchingResult struct {
	ID           string   `json:"id"`
	Score        float64  `json:"score"`
	IsGoodFit    bool     `json:"isGoodFit"`
	Reasoning    string   `json:"reasoning"`
	MatchedAreas []string `json:"matchedAreas"`
}

// SimilarProject is one knowledge-base neighbour scored against the company profile.
type SimilarProject struct {
	ID              string  `json:"id"`
	Similarity      float64 `json:"similarity"`
	CompanyFitScore float64 `json:"companyFitScore"`
	IsCompanyFit    bool    `json:"isCompanyFit"`
}

type FitStatistics struct {
	TotalSimilarProjects int     `json:"totalSimilarProjects"`
	GoodFitProjects      int     `json:"goodFitProjects"`
	GoodFitPercentage    float64 `json:"goodFitPercentage"`
	AverageFitScore      float64 `json:"averageFitScore"`
}

// FitAnalysis is the verdict on whether a new project suits the company,
// derived from how the company fits comparable stored projects.
type FitAnalysis struct {
	IsGoodFit       bool             `json:"isGoodFit"`
	Confidence      int              `json:"confidence"`
	Reasoning       string           `json:"reasoning"`
	SimilarProjects []SimilarProject `json:"similarProjects"`
	Statistics      FitStatistics    `json:"statistics"`
}

type StoreResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ItemFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BatchStoreResult struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Failures     []ItemFailure `json:"failures,omitempty"`
}
