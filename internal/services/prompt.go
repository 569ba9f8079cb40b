package services

import (
	"fmt"
	"strings"
)

// rerankSnippetChars caps how much of each candidate goes into a rerank prompt.
const rerankSnippetChars = 1500

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildMatchingPrompt asks the agent to score how well a company fits a project.
// The rubric bands and the score/reasoning/matchedAreas keys are what parseMatchResponse reads back.
func (pb *PromptBuilder) BuildMatchingPrompt(companyProfile, projectDescription string) string {
	return fmt.Sprintf(`You are an expert business development analyst evaluating whether a company is a good fit for a project or RFP.

COMPANY PROFILE:
%s

PROJECT DESCRIPTION:
%s

Your task is to assess how well the company's capabilities match the project's requirements.

Score the match from 0 to 100 using this rubric:
- 0-29: Poor match - the company lacks most of the required capabilities
- 30-49: Fair match - some relevant capabilities, significant gaps
- 50-69: Moderate match - covers the core requirements with notable gaps
- 70-89: Good match - strong alignment with most requirements
- 90-100: Excellent match - the company is ideally suited for this project

Return your response in the following JSON format:
{
  "score": <number 0-100>,
  "reasoning": "<2-4 sentences explaining the score>",
  "matchedAreas": ["<capability or technology shared by the company and the project>", ...]
}

Return only valid JSON. Do not include markdown or any text before or after the JSON object.`,
		strings.TrimSpace(companyProfile), strings.TrimSpace(projectDescription))
}

// BuildSemanticQuery wraps a company profile into a search query for projects.
func (pb *PromptBuilder) BuildSemanticQuery(companyProfile string) string {
	return fmt.Sprintf("Find projects and RFPs that match the following company capabilities and experience: %s",
		strings.TrimSpace(companyProfile))
}

// BuildRerankPrompt asks the agent to score each numbered candidate's relevance to query.
func (pb *PromptBuilder) BuildRerankPrompt(query string, candidates []string) string {
	var b strings.Builder
	for i, text := range candidates {
		fmt.Fprintf(&b, "[%d]\n%s\n\n", i, truncateUTF8(strings.TrimSpace(text), rerankSnippetChars))
	}

	return fmt.Sprintf(`You are a search relevance judge. Score how relevant each candidate document is to the query.

QUERY:
%s

CANDIDATES:
%s
Score every candidate from 0 (irrelevant) to 100 (perfectly relevant).

Return your response in the following JSON format:
{
  "rankings": [
    {"index": <candidate number>, "score": <number 0-100>, "reasoning": "<one sentence>"}
  ]
}

Return only valid JSON.`,
		strings.TrimSpace(query), b.String())
}
