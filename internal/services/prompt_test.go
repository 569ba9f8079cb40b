package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMatchingPrompt(t *testing.T) {
	p := NewPromptBuilder().BuildMatchingPrompt("  Acme builds data platforms.  ", "Build a data lake for the county.")

	assert.Contains(t, p, "COMPANY PROFILE:\nAcme builds data platforms.\n")
	assert.Contains(t, p, "PROJECT DESCRIPTION:\nBuild a data lake for the county.\n")
	for _, band := range []string{"0-29", "30-49", "50-69", "70-89", "90-100"} {
		assert.Contains(t, p, band)
	}
	for _, key := range []string{`"score"`, `"reasoning"`, `"matchedAreas"`} {
		assert.Contains(t, p, key)
	}
}

func TestBuildSemanticQuery(t *testing.T) {
	q := NewPromptBuilder().BuildSemanticQuery(" cloud migrations ")
	assert.Equal(t, "Find projects and RFPs that match the following company capabilities and experience: cloud migrations", q)
}

func TestBuildRerankPrompt(t *testing.T) {
	long := strings.Repeat("x", rerankSnippetChars+500)
	p := NewPromptBuilder().BuildRerankPrompt("query text", []string{"first", long})

	assert.Contains(t, p, "QUERY:\nquery text")
	assert.Contains(t, p, "[0]\nfirst\n")
	assert.Contains(t, p, "[1]\n")
	assert.NotContains(t, p, strings.Repeat("x", rerankSnippetChars+1))
	assert.Contains(t, p, `"rankings"`)
}
