package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/services"
)

type MatchHandler struct {
	matcher services.MatcherService
	agents  *services.AgentRegistry
}

func NewMatchHandler(matcher services.MatcherService, agents *services.AgentRegistry) *MatchHandler {
	return &MatchHandler{
		matcher: matcher,
		agents:  agents,
	}
}

// HandleMatch handles POST /match
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	agent, err := h.agents.Get(req.AgentRef)
	if err != nil {
		return respondError(c, err)
	}

	results, err := h.matcher.MatchProjects(
		c.UserContext(),
		req.CompanyProfile,
		req.Projects,
		agent,
		floatOr(req.Threshold, services.DefaultThreshold),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(results)
}

// HandleMatchBatch handles POST /match/batch
func (h *MatchHandler) HandleMatchBatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	agent, err := h.agents.Get(req.AgentRef)
	if err != nil {
		return respondError(c, err)
	}

	results, err := h.matcher.MatchProjectsBatch(
		c.UserContext(),
		req.CompanyProfile,
		req.Projects,
		agent,
		floatOr(req.Threshold, services.DefaultThreshold),
		intOr(req.BatchSize, services.DefaultBatchSize),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(results)
}

// HandleMatchKnowledgeBase handles POST /match/knowledge-base
func (h *MatchHandler) HandleMatchKnowledgeBase(c *fiber.Ctx) error {
	var req models.KnowledgeBaseMatchRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	results, err := h.matcher.MatchProjectsWithKnowledgeBase(
		c.UserContext(),
		req.CompanyProfile,
		intOr(req.Limit, services.DefaultSemanticLimit),
		floatOr(req.Threshold, services.DefaultThreshold),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(results)
}
