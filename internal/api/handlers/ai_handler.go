package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"glucolog/domain"
	"glucolog/internal/api/presenters"
	"glucolog/pkg/conversation"
)

type (
	AIHandler interface {
		Analyze(c *fiber.Ctx) error
	}

	aiHandler struct {
		analyzer  conversation.Analyzer
		validator *validator.Validate
	}
)

func NewAIHandler(analyzer conversation.Analyzer, validator *validator.Validate) AIHandler {
	return &aiHandler{
		analyzer:  analyzer,
		validator: validator,
	}
}

// Analyze always answers 200 once the request is valid; degraded results
// carry their advisory in the error field.
func (h *aiHandler) Analyze(c *fiber.Ctx) error {
	req := new(domain.AnalyzeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyze, err)
	}

	description := strings.TrimSpace(req.Description)
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action == "" {
		action = domain.AnalyzeActionText
	}

	res := domain.AnalyzeResponse{Action: action}
	switch action {
	case domain.AnalyzeActionText:
		if description == "" {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyze, domain.ErrMissingAnalyzeIn)
		}
		analysis := h.analyzer.AnalyzeText(c.Context(), description)
		res.Analysis = analysis
		res.Error = analysis.Error
	case domain.AnalyzeActionPhoto:
		if strings.TrimSpace(req.ImageURL) == "" {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyze, domain.ErrMissingImage)
		}
		analysis := h.analyzer.AnalyzePhoto(c.Context(), req.ImageURL)
		res.Analysis = analysis
		res.Error = analysis.Error
	case domain.AnalyzeActionClarify:
		if description == "" {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyze, domain.ErrMissingAnalyzeIn)
		}
		clarification := h.analyzer.Clarify(c.Context(), description)
		res.Questions = clarification.Questions
		res.Error = clarification.Error
	default:
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyze, domain.ErrInvalidAction)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAnalyze)
}
