package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"glucolog/domain"
	"glucolog/internal/api/presenters"
	"glucolog/internal/middleware"
	"glucolog/pkg/conversation"
)

type (
	ConversationHandler interface {
		Start(c *fiber.Ctx) error
		Get(c *fiber.Ctx) error
		Dispatch(c *fiber.Ctx) error
		Cancel(c *fiber.Ctx) error
	}

	conversationHandler struct {
		manager   *conversation.Manager
		validator *validator.Validate
		now       func() time.Time
	}
)

func NewConversationHandler(manager *conversation.Manager, validator *validator.Validate) ConversationHandler {
	return &conversationHandler{
		manager:   manager,
		validator: validator,
		now:       time.Now,
	}
}

func (h *conversationHandler) Start(c *fiber.Ctx) error {
	req := new(domain.StartConversationRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedStartConversation, err)
	}

	s, err := h.manager.Start(c.Context(), middleware.CurrentUser(c), req.EditMealID)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedStartConversation, err)
	}
	return presenters.SuccessResponse(c, s, fiber.StatusCreated, domain.MessageSuccessStartConversation)
}

func (h *conversationHandler) Get(c *fiber.Ctx) error {
	s, err := h.manager.Get(c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedGetConversation, err)
	}
	return presenters.SuccessResponse(c, s, fiber.StatusOK, domain.MessageSuccessGetConversation)
}

func (h *conversationHandler) Dispatch(c *fiber.Ctx) error {
	req := new(domain.ConversationEventRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConversationEvent, err)
	}

	ev, err := conversation.ParseEvent(*req, h.now())
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedConversationEvent, err)
	}

	s, err := h.manager.Dispatch(c.Context(), c.Params("id"), middleware.CurrentUser(c), ev)
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedConversationEvent, err)
	}
	return presenters.SuccessResponse(c, s, fiber.StatusOK, domain.MessageSuccessConversationEvent)
}

func (h *conversationHandler) Cancel(c *fiber.Ctx) error {
	s, err := h.manager.Cancel(c.Context(), c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return presenters.ErrorResponse(c, errorStatus(err), domain.MessageFailedCancelConversation, err)
	}
	return presenters.SuccessResponse(c, s, fiber.StatusOK, domain.MessageSuccessCancelConversation)
}
