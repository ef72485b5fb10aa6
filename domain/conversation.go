package domain

import "errors"

const (
	EventPhoto       = "photo"
	EventTextInstead = "text-instead"
	EventDescribe    = "describe"
	EventPortion     = "portion"
	EventSkipPortion = "skip-portion"
	EventMealType    = "meal-type"
	EventConfirm     = "confirm"
	EventCancel      = "cancel"
)

var (
	MessageSuccessStartConversation  = "conversation started"
	MessageSuccessGetConversation    = "conversation retrieved"
	MessageSuccessConversationEvent  = "conversation updated"
	MessageSuccessCancelConversation = "conversation cancelled"

	MessageFailedStartConversation  = "failed to start conversation"
	MessageFailedGetConversation    = "failed to retrieve conversation"
	MessageFailedConversationEvent  = "failed to apply conversation event"
	MessageFailedCancelConversation = "failed to cancel conversation"

	ErrSessionNotFound = errors.New("conversation not found")
	ErrInvalidEvent    = errors.New("event not allowed in the current conversation state")
	ErrUnknownEvent    = errors.New("unknown conversation event type")
	ErrInvalidImage    = errors.New("imageData must be a base64 data URL")
)

type (
	StartConversationRequest struct {
		EditMealID string `json:"editMealId" validate:"omitempty,uuid"`
	}

	ConversationEventRequest struct {
		Type      string `json:"type" validate:"required"`
		Text      string `json:"text" validate:"omitempty,max=2000"`
		ImageData string `json:"imageData"`
		MealType  string `json:"mealType" validate:"omitempty,mealtype"`
	}
)
