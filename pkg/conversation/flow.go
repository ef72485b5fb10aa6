package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"glucolog/domain"
)

const (
	greetingMessage      = "Snap a photo of your meal, or tell me what you ate."
	textFallbackMessage  = "What did you eat? Just describe it however feels natural."
	photoFailedMessage   = "I couldn't quite make out the food. Could you describe what you're eating?"
	editMessage          = "I see you want to update this meal. Would you like to take a new photo, or just tell me what changed?"
	defaultPortionPrompt = "Could you tell me more about the portion sizes?"
	mealTypePrompt       = "Which meal was this: breakfast, brunch, lunch, dinner or snack?"
	saveFailedMessage    = "Sorry, I couldn't save your meal. Please try again."
)

// Flow holds the knobs of the state machine. Transition itself is pure apart
// from stamping message times with Now.
type Flow struct {
	SkipPortion bool
	Location    *time.Location
	Now         func() time.Time
}

func NewFlow(skipPortion bool, location *time.Location) *Flow {
	if location == nil {
		location = time.UTC
	}
	return &Flow{SkipPortion: skipPortion, Location: location, Now: time.Now}
}

func (f *Flow) Start(id string, userID *uuid.UUID) Session {
	now := f.Now()
	s := Session{ID: id, UserID: userID, State: StatePhotoCapture, LastActivity: now}
	s.say(RoleAssistant, greetingMessage, "", now)
	return s
}

// StartEdit seeds a session from a saved meal; it opens in Describing.
func (f *Flow) StartEdit(id string, userID *uuid.UUID, meal domain.MealResponse) Session {
	now := f.Now()
	s := Session{
		ID:            id,
		UserID:        userID,
		State:         StateDescribing,
		EditingMealID: meal.ID,
		LastActivity:  now,
		Draft: Draft{
			Description:    meal.Description,
			EstimatedCarbs: meal.EstimatedCarbs,
			EstimatedSugar: meal.EstimatedSugar,
			AISummary:      meal.AISummary,
			CarbSource:     meal.CarbSource,
			PhotoURL:       meal.PhotoURL,
			MealType:       meal.MealType,
		},
	}
	s.say(RoleAssistant, editMessage, "", now)
	return s
}

// Transition applies e to s. On error the returned session is s unchanged.
func (f *Flow) Transition(s Session, e Event) (Session, []Effect, error) {
	if s.State.Terminal() {
		return s, nil, f.invalid(s, e)
	}

	if _, ok := e.(Cancelled); ok {
		next := s.clone()
		next.State = StateCancelled
		next.Pending = nil
		next.LastActivity = f.Now()
		return next, nil, nil
	}

	if kind, isResult := answers(e); isResult {
		if len(s.Pending) == 0 || s.Pending[0] != kind {
			return s, nil, f.invalid(s, e)
		}
	} else if len(s.Pending) > 0 {
		return s, nil, f.invalid(s, e)
	}

	next := s.clone()
	next.LastActivity = f.Now()
	if _, isResult := answers(e); isResult {
		next.Pending = next.Pending[1:]
	}

	effects, err := f.apply(&next, e)
	if err != nil {
		return s, nil, err
	}
	for _, eff := range effects {
		next.Pending = append(next.Pending, eff.Kind())
	}
	return next, effects, nil
}

func (f *Flow) apply(s *Session, e Event) ([]Effect, error) {
	now := s.LastActivity

	switch s.State {
	case StatePhotoCapture:
		switch ev := e.(type) {
		case PhotoSelected:
			return f.selectPhoto(s, ev, now), nil
		case PhotoUploaded:
			s.Draft.PhotoURL = ev.URL
			return []Effect{AnalyzePhoto{ImageRef: ev.URL}}, nil
		case PhotoUploadFailed:
			// keep the local preview as the photo reference
			return []Effect{AnalyzePhoto{ImageRef: s.Draft.PhotoURL}}, nil
		case PhotoAnalyzed:
			f.photoAnalyzed(s, ev.Result, now)
			return nil, nil
		case ChooseText:
			s.State = StateTextFallback
			s.say(RoleAssistant, textFallbackMessage, "", now)
			return nil, nil
		}

	case StateTextFallback, StateDescribing:
		switch ev := e.(type) {
		case PhotoSelected:
			if s.EditingMealID == "" {
				break
			}
			return f.selectPhoto(s, ev, now), nil
		case DescriptionSubmitted:
			text := strings.TrimSpace(ev.Text)
			if text == "" {
				return nil, domain.ErrMissingDescription
			}
			s.State = StateDescribing
			s.say(RoleUser, text, "", now)
			s.Draft.Description = text
			s.Draft.PendingQuestions = nil
			if f.SkipPortion {
				return []Effect{AnalyzeText{Description: text}}, nil
			}
			return []Effect{Clarify{Description: text}, AnalyzeText{Description: text}}, nil
		case Clarified:
			s.Draft.PendingQuestions = ev.Result.Questions
			return nil, nil
		case TextAnalyzed:
			s.Draft.applyText(ev.Result)
			if f.SkipPortion {
				s.State = StateReadyToLog
				s.say(RoleAssistant, readyMessage(s.Draft), "", now)
				return nil, nil
			}
			s.State = StatePortionClarification
			s.say(RoleAssistant, portionMessage(s.Draft), "", now)
			return nil, nil
		}

	case StatePortionClarification:
		switch ev := e.(type) {
		case PortionAnswered:
			text := strings.TrimSpace(ev.Text)
			if text == "" {
				return nil, domain.ErrMissingDescription
			}
			s.say(RoleUser, text, "", now)
			s.Draft.Description = fmt.Sprintf("%s (%s)", s.Draft.Description, text)
			return []Effect{AnalyzeText{Description: s.Draft.Description}}, nil
		case TextAnalyzed:
			s.Draft.applyText(ev.Result)
			f.askMealType(s, now)
			return nil, nil
		case PortionSkipped:
			f.askMealType(s, now)
			return nil, nil
		}

	case StateMealTypeSelection:
		switch ev := e.(type) {
		case MealTypeChosen:
			s.Draft.MealType = ev.MealType
			s.say(RoleUser, ev.MealType.Label(), "", now)
			s.State = StateReadyToLog
			s.say(RoleAssistant, readyMessage(s.Draft), "", now)
			return nil, nil
		case MealTypeInferred:
			s.Draft.MealType = domain.InferMealType(ev.At.In(f.Location))
			s.State = StateReadyToLog
			s.say(RoleAssistant, readyMessage(s.Draft), "", now)
			return nil, nil
		}

	case StateReadyToLog:
		switch ev := e.(type) {
		case MealTypeChosen:
			s.Draft.MealType = ev.MealType
			s.say(RoleUser, ev.MealType.Label(), "", now)
			return nil, nil
		case Confirmed:
			if s.Draft.MealType == "" {
				s.Draft.MealType = domain.InferMealType(ev.At.In(f.Location))
			}
			return []Effect{SaveMeal{Draft: s.Draft, EditingMealID: s.EditingMealID}}, nil
		case MealSaved:
			s.State = StateDone
			s.SavedMealID = ev.Meal.ID
			verb := "Logged!"
			if s.EditingMealID != "" {
				verb = "Updated!"
			}
			s.say(RoleAssistant, fmt.Sprintf("%s Your %s has been saved.", verb, ev.Meal.MealType.Label()), "", now)
			return nil, nil
		case SaveFailed:
			s.say(RoleAssistant, saveFailedMessage, "", now)
			return nil, nil
		}
	}

	return nil, f.invalid(*s, e)
}

func (f *Flow) selectPhoto(s *Session, ev PhotoSelected, now time.Time) []Effect {
	s.State = StatePhotoCapture
	s.Draft.PhotoURL = ev.PreviewRef
	s.say(RoleUser, "", ev.PreviewRef, now)
	return []Effect{UploadPhoto{PreviewRef: ev.PreviewRef, Data: ev.Data, ContentType: ev.ContentType}}
}

func (f *Flow) photoAnalyzed(s *Session, res domain.PhotoAnalysis, now time.Time) {
	if !res.Usable() {
		s.State = StateDescribing
		s.say(RoleAssistant, photoFailedMessage, "", now)
		return
	}
	description := res.Description
	if description == "" {
		description = strings.Join(res.Foods, ", ")
	}
	s.Draft.Description = description
	s.Draft.EstimatedCarbs = res.EstimatedCarbs
	s.Draft.CarbSource = res.CarbSource
	s.Draft.AISummary = description
	s.Draft.Advisory = ""
	s.State = StateReadyToLog
	s.say(RoleAssistant, readyMessage(s.Draft), "", now)
}

func (f *Flow) askMealType(s *Session, now time.Time) {
	s.State = StateMealTypeSelection
	s.say(RoleAssistant, estimateLine(s.Draft)+"\n\n"+mealTypePrompt, "", now)
}

func (f *Flow) invalid(s Session, e Event) error {
	return fmt.Errorf("%w: %s in %s", domain.ErrInvalidEvent, e.eventName(), s.State)
}

func (d *Draft) applyText(res domain.TextAnalysis) {
	d.EstimatedCarbs = res.EstimatedCarbs
	d.EstimatedSugar = res.EstimatedSugar
	d.AISummary = res.Summary
	if res.CarbSource != "" {
		d.CarbSource = res.CarbSource
	}
	d.Recommendations = res.Recommendations
	d.Advisory = res.Error
}

func (s *Session) say(role Role, text, imageRef string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, ImageRef: imageRef, At: at})
}

func estimateLine(d Draft) string {
	line := fmt.Sprintf("That's about %.0fg of carbs.", d.EstimatedCarbs)
	if d.CarbSource != "" {
		line += fmt.Sprintf(" Most of them come from the %s.", d.CarbSource)
	}
	if d.Advisory != "" {
		line += "\n\n" + d.Advisory
	}
	return line
}

func portionMessage(d Draft) string {
	question := defaultPortionPrompt
	if len(d.PendingQuestions) > 0 {
		question = d.PendingQuestions[0]
	}
	return question
}

func readyMessage(d Draft) string {
	msg := "Got it! " + estimateLine(d)
	if d.MealType != "" {
		msg += fmt.Sprintf("\n\nI'll log this as %s.", d.MealType.Label())
	}
	return msg + "\n\nTap \"Log Meal\" when you're ready to save."
}
