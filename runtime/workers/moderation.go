package workers

import (
	"chat-live/domain/event"
	"chat-live/moderation"
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
)

// ModerationWorker sits between intake and fan-out: every posted message
// is censored and annotated with its detected language before delivery.
type ModerationWorker struct {
	moderator moderation.Moderator
	rawEvents chan event.Event
	events    chan event.Event
	log       *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator,
	rawEvents, events chan event.Event, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator: moderator,
		rawEvents: rawEvents,
		events:    events,
		log:       log,
	}
}

func (w ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			switch evt := e.Payload.(type) {
			case event.MessagePosted:
				select {
				case <-ctx.Done():
					w.log.Debug("Stopping worker")
					return ctx.Err()
				case w.events <- w.toSanitizedEvent(e, evt):
				}
			}
		}
	}
}

func (w ModerationWorker) toSanitizedEvent(envelope event.Event, evt event.MessagePosted) event.Event {
	info := whatlanggo.Detect(evt.Content)
	langCode := info.Lang.Iso6391()

	sanitized, foundWords := w.moderator.Censor(evt.Content)
	if len(foundWords) > 0 {
		w.log.Info("Censored message content",
			"author", evt.Author,
			"lang", langCode,
			"matches", len(foundWords))
	}

	return event.Event{
		Type:      event.DomainType,
		CreatedAt: time.Now().UTC(),
		Exclude:   envelope.Exclude,
		Payload: event.SanitizedMessage{
			ConnectionID:  evt.ConnectionID,
			Author:        evt.Author,
			Content:       sanitized,
			Lang:          langCode,
			CensoredWords: foundWords,
			At:            evt.At,
		},
	}
}
