package logging

import (
	"github.com/rs/zerolog"
)

const (
	sentSessionField = "sent_session_id"
	listField        = "list"
)

// ContextHook copies the sent session id and staple list name carried by an
// event's context onto the event.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	if id := GetSentSessionID(ctx); id != "" {
		e.Str(sentSessionField, id)
	}
	if list := GetList(ctx); list != "" {
		e.Str(listField, list)
	}
}
