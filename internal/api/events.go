// Package api provides the HTTP entry points: the Slack events receiver
// and the token refresh trigger.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	zlog "github.com/rs/zerolog/log"
	"github.com/slack-go/slack/slackevents"

	"github.com/osa030/npbot/internal/infra/queue"
)

// EventsHandler receives Slack Events API callbacks, answers the URL
// verification handshake, and publishes command messages onto the queue.
type EventsHandler struct {
	publisher queue.Publisher
}

// NewEventsHandler creates the events receiver.
func NewEventsHandler(publisher queue.Publisher) *EventsHandler {
	return &EventsHandler{publisher: publisher}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		zlog.Warn().Err(err).Msg("failed to parse slack event")
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "invalid challenge payload", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, challenge.Challenge)

	case slackevents.CallbackEvent:
		h.handleCallback(w, r, event)

	default:
		zlog.Debug().Str("type", event.Type).Msg("ignoring slack event")
		w.WriteHeader(http.StatusOK)
	}
}

// handleCallback extracts the command text from a message event and
// publishes it. Events that are not authored by a human, or that cannot
// be classified, are acknowledged and dropped.
func (h *EventsHandler) handleCallback(w http.ResponseWriter, r *http.Request, event slackevents.EventsAPIEvent) {
	var channel, text string

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		// Arrives as `@bot nowplaying`, drop the mention token
		channel = ev.Channel
		text = stripMention(ev.Text)

	case *slackevents.MessageEvent:
		if ev.SubType != "" {
			// Bot messages, edits, joins and the like
			w.WriteHeader(http.StatusOK)
			return
		}
		// Direct message, the text arrives as-is
		channel = ev.Channel
		text = ev.Text

	default:
		zlog.Debug().Str("inner_type", event.InnerEvent.Type).Msg("ignoring unclassified event")
		w.WriteHeader(http.StatusOK)
		return
	}

	data, err := queue.EncodePayload(queue.Payload{Channel: channel, Text: text})
	if err != nil {
		zlog.Error().Err(err).Msg("failed to encode queue payload")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	id, err := h.publisher.Publish(r.Context(), data)
	if err != nil {
		zlog.Error().Err(err).Msg("failed to publish message")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	zlog.Info().Str("message_id", id).Str("channel", channel).Msg("published message")

	fmt.Fprintf(w, "published %s", id)
}

// stripMention drops the leading mention token from an app_mention text.
func stripMention(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
