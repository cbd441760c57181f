// Package router dispatches inbound chat messages to command handlers.
package router

import (
	"context"
	"regexp"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/npbot/internal/domain/message"
)

// Replier posts a reply back to the chat platform.
type Replier interface {
	Reply(ctx context.Context, channel, text string) error
}

// Handler handles a matched chat message.
type Handler func(ctx context.Context, msg message.Matched, replier Replier) error

// Route pairs a text pattern with its handler.
type Route struct {
	Pattern *regexp.Regexp
	Handler Handler
}

// Router evaluates routes in order against inbound messages. The first
// matching route wins; unmatched messages are dropped.
type Router struct {
	routes  []Route
	replier Replier
}

// New creates a router over an ordered route list.
func New(replier Replier, routes []Route) *Router {
	return &Router{routes: routes, replier: replier}
}

// Dispatch routes one chat message. Returns nil when no route matches.
func (r *Router) Dispatch(ctx context.Context, msg message.ChatMessage) error {
	for _, route := range r.routes {
		matches := route.Pattern.FindStringSubmatch(msg.Text)
		if matches == nil {
			continue
		}

		zlog.Debug().Str("pattern", route.Pattern.String()).Str("channel", msg.Channel).Msg("dispatching message")

		return route.Handler(ctx, message.Matched{ChatMessage: msg, Matches: matches}, r.replier)
	}

	zlog.Debug().Str("text", msg.Text).Msg("no route matched, dropping message")

	return nil
}
