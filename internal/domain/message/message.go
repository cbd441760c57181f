// Package message provides chat message values passed between the
// inbound entry points and command handlers.
package message

// ChatMessage represents one inbound chat message. It is constructed per
// event and never persisted.
type ChatMessage struct {
	Text    string // Command text, mention prefix already stripped
	Channel string // Originating channel ID
	User    string // Author user ID (may be empty, not used for routing)
}

// Matched represents a ChatMessage whose text matched a route pattern.
// Matches holds the regexp capture groups, full match first.
type Matched struct {
	ChatMessage
	Matches []string
}
