package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/osa030/npbot/internal/infra/queue"
)

// capturePublisher records published payloads.
type capturePublisher struct {
	published []string
	err       error
}

func (p *capturePublisher) Publish(_ context.Context, data string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, data)
	return "msg-1", nil
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestURLVerificationEchoesChallenge(t *testing.T) {
	handler := NewEventsHandler(&capturePublisher{})

	rec := post(t, handler, `{"type": "url_verification", "challenge": "challenge_value_123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge_value_123", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestDirectMessagePublishesTextUnchanged(t *testing.T) {
	publisher := &capturePublisher{}
	handler := NewEventsHandler(publisher)

	body := `{
		"type": "event_callback",
		"event": {"type": "message", "text": "nowplaying", "channel": "C1", "user": "U1"}
	}`
	rec := post(t, handler, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "published msg-1", rec.Body.String())

	assert.Len(t, publisher.published, 1)
	payload, err := queue.DecodePayload(publisher.published[0])
	assert.NoError(t, err)
	assert.Equal(t, queue.Payload{Channel: "C1", Text: "nowplaying"}, payload)
}

func TestAppMentionStripsLeadingMention(t *testing.T) {
	publisher := &capturePublisher{}
	handler := NewEventsHandler(publisher)

	body := `{
		"type": "event_callback",
		"event": {"type": "app_mention", "text": "<@UBOT> nowplaying", "channel": "C2", "user": "U1"}
	}`
	rec := post(t, handler, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Len(t, publisher.published, 1)
	payload, err := queue.DecodePayload(publisher.published[0])
	assert.NoError(t, err)
	assert.Equal(t, queue.Payload{Channel: "C2", Text: "nowplaying"}, payload)
}

func TestMessageWithSubtypeIsDropped(t *testing.T) {
	publisher := &capturePublisher{}
	handler := NewEventsHandler(publisher)

	body := `{
		"type": "event_callback",
		"event": {"type": "message", "subtype": "bot_message", "text": "nowplaying", "channel": "C1"}
	}`
	rec := post(t, handler, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, publisher.published)
}

func TestUnclassifiedInnerEventIsDropped(t *testing.T) {
	publisher := &capturePublisher{}
	handler := NewEventsHandler(publisher)

	body := `{
		"type": "event_callback",
		"event": {"type": "reaction_added", "reaction": "thumbsup"}
	}`
	rec := post(t, handler, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, publisher.published)
}

func TestMalformedBodyIsRejected(t *testing.T) {
	handler := NewEventsHandler(&capturePublisher{})

	rec := post(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishFailureMapsToServerError(t *testing.T) {
	handler := NewEventsHandler(&capturePublisher{err: errors.New("queue down")})

	body := `{
		"type": "event_callback",
		"event": {"type": "message", "text": "nowplaying", "channel": "C1"}
	}`
	rec := post(t, handler, body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<@UBOT> nowplaying", "nowplaying"},
		{"<@UBOT> now playing please", "now playing please"},
		{"<@UBOT>", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripMention(tt.input))
	}
}
