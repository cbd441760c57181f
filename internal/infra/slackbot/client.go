// Package slackbot provides the Slack reply sender.
package slackbot

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Client posts replies to Slack with a fixed bot token.
type Client struct {
	api *slack.Client
}

// Config represents Slack client configuration.
type Config struct {
	BotToken string
	// APIURL overrides the Slack API base URL. Used in tests.
	APIURL string
}

// New creates a new Slack client.
func New(cfg Config) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("slack bot token is required")
	}

	opts := []slack.Option{}
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}

	return &Client{api: slack.New(cfg.BotToken, opts...)}, nil
}

// Reply posts text to the channel the originating message came from.
// Delivery failures are returned to the caller, never retried.
func (c *Client) Reply(ctx context.Context, channel, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return errors.Wrap(err, "failed to deliver reply")
	}

	zlog.Debug().Str("channel", channel).Msg("posted reply")

	return nil
}
