package nowplaying

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/npbot/internal/app/router"
	"github.com/osa030/npbot/internal/domain/message"
	"github.com/osa030/npbot/internal/domain/track"
)

// commandPattern matches the exact command text.
var commandPattern = regexp.MustCompile(`^nowplaying$`)

// Route returns the route for the nowplaying command.
func Route(resolver *Resolver) router.Route {
	return router.Route{
		Pattern: commandPattern,
		Handler: Handler(resolver),
	}
}

// Handler replies with the currently playing track. An empty resolution
// sends no reply at all.
func Handler(resolver *Resolver) router.Handler {
	return func(ctx context.Context, msg message.Matched, replier router.Replier) error {
		resolved, err := resolver.Resolve(ctx)
		if err != nil {
			return err
		}
		if resolved == nil {
			zlog.Info().Msg("nothing attributable is playing, staying silent")
			return nil
		}

		return replier.Reply(ctx, msg.Channel, FormatReply(resolved))
	}
}

// FormatReply renders the reply text: track title with artists, the
// contributor line, and the album art URL when the album has one.
func FormatReply(resolved *track.Resolved) string {
	lines := []string{
		fmt.Sprintf("%s / %s", resolved.Name, resolved.ArtistsLabel()),
		fmt.Sprintf("追加したユーザ： %s", resolved.AddedBy),
	}
	if url := resolved.FirstImageURL(); url != "" {
		lines = append(lines, url)
	}
	return strings.Join(lines, "\n")
}
