// Package notify turns detected matches into outbound chat messages.
package notify

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
	"rifttracker/internal/transport"
	"rifttracker/pkg/logx"
)

// MatchNotice is everything needed to announce one completed match.
type MatchNotice struct {
	Account     registry.TrackedAccount
	Match       *riot.Match
	Participant riot.Participant
}

// Dispatcher delivers match announcements. The tracker only sees this
// interface, so the chat platform stays swappable.
type Dispatcher interface {
	MatchCompleted(ctx context.Context, n MatchNotice) error
}

// ChatDispatcher sends announcements to a fixed chat through a transport
// adapter, with an optional champion icon attached.
type ChatDispatcher struct {
	adapter transport.Adapter
	target  transport.ChatTarget
	catalog *riot.Catalog
	region  string
	log     logx.Logger

	// Telegram throttles sends to roughly one message per second per
	// chat, so bursts from a busy poll cycle are paced here.
	lim *rate.Limiter
}

func NewChatDispatcher(adapter transport.Adapter, target transport.ChatTarget, catalog *riot.Catalog, region string, log logx.Logger) *ChatDispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &ChatDispatcher{
		adapter: adapter,
		target:  target,
		catalog: catalog,
		region:  region,
		log:     log,
		lim:     rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

func (d *ChatDispatcher) MatchCompleted(ctx context.Context, n MatchNotice) error {
	if err := d.lim.Wait(ctx); err != nil {
		return err
	}
	text := FormatMatchNotice(n, d.region)
	opt := &transport.SendOptions{ParseMode: "HTML", DisablePreview: true}

	// Champion icon as a photo when the catalog resolves it; text otherwise.
	if d.catalog != nil {
		if champ, ok := d.catalog.ChampionByKey(ctx, n.Participant.ChampionID); ok {
			if icon, ok := d.catalog.Icon(ctx, champ); ok {
				if _, err := d.adapter.SendPhoto(ctx, d.target, icon, text, opt); err == nil {
					return nil
				}
				// Photo delivery problems degrade to plain text.
				d.log.Debug("icon send failed, falling back to text",
					logx.String("account", n.Account.Key))
			}
		}
	}

	_, err := d.adapter.SendText(ctx, d.target, text, opt)
	return err
}
