// Package publish drives drafts through preview, operator confirmation,
// and delivery to the target channel.
package publish

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stridiv/postbot/internal/album"
	"github.com/stridiv/postbot/internal/caption"
	"github.com/stridiv/postbot/internal/domain"
	"github.com/stridiv/postbot/internal/draft"
	"github.com/stridiv/postbot/internal/logging"
	"github.com/stridiv/postbot/internal/store"
)

// Operator-facing texts.
const (
	msgNoAccess     = "⛔ You are not allowed to publish."
	msgUnsupported  = "⚠️ This message type is not supported yet."
	msgPreviewReady = "Preview ready. Publish?"
	msgPreviewEmpty = "🧾 Preview: (empty)"
	msgPublishing   = "🚀 Publishing…"
	msgPublished    = "✅ Published."
	msgCancelled    = "✖️ Cancelled."
)

// Callback payload prefixes carried in the confirm/cancel buttons.
const (
	actionPublish = "pub"
	actionCancel  = "cancel"
)

// History records successful publications; satisfied by store.PostLog.
type History interface {
	Record(e store.Entry) (*store.Entry, error)
}

// Config holds the publisher's operating parameters.
type Config struct {
	Channel      domain.ChatRef // publish target
	Autosign     string
	AutoTitle    bool
	SubscribeURL string
	SuggestURL   string
	AlbumWindow  time.Duration
}

// Publisher owns the compose → preview → confirm → publish flow. It is the
// single consumer of inbound events and the only writer of the draft store.
type Publisher struct {
	cfg       Config
	transport domain.Transport
	drafts    *draft.Store
	albums    *album.Aggregator
	allow     AllowSet
	history   History
	log       *logging.Logger

	mu       sync.RWMutex
	override domain.ChatRef // runtime /setchannel override, lost on restart
}

// New creates a publisher. history may be nil to disable the audit log.
func New(cfg Config, transport domain.Transport, drafts *draft.Store, allow AllowSet, history History, log *logging.Logger) *Publisher {
	p := &Publisher{
		cfg:       cfg,
		transport: transport,
		drafts:    drafts,
		allow:     allow,
		history:   history,
		log:       log.Sub("publish"),
	}
	p.albums = album.New(cfg.AlbumWindow, p.onBatch, log)
	return p
}

// Allowed reports whether the operator may compose and publish.
func (p *Publisher) Allowed(userID int64) bool { return p.allow.Allows(userID) }

// Channel returns the current publish target, honoring a runtime override.
func (p *Publisher) Channel() domain.ChatRef {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.override.IsZero() {
		return p.override
	}
	return p.cfg.Channel
}

// SetChannel overrides the publish target until the process restarts.
func (p *Publisher) SetChannel(ref domain.ChatRef) {
	p.mu.Lock()
	p.override = ref
	p.mu.Unlock()
	p.log.Info().Str("channel", ref.String()).Msg("publish target overridden")
}

// Drafts exposes the number of drafts awaiting a decision.
func (p *Publisher) Drafts() int { return p.drafts.Len() }

// HandlePost processes one inbound composable message: text, single media,
// or one item of a media group.
func (p *Publisher) HandlePost(ctx context.Context, post domain.InboundPost) {
	origin := domain.ChatRef{ID: post.ChatID}

	// Media-group items: gate silently (one notice per item would spam the
	// operator), then buffer for the debounce flush.
	if post.Media != nil && post.GroupID != "" {
		if !p.Allowed(post.UserID) {
			p.log.Warn().Int64("user", post.UserID).Msg("album item from unauthorized user dropped")
			return
		}
		p.albums.Add(post)
		return
	}

	if !p.Allowed(post.UserID) {
		p.notify(ctx, origin, msgNoAccess)
		return
	}

	if post.Media == nil && strings.TrimSpace(post.Text) == "" {
		p.notify(ctx, origin, msgUnsupported)
		return
	}

	d := &domain.Draft{
		ChatID: post.ChatID,
		UserID: post.UserID,
		Text:   post.Text,
	}
	if post.Media != nil {
		d.Media = []domain.MediaItem{*post.Media}
	}
	p.preview(ctx, d)
}

// onBatch receives completed media groups from the aggregator.
func (p *Publisher) onBatch(b album.Batch) {
	p.HandleBatch(context.Background(), b)
}

// HandleBatch builds a draft from an aggregated media group and previews it.
func (p *Publisher) HandleBatch(ctx context.Context, b album.Batch) {
	p.preview(ctx, &domain.Draft{
		ChatID: b.ChatID,
		UserID: b.UserID,
		Text:   b.Caption,
		Media:  b.Media,
	})
}

// HandleCallback processes a confirm/cancel button press.
func (p *Publisher) HandleCallback(ctx context.Context, press domain.CallbackPress) {
	if err := p.transport.AnswerCallback(ctx, press.ID); err != nil {
		p.log.Debug().Err(err).Msg("callback ack failed")
	}

	control := domain.MessageRef{
		Chat:      domain.ChatRef{ID: press.ChatID},
		MessageID: press.MessageID,
	}

	if !p.Allowed(press.UserID) {
		p.edit(ctx, control, msgNoAccess)
		return
	}

	action, rawID, ok := strings.Cut(press.Data, ":")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	switch action {
	case actionCancel:
		// Idempotent: a draft already published or cancelled is simply gone.
		p.drafts.Delete(id)
		p.edit(ctx, control, msgCancelled)
		p.log.Info().Int64("draft", id).Msg("draft cancelled")

	case actionPublish:
		d, ok := p.drafts.Take(id)
		if !ok {
			// A racing confirm or cancel already consumed the draft; the
			// operator's intent is satisfied either way.
			p.log.Debug().Int64("draft", id).Msg("confirm on missing draft ignored")
			return
		}
		p.edit(ctx, control, msgPublishing)

		target := p.Channel()
		if err := p.deliver(ctx, target, d); err != nil {
			p.log.Error().Err(err).
				Int64("draft", d.ID).
				Str("target", target.String()).
				Msg("publish failed")
			p.notify(ctx, domain.ChatRef{ID: press.ChatID}, publishFailure(err, target))
			return
		}

		p.notify(ctx, domain.ChatRef{ID: press.ChatID}, msgPublished)
		p.record(d, target)
		p.log.Info().
			Int64("draft", d.ID).
			Str("target", target.String()).
			Str("shape", string(d.Shape())).
			Int("media", len(d.Media)).
			Msg("draft published")
	}
}

// preview stores the draft and renders it back to the origin chat with
// confirm/cancel controls.
func (p *Publisher) preview(ctx context.Context, d *domain.Draft) {
	id := p.drafts.Put(d)
	origin := domain.ChatRef{ID: d.ChatID}
	body := p.render(d)
	controls := confirmKeyboard(id)

	var err error
	switch d.Shape() {
	case domain.ShapeAlbum:
		// A media set cannot carry buttons; the controls ride a companion
		// message right after it.
		if _, err = p.transport.SendMediaGroup(ctx, origin, d.Media, body); err == nil {
			_, err = p.transport.SendText(ctx, origin, msgPreviewReady, domain.SendOptions{Buttons: controls})
		}

	case domain.ShapeSingle:
		// Controls stay on a separate message so preview and publish share
		// one media-rendering path.
		opts := domain.SendOptions{HTML: body != ""}
		if _, err = p.transport.SendMedia(ctx, origin, d.Media[0], body, opts); err == nil {
			_, err = p.transport.SendText(ctx, origin, msgPreviewReady, domain.SendOptions{Buttons: controls})
		}

	default:
		text := msgPreviewEmpty
		if body != "" {
			text = "🧾 Preview:\n\n" + body
		}
		_, err = p.transport.SendText(ctx, origin, text, domain.SendOptions{
			Buttons:   controls,
			HTML:      body != "",
			NoPreview: true,
		})
	}

	if err != nil {
		// Without controls on screen the draft is unreachable; drop it.
		p.drafts.Delete(id)
		p.log.Error().Err(err).Int64("draft", id).Msg("preview failed")
		p.notify(ctx, origin, "❌ Could not render the preview, please resend the post.")
		return
	}

	p.log.Info().
		Int64("draft", id).
		Str("shape", string(d.Shape())).
		Int("media", len(d.Media)).
		Int("pending", p.drafts.Len()).
		Msg("preview sent")
}

// deliver renders the draft to the target channel with promo controls.
func (p *Publisher) deliver(ctx context.Context, target domain.ChatRef, d *domain.Draft) error {
	body := p.render(d)
	promo := p.promoKeyboard()

	switch d.Shape() {
	case domain.ShapeAlbum:
		if _, err := p.transport.SendMediaGroup(ctx, target, d.Media, body); err != nil {
			return err
		}
		if len(promo) == 0 {
			return nil
		}
		// Buttons cannot attach to a media set; a near-empty companion
		// message carries them.
		_, err := p.transport.SendText(ctx, target, " ", domain.SendOptions{Buttons: promo})
		return err

	case domain.ShapeSingle:
		_, err := p.transport.SendMedia(ctx, target, d.Media[0], body, domain.SendOptions{
			HTML:    body != "",
			Buttons: promo,
		})
		return err

	default:
		text := body
		if text == "" {
			// Transports reject empty bodies; a single space still renders
			// the button rows.
			text = " "
		}
		_, err := p.transport.SendText(ctx, target, text, domain.SendOptions{
			HTML:      body != "",
			Buttons:   promo,
			NoPreview: true,
		})
		return err
	}
}

// render builds the final caption HTML for a draft.
func (p *Publisher) render(d *domain.Draft) string {
	return caption.Build(d.Text, caption.Options{
		Autosign:  p.cfg.Autosign,
		AutoTitle: p.cfg.AutoTitle,
	})
}

// record writes the publication to the history log, if one is configured.
func (p *Publisher) record(d *domain.Draft, target domain.ChatRef) {
	if p.history == nil {
		return
	}
	_, err := p.history.Record(store.Entry{
		DraftID:    d.ID,
		AuthorID:   d.UserID,
		Target:     target.String(),
		Shape:      d.Shape(),
		MediaCount: len(d.Media),
		Caption:    d.Text,
	})
	if err != nil {
		p.log.Error().Err(err).Int64("draft", d.ID).Msg("failed to record publication")
	}
}

// notify sends a plain status message, logging delivery problems.
func (p *Publisher) notify(ctx context.Context, to domain.ChatRef, text string) {
	if _, err := p.transport.SendText(ctx, to, text, domain.SendOptions{}); err != nil {
		p.log.Error().Err(err).Str("chat", to.String()).Msg("failed to send notice")
	}
}

// edit rewrites a control message, logging failures (the message may have
// been edited by a racing handler already).
func (p *Publisher) edit(ctx context.Context, ref domain.MessageRef, text string) {
	if err := p.transport.EditMessageText(ctx, ref, text); err != nil {
		p.log.Debug().Err(err).Int("message", ref.MessageID).Msg("control message edit failed")
	}
}

// confirmKeyboard builds the publish/cancel controls with the draft id as
// the correlation token.
func confirmKeyboard(draftID int64) [][]domain.Button {
	id := strconv.FormatInt(draftID, 10)
	return [][]domain.Button{{
		{Label: "🚀 Publish", Data: actionPublish + ":" + id},
		{Label: "✖️ Cancel", Data: actionCancel + ":" + id},
	}}
}

// promoKeyboard builds the subscribe/suggest link rows attached to
// published posts. Rows for unset URLs are omitted.
func (p *Publisher) promoKeyboard() [][]domain.Button {
	var rows [][]domain.Button
	if p.cfg.SubscribeURL != "" {
		rows = append(rows, []domain.Button{{Label: "✅ Subscribe", URL: p.cfg.SubscribeURL}})
	}
	if p.cfg.SuggestURL != "" {
		rows = append(rows, []domain.Button{{Label: "✉️ Suggest a story", URL: p.cfg.SuggestURL}})
	}
	return rows
}

// publishFailure formats the operator-visible diagnostic for a failed
// delivery.
func publishFailure(err error, target domain.ChatRef) string {
	return fmt.Sprintf(
		"❌ Publish failed: %v\n\nCheck that the channel (%s) is correct and the bot is an admin there, then resend the post.",
		err, target.String(),
	)
}
