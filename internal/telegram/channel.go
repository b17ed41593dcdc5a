// Package telegram adapts the Telegram Bot API to the domain transport
// using long polling.
package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stridiv/postbot/internal/config"
	"github.com/stridiv/postbot/internal/domain"
	"github.com/stridiv/postbot/internal/logging"
)

// Controller is the publisher surface the operator commands act on.
type Controller interface {
	Allowed(userID int64) bool
	Channel() domain.ChatRef
	SetChannel(ref domain.ChatRef)
	Drafts() int
}

// Status is the adapter's runtime state snapshot.
type Status struct {
	Connected bool
	Running   bool
	LastError string
}

// Channel connects to Telegram, feeds inbound updates to the registered
// handlers, and implements domain.Transport for outbound sends.
type Channel struct {
	cfg  config.BotConfig
	bot  *tgbotapi.BotAPI
	ctrl Controller
	log  *logging.Logger

	mu         sync.RWMutex
	onPost     func(post domain.InboundPost)
	onCallback func(press domain.CallbackPress)
	running    bool
	lastErr    string
}

// New creates a Telegram channel from configuration.
func New(cfg config.BotConfig, log *logging.Logger) *Channel {
	return &Channel{
		cfg: cfg,
		log: log.Sub("telegram"),
	}
}

// OnPost registers the handler for composable inbound messages.
func (c *Channel) OnPost(handler func(post domain.InboundPost)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPost = handler
}

// OnCallback registers the handler for inline button presses.
func (c *Channel) OnCallback(handler func(press domain.CallbackPress)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCallback = handler
}

// Bind attaches the controller the operator commands act on.
func (c *Channel) Bind(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctrl = ctrl
}

// Status returns the current runtime status.
func (c *Channel) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Connected: c.bot != nil,
		Running:   c.running,
		LastError: c.lastErr,
	}
}

// Start authenticates with the Bot API and processes updates until the
// context is cancelled. Each update is handled in its own goroutine.
func (c *Channel) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(c.cfg.Token)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err.Error()
		c.mu.Unlock()
		return fmt.Errorf("telegram connect: %w", err)
	}

	c.mu.Lock()
	c.bot = bot
	c.running = true
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Info().
		Str("username", bot.Self.UserName).
		Int("pollTimeout", c.cfg.PollTimeout).
		Msg("connected to Telegram")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.cfg.PollTimeout
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				c.mu.Lock()
				c.running = false
				c.mu.Unlock()
				return nil
			}
			go c.handleUpdate(ctx, upd)
		}
	}
}

// Stop halts the update loop.
func (c *Channel) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bot != nil {
		c.log.Info().Msg("stopping Telegram updates")
		c.bot.StopReceivingUpdates()
	}
	c.running = false
	return nil
}

func (c *Channel) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		c.dispatchCallback(upd.CallbackQuery)
	case upd.Message != nil:
		msg := upd.Message
		if msg.IsCommand() {
			c.handleCommand(ctx, msg)
			return
		}
		c.dispatchPost(msg)
	}
}

func (c *Channel) dispatchCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}

	press := domain.CallbackPress{
		ID:        cq.ID,
		ChatID:    cq.Message.Chat.ID,
		UserID:    cq.From.ID,
		MessageID: cq.Message.MessageID,
		Data:      cq.Data,
	}

	c.mu.RLock()
	handler := c.onCallback
	c.mu.RUnlock()
	if handler != nil {
		handler(press)
	}
}

func (c *Channel) dispatchPost(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	post := domain.InboundPost{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		MessageID: msg.MessageID,
		GroupID:   msg.MediaGroupID,
	}

	switch {
	case len(msg.Photo) > 0:
		// Telegram sends every size; the last one is the largest.
		largest := msg.Photo[len(msg.Photo)-1]
		post.Media = &domain.MediaItem{Kind: domain.MediaPhoto, FileID: largest.FileID}
		post.Text = msg.Caption
	case msg.Video != nil:
		post.Media = &domain.MediaItem{Kind: domain.MediaVideo, FileID: msg.Video.FileID}
		post.Text = msg.Caption
	case msg.Document != nil:
		post.Media = &domain.MediaItem{Kind: domain.MediaDocument, FileID: msg.Document.FileID}
		post.Text = msg.Caption
	default:
		// Animations, stickers, voice and the rest keep an empty body and
		// are rejected downstream as unsupported.
		post.Text = msg.Text
	}

	c.mu.RLock()
	handler := c.onPost
	c.mu.RUnlock()
	if handler != nil {
		handler(post)
	}
}

// api returns the bot client, or an error before Start has connected.
func (c *Channel) api() (*tgbotapi.BotAPI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bot == nil {
		return nil, fmt.Errorf("telegram: not connected")
	}
	return c.bot, nil
}

// baseChat addresses either a numeric chat id or a public @username.
func baseChat(to domain.ChatRef) tgbotapi.BaseChat {
	return tgbotapi.BaseChat{
		ChatID:          to.ID,
		ChannelUsername: to.Username,
	}
}

func markup(rows [][]domain.Button) tgbotapi.InlineKeyboardMarkup {
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		kb = append(kb, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: kb}
}

// SendText delivers a plain or HTML text message.
func (c *Channel) SendText(_ context.Context, to domain.ChatRef, text string, opts domain.SendOptions) (domain.MessageRef, error) {
	bot, err := c.api()
	if err != nil {
		return domain.MessageRef{}, err
	}

	cfg := tgbotapi.MessageConfig{
		BaseChat:              baseChat(to),
		Text:                  text,
		DisableWebPagePreview: opts.NoPreview,
	}
	if opts.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	if len(opts.Buttons) > 0 {
		cfg.BaseChat.ReplyMarkup = markup(opts.Buttons)
	}

	sent, err := bot.Send(cfg)
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("telegram send text: %w", err)
	}
	return domain.MessageRef{Chat: to, MessageID: sent.MessageID}, nil
}

// SendMedia delivers a single photo, video, or document by file id.
func (c *Channel) SendMedia(_ context.Context, to domain.ChatRef, item domain.MediaItem, caption string, opts domain.SendOptions) (domain.MessageRef, error) {
	bot, err := c.api()
	if err != nil {
		return domain.MessageRef{}, err
	}

	base := baseChat(to)
	if len(opts.Buttons) > 0 {
		base.ReplyMarkup = markup(opts.Buttons)
	}
	file := tgbotapi.BaseFile{BaseChat: base, File: tgbotapi.FileID(item.FileID)}

	mode := ""
	if opts.HTML {
		mode = tgbotapi.ModeHTML
	}

	var cfg tgbotapi.Chattable
	switch item.Kind {
	case domain.MediaPhoto:
		cfg = tgbotapi.PhotoConfig{BaseFile: file, Caption: caption, ParseMode: mode}
	case domain.MediaVideo:
		cfg = tgbotapi.VideoConfig{BaseFile: file, Caption: caption, ParseMode: mode}
	case domain.MediaDocument:
		cfg = tgbotapi.DocumentConfig{BaseFile: file, Caption: caption, ParseMode: mode}
	default:
		return domain.MessageRef{}, fmt.Errorf("telegram: unknown media kind %q", item.Kind)
	}

	sent, err := bot.Send(cfg)
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("telegram send media: %w", err)
	}
	return domain.MessageRef{Chat: to, MessageID: sent.MessageID}, nil
}

// SendMediaGroup delivers an album. The caption rides the first item; a
// media group itself cannot carry a reply markup.
func (c *Channel) SendMediaGroup(_ context.Context, to domain.ChatRef, items []domain.MediaItem, caption string) ([]domain.MessageRef, error) {
	bot, err := c.api()
	if err != nil {
		return nil, err
	}

	media := make([]interface{}, 0, len(items))
	for i, item := range items {
		withCaption := i == 0 && caption != ""
		switch item.Kind {
		case domain.MediaPhoto:
			m := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(item.FileID))
			if withCaption {
				m.Caption = caption
				m.ParseMode = tgbotapi.ModeHTML
			}
			media = append(media, m)
		case domain.MediaVideo:
			m := tgbotapi.NewInputMediaVideo(tgbotapi.FileID(item.FileID))
			if withCaption {
				m.Caption = caption
				m.ParseMode = tgbotapi.ModeHTML
			}
			media = append(media, m)
		case domain.MediaDocument:
			m := tgbotapi.NewInputMediaDocument(tgbotapi.FileID(item.FileID))
			if withCaption {
				m.Caption = caption
				m.ParseMode = tgbotapi.ModeHTML
			}
			media = append(media, m)
		default:
			return nil, fmt.Errorf("telegram: unknown media kind %q", item.Kind)
		}
	}

	cfg := tgbotapi.MediaGroupConfig{
		ChatID:          to.ID,
		ChannelUsername: to.Username,
		Media:           media,
	}
	sent, err := bot.SendMediaGroup(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram send media group: %w", err)
	}

	refs := make([]domain.MessageRef, len(sent))
	for i, m := range sent {
		refs[i] = domain.MessageRef{Chat: to, MessageID: m.MessageID}
	}
	return refs, nil
}

// EditMessageText rewrites a previously sent message.
func (c *Channel) EditMessageText(_ context.Context, ref domain.MessageRef, text string) error {
	bot, err := c.api()
	if err != nil {
		return err
	}

	cfg := tgbotapi.EditMessageTextConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:          ref.Chat.ID,
			ChannelUsername: ref.Chat.Username,
			MessageID:       ref.MessageID,
		},
		Text: text,
	}
	if _, err := bot.Request(cfg); err != nil {
		return fmt.Errorf("telegram edit message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops its
// loading spinner.
func (c *Channel) AnswerCallback(_ context.Context, callbackID string) error {
	bot, err := c.api()
	if err != nil {
		return err
	}
	if _, err := bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram answer callback: %w", err)
	}
	return nil
}
