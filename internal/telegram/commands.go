package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stridiv/postbot/internal/domain"
)

const startText = `Send me a post and I will prepare a preview.

Text, a photo, a video, a document, or a whole media album works.
Press Publish under the preview to deliver it to the channel.

Commands:
/myid - show your Telegram id
/test - send a test post to the channel
/checkchannel - show the current publish target
/setchannel <@name|id> - change the publish target until restart`

// handleCommand dispatches operator commands. Management commands are
// gated on the controller's allow-set.
func (c *Channel) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	origin := domain.ChatRef{ID: msg.Chat.ID}
	reply := func(text string) {
		if _, err := c.SendText(ctx, origin, text, domain.SendOptions{}); err != nil {
			c.log.Error().Err(err).Str("command", msg.Command()).Msg("command reply failed")
		}
	}

	c.mu.RLock()
	ctrl := c.ctrl
	c.mu.RUnlock()

	switch msg.Command() {
	case "start", "help":
		reply(startText)

	case "myid":
		reply(fmt.Sprintf("Your Telegram id: %d", msg.From.ID))

	case "test":
		if ctrl == nil || !ctrl.Allowed(msg.From.ID) {
			reply("⛔ You are not allowed to do that.")
			return
		}
		target := ctrl.Channel()
		if _, err := c.SendText(ctx, target, "🔧 Test post. If you can read this, publishing works.", domain.SendOptions{}); err != nil {
			reply(fmt.Sprintf("❌ Test post to %s failed: %v", target.String(), err))
			return
		}
		reply(fmt.Sprintf("✅ Test post delivered to %s.", target.String()))

	case "checkchannel":
		if ctrl == nil || !ctrl.Allowed(msg.From.ID) {
			reply("⛔ You are not allowed to do that.")
			return
		}
		reply(fmt.Sprintf("Publishing to %s, %d draft(s) pending.", ctrl.Channel().String(), ctrl.Drafts()))

	case "setchannel":
		if ctrl == nil || !ctrl.Allowed(msg.From.ID) {
			reply("⛔ You are not allowed to do that.")
			return
		}
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			reply("Usage: /setchannel <@name|id>")
			return
		}
		ref := domain.ChatRefFrom(arg)
		ctrl.SetChannel(ref)
		reply(fmt.Sprintf("✅ Publishing to %s until restart.", ref.String()))

	default:
		reply("Unknown command. Try /start.")
	}
}
