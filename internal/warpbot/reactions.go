package warpbot

import (
	"log"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/steveyegge/warp/internal/wellness"
)

// melonStatusText and melonStatusEmoji are the status set for options that
// carry the status-update flag. Expires after an hour.
const (
	melonStatusText   = "At the Melon Bar"
	melonStatusEmoji  = ":watermelon:"
	melonStatusExpiry = time.Hour
)

// HandleReactionAdded advances a session's state machine on an inbound
// reaction. Reactions that match no session, come from the bot itself, or
// don't fit the session's stage are ignored without logging: they include
// reactions on unrelated messages and reactions after session cleanup.
func (b *Bot) HandleReactionAdded(ev *slackevents.ReactionAddedEvent) {
	key := SessionKey(ev.Item.Channel, ev.Item.Timestamp)
	session, ok := b.sessions.Get(key)
	if !ok {
		return
	}

	// Skip our own pre-populated reactions.
	if b.botUserID != "" && ev.User == b.botUserID {
		return
	}

	switch {
	case session.Stage == StageAwaitingSelection:
		opt, ok := wellness.Lookup(ev.Reaction)
		if !ok {
			return
		}
		b.handleSelection(session, ev, opt)

	case session.Stage == StageAwaitingCompletion && ev.Reaction == wellness.CompletionReaction:
		b.handleCompletion(key, session, ev)
	}
}

// handleSelection posts the chosen option's ritual as a threaded reply and
// moves the session to awaiting_completion.
func (b *Bot) handleSelection(session *Session, ev *slackevents.ReactionAddedEvent, opt wellness.Option) {
	_, replyTS, err := b.client.PostMessage(ev.Item.Channel,
		slack.MsgOptionText(opt.Initial, false),
		slack.MsgOptionTS(ev.Item.Timestamp))
	if err != nil {
		log.Printf("warpbot: error posting wellness message: %v", err)
		return
	}

	b.tryAddReaction(ev.Item.Channel, replyTS, wellness.CompletionReaction)

	session.Stage = StageAwaitingCompletion
	session.WellnessType = ev.Reaction
	session.WellnessMessageTS = replyTS
}

// handleCompletion posts the completion message, applies the optional
// status update, and removes the session. This is the only deletion path.
func (b *Bot) handleCompletion(key string, session *Session, ev *slackevents.ReactionAddedEvent) {
	opt, ok := wellness.Lookup(session.WellnessType)
	if !ok {
		return
	}

	threadTS := session.WellnessMessageTS
	if threadTS == "" {
		threadTS = ev.Item.Timestamp
	}

	text := wellness.CompletionMessage(opt, b.rng, b.whisperChance)
	if _, _, err := b.client.PostMessage(ev.Item.Channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS)); err != nil {
		log.Printf("warpbot: error posting completion message: %v", err)
		return
	}

	if opt.StatusUpdate {
		expiry := b.clk.Now().Add(melonStatusExpiry).Unix()
		if err := b.client.SetUserCustomStatusWithUser(session.UserID, melonStatusText, melonStatusEmoji, expiry); err != nil {
			log.Printf("warpbot: could not update user status: %v", err)
		}
	}

	b.sessions.Delete(key)
	log.Println("warpbot: WARP protocol completed")
}
