package warpbot

import (
	"log"

	"github.com/slack-go/slack"

	"github.com/steveyegge/warp/internal/wellness"
)

// SendRitual sends the initial WARP notification to a responder and creates
// the session. Sending to a user ID opens a DM. Failure to send is logged
// and dropped: there is no retry, and no session is created.
func (b *Bot) SendRitual(userID, incident string) {
	log.Printf("warpbot: sending WARP protocol to user %s", userID)

	channel, ts, err := b.client.PostMessage(userID,
		slack.MsgOptionText(wellness.InitialMessage(userID, incident), false))
	if err != nil {
		log.Printf("warpbot: error sending wellness protocol: %v", err)
		return
	}

	key := SessionKey(channel, ts)
	b.sessions.Put(key, &Session{
		UserID:   userID,
		Incident: incident,
		Stage:    StageAwaitingSelection,
	})

	// Pre-populate the option reactions so the responder can one-click.
	// Best-effort: a failed reaction never blocks the others or the dispatch.
	for _, reaction := range wellness.Reactions {
		b.tryAddReaction(channel, ts, reaction)
	}
}

// tryAddReaction adds a reaction to a message, ignoring failure. Users can
// always add the reaction manually.
func (b *Bot) tryAddReaction(channel, timestamp, name string) {
	if err := b.client.AddReaction(name, slack.NewRefToMessage(channel, timestamp)); err != nil && b.debug {
		log.Printf("warpbot: could not add :%s: to %s/%s: %v", name, channel, timestamp, err)
	}
}
