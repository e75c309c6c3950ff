package warpbot

import "github.com/slack-go/slack"

// SlackAPI abstracts the subset of slack.Client methods used by the bot.
// This allows tests to substitute a mock implementation without a live
// Slack connection.
type SlackAPI interface {
	AuthTest() (response *slack.AuthTestResponse, err error)

	// Messaging
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)

	// Reactions
	AddReaction(name string, item slack.ItemRef) error

	// Users
	SetUserCustomStatusWithUser(user, statusText, statusEmoji string, statusExpiration int64) error
}
