package warpbot

import (
	"fmt"
	"sync"

	"github.com/slack-go/slack"
)

// ---------- Mock Slack API ----------

// postedMessage captures a PostMessage call for assertion. Text and
// ThreadTS are recovered by applying the message options.
type postedMessage struct {
	ChannelID string
	Timestamp string
	Text      string
	ThreadTS  string
}

// addedReaction captures an AddReaction call.
type addedReaction struct {
	Name string
	Item slack.ItemRef
}

// statusUpdate captures a SetUserCustomStatusWithUser call.
type statusUpdate struct {
	User       string
	Text       string
	Emoji      string
	Expiration int64
}

type mockSlackAPI struct {
	mu sync.Mutex

	// Captured calls
	PostedMessages []postedMessage
	Reactions      []addedReaction
	StatusUpdates  []statusUpdate

	// Auto-increment message timestamps
	nextTS int

	// Configurable errors
	postMessageErr error
	addReactionErr error
	statusErr      error
}

func newMockSlackAPI() *mockSlackAPI {
	return &mockSlackAPI{}
}

func (m *mockSlackAPI) AuthTest() (*slack.AuthTestResponse, error) {
	return &slack.AuthTestResponse{UserID: "UBOTWARP"}, nil
}

func (m *mockSlackAPI) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postMessageErr != nil {
		return "", "", m.postMessageErr
	}

	_, values, err := slack.UnsafeApplyMsgOptions("xoxb-test", channelID, slack.APIURL, options...)
	if err != nil {
		return "", "", err
	}

	m.nextTS++
	ts := fmt.Sprintf("1234567890.%06d", m.nextTS)
	m.PostedMessages = append(m.PostedMessages, postedMessage{
		ChannelID: channelID,
		Timestamp: ts,
		Text:      values.Get("text"),
		ThreadTS:  values.Get("thread_ts"),
	})
	return channelID, ts, nil
}

func (m *mockSlackAPI) AddReaction(name string, item slack.ItemRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addReactionErr != nil {
		return m.addReactionErr
	}
	m.Reactions = append(m.Reactions, addedReaction{Name: name, Item: item})
	return nil
}

func (m *mockSlackAPI) SetUserCustomStatusWithUser(user, statusText, statusEmoji string, statusExpiration int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return m.statusErr
	}
	m.StatusUpdates = append(m.StatusUpdates, statusUpdate{
		User:       user,
		Text:       statusText,
		Emoji:      statusEmoji,
		Expiration: statusExpiration,
	})
	return nil
}

// lastMessage returns the most recently posted message.
func (m *mockSlackAPI) lastMessage() postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PostedMessages[len(m.PostedMessages)-1]
}

// messageCount returns the number of posted messages.
func (m *mockSlackAPI) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PostedMessages)
}
