// Package warpbot implements the WARP (Wellness After Resolution Protocol)
// Slack bot. It uses the slack-go/slack library with Socket Mode for
// WebSocket-based communication.
package warpbot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/steveyegge/warp/internal/wellness"
)

// Bot is the WARP Slack bot. It owns the session store and the processed
// incident ledger; the poller and health server are wired to it at startup.
type Bot struct {
	client     SlackAPI
	socketMode *socketmode.Client
	sessions   *SessionStore
	ledger     *Ledger
	clk        clock.Clock
	rng        *rand.Rand
	debug      bool

	// whisperChance is wellness.WhisperChance in production; tests pin it
	// to 0 or 1 to exercise both completion paths deterministically.
	whisperChance float64

	// Bot identity for filtering out our own pre-populated reactions.
	botUserID string

	connected atomic.Bool
}

// BotConfig holds configuration for the WARP bot.
type BotConfig struct {
	BotToken  string // xoxb-... Slack bot token
	AppToken  string // xapp-... Slack app-level token (for Socket Mode)
	BotUserID string // Optional; discovered via AuthTest when empty
	Debug     bool
}

// NewBot creates a new WARP bot.
func NewBot(cfg BotConfig) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("app token is required for Socket Mode")
	}
	if !strings.HasPrefix(cfg.AppToken, "xapp-") {
		return nil, fmt.Errorf("app token must start with xapp-")
	}

	client := slack.New(
		cfg.BotToken,
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(cfg.Debug),
	)

	botUserID := cfg.BotUserID
	if botUserID == "" {
		botUserID = os.Getenv("SLACK_BOT_ID")
	}

	return &Bot{
		client:        client,
		socketMode:    socketClient,
		sessions:      NewSessionStore(),
		ledger:        NewLedger(),
		clk:           clock.New(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		whisperChance: wellness.WhisperChance,
		botUserID:     botUserID,
		debug:         cfg.Debug,
	}, nil
}

// newBotForTest creates a Bot with injectable mock dependencies for testing.
// No Slack connection or token validation is performed.
func newBotForTest(slackAPI SlackAPI, clk clock.Clock, seed int64) *Bot {
	return &Bot{
		client:        slackAPI,
		sessions:      NewSessionStore(),
		ledger:        NewLedger(),
		clk:           clk,
		rng:           rand.New(rand.NewSource(seed)),
		whisperChance: wellness.WhisperChance,
		botUserID:     "UBOTWARP",
	}
}

// Sessions returns the bot's session store.
func (b *Bot) Sessions() *SessionStore { return b.sessions }

// Ledger returns the bot's processed incident ledger.
func (b *Bot) Ledger() *Ledger { return b.ledger }

// IsConnected reports whether the bot is connected to Slack.
func (b *Bot) IsConnected() bool { return b.connected.Load() }

// Run starts the bot event loop. Blocks until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	authResp, err := b.client.AuthTest()
	if err != nil {
		log.Printf("warpbot: warning: failed to get bot user ID: %v", err)
	} else {
		b.botUserID = authResp.UserID
		log.Printf("warpbot: bot user ID: %s", b.botUserID)
	}

	go func() {
		for evt := range b.socketMode.Events {
			b.handleEvent(evt)
		}
	}()

	return b.socketMode.RunContext(ctx)
}

func (b *Bot) handleEvent(evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Println("warpbot: connecting to Socket Mode...")

	case socketmode.EventTypeConnected:
		log.Println("warpbot: connected to Socket Mode")
		b.connected.Store(true)

	case socketmode.EventTypeConnectionError:
		log.Printf("warpbot: connection error: %v", evt.Data)
		b.connected.Store(false)

	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socketMode.Ack(*evt.Request)
		b.handleEventsAPI(eventsAPIEvent)
	}
}

func (b *Bot) handleEventsAPI(event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.ReactionAddedEvent:
		b.HandleReactionAdded(ev)
	}
}
