package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookgo/clock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/warp/internal/incidentio"
	"github.com/steveyegge/warp/internal/warpbot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WARP bot",
	Long: `Starts the bot in the foreground. The bot connects to Slack via Socket
Mode, polls incident.io for resolved incidents, and serves a health
endpoint.

Required environment variables:
  SLACK_BOT_TOKEN      Slack bot token (xoxb-...)
  SLACK_APP_TOKEN      Slack app-level token (xapp-...)
  INCIDENT_IO_API_KEY  incident.io API key

Optional:
  SLACK_BOT_ID         Bot user ID (discovered via auth.test when unset)
  WARP_DELAY_MINUTES   Minutes between resolution and the WARP DM (default 2)
  PORT                 Health endpoint HTTP port (default 3000)`,
	RunE: runServe,
}

var (
	serveBotToken     string
	serveAppToken     string
	serveAPIKey       string
	serveDelayMinutes int
	servePort         int
	servePollInterval time.Duration
	serveLookback     time.Duration
	serveDebug        bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveBotToken, "bot-token", "", "Slack bot token (or SLACK_BOT_TOKEN env)")
	serveCmd.Flags().StringVar(&serveAppToken, "app-token", "", "Slack app token (or SLACK_APP_TOKEN env)")
	serveCmd.Flags().StringVar(&serveAPIKey, "incident-api-key", "", "incident.io API key (or INCIDENT_IO_API_KEY env)")
	serveCmd.Flags().IntVar(&serveDelayMinutes, "delay-minutes", 0, "Minutes between resolution and WARP (or WARP_DELAY_MINUTES env, default 2)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Health endpoint port (or PORT env, default 3000)")
	serveCmd.Flags().DurationVar(&servePollInterval, "poll-interval", warpbot.DefaultPollInterval, "Time between incident.io polls")
	serveCmd.Flags().DurationVar(&serveLookback, "lookback", warpbot.DefaultLookback, "How far back a resolution still counts as recent")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("WARP_DELAY_MINUTES", 2)
	v.SetDefault("PORT", 3000)

	// Resolve config: flags > env vars > defaults
	botToken := firstNonEmpty(serveBotToken, v.GetString("SLACK_BOT_TOKEN"))
	appToken := firstNonEmpty(serveAppToken, v.GetString("SLACK_APP_TOKEN"))
	apiKey := firstNonEmpty(serveAPIKey, v.GetString("INCIDENT_IO_API_KEY"))

	delayMinutes := serveDelayMinutes
	if delayMinutes <= 0 {
		delayMinutes = v.GetInt("WARP_DELAY_MINUTES")
	}
	port := servePort
	if port <= 0 {
		port = v.GetInt("PORT")
	}

	if botToken == "" {
		return fmt.Errorf("Slack bot token required (--bot-token or SLACK_BOT_TOKEN env)")
	}
	if appToken == "" {
		return fmt.Errorf("Slack app token required (--app-token or SLACK_APP_TOKEN env)")
	}
	if apiKey == "" {
		return fmt.Errorf("incident.io API key required (--incident-api-key or INCIDENT_IO_API_KEY env)")
	}

	bot, err := warpbot.NewBot(warpbot.BotConfig{
		BotToken:  botToken,
		AppToken:  appToken,
		BotUserID: v.GetString("SLACK_BOT_ID"),
		Debug:     serveDebug,
	})
	if err != nil {
		return fmt.Errorf("create WARP bot: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start health server
	health := warpbot.NewHealthServer(bot, port)
	go func() {
		if err := health.Start(ctx); err != nil {
			log.Printf("warpbot: health server error: %v", err)
		}
	}()

	// Start incident poller
	poller := warpbot.NewPoller(
		incidentio.NewClient(apiKey),
		bot.Ledger(),
		bot.SendRitual,
		clock.New(),
		warpbot.PollerConfig{
			Interval:    servePollInterval,
			Lookback:    serveLookback,
			NotifyDelay: time.Duration(delayMinutes) * time.Minute,
		},
	)
	go poller.Run(ctx)

	// Run bot (blocks until context canceled)
	log.Printf("warpbot: WARP is running (port=%d, poll=%s, delay=%dm)", port, servePollInterval, delayMinutes)
	log.Println("warpbot: the work is mysterious and important. Praise Kier.")
	return bot.Run(ctx)
}

// firstNonEmpty returns the first non-empty string from the arguments.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
