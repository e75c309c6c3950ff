package warpbot

import (
	"context"
	"log"
	"time"

	"github.com/facebookgo/clock"

	"github.com/steveyegge/warp/internal/incidentio"
)

// Poller defaults. The initial poll runs shortly after startup so the first
// incident isn't delayed by a full interval.
const (
	DefaultPollInterval = 2 * time.Minute
	DefaultInitialDelay = 10 * time.Second
	DefaultLookback     = 2 * time.Hour
	DefaultNotifyDelay  = 2 * time.Minute
)

// qualifyingSeverities are the severity labels that trigger a WARP.
var qualifyingSeverities = map[string]bool{
	"Critical": true,
	"Major":    true,
	"Minor":    true,
}

// IncidentSource abstracts the incident.io client for testability.
type IncidentSource interface {
	ListIncidents(ctx context.Context) ([]incidentio.Incident, error)
}

// NotifyFunc dispatches a WARP notification to a responder.
type NotifyFunc func(userID, incident string)

// PollerConfig holds the poller's timing knobs. Zero values take defaults.
type PollerConfig struct {
	Interval     time.Duration // time between polls
	InitialDelay time.Duration // delay before the first poll
	Lookback     time.Duration // how far back a resolution still counts as recent
	NotifyDelay  time.Duration // delay between scheduling and sending a WARP
}

// Poller periodically queries the incident source for newly resolved,
// qualifying incidents and schedules a delayed WARP notification exactly
// once per incident.
type Poller struct {
	source IncidentSource
	ledger *Ledger
	notify NotifyFunc
	clk    clock.Clock

	interval     time.Duration
	initialDelay time.Duration
	lookback     time.Duration
	notifyDelay  time.Duration
}

// NewPoller creates a poller that schedules notifications through notify.
func NewPoller(source IncidentSource, ledger *Ledger, notify NotifyFunc, clk clock.Clock, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.NotifyDelay <= 0 {
		cfg.NotifyDelay = DefaultNotifyDelay
	}
	return &Poller{
		source:       source,
		ledger:       ledger,
		notify:       notify,
		clk:          clk,
		interval:     cfg.Interval,
		initialDelay: cfg.InitialDelay,
		lookback:     cfg.Lookback,
		notifyDelay:  cfg.NotifyDelay,
	}
}

// Run polls on a fixed interval until the context is canceled.
func (p *Poller) Run(ctx context.Context) {
	initial := p.clk.Timer(p.initialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		p.Poll(ctx)
	}

	ticker := p.clk.Ticker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one poll cycle. A fetch failure is logged and the cycle is a
// no-op: the next tick is the only retry mechanism.
func (p *Poller) Poll(ctx context.Context) {
	log.Println("poller: checking incident.io for resolved incidents...")

	incidents, err := p.source.ListIncidents(ctx)
	if err != nil {
		log.Printf("poller: failed to fetch incidents: %v", err)
		return
	}

	cutoff := p.clk.Now().Add(-p.lookback)

	var qualifying []*incidentio.Incident
	for idx := range incidents {
		if p.qualifies(&incidents[idx], cutoff) {
			qualifying = append(qualifying, &incidents[idx])
		}
	}
	log.Printf("poller: found %d new resolved incidents", len(qualifying))

	for _, inc := range qualifying {
		p.schedule(inc)
	}
}

// qualifies applies the filter predicate: resolved or closed, qualifying
// severity, not yet scheduled, and resolved within the lookback window.
// An incident with no resolution timestamp is treated as not recent, so a
// restart never fires on stale data.
func (p *Poller) qualifies(inc *incidentio.Incident, cutoff time.Time) bool {
	status := inc.IncidentStatus.Category
	if status != "closed" && status != "resolved" {
		return false
	}
	if inc.Severity == nil || !qualifyingSeverities[inc.Severity.Name] {
		return false
	}
	if p.ledger.Has(inc.ID) {
		return false
	}
	resolvedAt, ok := inc.ResolvedAt()
	if !ok {
		return false
	}
	return resolvedAt.After(cutoff)
}

// schedule marks the incident processed and arms the one-shot delayed
// notification. The ledger insert happens before the delay so a poll that
// runs again before delivery cannot schedule a duplicate.
func (p *Poller) schedule(inc *incidentio.Incident) {
	userID, leadName := inc.LeadSlackUserID()
	if userID == "" {
		log.Printf("poller: no incident lead with a Slack ID for %s, skipping", inc.Display())
		return
	}

	display := inc.Display()
	log.Printf("poller: scheduling WARP for %s for %s", leadName, display)

	p.ledger.Add(inc.ID)

	p.clk.AfterFunc(p.notifyDelay, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("poller: WARP dispatch for %s panicked: %v", display, r)
			}
		}()
		log.Printf("poller: initiating WARP for %s", display)
		p.notify(userID, display)
	})
}
