package warpbot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/warp/internal/incidentio"
)

// fakeIncidentSource returns a canned incident list.
type fakeIncidentSource struct {
	mu        sync.Mutex
	incidents []incidentio.Incident
	err       error
}

func (f *fakeIncidentSource) ListIncidents(ctx context.Context) ([]incidentio.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]incidentio.Incident, len(f.incidents))
	copy(out, f.incidents)
	return out, nil
}

// notifyRecorder captures dispatched notifications.
type notifyRecorder struct {
	mu    sync.Mutex
	calls []struct{ UserID, Incident string }
}

func (r *notifyRecorder) notify(userID, incident string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, struct{ UserID, Incident string }{userID, incident})
}

func (r *notifyRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// waitFor polls cond against the wall clock; the mock clock fires AfterFunc
// callbacks on their own goroutines.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// testIncident builds an incident with a lead and a "Resolved at" timestamp.
func testIncident(id, ref, name, status, severity string, resolvedAt time.Time, leadSlackID string) incidentio.Incident {
	inc := incidentio.Incident{
		ID:             id,
		Name:           name,
		Reference:      ref,
		IncidentStatus: incidentio.StatusField{Category: status},
		Severity:       &incidentio.SeverityField{Name: severity},
	}
	if !resolvedAt.IsZero() {
		inc.TimestampValues = []incidentio.TimestampValue{
			{
				IncidentTimestamp: incidentio.TimestampName{Name: "Resolved at"},
				Value:             &incidentio.ValueWrapper{Value: resolvedAt},
			},
		}
	}
	if leadSlackID != "" {
		inc.RoleAssignments = []incidentio.RoleAssignment{
			{
				Role:     &incidentio.Role{Name: "Incident Lead", Shortform: "lead", RoleType: "lead"},
				Assignee: &incidentio.Assignee{Name: "Mark S.", SlackUserID: leadSlackID},
			},
		}
	}
	return inc
}

func newTestPoller(source IncidentSource, ledger *Ledger, rec *notifyRecorder, mock *clock.Mock) *Poller {
	return NewPoller(source, ledger, rec.notify, mock, PollerConfig{
		Interval:     2 * time.Minute,
		InitialDelay: 10 * time.Second,
		Lookback:     2 * time.Hour,
		NotifyDelay:  2 * time.Minute,
	})
}

func TestPollSchedulesExactlyOnce(t *testing.T) {
	mock := clock.NewMock()
	source := &fakeIncidentSource{
		incidents: []incidentio.Incident{
			testIncident("inc_1", "INC-42", "DB down", "resolved", "Major", mock.Now(), "U123"),
		},
	}
	ledger := NewLedger()
	rec := &notifyRecorder{}
	p := newTestPoller(source, ledger, rec, mock)

	p.Poll(context.Background())

	// The ledger entry appears at scheduling time, before the delay elapses.
	require.True(t, ledger.Has("inc_1"), "incident not in ledger immediately after scheduling")
	require.Equal(t, 0, rec.count(), "notification sent before the delay elapsed")

	// A second poll before delivery must not schedule again.
	p.Poll(context.Background())

	mock.Add(2 * time.Minute)
	waitFor(t, func() bool { return rec.count() >= 1 }, "notification never delivered")
	require.Equal(t, 1, rec.count(), "duplicate notification scheduled")

	rec.mu.Lock()
	call := rec.calls[0]
	rec.mu.Unlock()
	require.Equal(t, "U123", call.UserID)
	require.Equal(t, "INC-42: DB down", call.Incident)

	// Later polls and more time change nothing.
	p.Poll(context.Background())
	mock.Add(10 * time.Minute)
	require.Equal(t, 1, rec.count())
}

func TestPollFilterPredicate(t *testing.T) {
	mock := clock.NewMock()
	now := mock.Now()

	tests := []struct {
		name     string
		incident incidentio.Incident
	}{
		{
			name:     "status not resolved",
			incident: testIncident("inc_open", "INC-1", "Live", "live", "Major", now, "U1"),
		},
		{
			name:     "severity not qualifying",
			incident: testIncident("inc_cosmetic", "INC-2", "Typo", "resolved", "Cosmetic", now, "U1"),
		},
		{
			name:     "resolution older than lookback",
			incident: testIncident("inc_stale", "INC-3", "Old", "closed", "Critical", now.Add(-3*time.Hour), "U1"),
		},
		{
			name:     "missing resolution timestamp",
			incident: testIncident("inc_nots", "INC-4", "NoTS", "resolved", "Minor", time.Time{}, "U1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeIncidentSource{incidents: []incidentio.Incident{tt.incident}}
			ledger := NewLedger()
			rec := &notifyRecorder{}
			p := newTestPoller(source, ledger, rec, mock)

			p.Poll(context.Background())
			mock.Add(5 * time.Minute)

			require.Equal(t, 0, rec.count(), "non-qualifying incident scheduled")
			require.False(t, ledger.Has(tt.incident.ID), "non-qualifying incident entered the ledger")
		})
	}
}

func TestPollSkipsLedgeredIncident(t *testing.T) {
	mock := clock.NewMock()
	source := &fakeIncidentSource{
		incidents: []incidentio.Incident{
			testIncident("inc_seen", "INC-9", "Seen", "resolved", "Major", mock.Now(), "U1"),
		},
	}
	ledger := NewLedger()
	ledger.Add("inc_seen")
	rec := &notifyRecorder{}
	p := newTestPoller(source, ledger, rec, mock)

	p.Poll(context.Background())
	mock.Add(5 * time.Minute)

	require.Equal(t, 0, rec.count(), "ledgered incident scheduled again")
}

func TestPollSkipsIncidentWithoutLead(t *testing.T) {
	mock := clock.NewMock()
	noLead := testIncident("inc_nolead", "INC-5", "Orphan", "resolved", "Major", mock.Now(), "")
	// A lead role with no Slack ID is equally unresolvable.
	noSlackID := testIncident("inc_noslack", "INC-6", "NoSlack", "resolved", "Major", mock.Now(), "")
	noSlackID.RoleAssignments = []incidentio.RoleAssignment{
		{
			Role:     &incidentio.Role{Name: "Incident Lead"},
			Assignee: &incidentio.Assignee{Name: "Helly R."},
		},
	}

	source := &fakeIncidentSource{incidents: []incidentio.Incident{noLead, noSlackID}}
	ledger := NewLedger()
	rec := &notifyRecorder{}
	p := newTestPoller(source, ledger, rec, mock)

	p.Poll(context.Background())
	mock.Add(5 * time.Minute)

	require.Equal(t, 0, rec.count())
	// Not ledgered: the lead may be assigned before the next poll.
	require.False(t, ledger.Has("inc_nolead"))
	require.False(t, ledger.Has("inc_noslack"))
}

func TestPollSourceErrorIsNoOp(t *testing.T) {
	mock := clock.NewMock()
	source := &fakeIncidentSource{err: errors.New("connection refused")}
	ledger := NewLedger()
	rec := &notifyRecorder{}
	p := newTestPoller(source, ledger, rec, mock)

	p.Poll(context.Background())
	mock.Add(5 * time.Minute)

	require.Equal(t, 0, rec.count())
	require.Equal(t, 0, ledger.Count())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	mock := clock.NewMock()
	source := &fakeIncidentSource{}
	p := newTestPoller(source, NewLedger(), &notifyRecorder{}, mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
