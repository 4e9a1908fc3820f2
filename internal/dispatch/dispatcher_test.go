package dispatch

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

type fakeHandle struct {
	closed int
}

func (h *fakeHandle) Close() error {
	h.closed++
	return nil
}

type fakePlatform struct {
	perm      Permission
	requested Permission
	requests  int
	shows     []Options
	handles   []*fakeHandle
	fail      bool
}

func (p *fakePlatform) Name() string { return "fake" }

func (p *fakePlatform) Permission() Permission { return p.perm }

func (p *fakePlatform) RequestPermission(context.Context) (Permission, error) {
	p.requests++
	p.perm = p.requested
	return p.requested, nil
}

func (p *fakePlatform) Show(_ context.Context, _, _ string, opts Options) (Handle, error) {
	if p.fail {
		return nil, errors.New("boom")
	}
	h := &fakeHandle{}
	p.shows = append(p.shows, opts)
	p.handles = append(p.handles, h)
	return h, nil
}

type fakeTimer struct {
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

func newTestDispatcher(p Platform) (*Dispatcher, *[]*fakeTimer) {
	d := NewDispatcher(p, 5*time.Second, nil)
	timers := &[]*fakeTimer{}
	d.after = func(_ time.Duration, f func()) timer {
		t := &fakeTimer{fire: f}
		*timers = append(*timers, t)
		return t
	}
	return d, timers
}

func notification(id string, typ model.NotificationType, goalID string, priority model.Priority) model.Notification {
	return model.Notification{ID: id, Type: typ, GoalID: goalID, Priority: priority, Title: "t", Message: "m"}
}

func TestDispatcherReplacesSameTag(t *testing.T) {
	p := &fakePlatform{perm: PermissionGranted}
	d, _ := newTestDispatcher(p)
	ctx := context.Background()

	if !d.Show(ctx, notification("n1", model.NotificationMilestone, "g1", model.PriorityMedium), false) {
		t.Fatalf("expected first show")
	}
	if !d.Show(ctx, notification("n2", model.NotificationMilestone, "g1", model.PriorityHigh), false) {
		t.Fatalf("expected second show")
	}
	if p.handles[0].closed != 1 || p.handles[1].closed != 0 {
		t.Fatalf("expected first handle withdrawn before replacement")
	}
	if got := d.LiveTags(); !slices.Equal(got, []string{"milestone-g1"}) {
		t.Fatalf("unexpected live tags %v", got)
	}

	d.Show(ctx, notification("n3", model.NotificationStreak, "", model.PriorityMedium), true)
	if got := d.LiveTags(); !slices.Equal(got, []string{"milestone-g1", "streak-general"}) {
		t.Fatalf("unexpected live tags %v", got)
	}
	if !p.shows[2].Silent || p.shows[2].Tag != "streak-general" {
		t.Fatalf("unexpected options %#v", p.shows[2])
	}
}

func TestDispatcherAutoCloseIgnoresStaleTimers(t *testing.T) {
	p := &fakePlatform{perm: PermissionGranted}
	d, timers := newTestDispatcher(p)
	ctx := context.Background()

	d.Show(ctx, notification("n1", model.NotificationDeadline, "g1", model.PriorityHigh), false)
	d.Show(ctx, notification("n2", model.NotificationDeadline, "g1", model.PriorityHigh), false)
	if len(*timers) != 2 || !(*timers)[0].stopped {
		t.Fatalf("expected first timer cancelled on replacement")
	}

	// The first timer firing late must not withdraw the replacement.
	(*timers)[0].fire()
	if p.handles[1].closed != 0 || len(d.LiveTags()) != 1 {
		t.Fatalf("stale timer withdrew live notification")
	}

	(*timers)[1].fire()
	if p.handles[1].closed != 1 || len(d.LiveTags()) != 0 {
		t.Fatalf("expected auto-close to withdraw notification")
	}
}

func TestDispatcherUrgentRequiresInteraction(t *testing.T) {
	p := &fakePlatform{perm: PermissionGranted}
	d, timers := newTestDispatcher(p)

	d.Show(context.Background(), notification("n1", model.NotificationDeadline, "g1", model.PriorityUrgent), false)
	if len(*timers) != 0 || !p.shows[0].RequireInteraction {
		t.Fatalf("expected urgent notification to persist")
	}

	d.CloseAll()
	if p.handles[0].closed != 1 || len(d.LiveTags()) != 0 {
		t.Fatalf("expected CloseAll to withdraw everything")
	}
}

func TestDispatcherPermission(t *testing.T) {
	ctx := context.Background()

	denied := &fakePlatform{perm: PermissionDenied}
	d, _ := newTestDispatcher(denied)
	if d.Show(ctx, notification("n1", model.NotificationSummary, "", model.PriorityLow), false) {
		t.Fatalf("expected denied platform to skip")
	}
	if len(denied.shows) != 0 || denied.requests != 0 {
		t.Fatalf("expected no prompt when denied")
	}

	undecided := &fakePlatform{perm: PermissionDefault, requested: PermissionGranted}
	d, _ = newTestDispatcher(undecided)
	if !d.Show(ctx, notification("n1", model.NotificationSummary, "", model.PriorityLow), false) {
		t.Fatalf("expected show after grant")
	}
	if undecided.requests != 1 {
		t.Fatalf("expected one permission prompt, got %d", undecided.requests)
	}

	// Revoked out of band: the next show re-queries and skips.
	undecided.perm = PermissionDenied
	if d.Show(ctx, notification("n2", model.NotificationSummary, "", model.PriorityLow), false) {
		t.Fatalf("expected revoked permission to be honoured")
	}

	failing := &fakePlatform{perm: PermissionGranted, fail: true}
	d, _ = newTestDispatcher(failing)
	if d.Show(ctx, notification("n1", model.NotificationSummary, "", model.PriorityLow), false) {
		t.Fatalf("expected platform error to report false")
	}
	if len(d.LiveTags()) != 0 {
		t.Fatalf("expected no live entry after failure")
	}
}

func TestNoopPlatform(t *testing.T) {
	d := NewDispatcher(nil, time.Second, nil)
	if d.PlatformName() != "none" {
		t.Fatalf("expected noop platform, got %s", d.PlatformName())
	}
	if d.Show(context.Background(), notification("n1", model.NotificationReminder, "", model.PriorityMedium), false) {
		t.Fatalf("expected noop platform to skip")
	}
}

// gatedPlatform holds each Show until a value arrives on release.
type gatedPlatform struct {
	release chan struct{}

	mu      sync.Mutex
	titles  []string
	handles []*fakeHandle
}

func (p *gatedPlatform) Name() string { return "gated" }

func (p *gatedPlatform) Permission() Permission { return PermissionGranted }

func (p *gatedPlatform) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (p *gatedPlatform) Show(ctx context.Context, title, _ string, _ Options) (Handle, error) {
	select {
	case <-p.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	h := &fakeHandle{}
	p.titles = append(p.titles, title)
	p.handles = append(p.handles, h)
	return h, nil
}

func TestDispatcherPostDoesNotWaitForPlatform(t *testing.T) {
	p := &gatedPlatform{release: make(chan struct{})}
	d := NewDispatcher(p, 0, nil)
	ctx := context.Background()

	first := notification("n1", model.NotificationMilestone, "g1", model.PriorityMedium)
	first.Title = "first"
	second := notification("n2", model.NotificationMilestone, "g1", model.PriorityMedium)
	second.Title = "second"

	start := time.Now()
	d.Post(ctx, first, false)
	d.Post(ctx, second, false)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("post waited on the platform for %s", elapsed)
	}
	if got := d.LiveTags(); len(got) != 0 {
		t.Fatalf("expected no live tags while sends are in flight, got %v", got)
	}

	close(p.release)
	d.Wait()

	if len(p.titles) != 2 {
		t.Fatalf("expected both sends to reach the platform, got %v", p.titles)
	}
	// Whichever finished last, the older post lost the tag when the newer was made.
	for i, title := range p.titles {
		closed := p.handles[i].closed
		if title == "first" && closed != 1 {
			t.Fatalf("expected superseded notification closed, got %d", closed)
		}
		if title == "second" && closed != 0 {
			t.Fatalf("expected newest notification live, got closed=%d", closed)
		}
	}
	if got := d.LiveTags(); !slices.Equal(got, []string{"milestone-g1"}) {
		t.Fatalf("unexpected live tags %v", got)
	}
}

func TestDispatcherCloseAllDropsInFlightResult(t *testing.T) {
	p := &gatedPlatform{release: make(chan struct{})}
	d := NewDispatcher(p, 0, nil)

	d.Post(context.Background(), notification("n1", model.NotificationDeadline, "g1", model.PriorityUrgent), false)
	d.CloseAll()
	close(p.release)
	d.Wait()

	if len(p.handles) != 1 || p.handles[0].closed != 1 {
		t.Fatalf("expected late result withdrawn, got %#v", p.handles)
	}
	if got := d.LiveTags(); len(got) != 0 {
		t.Fatalf("expected nothing live after CloseAll, got %v", got)
	}
}

func TestDispatcherPostTimesOut(t *testing.T) {
	p := &gatedPlatform{release: make(chan struct{})}
	d := NewDispatcher(p, 0, nil)
	d.sendTimeout = 20 * time.Millisecond

	d.Post(context.Background(), notification("n1", model.NotificationSummary, "", model.PriorityLow), false)
	d.Wait()
	if len(p.handles) != 0 || len(d.LiveTags()) != 0 {
		t.Fatalf("expected timed out send to leave nothing live")
	}
}
