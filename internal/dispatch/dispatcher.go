package dispatch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

type Options struct {
	Tag                string
	Icon               string
	RequireInteraction bool
	Silent             bool
	Data               map[string]string
}

// Handle withdraws a shown platform notification.
type Handle interface {
	Close() error
}

// Platform is an OS or remote notification surface.
type Platform interface {
	Name() string
	// Permission reports the current grant without prompting.
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, title, body string, opts Options) (Handle, error)
}

type timer interface {
	Stop() bool
}

type shown struct {
	handle Handle
	timer  timer

	// sent is false while the platform call is in flight.
	sent bool
}

// Dispatcher shows notifications on a Platform, keeping at most one live
// notification per tag. A newer notification for a tag replaces the older.
type Dispatcher struct {
	platform    Platform
	autoClose   time.Duration
	sendTimeout time.Duration
	log         *slog.Logger
	after       func(time.Duration, func()) timer

	inflight sync.WaitGroup

	mu   sync.Mutex
	live map[string]*shown
}

// DefaultSendTimeout bounds one posted platform call.
const DefaultSendTimeout = 10 * time.Second

func NewDispatcher(platform Platform, autoClose time.Duration, log *slog.Logger) *Dispatcher {
	if platform == nil {
		platform = NoopPlatform{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		platform:    platform,
		autoClose:   autoClose,
		sendTimeout: DefaultSendTimeout,
		log:         log,
		after: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		live: make(map[string]*shown),
	}
}

func (d *Dispatcher) PlatformName() string {
	return d.platform.Name()
}

// Permission re-queries the platform, prompting when the grant is undecided.
func (d *Dispatcher) Permission(ctx context.Context) Permission {
	perm := d.platform.Permission()
	if perm != PermissionDefault {
		return perm
	}
	perm, err := d.platform.RequestPermission(ctx)
	if err != nil {
		d.log.Debug("platform permission request failed", "platform", d.platform.Name(), "error", err)
		return PermissionDenied
	}
	return perm
}

// Show renders n on the platform and waits for the result. It reports false
// when the platform is unavailable or refused, or when a newer notification
// for the tag superseded this one while it was in flight.
func (d *Dispatcher) Show(ctx context.Context, n model.Notification, silent bool) bool {
	tag, entry := d.reserve(n)
	return d.send(ctx, n, silent, tag, entry)
}

// Post is Show without waiting. The tag is claimed before Post returns, so a
// later Post for the same tag always wins; the platform call itself runs on
// its own goroutine, bounded by the send timeout.
func (d *Dispatcher) Post(ctx context.Context, n model.Notification, silent bool) {
	tag, entry := d.reserve(n)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
		defer cancel()
		d.send(sendCtx, n, silent, tag, entry)
	}()
}

// Wait blocks until every posted notification has reached the platform or
// failed.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) reserve(n model.Notification) (string, *shown) {
	tag := n.Tag()
	entry := &shown{}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.withdrawLocked(tag)
	d.live[tag] = entry
	return tag, entry
}

// send runs the permission check and platform call without holding mu, then
// records the handle if entry still owns the tag.
func (d *Dispatcher) send(ctx context.Context, n model.Notification, silent bool, tag string, entry *shown) bool {
	if perm := d.Permission(ctx); perm != PermissionGranted {
		d.log.Debug("platform notification skipped", "platform", d.platform.Name(), "permission", perm)
		d.release(tag, entry)
		return false
	}

	opts := Options{
		Tag:                tag,
		Icon:               n.Icon,
		RequireInteraction: n.Priority == model.PriorityUrgent,
		Silent:             silent,
		Data: map[string]string{
			"notificationId": n.ID,
			"type":           string(n.Type),
			"goalId":         n.GoalID,
		},
	}
	handle, err := d.platform.Show(ctx, n.Title, n.Message, opts)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live[tag] != entry {
		// Replaced or withdrawn while in flight.
		if err == nil {
			closeHandle(d.log, tag, handle)
		}
		return false
	}
	if err != nil {
		delete(d.live, tag)
		d.log.Warn("platform notification failed", "platform", d.platform.Name(), "tag", tag, "error", err)
		return false
	}

	entry.handle = handle
	entry.sent = true
	if !opts.RequireInteraction && d.autoClose > 0 {
		entry.timer = d.after(d.autoClose, func() { d.expire(tag, entry) })
	}
	return true
}

func (d *Dispatcher) release(tag string, entry *shown) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live[tag] == entry {
		delete(d.live, tag)
	}
}

// CloseAll withdraws every live platform notification.
func (d *Dispatcher) CloseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for tag := range d.live {
		d.withdrawLocked(tag)
	}
}

// LiveTags lists the tags with a live platform notification, sorted. Sends
// still in flight are not listed.
func (d *Dispatcher) LiveTags() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.live))
	for tag, entry := range d.live {
		if entry.sent {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

func (d *Dispatcher) expire(tag string, entry *shown) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// A replaced or withdrawn entry is stale.
	if d.live[tag] != entry {
		return
	}
	d.withdrawLocked(tag)
}

func (d *Dispatcher) withdrawLocked(tag string) {
	entry, ok := d.live[tag]
	if !ok {
		return
	}
	delete(d.live, tag)
	if entry.timer != nil {
		entry.timer.Stop()
	}
	closeHandle(d.log, tag, entry.handle)
}

func closeHandle(log *slog.Logger, tag string, h Handle) {
	if h == nil {
		return
	}
	if err := h.Close(); err != nil {
		log.Debug("platform notification close failed", "tag", tag, "error", err)
	}
}
