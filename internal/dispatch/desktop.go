package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type NoopPlatform struct{}

func (NoopPlatform) Name() string { return "none" }

func (NoopPlatform) Permission() Permission { return PermissionDenied }

func (NoopPlatform) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (NoopPlatform) Show(context.Context, string, string, Options) (Handle, error) {
	return nil, errors.New("dispatch: no platform configured")
}

type nopHandle struct{}

func (nopHandle) Close() error { return nil }

// DesktopPlatform shells out to notify-send on linux and osascript on darwin.
// Neither tool can withdraw a notification, so tag replacement relies on the
// notification server honouring the stack-tag hints.
type DesktopPlatform struct {
	goos     string
	expire   time.Duration
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewDesktopPlatform(expire time.Duration) *DesktopPlatform {
	return &DesktopPlatform{
		goos:     runtime.GOOS,
		expire:   expire,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (p *DesktopPlatform) Name() string { return "desktop" }

func (p *DesktopPlatform) binary() string {
	switch p.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (p *DesktopPlatform) Permission() Permission {
	bin := p.binary()
	if bin == "" {
		return PermissionDefault
	}
	if _, err := p.lookPath(bin); err != nil {
		return PermissionDenied
	}
	return PermissionGranted
}

func (p *DesktopPlatform) RequestPermission(context.Context) (Permission, error) {
	if perm := p.Permission(); perm != PermissionDefault {
		return perm, nil
	}
	return PermissionDenied, fmt.Errorf("dispatch: desktop notifications unsupported on %s", p.goos)
}

func (p *DesktopPlatform) Show(ctx context.Context, title, body string, opts Options) (Handle, error) {
	switch p.goos {
	case "linux":
		return nopHandle{}, p.run(ctx, "notify-send", p.notifySendArgs(title, body, opts)...)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		if !opts.Silent {
			script += ` sound name "Glass"`
		}
		return nopHandle{}, p.run(ctx, "osascript", "-e", script)
	default:
		return nil, fmt.Errorf("dispatch: desktop notifications unsupported on %s", p.goos)
	}
}

func (p *DesktopPlatform) notifySendArgs(title, body string, opts Options) []string {
	args := []string{"--app-name=runtrack"}
	if opts.RequireInteraction {
		args = append(args, "--urgency=critical")
	} else if p.expire > 0 {
		args = append(args, "--expire-time="+strconv.FormatInt(p.expire.Milliseconds(), 10))
	}
	if opts.Tag != "" {
		args = append(args,
			"--hint=string:x-dunst-stack-tag:"+opts.Tag,
			"--hint=string:x-canonical-private-synchronous:"+opts.Tag,
		)
	}
	if opts.Silent {
		args = append(args, "--hint=boolean:suppress-sound:true")
	}
	if opts.Icon != "" {
		title = opts.Icon + " " + title
	}
	return append(args, title, body)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
