package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MulticastSender is the part of the FCM messaging client this package uses.
type MulticastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMPlatform pushes notifications to registered devices through Firebase
// Cloud Messaging. Tokens that fail delivery are dropped.
type FCMPlatform struct {
	client MulticastSender
	log    *slog.Logger

	mu     sync.Mutex
	tokens []string
}

func NewFCMPlatform(ctx context.Context, credentialsFile string, tokens []string, log *slog.Logger) (*FCMPlatform, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return NewFCMPlatformWithClient(client, tokens, log), nil
}

func NewFCMPlatformWithClient(client MulticastSender, tokens []string, log *slog.Logger) *FCMPlatform {
	if log == nil {
		log = slog.Default()
	}
	return &FCMPlatform{client: client, tokens: slices.Clone(tokens), log: log}
}

func (p *FCMPlatform) Name() string { return "fcm" }

func (p *FCMPlatform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil || len(p.tokens) == 0 {
		return PermissionDenied
	}
	return PermissionGranted
}

func (p *FCMPlatform) RequestPermission(context.Context) (Permission, error) {
	return p.Permission(), nil
}

// Tokens returns the device tokens still considered deliverable.
func (p *FCMPlatform) Tokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.tokens)
}

func (p *FCMPlatform) Show(ctx context.Context, title, body string, opts Options) (Handle, error) {
	tokens := p.Tokens()
	if len(tokens) == 0 {
		return nil, errors.New("dispatch: no fcm device tokens")
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: opts.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title:              title,
				Body:               body,
				Tag:                opts.Tag,
				RequireInteraction: opts.RequireInteraction,
				Silent:             opts.Silent,
			},
		},
		Android: &messaging.AndroidConfig{
			CollapseKey: opts.Tag,
			Notification: &messaging.AndroidNotification{
				Title: title,
				Body:  body,
				Tag:   opts.Tag,
			},
		},
	}
	if opts.RequireInteraction {
		message.Android.Priority = "high"
	}
	if !opts.Silent {
		message.Android.Notification.Sound = "default"
	}

	response, err := p.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("send fcm multicast: %w", err)
	}

	var failed []string
	for i, resp := range response.Responses {
		if i < len(tokens) && !resp.Success {
			failed = append(failed, tokens[i])
			p.log.Warn("fcm delivery failed, dropping token", "error", resp.Error)
		}
	}
	if len(failed) > 0 {
		p.prune(failed)
	}
	if response.SuccessCount == 0 {
		return nil, errors.New("dispatch: fcm delivered to no device")
	}
	return nopHandle{}, nil
}

func (p *FCMPlatform) prune(failed []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = slices.DeleteFunc(p.tokens, func(tok string) bool {
		return slices.Contains(failed, tok)
	})
}
