package comment

import (
	"context"
	"log/slog"
	"sync"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// TwitchFeed reads a channel's chat over Twitch IRC. Messages are pushed by
// the IRC client on its own goroutine and buffered until the next Fetch, which
// keeps the pull-based Feed contract.
type TwitchFeed struct {
	client  *twitch.Client
	channel string

	mu      sync.Mutex
	pending []Raw
	alive   bool
	closed  bool
}

// NewTwitchFeed joins channel and starts the IRC connection in the background.
// With empty credentials it connects anonymously (read-only), which is all the
// co-host needs.
func NewTwitchFeed(channel, username, oauthToken string) *TwitchFeed {
	var client *twitch.Client
	if username != "" && oauthToken != "" {
		client = twitch.NewClient(username, oauthToken)
	} else {
		client = twitch.NewAnonymousClient()
	}

	f := &TwitchFeed{client: client, channel: channel}

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return
		}
		f.pending = append(f.pending, Record{
			ID:      msg.ID,
			Message: msg.Message,
			Author:  msg.User.DisplayName,
		})
	})
	client.OnConnect(func() {
		f.mu.Lock()
		f.alive = true
		f.mu.Unlock()
		slog.Info("twitch feed: connected", slog.String("channel", channel))
	})

	client.Join(channel)
	go func() {
		// Connect blocks until Disconnect; a connect error just leaves the feed dead.
		if err := client.Connect(); err != nil {
			slog.Warn("twitch feed: connection ended", slog.Any("err", err))
		}
		f.mu.Lock()
		f.alive = false
		f.mu.Unlock()
	}()
	return f
}

func (f *TwitchFeed) IsAlive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive && !f.closed
}

// Fetch drains the buffered messages in arrival order.
func (f *TwitchFeed) Fetch(ctx context.Context) ([]Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := f.pending
	f.pending = nil
	return batch, nil
}

// Close disconnects from IRC and discards anything still buffered.
func (f *TwitchFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.alive = false
	f.pending = nil
	f.mu.Unlock()
	return f.client.Disconnect()
}
