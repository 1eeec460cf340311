package comment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// YouTubeFeed reads a live broadcast's chat through the YouTube Data API.
// Read-only live chat access works with a plain API key; no OAuth consent
// flow is involved.
type YouTubeFeed struct {
	svc     *youtube.Service
	videoID string

	mu         sync.Mutex
	liveChatID string
	pageToken  string
	ended      bool
}

// NewYouTubeFeed resolves the video's active live chat and returns a Feed for
// it. It fails when the video does not exist or is not currently live.
func NewYouTubeFeed(ctx context.Context, apiKey, videoID string) (*YouTubeFeed, error) {
	if apiKey == "" || videoID == "" {
		return nil, fmt.Errorf("youtube feed: api key and video id required")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube feed: create service: %w", err)
	}

	resp, err := svc.Videos.List([]string{"liveStreamingDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube feed: lookup video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].LiveStreamingDetails == nil {
		return nil, fmt.Errorf("youtube feed: video %s has no live stream", videoID)
	}
	chatID := resp.Items[0].LiveStreamingDetails.ActiveLiveChatId
	if chatID == "" {
		return nil, fmt.Errorf("youtube feed: video %s is not live", videoID)
	}

	slog.Info("youtube feed: attached to live chat", slog.String("video_id", videoID))
	return &YouTubeFeed{svc: svc, videoID: videoID, liveChatID: chatID}, nil
}

// IsAlive reports whether the broadcast's chat is still open. Safe for
// concurrent use (the status endpoint reads it while the orchestrator polls).
func (f *YouTubeFeed) IsAlive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.liveChatID != "" && !f.ended
}

// Fetch returns the chat messages published since the previous call, as
// attribute-shaped Records in arrival order.
func (f *YouTubeFeed) Fetch(ctx context.Context) ([]Raw, error) {
	f.mu.Lock()
	chatID, token := f.liveChatID, f.pageToken
	f.mu.Unlock()
	if chatID == "" {
		return nil, fmt.Errorf("youtube feed: no live chat attached")
	}

	call := f.svc.LiveChatMessages.List(chatID, []string{"snippet", "authorDetails"}).Context(ctx)
	if token != "" {
		call = call.PageToken(token)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube feed: list messages: %w", err)
	}

	f.mu.Lock()
	f.pageToken = resp.NextPageToken
	if resp.OfflineAt != "" {
		f.ended = true
	}
	f.mu.Unlock()

	batch := make([]Raw, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		author := ""
		if item.AuthorDetails != nil {
			author = item.AuthorDetails.DisplayName
		}
		batch = append(batch, Record{
			ID:      item.Id,
			Message: item.Snippet.DisplayMessage,
			Author:  author,
		})
	}
	return batch, nil
}

// Close marks the feed dead. The Data API client holds no persistent
// connection, so there is nothing else to release.
func (f *YouTubeFeed) Close() error {
	f.mu.Lock()
	f.ended = true
	f.mu.Unlock()
	return nil
}
