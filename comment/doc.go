// Package comment ingests live-chat comments and yields each one at most once.
//
// A Feed is the transport to a chat provider (YouTube live chat via the Data
// API, or Twitch IRC). Feeds return raw records in whatever shape the provider
// produces; Normalize funnels every shape into the single canonical Comment
// type at ingestion, so nothing downstream branches on provider shape again.
//
// Source wraps a Feed with a seen-set and a latest-wins policy: when several
// comments arrive between polls, only the most recent unseen one is returned
// and the rest are dropped for good. The seen-set grows for the lifetime of
// the Source; a single streaming session is short enough that this is an
// accepted trade-off rather than an eviction problem.
package comment
