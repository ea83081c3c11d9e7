package speech

import (
	"context"
	"log"
)

// Fetcher returns the bytes of a remote asset, from the offline cache when possible
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Clips plays pre-recorded audio for announcement texts that have one, piping the clip into
// a player program. Texts without a clip, and clips that cannot be fetched, go to fallback.
type Clips struct {
	clips      map[string]string
	fetcher    Fetcher
	player     string
	playerArgs []string
	fallback   Announcer
	async      *asyncRunner
}

// ClipsOptions configures a Clips announcer
type ClipsOptions struct {
	Clips      map[string]string // announcement text -> clip URL
	Fetcher    Fetcher
	Player     string
	PlayerArgs []string
	Fallback   Announcer
	Runner     Runner
	Logger     *log.Logger
}

// NewClips creates a Clips announcer
func NewClips(opts ClipsOptions) *Clips {
	if opts.Logger == nil {
		panic("Clips: logger cannot be nil")
	}
	if opts.Fetcher == nil {
		panic("Clips: fetcher cannot be nil")
	}
	if opts.Fallback == nil {
		panic("Clips: fallback cannot be nil")
	}
	if opts.Player == "" {
		panic("Clips: player cannot be empty")
	}
	return &Clips{
		clips:      opts.Clips,
		fetcher:    opts.Fetcher,
		player:     opts.Player,
		playerArgs: opts.PlayerArgs,
		fallback:   opts.Fallback,
		async:      newAsyncRunner(opts.Runner, opts.Logger),
	}
}

// URLs returns the clip URLs, used as the cache manifest
func (c *Clips) URLs() []string {
	urls := make([]string, 0, len(c.clips))
	for _, url := range c.clips {
		urls = append(urls, url)
	}
	return urls
}

func (c *Clips) Announce(text string) {
	url, ok := c.clips[text]
	if !ok {
		c.fallback.Announce(text)
		return
	}
	c.async.goRun(func(ctx context.Context) {
		data, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			c.async.logger.Printf("Speech: clip for %q unavailable: %v", text, err)
			c.fallback.Announce(text)
			return
		}
		if err := c.async.runner.Run(ctx, c.player, c.playerArgs, data); err != nil && ctx.Err() == nil {
			c.async.logger.Printf("Speech: playing clip for %q failed: %v", text, err)
		}
	})
}

// Close stops running players and waits for them
func (c *Clips) Close() error {
	c.async.close()
	return nil
}
