package cell

import (
	"encoding/hex"
	"fmt"
)

var defaultLoadConcurrency = 8

type config struct {
	concurrency int
	maxDepth    int
	expectHash  []byte
}

// Option configures Load.
type Option func(*config) error

// UseLoadConcurrency bounds the number of blocks fetched in parallel.
func UseLoadConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("load concurrency must be at least 1, is %d", n)
		}
		c.concurrency = n
		return nil
	}
}

// UseMaxDepth rejects DAGs deeper than d.
func UseMaxDepth(d int) Option {
	return func(c *config) error {
		if d < 0 || d > MaxDepth {
			return fmt.Errorf("max depth must be within [0, %d], is %d", MaxDepth, d)
		}
		c.maxDepth = d
		return nil
	}
}

// ExpectHash makes Load fail unless the root cell hashes to h.
func ExpectHash(h string) Option {
	return func(c *config) error {
		b, err := hex.DecodeString(h)
		if err != nil || len(b) != HashSize {
			return fmt.Errorf("expected hash must be %d hex-encoded bytes: %q", HashSize, h)
		}
		c.expectHash = b
		return nil
	}
}

func defaultConfig() *config {
	return &config{
		concurrency: defaultLoadConcurrency,
		maxDepth:    MaxDepth,
	}
}
