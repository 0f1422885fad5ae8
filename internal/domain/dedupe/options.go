// Package dedupe collapses duplicate stat records so that each court
// position in each quarter has exactly one authoritative record.
package dedupe

import "github.com/okian/netstats/pkg/logger"

// Option applies a configuration option to the Deduplicator.
type Option func(*Deduplicator)

// WithLogger reports dropped and superseded records through l.
func WithLogger(l logger.Logger) Option {
	return func(d *Deduplicator) {
		if l != nil {
			d.logger = l
		}
	}
}
