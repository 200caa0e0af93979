// Package logging builds the log15 loggers used across ebsmig.
package logging

import (
	"fmt"
	"io"

	"github.com/inconshreveable/log15"
)

// New returns a logger writing logfmt lines to w, dropping records below level.
// Accepted levels are debug, info, warn, error and crit.
func New(w io.Writer, level string) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(w, log15.LogfmtFormat())))
	return logger, nil
}

// Discard returns a logger that drops every record
func Discard() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

// OrDiscard returns l, or a discarding logger when l is nil
func OrDiscard(l log15.Logger) log15.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
