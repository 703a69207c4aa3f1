// Package logging builds the go-kit logger shared by the frugy commands,
// the image store and the REST API.
package logging

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

var ErrLevel = errors.New("logging: unknown level")

// New returns a logfmt logger writing to w that drops events below lvl.
// Every event carries ts and caller keys.
func New(w io.Writer, lvl string) (log.Logger, error) {
	opt, err := allow(lvl)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() log.Logger { return log.NewNopLogger() }

func allow(lvl string) (level.Option, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, errors.Wrapf(ErrLevel, "%q", lvl)
	}
}
