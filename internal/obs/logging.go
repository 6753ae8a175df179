// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Logger is the global structured logger used by the service.
//
// Logger is exported to allow other packages to use it for logging. It is
// usable before InitLogger is called.
var Logger = newLogger()

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// InitLogger initializes the global Logger with a JSON handler on stdout.
func InitLogger() {
	Logger = newLogger()
}

// SetLevel changes the minimum level (debug, info, warn, error). Unknown
// values leave the level at info.
func SetLevel(s string) {
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		level.Set(slog.LevelInfo)
	}
}
