package log

import (
	"log/slog"
	"strings"
)

// Level is the minimum severity a Logger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levels = [...]struct {
	name string
	slog slog.Level
}{
	LevelDebug: {"DEBUG", slog.LevelDebug},
	LevelInfo:  {"INFO", slog.LevelInfo},
	LevelWarn:  {"WARN", slog.LevelWarn},
	LevelError: {"ERROR", slog.LevelError},
}

func (l Level) known() bool { return l >= LevelDebug && int(l) < len(levels) }

func (l Level) String() string {
	if !l.known() {
		return "UNKNOWN"
	}
	return levels[l].name
}

// ToSlogLevel maps l onto slog. Unknown levels log at info.
func (l Level) ToSlogLevel() slog.Level {
	if !l.known() {
		return slog.LevelInfo
	}
	return levels[l].slog
}

// LookupLevel resolves a level name case-insensitively. "warning" is
// accepted as an alias of warn.
func LookupLevel(s string) (Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		name = "WARN"
	}
	for l, entry := range levels {
		if entry.name == name {
			return Level(l), true
		}
	}
	return LevelInfo, false
}

// ParseLevel is LookupLevel with unknown names falling back to info.
func ParseLevel(s string) Level {
	l, _ := LookupLevel(s)
	return l
}
