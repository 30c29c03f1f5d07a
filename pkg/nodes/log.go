package nodes

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// LogMessageField is the data input of the log node.
const LogMessageField = "message"

// Log writes its message input to the graph logger and finishes at once.
type Log struct {
	Level string `mapstructure:"level"`

	last string
	seen int
}

func LogDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type:       TypeLog,
		Name:       "Log",
		Sequential: true,
		Ports: []graph.PortSpec{{
			Field:       LogMessageField,
			DisplayName: "Message",
			Direction:   graph.Input,
			Type:        schema.String(),
		}},
		Fields: schema.Schema{"level": schema.String()},
		New:    func() graph.Behavior { return &Log{Level: "info"} },
	}
}

func (l *Log) Start(n *graph.Node) error {
	msg, _ := n.Input(LogMessageField).(string)
	l.last = msg
	l.seen++

	logger := slog.Default()
	if g := n.Graph(); g != nil {
		logger = g.Logger()
	}
	logger.Log(context.Background(), parseLevel(l.Level), msg, "node", n.GUID, "name", n.Name())
	n.Finish()
	return nil
}

func (l *Log) Update(*graph.Node) error { return nil }

// Last returns the message observed by the most recent start.
func (l *Log) Last() string { return l.last }

// Count returns how many times the node started.
func (l *Log) Count() int { return l.seen }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
