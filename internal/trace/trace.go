package trace

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/k0kubun/pp"
)

type Channel string

const (
	Tokenizer Channel = "tokenizer"
	Parser    Channel = "parser"
)

// EnvName lists channels to register at startup, separated by commas.
const EnvName = "PDEF_TRACE"

var flagChannels = map[byte]Channel{
	't': Tokenizer,
	'p': Parser,
}

var knownChannels = map[Channel]bool{
	Tokenizer: true,
	Parser:    true,
}

// Logger owns the trace output and the set of registered channels.
type Logger struct {
	mu      sync.RWMutex
	out     *log.Logger
	enabled map[Channel]bool
}

func New(w io.Writer) *Logger {
	return &Logger{
		out:     log.New(w, "", 0),
		enabled: map[Channel]bool{},
	}
}

func IsKnown(ch Channel) bool {
	return knownChannels[ch]
}

func (l *Logger) Register(ch Channel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled[ch] = true
}

// ChannelsFromFlags maps one-letter flags ('t' and 'p') to channels.
// Unknown letters are ignored.
func ChannelsFromFlags(flags string) []Channel {
	var channels []Channel
	for i := 0; i < len(flags); i++ {
		if ch, ok := flagChannels[flags[i]]; ok {
			channels = append(channels, ch)
		}
	}
	return channels
}

// ChannelsFromEnv returns the channels named in PDEF_TRACE.
func ChannelsFromEnv() ([]Channel, error) {
	v := os.Getenv(EnvName)
	if v == "" {
		return nil, nil
	}

	var channels []Channel
	for _, name := range strings.Split(v, ",") {
		ch := Channel(strings.TrimSpace(name))
		if ch == "" {
			continue
		}
		if !IsKnown(ch) {
			return nil, fmt.Errorf("%s: unknown trace channel %q", EnvName, ch)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func (l *Logger) Enabled(ch Channel) bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled[ch]
}

// Tracer returns a handle writing to the given channel. A nil Logger yields
// a nil Tracer, which discards everything.
func (l *Logger) Tracer(ch Channel) *Tracer {
	if l == nil {
		return nil
	}
	return &Tracer{logger: l, channel: ch}
}

type Tracer struct {
	logger  *Logger
	channel Channel
}

func (t *Tracer) Enabled() bool {
	return t != nil && t.logger.Enabled(t.channel)
}

func (t *Tracer) Printf(format string, args ...any) {
	if !t.Enabled() {
		return
	}
	t.logger.out.Printf("[%s] %s", t.channel, fmt.Sprintf(format, args...))
}

// Dump pretty prints v under label.
func (t *Tracer) Dump(label string, v any) {
	if !t.Enabled() {
		return
	}
	t.logger.out.Printf("[%s] %s: %s", t.channel, label, pp.Sprint(v))
}
