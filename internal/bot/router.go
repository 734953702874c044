// Package bot routes chat commands to tracker and lookup operations.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"rifttracker/internal/transport"
	"rifttracker/pkg/logx"
)

type Command struct {
	Name        string // without the leading slash
	Aliases     []string
	Description string
	Usage       string
	Handle      HandlerFunc
}

type Request struct {
	Message *transport.Message
	Chat    transport.ChatTarget
	Command string
	Args    []string

	Adapter transport.Adapter
	Logger  logx.Logger
}

// Reply sends an HTML-formatted response back to the requesting chat.
func (r *Request) Reply(ctx context.Context, text string) error {
	_, err := r.Adapter.SendText(ctx, r.Chat, text,
		&transport.SendOptions{ParseMode: "HTML", DisablePreview: true})
	return err
}

type HandlerFunc func(ctx context.Context, req *Request) error

type Middleware func(next HandlerFunc) HandlerFunc

func Chain(h HandlerFunc, m ...Middleware) HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func MWTimeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			if d <= 0 {
				return next(ctx, req)
			}
			cctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(cctx, req)
		}
	}
}

func MWPanicRecover(log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered",
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())))
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}

func MWRequestLog(log logx.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			start := time.Now()
			err := next(ctx, req)
			d := time.Since(start)
			fields := []logx.Field{
				logx.Int64("chat_id", req.Chat.ChatID),
				logx.Int64("from_id", req.Message.FromID),
				logx.String("cmd", req.Command),
				logx.Duration("dur", d),
			}
			if err != nil {
				log.Warn("command failed", append(fields, logx.Err(err))...)
			} else if d >= 750*time.Millisecond {
				log.Info("command ok", fields...)
			} else {
				log.Debug("command ok", fields...)
			}
			return err
		}
	}
}

// cooldown throttles per-user command bursts.
type cooldown struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[int64]time.Time
}

func newCooldown(window time.Duration) *cooldown {
	return &cooldown{window: window, now: time.Now, last: map[int64]time.Time{}}
}

// allow reports whether userID may run a command now, and records the use.
func (c *cooldown) allow(userID int64) bool {
	if c == nil || c.window <= 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if t, ok := c.last[userID]; ok && now.Sub(t) < c.window {
		return false
	}
	c.last[userID] = now
	return true
}

func MWCooldown(c *cooldown) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) error {
			if !c.allow(req.Message.FromID) {
				return req.Reply(ctx, "⏳ Slow down, try again in a moment")
			}
			return next(ctx, req)
		}
	}
}

// Router consumes transport updates and dispatches slash commands.
type Router struct {
	adapter  transport.Adapter
	log      logx.Logger
	commands map[string]*Command
	names    []string // registration order, for /help
	mw       []Middleware
}

func NewRouter(adapter transport.Adapter, log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Router{adapter: adapter, log: log, commands: map[string]*Command{}}
	r.mw = []Middleware{
		MWPanicRecover(log),
		MWRequestLog(log),
		MWCooldown(newCooldown(2 * time.Second)),
		MWTimeout(30 * time.Second),
	}
	return r
}

func (r *Router) Register(cmd Command) {
	c := cmd
	r.commands[strings.ToLower(c.Name)] = &c
	for _, alias := range c.Aliases {
		r.commands[strings.ToLower(alias)] = &c
	}
	r.names = append(r.names, c.Name)
}

// MenuCommands returns the registered commands for the platform menu.
func (r *Router) MenuCommands() []transport.BotCommand {
	out := make([]transport.BotCommand, 0, len(r.names))
	for _, name := range r.names {
		c := r.commands[name]
		out = append(out, transport.BotCommand{Command: "/" + c.Name, Description: c.Description})
	}
	return out
}

// Run consumes updates until ctx ends. Each command runs on its own
// goroutine so a slow lookup never blocks the update stream.
func (r *Router) Run(ctx context.Context, updates <-chan transport.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-updates:
			if !ok {
				return
			}
			if up.Message == nil {
				continue
			}
			req, handler := r.route(up.Message)
			if handler == nil {
				continue
			}
			go func() { _ = Chain(handler, r.mw...)(ctx, req) }()
		}
	}
}

// route parses "/cmd@botname args..." into a request.
func (r *Router) route(m *transport.Message) (*Request, HandlerFunc) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return nil, nil
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return nil, nil
	}
	name := strings.ToLower(fields[0])
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	cmd, ok := r.commands[name]
	if !ok {
		return nil, nil
	}
	return &Request{
		Message: m,
		Chat:    transport.ChatTarget{ChatID: m.ChatID, ThreadID: m.ThreadID},
		Command: cmd.Name,
		Args:    fields[1:],
		Adapter: r.adapter,
		Logger:  r.log,
	}, cmd.Handle
}

// HelpText lists all commands with usage.
func (r *Router) HelpText() string {
	names := append([]string(nil), r.names...)
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("<b>Commands</b>\n")
	for _, name := range names {
		c := r.commands[name]
		usage := c.Usage
		if usage == "" {
			usage = "/" + c.Name
		}
		fmt.Fprintf(&b, "%s - %s\n", usage, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
