package engine

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.starlark.net/starlark"
)

// GroupFunc is the function a grouping script must define.
const GroupFunc = "assign_group"

// OrderGlobal optionally lists group names in display order.
const OrderGlobal = "GROUP_ORDER"

// FallbackGroup is used when a script fails for a label.
const FallbackGroup = "Other"

// ScriptHash identifies a script, so exported groupings can be traced back
// to the rules that produced them.
func ScriptHash(script string) string {
	sum := sha256.Sum256([]byte(script))
	return fmt.Sprintf("%x", sum[:8])
}

// Grouper assigns region labels to display groups by running a starlark
// script. Results are cached per label.
type Grouper struct {
	name   string
	hash   string
	logger *slog.Logger
	fn     starlark.Callable
	order  []string

	mu     sync.Mutex
	thread *starlark.Thread
	cache  map[string]string
}

// NewGrouper executes script and looks up its assign_group function.
func NewGrouper(name, script string, logger *slog.Logger) (*Grouper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	thread := &starlark.Thread{Name: name, Print: func(_ *starlark.Thread, msg string) {
		logger.Info(msg, "script", name)
	}}

	globals, err := starlark.ExecFile(thread, name, script, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: run %s: %w", name, err)
	}
	fn, ok := globals[GroupFunc].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("engine: %s does not define %s(label)", name, GroupFunc)
	}

	g := &Grouper{
		name:   name,
		hash:   ScriptHash(script),
		logger: logger,
		fn:     fn,
		thread: thread,
		cache:  make(map[string]string),
	}
	if v, ok := globals[OrderGlobal]; ok {
		if names, ok := FromStarlarkValue(v).([]interface{}); ok {
			for _, n := range names {
				if s, ok := n.(string); ok {
					g.order = append(g.order, s)
				}
			}
		}
	}
	return g, nil
}

// LoadGrouper reads a script from path, or uses DefaultScript when path is
// empty.
func LoadGrouper(path string, logger *slog.Logger) (*Grouper, error) {
	if path == "" {
		return NewGrouper("default_groups.star", DefaultScript, logger)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return NewGrouper(path, string(src), logger)
}

// Hash returns the ScriptHash of the loaded script.
func (g *Grouper) Hash() string { return g.hash }

// Order returns the group names the script listed, possibly none.
func (g *Grouper) Order() []string { return append([]string(nil), g.order...) }

// Group returns the group of label. A script error or a non-string result
// yields FallbackGroup and is logged.
func (g *Grouper) Group(label string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if grp, ok := g.cache[label]; ok {
		return grp
	}
	grp := FallbackGroup
	v, err := starlark.Call(g.thread, g.fn, starlark.Tuple{starlark.String(label)}, nil)
	if err != nil {
		g.logger.Warn("grouping script failed", "label", label, "err", err)
	} else if s, ok := FromStarlarkValue(v).(string); ok && s != "" {
		grp = s
	} else {
		g.logger.Warn("grouping script returned no group", "label", label, "value", v.String())
	}
	g.cache[label] = grp
	return grp
}

// Groups maps every label to its group.
func (g *Grouper) Groups(labels []string) map[string]string {
	out := make(map[string]string, len(labels))
	for _, l := range labels {
		out[l] = g.Group(l)
	}
	return out
}

// FromStarlarkValue converts strings, numbers, bools and lists to Go values.
// Anything else becomes nil.
func FromStarlarkValue(v starlark.Value) interface{} {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.Int:
		i, _ := val.Int64()
		return int(i)
	case starlark.Float:
		return float64(val)
	case starlark.Bool:
		return bool(val)
	case *starlark.List:
		out := make([]interface{}, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			out = append(out, FromStarlarkValue(val.Index(i)))
		}
		return out
	case starlark.Tuple:
		out := make([]interface{}, 0, len(val))
		for _, x := range val {
			out = append(out, FromStarlarkValue(x))
		}
		return out
	}
	return nil
}
