package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/richlight/internal/config/ruleset"
	"github.com/dshills/richlight/internal/config/watcher"
	"github.com/dshills/richlight/internal/highlight"
	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// Service serves highlight requests against the current configuration.
// It is safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	defaults core.Defaults
	rules    []highlight.HighlightRule
	name     string
	ruleSet  *ruleset.RuleSet
	path     string
	version  uint64
	closed   bool

	compiler *ruleset.Compiler
	logger   *Logger

	listenersMu sync.Mutex
	listeners   []func(Snapshot)
}

// Snapshot describes the configuration a Service is using.
type Snapshot struct {
	Name     string
	Path     string
	Defaults core.Defaults
	Rules    int
	Version  uint64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCompiler sets the compiler used to load rule sets.
func WithCompiler(c *ruleset.Compiler) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.compiler = c
		}
	}
}

// NewService creates a Service with the given defaults and no rules.
func NewService(defaults core.Defaults, opts ...ServiceOption) *Service {
	s := &Service{
		defaults: defaults,
		name:     "default",
		logger:   NullLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compiler == nil {
		s.compiler = ruleset.NewCompiler(ruleset.WithDefaults(defaults))
	}
	s.logger = s.logger.WithComponent("service")
	return s
}

// Highlight computes the attributed text for text. On failure it returns
// the baseline text, carrying only the defaults, together with the error.
func (s *Service) Highlight(text string) (*attributed.Text, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return attributed.NewBaseline(text, s.defaults), ErrClosed
	}

	out, err := highlight.Compute(text, s.defaults, s.rules)
	if err != nil {
		s.logger.WithField("ruleset", s.name).Warn("highlight failed, using baseline: %v", err)
		return attributed.NewBaseline(text, s.defaults), NewOperationError("highlight", s.name, err)
	}
	return out, nil
}

// SetConfig replaces the defaults and rules. Rules are validated first; an
// invalid list leaves the current configuration in place.
func (s *Service) SetConfig(name string, defaults core.Defaults, rules []highlight.HighlightRule) error {
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return NewOperationError("configure", name, fmt.Errorf("rule %d: %w", i, err))
		}
	}
	own := make([]highlight.HighlightRule, len(rules))
	copy(own, rules)

	s.swap(name, "", defaults, own, nil)
	return nil
}

// LoadRuleSet loads the rule-set document at path and makes it current.
// On error the current configuration is kept.
func (s *Service) LoadRuleSet(path string) error {
	rs, err := s.compiler.Load(path)
	if err != nil {
		s.logger.WithField("path", path).Error("loading rule set: %v", err)
		return NewOperationError("load", path, err)
	}
	s.swap(rs.Name, path, rs.Defaults, rs.Rules, rs)
	s.logger.WithFields(map[string]any{"path": path, "rules": len(rs.Rules), "id": rs.ID}).Info("rule set %q loaded", rs.Name)
	return nil
}

// Reload loads the most recently loaded rule-set path again.
func (s *Service) Reload() error {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()

	if path == "" {
		return ErrNoRuleSet
	}
	return s.LoadRuleSet(path)
}

// WatchRules loads path and reloads it whenever it changes, until ctx is
// cancelled. A reload that fails keeps the previous rule set.
func (s *Service) WatchRules(ctx context.Context, path string, opts ...watcher.Option) error {
	if err := s.LoadRuleSet(path); err != nil {
		return err
	}

	log := s.logger.WithField("path", path)
	w, err := watcher.New(path, func(e watcher.Event) {
		switch e.Op {
		case watcher.OpRemove, watcher.OpRename:
			log.Warn("rule set %s, keeping current rules", e.Op)
		default:
			// LoadRuleSet logs failures.
			_ = s.LoadRuleSet(path)
		}
	}, append([]watcher.Option{watcher.WithLogger(log)}, opts...)...)
	if err != nil {
		return NewOperationError("watch", path, err)
	}
	return w.Run(ctx)
}

// OnReload registers fn to be called after every configuration change.
func (s *Service) OnReload(fn func(Snapshot)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current configuration summary.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Defaults returns the current defaults.
func (s *Service) Defaults() core.Defaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Close releases the current rule set. Highlight returns the baseline
// text and ErrClosed afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.ruleSet != nil {
		s.ruleSet.Close()
		s.ruleSet = nil
	}
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{
		Name:     s.name,
		Path:     s.path,
		Defaults: s.defaults,
		Rules:    len(s.rules),
		Version:  s.version,
	}
}

// swap installs a new configuration. In-flight Highlight calls hold the
// read lock, so the previous rule set is closed only after they finish.
func (s *Service) swap(name, path string, defaults core.Defaults, rules []highlight.HighlightRule, rs *ruleset.RuleSet) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if rs != nil {
			rs.Close()
		}
		return
	}
	old := s.ruleSet
	s.name = name
	s.defaults = defaults
	s.rules = rules
	s.ruleSet = rs
	s.path = path
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if old != nil && old != rs {
		old.Close()
	}

	s.listenersMu.Lock()
	listeners := make([]func(Snapshot), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
