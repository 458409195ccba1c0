package blocks

import (
	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine"
)

// Option configures a Plugin.
type Option func(*Plugin)

// WithGenerator sets the identifier generator.
func WithGenerator(gen IDGenerator) Option {
	return func(p *Plugin) {
		if gen != nil {
			p.gen = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPriority sets the priority of both hooks.
func WithPriority(priority int) Option {
	return func(p *Plugin) {
		p.priority = &priority
	}
}

// Plugin bundles the move and lift hooks.
type Plugin struct {
	gen      IDGenerator
	logger   *zap.Logger
	priority *int

	move *MoveHook
	lift *LiftHook
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{gen: UUIDGenerator{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.move = NewMoveHook(p.gen, p.logger.Named("move"))
	p.lift = NewLiftHook(p.logger.Named("lift"))
	if p.priority != nil {
		p.move.priority = *p.priority
		p.lift.priority = *p.priority
	}
	return p
}

// MoveHook returns the plugin's move hook.
func (p *Plugin) MoveHook() *MoveHook { return p.move }

// LiftHook returns the plugin's lift hook.
func (p *Plugin) LiftHook() *LiftHook { return p.lift }

// Install registers both hooks with e.
func (p *Plugin) Install(e *engine.Engine) error {
	if err := e.RegisterHook(p.move); err != nil {
		return err
	}
	if err := e.RegisterHook(p.lift); err != nil {
		e.UnregisterHook(p.move.Name())
		return err
	}
	p.logger.Debug("installed", zap.Strings("hooks", []string{p.move.Name(), p.lift.Name()}))
	return nil
}

// Uninstall removes both hooks from e.
func (p *Plugin) Uninstall(e *engine.Engine) {
	e.UnregisterHook(p.move.Name())
	e.UnregisterHook(p.lift.Name())
}
