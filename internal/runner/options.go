package runner

import (
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
)

// Option configures a Runner created with New.
type Option func(*Runner)

func WithName(name string) Option { return func(r *Runner) { r.Name = name } }

func WithModel(m anthropic.Model) Option { return func(r *Runner) { r.Model = m } }

func WithSystem(system string) Option { return func(r *Runner) { r.System = system } }

func WithMaxTokens(n int64) Option { return func(r *Runner) { r.MaxTokens = n } }

// WithBudget sets the estimated input-token budget of each request window.
func WithBudget(n int) Option { return func(r *Runner) { r.Budget = n } }

// WithMaxSteps bounds model round-trips per Run.
func WithMaxSteps(n int) Option { return func(r *Runner) { r.MaxSteps = n } }

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.Logger = l
		}
	}
}
