package provision

import (
	apperrors "github.com/ksyq12/vhostprov/internal/errors"
	"github.com/ksyq12/vhostprov/internal/logger"
)

// Step describes a single provisioning phase.
type Step struct {
	Name      string
	Operation string
	Code      apperrors.ErrorCode
	Fn        func() error
}

// StepHook observes step progress.
type StepHook func(step Step)

// Pipeline executes steps sequentially. The first failure stops it; steps
// that already ran are not undone.
type Pipeline struct {
	domain  string
	steps   []Step
	onStart StepHook
	onDone  StepHook
}

// NewPipeline constructs a new pipeline.
func NewPipeline(domain string, steps []Step) *Pipeline {
	return &Pipeline{domain: domain, steps: steps}
}

// OnStep registers hooks called before and after each successful step.
// Either may be nil.
func (p *Pipeline) OnStep(start, done StepHook) {
	p.onStart = start
	p.onDone = done
}

// Steps returns the configured steps in execution order.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Execute runs through all configured steps.
func (p *Pipeline) Execute() error {
	log := logger.With(logger.Fields{"domain": p.domain})
	for _, step := range p.steps {
		stepLog := log.With(logger.Fields{"step": step.Name})
		stepLog.Debug("executing step")
		if p.onStart != nil {
			p.onStart(step)
		}

		if err := step.Fn(); err != nil {
			wrapped := apperrors.WrapStep(step.Code, step.Name, p.domain, err)
			stepLog.Fields(logger.LevelError, "step failed", logger.Fields{"error": wrapped})
			return wrapped
		}

		if p.onDone != nil {
			p.onDone(step)
		}
	}
	return nil
}
