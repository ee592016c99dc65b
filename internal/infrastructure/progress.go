package infrastructure

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Stage is one phase of a single-file compilation, in the order the
// driver runs them (spec §2 data-flow).
type Stage int

const (
	StageLexing Stage = iota
	StageParsing
	StageSemanticAnalysis
	StageCodeGeneration
	StageOptimization
	StageLinking
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageLexing:
		return "lexing"
	case StageParsing:
		return "parsing"
	case StageSemanticAnalysis:
		return "semantic analysis"
	case StageCodeGeneration:
		return "code generation"
	case StageOptimization:
		return "optimization"
	case StageLinking:
		return "linking"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ProgressTracker reports compilation stage transitions through logrus
// rather than the teacher's original FTXUI terminal dashboard — a TTY
// progress UI has no equivalent library in this module's dependency set,
// so --verbose gets structured log lines instead (see DESIGN.md). Grounded
// on original_source/include/compilation_progress.h's Stage enum and
// start/setStage/completeStage/setError lifecycle.
type ProgressTracker struct {
	log       *logrus.Logger
	filename  string
	startTime time.Time
	stage     Stage
	enabled   bool
}

func NewProgressTracker(log *logrus.Logger, enabled bool) *ProgressTracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProgressTracker{log: log, enabled: enabled}
}

func (p *ProgressTracker) Start(filename string) {
	p.filename = filename
	p.startTime = time.Now()
	if p.enabled {
		p.log.WithField("file", filename).Info("compilation started")
	}
}

func (p *ProgressTracker) SetStage(stage Stage) {
	p.stage = stage
	if p.enabled {
		p.log.WithFields(logrus.Fields{
			"file":    p.filename,
			"stage":   stage.String(),
			"elapsed": time.Since(p.startTime).String(),
		}).Info("entering stage")
	}
}

func (p *ProgressTracker) CompleteStage(stage Stage) {
	if p.enabled {
		p.log.WithFields(logrus.Fields{
			"file":  p.filename,
			"stage": stage.String(),
		}).Debug("stage complete")
	}
}

func (p *ProgressTracker) SetError(message string) {
	if p.enabled {
		p.log.WithFields(logrus.Fields{
			"file":  p.filename,
			"stage": p.stage.String(),
		}).Error(message)
	}
}

func (p *ProgressTracker) Stop() {
	if p.enabled {
		p.log.WithFields(logrus.Fields{
			"file":    p.filename,
			"elapsed": time.Since(p.startTime).String(),
		}).Info("compilation finished")
	}
}
