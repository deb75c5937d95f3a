package monitor

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/titlemirror/titlemirror/internal/config"
	"github.com/titlemirror/titlemirror/pkg/window"
)

// Error sources recorded in the diagnostic log
const (
	SourceLocate = "locate"
	SourceTitle  = "title"
	SourceWrite  = "write"
)

const noWindowMarker = "<no window>"

// ErrorRecorder persists tick diagnostics
type ErrorRecorder interface {
	RecordError(source, className string, err error) error
}

// Observer receives tick outcomes, e.g. for metrics export
type Observer interface {
	LookupCompleted(status window.LookupStatus)
	TitleQueryFailed()
	WriteCompleted(at time.Time)
	WriteFailed()
	TickCompleted()
	Flush() error
}

type Service struct {
	config   *config.Config
	source   window.Source
	writer   *Writer
	state    State
	out      io.Writer
	logger   *log.Logger
	recorder ErrorRecorder
	observer Observer
	now      func() time.Time
	missing  bool
	running  bool
}

// NewService creates a poll loop over source. Status lines go to out, diagnostics to logger.
func NewService(cfg *config.Config, source window.Source, out io.Writer, logger *log.Logger) *Service {
	return &Service{
		config: cfg,
		source: source,
		writer: NewWriter(cfg.Monitor.OutputFile),
		out:    out,
		logger: logger,
		now:    time.Now,
	}
}

// SetErrorRecorder enables persisting diagnostics
func (s *Service) SetErrorRecorder(r ErrorRecorder) {
	s.recorder = r
}

// SetObserver registers an observer for tick outcomes
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// State returns the current change-detection state
func (s *Service) State() State {
	return s.state
}

// Start ticks immediately and then once per poll interval until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	if s.running {
		return fmt.Errorf("monitor is already running")
	}

	s.running = true
	defer func() { s.running = false }()

	s.logger.Printf("Monitoring window class %s every %v (backend: %s)",
		s.config.Monitor.ClassName, s.config.Monitor.PollInterval, s.source.Name())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("Monitor stopped by context")
			return ctx.Err()

		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.config.Monitor.PollInterval)
		}
	}
}

func (s *Service) IsRunning() bool {
	return s.running
}

// Tick resolves the current title and writes it if it changed. It reports whether a
// write happened; a write failure is logged and returned, and leaves the state as it was.
func (s *Service) Tick(ctx context.Context) (bool, error) {
	defer s.tickCompleted()

	title := s.resolveTitle(ctx)
	if ctx.Err() != nil {
		// shutting down mid-tick, the empty fallback must not clobber the file
		return false, ctx.Err()
	}

	wrote, err := s.writer.WriteIfChanged(&s.state, title)
	if err != nil {
		s.logger.Printf("Failed to update output file: %v", err)
		s.storeError(SourceWrite, err)
		if s.observer != nil {
			s.observer.WriteFailed()
		}
		return false, err
	}

	if wrote {
		now := s.now()
		shown := title
		if shown == "" {
			shown = noWindowMarker
		}
		fmt.Fprintf(s.out, "[%s] wrote: %s\n", now.Format("15:04:05"), shown)
		if s.observer != nil {
			s.observer.WriteCompleted(now)
		}
	}

	return wrote, nil
}

// CurrentTitle performs a single lookup without touching the output file
func (s *Service) CurrentTitle(ctx context.Context) (window.Lookup, string, error) {
	lookup, err := s.source.Locate(ctx, s.config.Monitor.ClassName)
	if err != nil {
		return window.Lookup{}, "", fmt.Errorf("failed to locate window: %w", err)
	}
	if lookup.Status != window.Found {
		return lookup, "", nil
	}

	title, err := s.source.ReadTitle(ctx, lookup.ID)
	if err != nil {
		return lookup, "", fmt.Errorf("failed to read title: %w", err)
	}
	return lookup, title, nil
}

// resolveTitle returns the monitored window's title, or "" when there is no usable window
func (s *Service) resolveTitle(ctx context.Context) string {
	className := s.config.Monitor.ClassName

	lookup, err := s.source.Locate(ctx, className)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Printf("Failed to locate window %s: %v", className, err)
			s.storeError(SourceLocate, err)
		}
		s.observeLookup(window.QueryError)
		return ""
	}
	s.observeLookup(lookup.Status)

	switch lookup.Status {
	case window.Found:
		s.missing = false
		title, err := s.source.ReadTitle(ctx, lookup.ID)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Printf("Failed to read title of window %s: %v", lookup.ID, err)
				s.storeError(SourceTitle, err)
			}
			if s.observer != nil {
				s.observer.TitleQueryFailed()
			}
			return ""
		}
		return title

	case window.QueryError:
		s.logger.Printf("Window lookup for %s failed: %v", className, lookup.Err)
		s.storeError(SourceLocate, lookup.Err)
		return ""

	default:
		if !s.missing {
			s.logger.Printf("No window with class %s", className)
			s.missing = true
		}
		return ""
	}
}

func (s *Service) observeLookup(status window.LookupStatus) {
	if s.observer != nil {
		s.observer.LookupCompleted(status)
	}
}

func (s *Service) tickCompleted() {
	if s.observer == nil {
		return
	}
	s.observer.TickCompleted()
	if err := s.observer.Flush(); err != nil {
		s.logger.Printf("Failed to export metrics: %v", err)
	}
}

func (s *Service) storeError(source string, err error) {
	if s.recorder == nil || err == nil {
		return
	}

	if dbErr := s.recorder.RecordError(source, s.config.Monitor.ClassName, err); dbErr != nil {
		s.logger.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}
