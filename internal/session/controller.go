// Package session implements the bio form session: field state, the
// single-request lifecycle and the copy confirmation flag.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/biogen/internal/clipboard"
	"github.com/ashureev/biogen/internal/domain"
	"github.com/ashureev/biogen/internal/generator"
)

// CopyResetDelay is how long the copied flag stays set after a copy.
const CopyResetDelay = 2 * time.Second

// Snapshot is a point-in-time view of a session for front-ends.
type Snapshot struct {
	Version          uint64              `json:"version"`
	Form             domain.FormState    `json:"form"`
	Status           domain.RequestState `json:"status"`
	Bio              string              `json:"bio"`
	Error            string              `json:"error,omitempty"`
	Copied           bool                `json:"copied"`
	ExperienceLength int                 `json:"experience_length"`
	ExperienceLimit  int                 `json:"experience_limit"`
}

// Observer receives a snapshot after every state change.
type Observer func(Snapshot)

// Option configures a Controller.
type Option func(*Controller)

// WithClipboard sets the clipboard writer used by CopyResult.
func WithClipboard(w clipboard.Writer) Option {
	return func(c *Controller) {
		if w != nil {
			c.clipboard = w
		}
	}
}

// WithClock sets the clock used for the copy reset timer.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithObserver registers a callback for state changes.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller owns one form session.
type Controller struct {
	mu     sync.Mutex
	form   domain.FormState
	status domain.RequestStatus
	copied bool

	// generation is bumped by Submit, Reset and Close; a completion whose
	// generation no longer matches is dropped.
	generation uint64
	copySeq    uint64
	copyTimer  Timer
	version    uint64
	closed     bool

	generator generator.Generator
	clipboard clipboard.Writer
	clock     Clock
	observer  Observer
	logger    *slog.Logger

	inflight sync.WaitGroup
}

// NewController creates a session in its initial state.
func NewController(gen generator.Generator, opts ...Option) *Controller {
	c := &Controller{
		form:      domain.DefaultForm(),
		status:    domain.Idle(),
		generator: gen,
		clipboard: clipboard.Disabled(),
		clock:     RealClock(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:          c.version,
		Form:             c.form,
		Status:           c.status.State,
		Bio:              c.status.Bio,
		Error:            c.status.Message,
		Copied:           c.copied,
		ExperienceLength: c.form.ExperienceLength(),
		ExperienceLimit:  domain.MaxExperienceLength,
	}
}

// changedLocked bumps the version and returns the snapshot to publish.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) notify(s Snapshot) {
	if c.observer != nil {
		c.observer(s)
	}
}

// SetField updates one form field. Oversized experience text is ignored
// without error.
func (c *Controller) SetField(field domain.Field, value string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	changed, err := c.form.Set(field, value)
	if err != nil || !changed {
		c.mu.Unlock()
		return err
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Form returns the current form values.
func (c *Controller) Form() domain.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// BuildPrompt renders the prompt for the current form.
func (c *Controller) BuildPrompt() string {
	return domain.BuildPrompt(c.Form())
}

// Submit moves to Pending, sends the prompt and records the outcome. It
// blocks until the backend answers. The returned error is the generation
// failure, already stored in the session as a user-visible message.
func (c *Controller) Submit(ctx context.Context) error {
	gen, prompt, err := c.begin()
	if err != nil {
		return err
	}
	return c.complete(ctx, gen, prompt)
}

// SubmitAsync moves to Pending and sends the prompt in the background.
// It returns the pending snapshot.
func (c *Controller) SubmitAsync() (Snapshot, error) {
	gen, prompt, err := c.begin()
	if err != nil {
		return c.Snapshot(), err
	}
	snap := c.Snapshot()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		// No cancellation: the request outlives the HTTP call that started it
		// and is bounded by the generator's own timeout.
		if err := c.complete(context.Background(), gen, prompt); err != nil {
			c.logger.Info("Background submission finished with error", "error", err)
		}
	}()
	return snap, nil
}

// Wait blocks until all background submissions have finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) begin() (uint64, string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, "", ErrClosed
	}
	if c.status.IsPending() {
		c.mu.Unlock()
		return 0, "", ErrSubmitInFlight
	}

	c.generation++
	gen := c.generation
	c.status = domain.Pending()
	c.stopCopyTimerLocked()
	c.copied = false
	prompt := domain.BuildPrompt(c.form)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return gen, prompt, nil
}

func (c *Controller) complete(ctx context.Context, gen uint64, prompt string) error {
	bio, genErr := c.generator.Generate(ctx, prompt)

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("Dropping superseded submission result", "generation", gen)
		return ErrSuperseded
	}
	if genErr != nil {
		c.status = domain.Failed(generator.Message(genErr))
	} else {
		c.status = domain.Succeeded(bio)
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	if genErr != nil {
		c.logger.Warn("Bio generation failed", "error", genErr)
	}
	c.notify(snap)
	return genErr
}

// Reset restores the default form and clears status and copy state.
// A pending request keeps running but its result is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.form = domain.DefaultForm()
	c.status = domain.Idle()
	c.stopCopyTimerLocked()
	c.copied = false
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// CopyResult writes the bio to the clipboard and raises the copied flag
// for CopyResetDelay.
func (c *Controller) CopyResult() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	bio := c.status.Bio
	gen := c.generation
	c.mu.Unlock()

	if bio == "" {
		return ErrNothingToCopy
	}

	writeErr := c.clipboard.WriteAll(bio)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	// A submit or reset ran while the clipboard was busy; the bio we
	// copied no longer belongs to the current state.
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("Dropping stale copy result", "error", writeErr)
		return ErrSuperseded
	}
	if writeErr != nil {
		c.status.State = domain.StateFailed
		c.status.Message = MessageCopyFailed
		snap := c.changedLocked()
		c.mu.Unlock()

		c.logger.Warn("Failed to copy bio", "error", writeErr)
		c.notify(snap)
		return fmt.Errorf("%w: %w", ErrClipboard, writeErr)
	}

	c.stopCopyTimerLocked()
	c.copySeq++
	seq := c.copySeq
	c.copied = true
	c.copyTimer = c.clock.AfterFunc(CopyResetDelay, func() { c.clearCopied(seq) })
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

func (c *Controller) clearCopied(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.copySeq || !c.copied {
		c.mu.Unlock()
		return
	}
	c.copied = false
	c.copyTimer = nil
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) stopCopyTimerLocked() {
	if c.copyTimer != nil {
		c.copyTimer.Stop()
		c.copyTimer = nil
	}
	c.copySeq++
}

// Close tears the session down. Pending results and timer callbacks that
// arrive afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.stopCopyTimerLocked()
}
