package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of a checkout flow
type State string

const (
	StateIdle       State = "idle"
	StateResolving  State = "resolving"
	StateCommitting State = "committing"
	StateDone       State = "done"
)

// Choice is the user's answer to one presented conflict
type Choice string

const (
	KeepNew      Choice = "keep_new"
	KeepExisting Choice = "keep_existing"
)

// Policy decides what happens to the confirmed duplicates when the user keeps
// the new item. The default leaves them untouched (the historically observed
// behavior); RemoveExisting deletes the superseded confirmed rows instead.
// Either way the conflict key is recorded so re-detection cannot re-prompt.
type Policy string

const (
	KeepNewLeaveExisting  Policy = "keep_new_leave_existing"
	KeepNewRemoveExisting Policy = "keep_new_remove_existing"
)

var (
	// ErrSubmitInProgress rejects a second submit while the payment delay of
	// a previous one is still pending
	ErrSubmitInProgress = errors.New("submit already in progress")

	// ErrNoPendingConflict means Resolve was called outside a resolving flow
	ErrNoPendingConflict = errors.New("no pending conflict to resolve")
)

// Status of a submit or resolve step, reported to the UI layer
type Status string

const (
	StatusEmpty     Status = "empty"     // nothing to check out
	StatusConflict  Status = "conflict"  // a conflict awaits resolution
	StatusCommitted Status = "committed" // order committed successfully
)

// Result is what the UI renders after each step
type Result struct {
	Status    Status
	Conflict  *Conflict        // set when Status == StatusConflict
	Remaining int              // queued conflicts including the current one
	Committed []model.CartItem // set when Status == StatusCommitted
}

// DefaultPaymentDelay simulates payment processing before the commit
const DefaultPaymentDelay = 2 * time.Second

// Flow drives one student's checkout: detect conflicts, resolve them one at
// a time front-of-queue first, then re-run the whole submit from the top
// until a pass detects nothing and the order commits.
type Flow struct {
	ID string

	mu         sync.Mutex
	state      State
	queue      []Conflict
	resolved   map[string]struct{}
	processing bool

	policy       Policy
	paymentDelay time.Duration
	cart         *store.Cart
	selections   *store.Selection
	logger       *zap.Logger
}

func NewFlow(cart *store.Cart, selections *store.Selection, policy Policy, logger *zap.Logger) *Flow {
	if policy == "" {
		policy = KeepNewLeaveExisting
	}
	return &Flow{
		ID:           uuid.NewString(),
		state:        StateIdle,
		resolved:     make(map[string]struct{}),
		policy:       policy,
		paymentDelay: DefaultPaymentDelay,
		cart:         cart,
		selections:   selections,
		logger:       logger,
	}
}

// SetPaymentDelay overrides the simulated processing delay
func (f *Flow) SetPaymentDelay(d time.Duration) {
	f.mu.Lock()
	f.paymentDelay = d
	f.mu.Unlock()
}

// State returns the current flow state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit runs the whole sequence from the top: re-detect conflicts against
// the current cart and confirmed selections, enter resolving when any remain
// unresolved, otherwise commit. Conflicts already answered with keep-new are
// skipped, which is what makes the resolve/re-submit loop terminate.
func (f *Flow) Submit(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	if f.processing {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	delay := f.paymentDelay
	f.mu.Unlock()

	items := f.cart.Items()
	if len(items) == 0 {
		f.mu.Lock()
		f.state = StateIdle
		f.queue = nil
		f.mu.Unlock()
		return &Result{Status: StatusEmpty}, nil
	}

	conflicts := f.unresolved(Detect(items, f.selections.Items()))
	if len(conflicts) > 0 {
		f.mu.Lock()
		f.state = StateResolving
		f.queue = conflicts
		current := f.queue[0]
		remaining := len(f.queue)
		f.mu.Unlock()

		f.logger.Info("Checkout conflicts detected",
			zap.String("flow_id", f.ID),
			zap.Int("conflicts", remaining),
		)
		return &Result{Status: StatusConflict, Conflict: &current, Remaining: remaining}, nil
	}

	f.mu.Lock()
	f.processing = true
	f.state = StateCommitting
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.processing = false
		f.mu.Unlock()
	}()

	// Simulated payment processing; the commit is not cancellable once started
	time.Sleep(delay)

	if err := f.selections.SelectCourses(ctx, items); err != nil {
		f.mu.Lock()
		f.state = StateIdle
		f.mu.Unlock()
		return nil, fmt.Errorf("commit order: %w", err)
	}

	f.mu.Lock()
	f.state = StateDone
	f.mu.Unlock()

	f.logger.Info("Checkout committed",
		zap.String("flow_id", f.ID),
		zap.Int("courses", len(items)),
	)
	return &Result{Status: StatusCommitted, Committed: items}, nil
}

// Resolve answers the conflict at the front of the queue. Keep-existing
// removes the new cart item; keep-new records the conflict as resolved and,
// under the remove-existing policy, deletes the superseded confirmed rows.
// When the queue empties the submit sequence re-runs from the top.
func (f *Flow) Resolve(ctx context.Context, choice Choice) (*Result, error) {
	f.mu.Lock()
	if f.state != StateResolving || len(f.queue) == 0 {
		f.mu.Unlock()
		return nil, ErrNoPendingConflict
	}
	current := f.queue[0]
	f.mu.Unlock()

	switch choice {
	case KeepExisting:
		if err := f.cart.Remove(ctx, current.NewItem.CourseID); err != nil {
			// The conflict stays at the front so the user can retry
			return nil, fmt.Errorf("resolve conflict: %w", err)
		}

	case KeepNew:
		if f.policy == KeepNewRemoveExisting {
			for _, existing := range current.Existing {
				if err := f.selections.RemoveConfirmed(ctx, existing.CourseID); err != nil {
					return nil, fmt.Errorf("resolve conflict: %w", err)
				}
			}
		}
		f.mu.Lock()
		f.resolved[current.Key()] = struct{}{}
		f.mu.Unlock()

	default:
		return nil, fmt.Errorf("unknown choice %q", choice)
	}

	f.logger.Info("Conflict resolved",
		zap.String("flow_id", f.ID),
		zap.String("course_id", current.NewItem.CourseID),
		zap.String("choice", string(choice)),
	)

	f.mu.Lock()
	f.queue = f.queue[1:]
	if len(f.queue) > 0 {
		next := f.queue[0]
		remaining := len(f.queue)
		f.mu.Unlock()
		return &Result{Status: StatusConflict, Conflict: &next, Remaining: remaining}, nil
	}
	f.state = StateIdle
	f.mu.Unlock()

	// Queue drained: re-run the entire submit sequence from the top
	return f.Submit(ctx)
}

// unresolved filters out conflicts already answered with keep-new
func (f *Flow) unresolved(conflicts []Conflict) []Conflict {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := conflicts[:0]
	for _, c := range conflicts {
		if _, done := f.resolved[c.Key()]; !done {
			kept = append(kept, c)
		}
	}
	return kept
}
