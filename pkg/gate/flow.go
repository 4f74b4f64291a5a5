package gate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/requestid"
)

// Flow runs gated actions for one screen or dialog. It holds at most one
// attempt at a time.
type Flow struct {
	eval          entitlement.Evaluator
	provider      StatusProvider
	presenter     Presenter
	identity      IdentitySource
	copy          copywriter
	defaultErr    string
	freshPrecheck bool
	newID         func() string
	logger        *slog.Logger

	sm machine
}

// New creates a flow. Panics if provider or presenter is nil.
func New(eval entitlement.Evaluator, provider StatusProvider, presenter Presenter, opts ...Option) *Flow {
	if provider == nil || presenter == nil {
		panic("gate: provider and presenter are required")
	}
	f := &Flow{
		eval:      eval,
		provider:  provider,
		presenter: presenter,
		copy:      newCopywriter(language.Azerbaijani),
		newID:     uuid.NewString,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logger.Component("gate"))
	return f
}

// State returns the state of the current attempt.
func (f *Flow) State() State {
	return f.sm.state()
}

// Dismiss returns a finished attempt to Idle. It is a no-op when idle and
// fails with ErrInvalidTransition while an attempt is running.
func (f *Flow) Dismiss() error {
	if f.sm.state() == Idle {
		return nil
	}
	return f.sm.fire(evDismiss)
}

// Precheck evaluates target against the current snapshot without running
// anything. It returns the prompt to show and false when the plan denies it.
func (f *Flow) Precheck(ctx context.Context, target Target) (*UpgradePrompt, bool) {
	return f.precheck(ctx, Action{Target: target})
}

// RunChecked checks the plan first and only calls Mutate when it allows the
// action. A denial shows the upgrade prompt and never reaches the server.
func (f *Flow) RunChecked(ctx context.Context, a Action) Outcome {
	if err := validate(a); err != nil {
		return Outcome{State: f.State(), Err: err}
	}
	id := f.newID()
	if err := f.sm.begin(evCheck); err != nil {
		return Outcome{AttemptID: id, State: f.State(), Err: err}
	}
	ctx = requestid.WithContext(ctx, id)
	log := f.attemptLogger(id, a)

	if prompt, ok := f.precheck(ctx, a); !ok {
		f.transition(ctx, log, evDeny)
		log.InfoContext(ctx, "gate: action denied by plan")
		f.presenter.ShowUpgradePrompt(ctx, *prompt)
		return Outcome{AttemptID: id, State: Denied, Prompt: prompt}
	}

	f.transition(ctx, log, evAllow)
	return f.submit(ctx, a, id, log)
}

// RunOptimistic calls Mutate right away and turns plan rejections from the
// server into the upgrade prompt. Other errors are shown as error messages.
func (f *Flow) RunOptimistic(ctx context.Context, a Action) Outcome {
	if err := validate(a); err != nil {
		return Outcome{State: f.State(), Err: err}
	}
	id := f.newID()
	if err := f.sm.begin(evSubmit); err != nil {
		return Outcome{AttemptID: id, State: f.State(), Err: err}
	}
	ctx = requestid.WithContext(ctx, id)
	return f.submit(ctx, a, id, f.attemptLogger(id, a))
}

func (f *Flow) submit(ctx context.Context, a Action, id string, log *slog.Logger) Outcome {
	err := a.Mutate(ctx)
	if err == nil {
		f.transition(ctx, log, evSucceed)
		// usage changed: the snapshot is refreshed before anything else can re-enable the action
		if _, rerr := f.provider.Refresh(ctx); rerr != nil {
			log.WarnContext(ctx, "gate: plan status refresh failed", logger.Error(rerr))
		}
		if a.OnSuccess != nil {
			a.OnSuccess(ctx)
		}
		f.presenter.CloseDialog(ctx)
		f.transition(ctx, log, evDismiss)
		log.DebugContext(ctx, "gate: action succeeded")
		return Outcome{AttemptID: id, State: Success}
	}

	switch kind := ClassifyError(err); kind {
	case KindLimitExceeded, KindFeatureLocked:
		prompt := f.promptForError(ctx, a, err, kind)
		f.transition(ctx, log, evReject)
		log.InfoContext(ctx, "gate: action rejected by plan", slog.String("kind", kind.String()))
		f.presenter.CloseDialog(ctx)
		f.presenter.ShowUpgradePrompt(ctx, prompt)
		return Outcome{AttemptID: id, State: Denied, Prompt: &prompt, Err: err}
	default:
		msg := f.errorMessage(err)
		f.transition(ctx, log, evFail)
		log.WarnContext(ctx, "gate: action failed", logger.Error(err))
		f.presenter.ShowError(ctx, msg)
		return Outcome{AttemptID: id, State: Failed, ErrMessage: msg, Err: err}
	}
}

func (f *Flow) precheck(ctx context.Context, a Action) (*UpgradePrompt, bool) {
	ev := f.evaluator()
	snap := f.snapshot(ctx)

	if res, ok := a.Target.Resource(); ok {
		d := ev.CheckQuantity(snap, res)
		if d.Allowed {
			return nil, true
		}
		p := f.resourcePrompt(res, a.DisplayName, d.Limit)
		return &p, false
	}
	if feat, ok := a.Target.Feature(); ok {
		if !ev.IsFeatureLocked(snap, feat) {
			return nil, true
		}
		p := f.featurePrompt(a, feat)
		return &p, false
	}
	return nil, true
}

func (f *Flow) promptForError(ctx context.Context, a Action, err error, kind ErrorKind) UpgradePrompt {
	if feat, ok := a.Target.Feature(); ok {
		return f.featurePrompt(a, feat)
	}

	res, _ := a.Target.Resource()
	if kind == KindFeatureLocked {
		p := UpgradePrompt{
			Resource:    res,
			DisplayName: f.displayName(a.DisplayName, res.DisplayName),
			Limit:       entitlement.Unlimited,
			FeatureLock: true,
		}
		return f.copy.featurePrompt(p, a.Title, a.Message)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Limit != nil {
		return f.resourcePrompt(res, a.DisplayName, entitlement.Cap(*apiErr.Limit))
	}
	d := f.evaluator().CheckQuantity(f.provider.Snapshot(ctx), res)
	return f.resourcePrompt(res, a.DisplayName, d.Limit)
}

func (f *Flow) resourcePrompt(res entitlement.Resource, displayName string, limit entitlement.Limit) UpgradePrompt {
	return f.copy.limitPrompt(UpgradePrompt{
		Resource:    res,
		DisplayName: f.displayName(displayName, res.DisplayName),
		Limit:       limit,
	})
}

func (f *Flow) featurePrompt(a Action, feat entitlement.Feature) UpgradePrompt {
	return f.copy.featurePrompt(UpgradePrompt{
		Feature:     feat,
		DisplayName: f.displayName(a.DisplayName, feat.DisplayName),
		Limit:       entitlement.Unlimited,
		FeatureLock: true,
	}, a.Title, a.Message)
}

func (f *Flow) displayName(override string, label func(language.Tag) string) string {
	if override != "" {
		return override
	}
	return label(f.copy.tag)
}

func (f *Flow) errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.UserMessage(); msg != "" {
			return f.copy.serverMessage(msg)
		}
	}
	if f.defaultErr != "" {
		return f.defaultErr
	}
	return f.copy.genericFailure()
}

func (f *Flow) evaluator() entitlement.Evaluator {
	if f.identity != nil {
		return f.eval.For(f.identity.Identity())
	}
	return f.eval
}

func (f *Flow) snapshot(ctx context.Context) *entitlement.Snapshot {
	if f.freshPrecheck {
		snap, err := f.provider.Load(ctx)
		if err == nil {
			return snap
		}
		f.logger.DebugContext(ctx, "gate: fresh snapshot unavailable, using cache", logger.Error(err))
	}
	return f.provider.Snapshot(ctx)
}

func (f *Flow) transition(ctx context.Context, log *slog.Logger, ev event) {
	if err := f.sm.fire(ev); err != nil {
		log.ErrorContext(ctx, "gate: state transition failed", logger.Error(err))
	}
}

func (f *Flow) attemptLogger(id string, a Action) *slog.Logger {
	attrs := []any{logger.AttemptID(id), slog.String("action", a.Name)}
	if res, ok := a.Target.Resource(); ok {
		attrs = append(attrs, logger.Resource(string(res)))
	}
	if feat, ok := a.Target.Feature(); ok {
		attrs = append(attrs, logger.Feature(string(feat)))
	}
	return f.logger.With(attrs...)
}

func validate(a Action) error {
	if a.Mutate == nil || !a.Target.valid() {
		return ErrInvalidAction
	}
	return nil
}
