package entitlement

// DefaultDemoEmail is the reserved account that bypasses every restriction.
const DefaultDemoEmail = "demo_user@invoice.az"

// Config holds evaluator settings loaded from the environment.
type Config struct {
	DemoEmail string `env:"ENTITLEMENT_DEMO_EMAIL" envDefault:"demo_user@invoice.az"`
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDemoEmail overrides the reserved demo account. An empty value disables the override.
func WithDemoEmail(email string) Option {
	return func(e *Evaluator) {
		e.demoEmail = normalizeEmail(email)
	}
}

// Evaluator makes entitlement decisions for one identity.
// It is a small value type; copies are independent and safe for concurrent use.
type Evaluator struct {
	demoEmail string
	identity  Identity
}

// New returns an evaluator with no identity bound.
func New(opts ...Option) Evaluator {
	e := Evaluator{demoEmail: DefaultDemoEmail}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewFromConfig returns an evaluator configured from cfg.
func NewFromConfig(cfg Config) Evaluator {
	return New(WithDemoEmail(cfg.DemoEmail))
}

// For returns a copy of the evaluator bound to the given identity.
func (e Evaluator) For(id Identity) Evaluator {
	e.identity = id
	return e
}

// Identity returns the bound identity.
func (e Evaluator) Identity() Identity {
	return e.identity
}

// IsDemo reports whether the bound identity is the reserved demo account.
func (e Evaluator) IsDemo() bool {
	if e.demoEmail == "" || e.identity.Email == "" {
		return false
	}
	return normalizeEmail(e.identity.Email) == e.demoEmail
}

// CheckQuantity decides whether one more unit of res may be created.
func (e Evaluator) CheckQuantity(snap *Snapshot, res Resource) Decision {
	if e.IsDemo() || snap == nil {
		return permissive()
	}

	rule, ok := quantityRules[res]
	if !ok {
		return permissive()
	}

	current, _ := snap.Usage(rule.usageField)

	limit, ok := snap.QuantityLimit(rule.limitField)
	if !ok {
		// absence of a rule is never a denial
		limit = Unlimited
	}

	return decide(limit, current)
}

// IsFeatureLocked reports whether the plan explicitly disables the feature.
func (e Evaluator) IsFeatureLocked(snap *Snapshot, f Feature) bool {
	if e.IsDemo() || snap == nil {
		return false
	}

	field, ok := featureRules[f]
	if !ok {
		return false
	}

	enabled, ok := snap.Flag(field)
	if !ok {
		return false
	}
	return !enabled
}

// ResolvePlanLabel returns the effective plan label, "free" when nothing is loaded.
func (e Evaluator) ResolvePlanLabel(snap *Snapshot) PlanLabel {
	if e.IsDemo() {
		return PlanPro
	}
	if snap == nil || snap.Plan == "" {
		return PlanFree
	}
	return snap.Plan
}

// IsPro reports whether the effective plan is a paid tier.
func (e Evaluator) IsPro(snap *Snapshot) bool {
	return e.IsDemo() || e.ResolvePlanLabel(snap).IsPaid()
}

// CanUseThemes reports whether custom themes are explicitly enabled.
// Unlike IsFeatureLocked this is strict: no snapshot means no themes.
func (e Evaluator) CanUseThemes(snap *Snapshot) bool {
	if e.IsDemo() {
		return true
	}
	enabled, _ := snap.Flag(FieldCustomThemes)
	return enabled
}
