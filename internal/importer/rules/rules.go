// Package rules applies configurable post-processing rules to mapped
// documents before they are stored. Rules run in configuration order; each
// rule may be guarded by a condition.
package rules

import (
	"context"
	"fmt"
	"log/slog"

	"repositum/internal/models"
	"repositum/internal/repository"
)

// Context carries request-scoped facts conditions can match against.
type Context struct {
	// Account is the name of the account performing the import, empty when
	// the import runs without an authenticated operator.
	Account string
}

// Condition guards a rule. A rule without a condition always applies.
type Condition interface {
	Applies(doc *models.Document, rctx *Context) bool
}

// Rule mutates a document during import.
type Rule interface {
	// Configure consumes the rule's options from configuration.
	Configure(options map[string]any) error
	// SetCondition attaches the rule's guard condition, nil for none.
	SetCondition(cond Condition)
	// Apply runs the rule against the document.
	Apply(doc *models.Document, rctx *Context) error
}

// Resolver is implemented by rules that need to resolve references against
// the store once at load time.
type Resolver interface {
	Resolve(ctx context.Context, store *repository.Store) error
}

// Factory creates an unconfigured rule instance.
type Factory func() Rule

var ruleFactories = map[string]Factory{
	"addKeyword":     func() Rule { return &AddKeyword{} },
	"removeKeywords": func() Rule { return &RemoveKeywords{} },
	"addCollection":  func() Rule { return &AddCollection{} },
	"addLicence":     func() Rule { return &AddLicence{} },
}

// RegisterRule makes a custom rule type available under the given name.
func RegisterRule(name string, factory Factory) {
	ruleFactories[name] = factory
}

// Config is one rule entry from the import configuration. Entries are
// applied in the order they appear in the configuration file.
type Config struct {
	// Name identifies the entry in logs.
	Name string
	// Type selects the rule implementation.
	Type string
	// Options holds the remaining keys of the entry, including the optional
	// "condition" block.
	Options map[string]any
}

type namedRule struct {
	name string
	rule Rule
}

// Engine holds loaded rules and applies them in order.
type Engine struct {
	rules  []namedRule
	logger *slog.Logger
}

// Loader builds an Engine from rule configuration, resolving references
// against the store.
type Loader struct {
	Store  *repository.Store
	Logger *slog.Logger
}

// Load creates the rules named in configs. Unknown rule types and
// unresolvable references are configuration errors.
func (l *Loader) Load(ctx context.Context, configs []Config) (*Engine, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{logger: logger}
	for _, cfg := range configs {
		factory, ok := ruleFactories[cfg.Type]
		if !ok {
			return nil, fmt.Errorf("rule %s: unknown rule type %q", cfg.Name, cfg.Type)
		}

		rule := factory()
		if err := rule.Configure(cfg.Options); err != nil {
			return nil, fmt.Errorf("rule %s: %w", cfg.Name, err)
		}

		cond, err := conditionFromOptions(cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", cfg.Name, err)
		}
		rule.SetCondition(cond)

		if resolver, ok := rule.(Resolver); ok {
			if err := resolver.Resolve(ctx, l.Store); err != nil {
				return nil, fmt.Errorf("rule %s: %w", cfg.Name, err)
			}
		}

		engine.rules = append(engine.rules, namedRule{name: cfg.Name, rule: rule})
	}
	return engine, nil
}

// Apply runs all rules against the document in configuration order.
func (e *Engine) Apply(doc *models.Document, rctx *Context) error {
	if e == nil {
		return nil
	}
	for _, entry := range e.rules {
		if err := entry.rule.Apply(doc, rctx); err != nil {
			return fmt.Errorf("rule %s: %w", entry.name, err)
		}
	}
	return nil
}

// Len returns the number of loaded rules.
func (e *Engine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// baseRule provides condition handling shared by the built-in rules.
type baseRule struct {
	condition Condition
}

func (r *baseRule) SetCondition(cond Condition) {
	r.condition = cond
}

func (r *baseRule) applies(doc *models.Document, rctx *Context) bool {
	return r.condition == nil || r.condition.Applies(doc, rctx)
}
