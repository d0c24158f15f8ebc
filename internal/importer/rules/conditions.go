package rules

import (
	"fmt"
	"strings"

	"repositum/internal/models"
)

// ConditionFactory builds a condition from the options of a rule's condition
// block. The block is selected by the key the factory is registered under.
type ConditionFactory func(options map[string]any) (Condition, error)

var (
	conditionFactories = map[string]ConditionFactory{
		"keyword": func(options map[string]any) (Condition, error) {
			return newKeywordCondition(options), nil
		},
		"account": func(options map[string]any) (Condition, error) {
			return newAccountCondition(options), nil
		},
	}
	// conditionKeys keeps registration order so the selected factory does
	// not depend on map iteration.
	conditionKeys = []string{"keyword", "account"}
)

// RegisterCondition makes a custom condition available under the given key of
// a condition block.
func RegisterCondition(key string, factory ConditionFactory) {
	if _, exists := conditionFactories[key]; !exists {
		conditionKeys = append(conditionKeys, key)
	}
	conditionFactories[key] = factory
}

// conditionFromOptions builds the condition configured under the "condition"
// key, or nil when the rule is unconditional.
func conditionFromOptions(options map[string]any) (Condition, error) {
	condOpts, ok := optMap(options, "condition")
	if !ok {
		return nil, nil
	}

	for _, key := range conditionKeys {
		if _, ok := condOpts[key]; ok {
			return conditionFactories[key](condOpts)
		}
	}
	return nil, fmt.Errorf("condition must set one of %v, got keys %v", conditionKeys, keysOf(condOpts))
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// KeywordCondition checks if a keyword is present on the document. When no
// keyword type is configured all keywords are checked. With remove enabled
// the matched keyword is taken off the document as a side effect.
type KeywordCondition struct {
	Keyword       string
	KeywordType   string
	Remove        bool
	CaseSensitive bool
}

func newKeywordCondition(options map[string]any) *KeywordCondition {
	cond := &KeywordCondition{}
	if keywordOpts, ok := optMap(options, "keyword"); ok {
		cond.Keyword, _ = optString(keywordOpts, "value")
		cond.KeywordType, _ = optString(keywordOpts, "type")
		cond.Remove = optBool(keywordOpts, "remove")
		cond.CaseSensitive = optBool(keywordOpts, "caseSensitive")
	} else {
		cond.Keyword, _ = optString(options, "keyword")
	}
	return cond
}

func (c *KeywordCondition) Applies(doc *models.Document, rctx *Context) bool {
	if !doc.HasSubject(c.Keyword, c.KeywordType, c.CaseSensitive) {
		return false
	}
	if c.Remove {
		doc.RemoveSubject(c.Keyword, c.KeywordType, c.CaseSensitive)
	}
	return true
}

// AccountCondition matches when the import runs under the expected account.
// The comparison ignores case. Without an account in the context the
// condition never matches.
type AccountCondition struct {
	Account string
}

func newAccountCondition(options map[string]any) *AccountCondition {
	account, _ := optString(options, "account")
	return &AccountCondition{Account: account}
}

func (c *AccountCondition) Applies(doc *models.Document, rctx *Context) bool {
	if c.Account == "" || rctx == nil || rctx.Account == "" {
		return false
	}
	return strings.EqualFold(c.Account, rctx.Account)
}
