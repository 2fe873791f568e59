package narrowing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/futig/visa-interview/internal/entity"
)

// Engine turns an answer history into a NarrowingState.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	visas      map[string]Visa
	universe   []string
	rules      []Rule
	rulesByKey map[string]*Rule
	limits     Limits
	rationale  RationalePolicy
}

type EngineOption func(*Engine)

// WithMaxQuestions overrides the rule source question limit when n > 0
func WithMaxQuestions(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.limits.MaxQuestions = n
		}
	}
}

func WithRationale(p RationalePolicy) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.rationale = p
		}
	}
}

func NewEngine(src RuleSource, opts ...EngineOption) *Engine {
	e := &Engine{
		visas:      make(map[string]Visa),
		rules:      append([]Rule(nil), src.Rules()...),
		rulesByKey: make(map[string]*Rule),
		limits:     src.Limits(),
		rationale:  DefaultRationale{},
	}

	for _, v := range src.Visas() {
		e.visas[v.Code] = v
		e.universe = append(e.universe, v.Code)
	}
	sort.Strings(e.universe)

	for i := range e.rules {
		e.rulesByKey[e.rules[i].Key] = &e.rules[i]
	}

	if e.limits.CompleteAt <= 0 {
		e.limits.CompleteAt = 1
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Universe returns every visa code the engine knows, sorted
func (e *Engine) Universe() []string {
	return append([]string(nil), e.universe...)
}

func (e *Engine) MaxQuestions() int {
	return e.limits.MaxQuestions
}

// Compute applies answers in key order and decides the next step.
// Answers to unknown keys or with unknown values are recorded but do not filter.
func (e *Engine) Compute(answers map[string]string) *entity.NarrowingState {
	candidates := e.narrow(answers)

	state := &entity.NarrowingState{
		Candidates:    sortedSet(candidates),
		AnsweredCount: len(answers),
	}

	if len(candidates) == 0 {
		state.Outcome = e.fallback()
		return state
	}

	if len(candidates) <= e.limits.CompleteAt || len(answers) >= e.limits.MaxQuestions {
		state.Outcome = e.best(state.Candidates, len(answers))
		return state
	}

	pending := e.pending(answers, candidates)
	if len(pending) == 0 {
		state.Outcome = e.best(state.Candidates, len(answers))
		return state
	}

	state.Next = pending[0].toQuestion()
	state.RemainingDepth = min(len(pending), e.limits.MaxQuestions-len(answers))

	return state
}

// Resolve returns the outcome for state, choosing the best remaining
// candidate when the interview is stopped before a terminal state.
func (e *Engine) Resolve(state *entity.NarrowingState) *entity.Outcome {
	if state.Outcome != nil {
		return state.Outcome
	}
	if len(state.Candidates) == 0 {
		return e.fallback()
	}
	return e.best(state.Candidates, state.AnsweredCount)
}

// Direct builds the outcome for a visa the user picked themselves
func (e *Engine) Direct(code string) (*entity.Outcome, error) {
	v, ok := e.visas[strings.TrimSpace(code)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown visa code %q", entity.ErrInvalidVisaCode, code)
	}

	return &entity.Outcome{
		VisaCode:  v.Code,
		VisaName:  v.Name,
		Rationale: e.rationale.Direct(v),
	}, nil
}

func (e *Engine) narrow(answers map[string]string) map[string]struct{} {
	set := make(map[string]struct{}, len(e.universe))
	for _, code := range e.universe {
		set[code] = struct{}{}
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rule, ok := e.rulesByKey[key]
		if !ok {
			continue
		}
		if opt := rule.option(answers[key]); opt != nil {
			apply(set, opt)
		}
	}

	return set
}

// pending lists unanswered rules that apply to the current state, in asking order
func (e *Engine) pending(answers map[string]string, candidates map[string]struct{}) []*Rule {
	var out []*Rule
	for i := range e.rules {
		r := &e.rules[i]
		if _, answered := answers[r.Key]; answered {
			continue
		}
		if !applies(r.When, answers, candidates) {
			continue
		}
		if r.hasFilters() && !discriminates(r, candidates) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (e *Engine) best(candidates []string, answered int) *entity.Outcome {
	var top Visa
	for i, code := range candidates {
		v := e.visas[code]
		// candidates are sorted, so ties keep the lowest code
		if i == 0 || v.Weight > top.Weight {
			top = v
		}
	}

	return &entity.Outcome{
		VisaCode:  top.Code,
		VisaName:  top.Name,
		Rationale: e.rationale.Engine(top, answered, len(candidates)),
	}
}

func (e *Engine) fallback() *entity.Outcome {
	v := e.visas[e.limits.FallbackVisa]
	return &entity.Outcome{
		VisaCode:  v.Code,
		VisaName:  v.Name,
		Rationale: e.rationale.Fallback(v),
		Fallback:  true,
	}
}

func apply(set map[string]struct{}, opt *Option) {
	if len(opt.Allow) > 0 {
		allowed := make(map[string]struct{}, len(opt.Allow))
		for _, c := range opt.Allow {
			allowed[c] = struct{}{}
		}
		for c := range set {
			if _, ok := allowed[c]; !ok {
				delete(set, c)
			}
		}
	}
	for _, c := range opt.Deny {
		delete(set, c)
	}
}

func applies(cond *Condition, answers map[string]string, candidates map[string]struct{}) bool {
	if cond == nil {
		return true
	}

	if cond.Answer != nil {
		value, ok := answers[cond.Answer.Key]
		if !ok {
			return false
		}
		matched := false
		for _, want := range cond.Answer.In {
			if strings.EqualFold(strings.TrimSpace(value), want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(cond.CandidatesAny) > 0 {
		for _, c := range cond.CandidatesAny {
			if _, ok := candidates[c]; ok {
				return true
			}
		}
		return false
	}

	return true
}

// discriminates reports whether some option of r would remove a candidate
func discriminates(r *Rule, candidates map[string]struct{}) bool {
	for i := range r.Options {
		opt := &r.Options[i]
		if len(opt.Allow) == 0 && len(opt.Deny) == 0 {
			continue
		}
		probe := make(map[string]struct{}, len(candidates))
		for c := range candidates {
			probe[c] = struct{}{}
		}
		apply(probe, opt)
		if len(probe) < len(candidates) {
			return true
		}
	}
	return false
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
