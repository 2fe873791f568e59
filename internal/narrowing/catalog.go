package narrowing

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/futig/visa-interview/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// RuleSource supplies the visa universe and the branching questions.
type RuleSource interface {
	Visas() []Visa
	Rules() []Rule
	Limits() Limits
}

type Limits struct {
	// MaxQuestions terminates the interview once this many distinct keys are answered
	MaxQuestions int `yaml:"max_questions"`
	// CompleteAt terminates the interview once this many candidates or fewer remain
	CompleteAt int `yaml:"complete_at"`
	// FallbackVisa is recommended when the answers contradict every candidate
	FallbackVisa string `yaml:"fallback_visa"`
}

type Visa struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// Rule is a question together with the candidate filters of its options.
type Rule struct {
	Key      string              `yaml:"key"`
	Prompt   string              `yaml:"prompt"`
	Kind     entity.QuestionKind `yaml:"kind"`
	Priority int                 `yaml:"priority"`
	When     *Condition          `yaml:"when"`
	Options  []Option            `yaml:"options"`
}

// Option narrows candidates to Allow (when set) and then removes Deny.
type Option struct {
	Value string   `yaml:"value"`
	Label string   `yaml:"label"`
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// Condition gates a rule on a previous answer and/or the remaining candidates.
type Condition struct {
	Answer        *AnswerCondition `yaml:"answer"`
	CandidatesAny []string         `yaml:"candidates_any"`
}

type AnswerCondition struct {
	Key string   `yaml:"key"`
	In  []string `yaml:"in"`
}

// Catalog is the YAML backed RuleSource
type Catalog struct {
	Bounds    Limits `yaml:",inline"`
	VisaList  []Visa `yaml:"visas"`
	Questions []Rule `yaml:"questions"`
}

var _ RuleSource = &Catalog{}

func (c *Catalog) Visas() []Visa { return c.VisaList }
func (c *Catalog) Rules() []Rule { return c.Questions }
func (c *Catalog) Limits() Limits {
	return c.Bounds
}

// LoadCatalog reads the catalog at path, or the embedded default when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	return ParseCatalog(data)
}

func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded rule catalog is invalid: %v", err))
	}
	return c
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("validate rules: %w", err)
	}

	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.VisaList) == 0 {
		return fmt.Errorf("no visas defined")
	}

	codes := make(map[string]struct{}, len(c.VisaList))
	for _, v := range c.VisaList {
		if strings.TrimSpace(v.Code) == "" {
			return fmt.Errorf("visa with empty code")
		}
		if _, dup := codes[v.Code]; dup {
			return fmt.Errorf("duplicate visa code %q", v.Code)
		}
		codes[v.Code] = struct{}{}
	}

	if c.Bounds.MaxQuestions <= 0 {
		return fmt.Errorf("max_questions must be positive, got %d", c.Bounds.MaxQuestions)
	}
	if c.Bounds.CompleteAt <= 0 {
		c.Bounds.CompleteAt = 1
	}
	if _, ok := codes[c.Bounds.FallbackVisa]; !ok {
		return fmt.Errorf("fallback_visa %q is not a defined visa", c.Bounds.FallbackVisa)
	}

	keys := make(map[string]struct{}, len(c.Questions))
	for _, q := range c.Questions {
		if strings.TrimSpace(q.Key) == "" {
			return fmt.Errorf("question with empty key")
		}
		if _, dup := keys[q.Key]; dup {
			return fmt.Errorf("duplicate question key %q", q.Key)
		}
		keys[q.Key] = struct{}{}

		for _, o := range q.Options {
			for _, code := range append(append([]string{}, o.Allow...), o.Deny...) {
				if _, ok := codes[code]; !ok {
					return fmt.Errorf("question %q option %q references unknown visa %q", q.Key, o.Value, code)
				}
			}
		}
	}

	// Stable evaluation order: priority, then key
	sort.SliceStable(c.Questions, func(i, j int) bool {
		if c.Questions[i].Priority != c.Questions[j].Priority {
			return c.Questions[i].Priority < c.Questions[j].Priority
		}
		return c.Questions[i].Key < c.Questions[j].Key
	})

	return nil
}

func (r *Rule) option(value string) *Option {
	value = strings.TrimSpace(value)
	for i := range r.Options {
		if strings.EqualFold(r.Options[i].Value, value) {
			return &r.Options[i]
		}
	}
	return nil
}

func (r *Rule) hasFilters() bool {
	for _, o := range r.Options {
		if len(o.Allow) > 0 || len(o.Deny) > 0 {
			return true
		}
	}
	return false
}

func (r *Rule) toQuestion() *entity.Question {
	q := &entity.Question{
		Key:    r.Key,
		Prompt: r.Prompt,
		Kind:   r.Kind,
	}
	if q.Kind == "" {
		q.Kind = entity.QuestionKindSingleChoice
	}
	for _, o := range r.Options {
		q.Options = append(q.Options, entity.QuestionOption{Value: o.Value, Label: o.Label})
	}
	return q
}
