// Package scoring selects each swimmer's counting events and aggregates them.
package scoring

// Default selection policy.
const (
	DefaultYoungAgeLimit    = 12
	DefaultYoungCategoryCap = 3
	DefaultCategoryCap      = 2
	DefaultMaxSelected      = 8
)

// Policy is the rule set applied to every swimmer.
type Policy struct {
	// YoungAgeLimit is the first age that uses CategoryCap instead of YoungCategoryCap.
	YoungAgeLimit    int `json:"young_age_limit"`
	YoungCategoryCap int `json:"young_category_cap"`
	CategoryCap      int `json:"category_cap"`
	MaxSelected      int `json:"max_selected"`
}

// DefaultPolicy returns the championship rules: three events per category
// under 12, two from 12 up, eight events overall.
func DefaultPolicy() Policy {
	return Policy{
		YoungAgeLimit:    DefaultYoungAgeLimit,
		YoungCategoryCap: DefaultYoungCategoryCap,
		CategoryCap:      DefaultCategoryCap,
		MaxSelected:      DefaultMaxSelected,
	}
}

// CapFor returns the per-category cap for a swimmer of the given age.
func (p Policy) CapFor(age int) int {
	if age < p.YoungAgeLimit {
		return p.YoungCategoryCap
	}
	return p.CategoryCap
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithPolicy replaces the whole policy. Non-positive fields keep their defaults.
func WithPolicy(p Policy) Option {
	return func(s *Selector) {
		WithYoungAgeLimit(p.YoungAgeLimit)(s)
		WithYoungCategoryCap(p.YoungCategoryCap)(s)
		WithCategoryCap(p.CategoryCap)(s)
		WithMaxSelected(p.MaxSelected)(s)
	}
}

// WithYoungAgeLimit sets the age from which the standard cap applies.
func WithYoungAgeLimit(age int) Option {
	return func(s *Selector) {
		if age > 0 {
			s.policy.YoungAgeLimit = age
		}
	}
}

// WithYoungCategoryCap sets the per-category cap for younger swimmers.
func WithYoungCategoryCap(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.policy.YoungCategoryCap = n
		}
	}
}

// WithCategoryCap sets the per-category cap for older swimmers.
func WithCategoryCap(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.policy.CategoryCap = n
		}
	}
}

// WithMaxSelected sets the overall number of counting events.
func WithMaxSelected(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.policy.MaxSelected = n
		}
	}
}
