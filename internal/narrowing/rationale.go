package narrowing

import "fmt"

// RationalePolicy produces the human readable explanation stored with a recommendation.
type RationalePolicy interface {
	// Engine explains a recommendation derived from the answers
	Engine(v Visa, answered, remaining int) string
	// Direct explains a visa the user selected without finishing the interview
	Direct(v Visa) string
	// Fallback explains the default visa used when no candidate survives
	Fallback(v Visa) string
}

type DefaultRationale struct{}

func (DefaultRationale) Engine(v Visa, answered, remaining int) string {
	if remaining == 1 {
		return fmt.Sprintf("Based on %d answered question(s), %s (%s) is the only visa category that matches your situation. "+
			"This is a suggested starting point for working with legal professionals.", answered, v.Code, v.Name)
	}
	return fmt.Sprintf("Based on %d answered question(s), %s (%s) is the strongest match among %d remaining visa categories. "+
		"This is a suggested starting point for working with legal professionals.", answered, v.Code, v.Name, remaining)
}

func (DefaultRationale) Direct(v Visa) string {
	return fmt.Sprintf("User selected %s (%s) directly during the interview process. "+
		"This is a suggested starting point for working with legal professionals.", v.Code, v.Name)
}

func (DefaultRationale) Fallback(v Visa) string {
	return fmt.Sprintf("No visa category matched every answer provided. %s (%s) is suggested as a general starting point "+
		"for review with legal professionals.", v.Code, v.Name)
}
