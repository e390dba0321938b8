// Package locator builds resilient element handles for the board's semantic
// UI elements. Each element is described by a chain of lookup strategies that
// are OR-combined into a single playwright locator, so a check keeps working
// when the page renders any one of the candidate shapes.
package locator

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/playwright-community/playwright-go"
)

// Kind orders strategies inside a chain. Lower kinds take precedence.
type Kind int

const (
	// KindLabel matches by accessible label, role or accessible name.
	KindLabel Kind = iota
	// KindText matches by placeholder or visible text pattern.
	KindText
	// KindAttribute matches by a structural attribute such as name= or class*=.
	KindAttribute
	// KindType matches by generic element type, e.g. input[type=text].
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindText:
		return "text"
	case KindAttribute:
		return "attribute"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Strategy is one way of finding an element below a root locator.
type Strategy struct {
	Kind Kind
	Desc string
	find func(root playwright.Locator) playwright.Locator
}

// Find applies the strategy to root.
func (s Strategy) Find(root playwright.Locator) playwright.Locator {
	return s.find(root)
}

// First narrows the strategy to its first match.
func (s Strategy) First() Strategy {
	inner := s.find
	return Strategy{
		Kind: s.Kind,
		Desc: s.Desc + " >> first",
		find: func(root playwright.Locator) playwright.Locator {
			return inner(root).First()
		},
	}
}

// WithText keeps only matches whose text matches re.
func (s Strategy) WithText(re *regexp.Regexp) Strategy {
	inner := s.find
	return Strategy{
		Kind: s.Kind,
		Desc: fmt.Sprintf("%s >> text=/%s/", s.Desc, re),
		find: func(root playwright.Locator) playwright.Locator {
			return inner(root).Filter(playwright.LocatorFilterOptions{HasText: re})
		},
	}
}

// Label matches form controls by their associated label text.
func Label(text string) Strategy {
	return Strategy{
		Kind: KindLabel,
		Desc: fmt.Sprintf("label=%q", text),
		find: func(root playwright.Locator) playwright.Locator {
			return root.GetByLabel(text)
		},
	}
}

// Role matches by ARIA role and, when name is non-nil, by accessible name.
func Role(role playwright.AriaRole, name *regexp.Regexp) Strategy {
	desc := fmt.Sprintf("role=%s", role)
	var opts playwright.LocatorGetByRoleOptions
	if name != nil {
		desc += fmt.Sprintf("[name=/%s/]", name)
		opts.Name = name
	}
	return Strategy{
		Kind: KindLabel,
		Desc: desc,
		find: func(root playwright.Locator) playwright.Locator {
			return root.GetByRole(role, opts)
		},
	}
}

// Placeholder matches inputs whose placeholder matches re.
func Placeholder(re *regexp.Regexp) Strategy {
	return Strategy{
		Kind: KindText,
		Desc: fmt.Sprintf("placeholder=/%s/", re),
		find: func(root playwright.Locator) playwright.Locator {
			return root.GetByPlaceholder(re)
		},
	}
}

// Text matches elements whose text matches re.
func Text(re *regexp.Regexp) Strategy {
	return Strategy{
		Kind: KindText,
		Desc: fmt.Sprintf("text=/%s/", re),
		find: func(root playwright.Locator) playwright.Locator {
			return root.GetByText(re)
		},
	}
}

// Attribute matches a CSS selector keyed on a structural attribute.
func Attribute(selector string) Strategy {
	return css(KindAttribute, selector)
}

// Type matches a CSS selector keyed on the element type alone.
func Type(selector string) Strategy {
	return css(KindType, selector)
}

func css(kind Kind, selector string) Strategy {
	return Strategy{
		Kind: kind,
		Desc: "css=" + selector,
		find: func(root playwright.Locator) playwright.Locator {
			return root.Locator(selector)
		},
	}
}

// Chain is the ordered set of strategies describing one semantic element.
type Chain struct {
	element    string
	strategies []Strategy
}

// NewChain builds a chain for element. Strategies are stably sorted by kind so
// a label lookup always precedes a text lookup, which precedes attribute and
// type lookups, whatever order they are passed in.
func NewChain(element string, strategies ...Strategy) Chain {
	if len(strategies) == 0 {
		panic("locator: chain " + element + " has no strategies")
	}
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind < sorted[j].Kind
	})
	return Chain{element: element, strategies: sorted}
}

// Element is the human readable name used in failure messages.
func (c Chain) Element() string { return c.element }

// Strategies returns the chain's strategies in precedence order.
func (c Chain) Strategies() []Strategy {
	out := make([]Strategy, len(c.strategies))
	copy(out, c.strategies)
	return out
}

// Describe lists the strategy descriptions in precedence order.
func (c Chain) Describe() []string {
	out := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Desc
	}
	return out
}

// Resolve returns a single handle matching whichever strategy the page
// renders. Nothing is queried here: playwright evaluates the combined locator
// when an action or assertion runs against it.
func (c Chain) Resolve(root playwright.Locator) playwright.Locator {
	var combined playwright.Locator
	for _, s := range c.strategies {
		l := s.find(root)
		if combined == nil {
			combined = l
			continue
		}
		combined = combined.Or(l)
	}
	return combined
}
