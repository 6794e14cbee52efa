package recipe

import (
	"fmt"
	"strings"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/vocabulary"
)

// Policy decides what happens to a dish whose category or cuisine is not in
// the vocabulary registry
type Policy string

const (
	// PolicyPass keeps the value and reports a warning
	PolicyPass Policy = "pass"
	// PolicyClamp replaces the value with vocabulary.Fallback
	PolicyClamp Policy = "clamp"
	// PolicyReject fails the whole response with a *SchemaError
	PolicyReject Policy = "reject"
)

// ParsePolicy converts a configuration string into a Policy. An empty string
// selects PolicyPass.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPass, nil
	case PolicyPass, PolicyClamp, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown vocabulary policy %q (want pass, clamp or reject)", s)
	}
}

// Warning describes one out-of-vocabulary value found in a response
type Warning struct {
	Index int
	Field string
	Value string
}

func (w Warning) String() string {
	return fmt.Sprintf("dishes[%d].%s: %q is not in the vocabulary", w.Index, w.Field, w.Value)
}

// Validator checks parsed dishes against the vocabulary registry
type Validator struct {
	vocab  *vocabulary.Registry
	policy Policy
}

// NewValidator creates a validator. The clamp policy needs the registry to
// contain vocabulary.Fallback in both lists.
func NewValidator(vocab *vocabulary.Registry, policy Policy) (*Validator, error) {
	if vocab == nil {
		return nil, fmt.Errorf("vocabulary registry is required")
	}
	policy, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}
	if policy == PolicyClamp && (!vocab.HasCuisine(vocabulary.Fallback) || !vocab.HasCategory(vocabulary.Fallback)) {
		return nil, fmt.Errorf("clamp policy requires %q in both cuisines and categories", vocabulary.Fallback)
	}

	return &Validator{vocab: vocab, policy: policy}, nil
}

// Policy returns the configured policy
func (v *Validator) Policy() Policy {
	return v.policy
}

// Apply checks every dish in place. It returns the out-of-vocabulary values it
// found, whatever the policy. Under PolicyReject the first one is returned as
// an error.
func (v *Validator) Apply(resp *IdeasResponse) ([]Warning, error) {
	var warnings []Warning

	for i := range resp.Dishes {
		dish := &resp.Dishes[i]

		if !v.vocab.HasCategory(dish.Category) {
			w := Warning{Index: i, Field: "category", Value: dish.Category}
			if err := v.handle(w, &dish.Category); err != nil {
				return warnings, err
			}
			warnings = append(warnings, w)
		}
		if !v.vocab.HasCuisine(dish.Cuisine) {
			w := Warning{Index: i, Field: "cuisine", Value: dish.Cuisine}
			if err := v.handle(w, &dish.Cuisine); err != nil {
				return warnings, err
			}
			warnings = append(warnings, w)
		}
	}

	return warnings, nil
}

func (v *Validator) handle(w Warning, field *string) error {
	switch v.policy {
	case PolicyReject:
		return &SchemaError{
			Path:   fmt.Sprintf("dishes[%d].%s", w.Index, w.Field),
			Reason: fmt.Sprintf("%q is not in the vocabulary", w.Value),
		}
	case PolicyClamp:
		*field = vocabulary.Fallback
	}
	return nil
}
