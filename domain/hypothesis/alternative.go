package hypothesis

import (
	"encoding/json"
	"strings"

	"abstats/internal/errors"
)

// Alternative selects which tail(s) of the reference distribution define the p-value.
// The zero value is TwoSided.
type Alternative int

const (
	TwoSided Alternative = iota
	Greater
	Less
)

func (a Alternative) String() string {
	switch a {
	case TwoSided:
		return "two-sided"
	case Greater:
		return "greater"
	case Less:
		return "less"
	}
	return "unknown"
}

// Validate rejects values outside the enum
func (a Alternative) Validate() error {
	switch a {
	case TwoSided, Greater, Less:
		return nil
	}
	return errors.InvalidInputf("unknown alternative hypothesis %d", int(a))
}

// ParseAlternative accepts the canonical names plus the statsmodels
// spellings "larger" and "smaller". An empty string means TwoSided.
func ParseAlternative(s string) (Alternative, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "two-sided", "two_sided", "two-tailed", "both":
		return TwoSided, nil
	case "greater", "larger":
		return Greater, nil
	case "less", "smaller":
		return Less, nil
	}
	return TwoSided, errors.InvalidInputf("unknown alternative hypothesis %q (want two-sided, greater or less)", s)
}

func (a Alternative) MarshalJSON() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a.String())
}

func (a *Alternative) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "alternative must be a string")
	}
	parsed, err := ParseAlternative(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
