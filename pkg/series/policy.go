package series

import (
	"fmt"
	"strings"
)

// NullPolicy decides what happens to null samples before charting.
type NullPolicy int

const (
	// KeepNulls leaves nulls in place. Lines break at them and no crossing is
	// reported on a segment touching one.
	KeepNulls NullPolicy = iota
	// DropNulls removes null samples so neighbours are joined directly.
	DropNulls
)

// ParseNullPolicy reads "keep" or "drop".
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return KeepNulls, nil
	case "drop":
		return DropNulls, nil
	default:
		return KeepNulls, fmt.Errorf("unknown null policy %q, want keep or drop", s)
	}
}

func (p NullPolicy) String() string {
	if p == DropNulls {
		return "drop"
	}
	return "keep"
}

// Decode lets envconfig parse the policy.
func (p *NullPolicy) Decode(value string) error {
	parsed, err := ParseNullPolicy(value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Apply returns s with the policy applied. The input is not modified.
func (p NullPolicy) Apply(s Series) Series {
	if p != DropNulls {
		return s
	}
	kept := make([]Sample, 0, len(s.Samples))
	for _, sm := range s.Samples {
		if !sm.Null() {
			kept = append(kept, sm)
		}
	}
	return Series{Name: s.Name, Unit: s.Unit, Samples: kept}
}
