// SPDX-License-Identifier: MIT

// Package icons defines the closed set of feature icons a listing may show.
// Identifiers are checked when data enters the system (JSON decoding, request
// binding), so templates never see an unknown icon.
package icons

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknown is returned for identifiers outside the supported set.
var ErrUnknown = errors.New("unknown feature icon")

// Kind is a supported feature icon.
type Kind string

const (
	Loading     Kind = "loading-dock"
	Ceiling     Kind = "ceiling-height"
	Power       Kind = "power"
	Sprinkler   Kind = "sprinkler"
	Office      Kind = "office"
	Parking     Kind = "parking"
	Crane       Kind = "crane"
	Heating     Kind = "heating"
	Insulation  Kind = "insulation"
	Security    Kind = "security"
	Rail        Kind = "rail-access"
	Certificate Kind = "certificate"
)

var known = map[Kind]bool{
	Loading:     true,
	Ceiling:     true,
	Power:       true,
	Sprinkler:   true,
	Office:      true,
	Parking:     true,
	Crane:       true,
	Heating:     true,
	Insulation:  true,
	Security:    true,
	Rail:        true,
	Certificate: true,
}

// Parse normalizes s and returns the matching Kind.
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !known[k] {
		return "", fmt.Errorf("%w %q", ErrUnknown, s)
	}
	return k, nil
}

// Valid reports whether k is a supported icon.
func (k Kind) Valid() bool {
	return known[k]
}

func (k Kind) String() string {
	return string(k)
}

// UnmarshalJSON rejects identifiers outside the supported set.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("feature icon must be a string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// All returns every supported icon in sorted order.
func All() []Kind {
	kinds := make([]Kind, 0, len(known))
	for k := range known {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
