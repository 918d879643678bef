package goap

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// WorldState maps condition names to values. Values must be comparable
// (bool, numbers, strings); numbers loaded from files are float64.
type WorldState map[string]any

// Satisfies reports whether every entry of want is present and equal in s.
func (s WorldState) Satisfies(want WorldState) bool {
	for key, value := range want {
		have, ok := s[key]
		if !ok || have != value {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy; values are comparable scalars.
func (s WorldState) Clone() WorldState {
	out := make(WorldState, len(s))
	for key, value := range s {
		out[key] = value
	}
	return out
}

// Apply returns a copy of s with effects written over it.
func (s WorldState) Apply(effects WorldState) WorldState {
	out := s.Clone()
	for key, value := range effects {
		out[key] = value
	}
	return out
}

// String renders the state with sorted keys, e.g. "{has_wood=true}".
func (s WorldState) String() string {
	return "{" + strings.Join(s.entries(), ", ") + "}"
}

// key is a canonical encoding used to identify search nodes. Values are
// written in Go syntax with their type, so 1 and "1" stay distinct and a
// string value can never forge another entry.
func (s WorldState) key() string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%q=%T:%#v;", key, s[key], s[key])
	}
	return b.String()
}

func (s WorldState) entries() []string {
	out := make([]string, 0, len(s))
	for key, value := range s {
		out = append(out, fmt.Sprintf("%s=%v", key, value))
	}
	sort.Strings(out)
	return out
}

func (s WorldState) validate() error {
	for key, value := range s {
		if value == nil {
			return fmt.Errorf("condition %q has no value", key)
		}
		if !reflect.TypeOf(value).Comparable() {
			return fmt.Errorf("condition %q has non comparable value of type %T", key, value)
		}
	}
	return nil
}

// normalize folds integer values to float64 so states built from YAML,
// HJSON and code compare equal.
func (s WorldState) normalize() WorldState {
	for key, value := range s {
		switch v := value.(type) {
		case int:
			s[key] = float64(v)
		case int8:
			s[key] = float64(v)
		case int16:
			s[key] = float64(v)
		case int32:
			s[key] = float64(v)
		case int64:
			s[key] = float64(v)
		case uint:
			s[key] = float64(v)
		case uint8:
			s[key] = float64(v)
		case uint16:
			s[key] = float64(v)
		case uint32:
			s[key] = float64(v)
		case uint64:
			s[key] = float64(v)
		case float32:
			s[key] = float64(v)
		}
	}
	return s
}

// regress computes the conditions still required before action can be
// applied to reach unmet. The action must achieve at least one unmet
// condition and must not contradict any of them.
func regress(unmet WorldState, action *Action) (WorldState, bool) {
	relevant := false
	for key, value := range action.Effects {
		want, ok := unmet[key]
		if !ok {
			continue
		}
		if want != value {
			return nil, false
		}
		relevant = true
	}
	if !relevant {
		return nil, false
	}

	next := make(WorldState, len(unmet)+len(action.Preconditions))
	for key, value := range unmet {
		if _, achieved := action.Effects[key]; !achieved {
			next[key] = value
		}
	}
	for key, value := range action.Preconditions {
		if have, ok := next[key]; ok && have != value {
			return nil, false
		}
		next[key] = value
	}
	return next, true
}
