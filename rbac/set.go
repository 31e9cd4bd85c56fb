package rbac

import "sort"

// Set is an unordered collection of role or permission codes.
type Set map[string]struct{}

// NewSet builds a Set from codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, code := range codes {
		s[code] = struct{}{}
	}
	return s
}

// Contains reports whether code is a member of s.
func (s Set) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// ContainsAll reports whether every code is a member of s. An empty codes
// list is vacuously true.
func (s Set) ContainsAll(codes ...string) bool {
	for _, code := range codes {
		if !s.Contains(code) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether at least one code is a member of s.
func (s Set) ContainsAny(codes ...string) bool {
	for _, code := range codes {
		if s.Contains(code) {
			return true
		}
	}
	return false
}

// Add inserts code into s.
func (s Set) Add(code string) {
	s[code] = struct{}{}
}

// Codes returns the members of s sorted ascending.
func (s Set) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
