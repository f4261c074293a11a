package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ScopeId identifies a dynamic evaluation context. It is a path of
// discriminators from the root, so the same (parent, discriminator) pair
// always derives the same child identity. The encoded form is comparable and
// usable as a map key.
type ScopeId struct {
	path string
}

// RootScope returns the root evaluation context.
func RootScope() ScopeId {
	return ScopeId{}
}

// Child derives the scope for discriminator d under s. Derivation is
// deterministic: calling Child with the same argument always yields the same
// identity.
func (s ScopeId) Child(d uint64) ScopeId {
	return ScopeId{path: s.path + "/" + strconv.FormatUint(d, 10)}
}

func (s ScopeId) IsRoot() bool {
	return s.path == ""
}

// Parent returns the enclosing scope; ok is false at the root.
func (s ScopeId) Parent() (ScopeId, bool) {
	if s.IsRoot() {
		return ScopeId{}, false
	}
	idx := strings.LastIndexByte(s.path, '/')
	return ScopeId{path: s.path[:idx]}, true
}

// IsAncestorOf reports whether s strictly contains other.
func (s ScopeId) IsAncestorOf(other ScopeId) bool {
	if s.IsRoot() {
		return !other.IsRoot()
	}
	return strings.HasPrefix(other.path, s.path+"/")
}

// Contains reports whether other is s or a descendant of s.
func (s ScopeId) Contains(other ScopeId) bool {
	return s == other || s.IsAncestorOf(other)
}

func (s ScopeId) Depth() int {
	if s.IsRoot() {
		return 0
	}
	return strings.Count(s.path, "/")
}

func (s ScopeId) String() string {
	if s.IsRoot() {
		return "root"
	}
	return "root" + s.path
}

// ParseScope inverts String. Used by the snapshot store to rehydrate slot
// addresses.
func ParseScope(text string) (ScopeId, error) {
	if text == "root" {
		return RootScope(), nil
	}
	rest, ok := strings.CutPrefix(text, "root/")
	if !ok {
		return ScopeId{}, fmt.Errorf("malformed scope %q", text)
	}
	scope := RootScope()
	for _, seg := range strings.Split(rest, "/") {
		d, err := strconv.ParseUint(seg, 10, 64)
		if err != nil {
			return ScopeId{}, fmt.Errorf("malformed scope segment %q in %q", seg, text)
		}
		scope = scope.Child(d)
	}
	return scope, nil
}
