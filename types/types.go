// Package types defines the logical types of the Rascal language.
//
// Rascal has exactly two types, integer and boolean. Both occupy a single
// machine word at run time, but the checker always keeps them apart.
package types

import "sort"

// Type is a logical Rascal type.
type Type int

const (
	Invalid Type = iota
	Integer
	Boolean
)

var typeNames = map[Type]string{
	Invalid: "invalid",
	Integer: "integer",
	Boolean: "boolean",
}

// builtins maps the names accepted in declarations to their types. There are
// no user-defined types.
var builtins = map[string]Type{
	"integer": Integer,
	"boolean": Boolean,
}

// String returns the source spelling of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true for Integer and Boolean.
func (t Type) IsValid() bool {
	return t == Integer || t == Boolean
}

// Lookup returns the type named by a declaration.
func Lookup(name string) (Type, bool) {
	t, ok := builtins[name]
	return t, ok
}

// Names returns the built-in type names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
