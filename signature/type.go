package signature

import "strings"

// Type is a type expression taken from documentation. Types are compared
// structurally; two types are the same when their String forms are equal.
type Type struct {
	Name         string
	Arguments    []Type
	ArrayDepth   int
	Alternatives []Type // non-empty for union types
	BoundKind    string // "extends", "super" or "" (wildcards only)
	Bounds       []Type // zero or one element
}

// Named returns a non-generic, non-array type.
func Named(name string) Type {
	return Type{Name: name}
}

// Union combines types into a single union type. Nested unions are flattened
// and duplicates dropped; a single remaining type is returned unchanged.
func Union(types ...Type) Type {
	var flat []Type
	seen := make(map[string]bool)
	var add func(t Type)
	add = func(t Type) {
		if t.IsUnion() {
			for _, alt := range t.Alternatives {
				add(alt)
			}
			return
		}
		key := t.String()
		if seen[key] {
			return
		}
		seen[key] = true
		flat = append(flat, t)
	}
	for _, t := range types {
		add(t)
	}
	switch len(flat) {
	case 0:
		return Type{}
	case 1:
		return flat[0]
	}
	return Type{Alternatives: flat}
}

func (t Type) IsUnion() bool {
	return len(t.Alternatives) > 0
}

func (t Type) IsWildcard() bool {
	return t.Name == "?"
}

func (t Type) IsZero() bool {
	return t.Name == "" && !t.IsUnion()
}

func (t Type) IsPrimitive() bool {
	if t.ArrayDepth > 0 || t.IsUnion() {
		return false
	}
	switch t.Name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double":
		return true
	}
	return false
}

func (t Type) IsVoid() bool {
	return t.Name == "void" && t.ArrayDepth == 0
}

// Erasure drops generic arguments recursively, mirroring what a class-file
// descriptor records for the same type.
func (t Type) Erasure() Type {
	if t.IsUnion() {
		alts := make([]Type, len(t.Alternatives))
		for i, alt := range t.Alternatives {
			alts[i] = alt.Erasure()
		}
		return Type{Alternatives: alts}
	}
	return Type{Name: t.Name, ArrayDepth: t.ArrayDepth}
}

func (t Type) Equal(other Type) bool {
	return t.String() == other.String()
}

func (t Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	if t.IsUnion() {
		for i, alt := range t.Alternatives {
			if i > 0 {
				sb.WriteString("|")
			}
			alt.write(sb)
		}
		return
	}
	sb.WriteString(t.Name)
	if t.IsWildcard() && t.BoundKind != "" && len(t.Bounds) > 0 {
		sb.WriteString(" ")
		sb.WriteString(t.BoundKind)
		sb.WriteString(" ")
		t.Bounds[0].write(sb)
	}
	if len(t.Arguments) > 0 {
		sb.WriteString("<")
		for i, arg := range t.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			arg.write(sb)
		}
		sb.WriteString(">")
	}
	for i := 0; i < t.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
}
