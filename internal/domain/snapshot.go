package domain

import (
	"encoding/json"
	"strings"
)

// TypeKind distinguishes the shapes of exported type declarations in a
// snapshot document.
type TypeKind string

const (
	TypeStruct    TypeKind = "struct"
	TypeInterface TypeKind = "interface"
	TypeEnum      TypeKind = "enum"
	TypeAlias     TypeKind = "alias"
)

// Param is one parameter of a function or method signature.
type Param struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// Function describes one exported function (or interface method).
type Function struct {
	Name    string   `json:"name"`
	Params  []Param  `json:"params,omitempty"`
	Results []string `json:"results,omitempty"`
}

// Method describes one exported method on an exported type.
type Method struct {
	Receiver string   `json:"receiver"`
	Name     string   `json:"name"`
	Params   []Param  `json:"params,omitempty"`
	Results  []string `json:"results,omitempty"`
}

// Field is one exported field of a struct type.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypeDecl describes one exported type declaration.
type TypeDecl struct {
	Name     string     `json:"name"`
	Kind     TypeKind   `json:"kind"`
	Fields   []Field    `json:"fields,omitempty"`   // struct
	Methods  []Function `json:"methods,omitempty"`  // interface
	Variants []string   `json:"variants,omitempty"` // enum
}

// Constant describes one exported constant.
type Constant struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// APISnapshot is an immutable structured description of a package's public
// interface at one point in time. Produced once per (package, side) per run;
// rules read it, never write it.
type APISnapshot struct {
	Package   string     `json:"package"`
	Version   string     `json:"version,omitempty"`
	Functions []Function `json:"functions,omitempty"`
	Methods   []Method   `json:"methods,omitempty"`
	Types     []TypeDecl `json:"types,omitempty"`
	Constants []Constant `json:"constants,omitempty"`
}

// ParseSnapshot decodes a snapshot document. Callers classify the error
// (format vs generation) based on where the document came from.
func ParseSnapshot(data []byte) (*APISnapshot, error) {
	var snap APISnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// FunctionNamed looks up an exported function by name.
func (s *APISnapshot) FunctionNamed(name string) (Function, bool) {
	for _, f := range s.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

// MethodOn looks up an exported method by receiver type and name.
func (s *APISnapshot) MethodOn(receiver, name string) (Method, bool) {
	for _, m := range s.Methods {
		if m.Receiver == receiver && m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// TypeNamed looks up an exported type declaration by name.
func (s *APISnapshot) TypeNamed(name string) (TypeDecl, bool) {
	for _, t := range s.Types {
		if t.Name == name {
			return t, true
		}
	}
	return TypeDecl{}, false
}

// ConstantNamed looks up an exported constant by name.
func (s *APISnapshot) ConstantNamed(name string) (Constant, bool) {
	for _, c := range s.Constants {
		if c.Name == name {
			return c, true
		}
	}
	return Constant{}, false
}

// FieldNamed looks up a struct field by name.
func (t TypeDecl) FieldNamed(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MethodNamed looks up an interface method by name.
func (t TypeDecl) MethodNamed(name string) (Function, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Function{}, false
}

// HasVariant reports whether an enum type declares the variant.
func (t TypeDecl) HasVariant(name string) bool {
	for _, v := range t.Variants {
		if v == name {
			return true
		}
	}
	return false
}

// Signature renders the function signature for finding messages.
func (f Function) Signature() string {
	return f.Name + renderSignature(f.Params, f.Results)
}

// Signature renders the method signature for finding messages.
func (m Method) Signature() string {
	return m.Receiver + "." + m.Name + renderSignature(m.Params, m.Results)
}

func renderSignature(params []Param, results []string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteByte(' ')
		}
		b.WriteString(p.Type)
	}
	b.WriteByte(')')
	switch len(results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(results[0])
	default:
		b.WriteString(" (")
		b.WriteString(strings.Join(results, ", "))
		b.WriteByte(')')
	}
	return b.String()
}
