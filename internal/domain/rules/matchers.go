package rules

import (
	"fmt"
	"strings"

	"github.com/relcheck/relcheck/internal/domain"
)

// match is one occurrence of a rule violation, before it is tagged with the
// rule's id and severity.
type match struct {
	symbol  string
	message string
}

// matcherFunc inspects a snapshot pair for one category of change. Matchers
// are pure: they read both snapshots and share no state, so catalog order
// never affects their results.
type matcherFunc func(current, baseline *domain.APISnapshot) []match

var matchers = map[string]matcherFunc{
	"function_missing":                 matchFunctionMissing,
	"function_parameter_count_changed": matchFunctionParameterCountChanged,
	"function_parameter_type_changed":  matchFunctionParameterTypeChanged,
	"function_return_type_changed":     matchFunctionReturnTypeChanged,
	"method_missing":                   matchMethodMissing,
	"type_missing":                     matchTypeMissing,
	"type_kind_changed":                matchTypeKindChanged,
	"struct_field_missing":             matchStructFieldMissing,
	"interface_method_missing":         matchInterfaceMethodMissing,
	"interface_method_added":           matchInterfaceMethodAdded,
	"enum_variant_missing":             matchEnumVariantMissing,
	"constant_missing":                 matchConstantMissing,
	"function_added":                   matchFunctionAdded,
	"type_added":                       matchTypeAdded,
	"enum_variant_added":               matchEnumVariantAdded,
}

func matchFunctionMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, f := range baseline.Functions {
		if _, ok := current.FunctionNamed(f.Name); !ok {
			out = append(out, match{
				symbol:  f.Name,
				message: fmt.Sprintf("function %s has been removed", f.Signature()),
			})
		}
	}
	return out
}

func matchFunctionParameterCountChanged(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Functions {
		now, ok := current.FunctionNamed(was.Name)
		if !ok || len(now.Params) == len(was.Params) {
			continue
		}
		out = append(out, match{
			symbol: was.Name,
			message: fmt.Sprintf("function %s now takes %d parameters instead of %d",
				was.Name, len(now.Params), len(was.Params)),
		})
	}
	return out
}

func matchFunctionParameterTypeChanged(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Functions {
		now, ok := current.FunctionNamed(was.Name)
		if !ok || len(now.Params) != len(was.Params) {
			continue // arity changes are function_parameter_count_changed
		}
		for i := range was.Params {
			if now.Params[i].Type != was.Params[i].Type {
				out = append(out, match{
					symbol: was.Name,
					message: fmt.Sprintf("function %s: parameter %d changed from %s to %s",
						was.Name, i+1, was.Params[i].Type, now.Params[i].Type),
				})
			}
		}
	}
	return out
}

func matchFunctionReturnTypeChanged(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Functions {
		now, ok := current.FunctionNamed(was.Name)
		if !ok {
			continue
		}
		if strings.Join(now.Results, ",") != strings.Join(was.Results, ",") {
			out = append(out, match{
				symbol: was.Name,
				message: fmt.Sprintf("function %s changed its return type from (%s) to (%s)",
					was.Name, strings.Join(was.Results, ", "), strings.Join(now.Results, ", ")),
			})
		}
	}
	return out
}

// matchMethodMissing only fires while the receiver type still exists in the
// current snapshot; removal of the whole type is type_missing's finding.
func matchMethodMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Methods {
		if _, typeAlive := current.TypeNamed(was.Receiver); !typeAlive {
			continue
		}
		if _, ok := current.MethodOn(was.Receiver, was.Name); !ok {
			out = append(out, match{
				symbol:  was.Receiver + "." + was.Name,
				message: fmt.Sprintf("method %s has been removed", was.Signature()),
			})
		}
	}
	return out
}

func matchTypeMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Types {
		if _, ok := current.TypeNamed(was.Name); !ok {
			out = append(out, match{
				symbol:  was.Name,
				message: fmt.Sprintf("%s type %s has been removed", was.Kind, was.Name),
			})
		}
	}
	return out
}

func matchTypeKindChanged(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Types {
		now, ok := current.TypeNamed(was.Name)
		if !ok || now.Kind == was.Kind {
			continue
		}
		out = append(out, match{
			symbol:  was.Name,
			message: fmt.Sprintf("type %s changed from %s to %s", was.Name, was.Kind, now.Kind),
		})
	}
	return out
}

func matchStructFieldMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Types {
		if was.Kind != domain.TypeStruct {
			continue
		}
		now, ok := current.TypeNamed(was.Name)
		if !ok || now.Kind != domain.TypeStruct {
			continue
		}
		for _, f := range was.Fields {
			if _, stillThere := now.FieldNamed(f.Name); !stillThere {
				out = append(out, match{
					symbol:  was.Name + "." + f.Name,
					message: fmt.Sprintf("public field %s of struct %s has been removed", f.Name, was.Name),
				})
			}
		}
	}
	return out
}

func matchInterfaceMethodMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Types {
		if was.Kind != domain.TypeInterface {
			continue
		}
		now, ok := current.TypeNamed(was.Name)
		if !ok || now.Kind != domain.TypeInterface {
			continue
		}
		for _, m := range was.Methods {
			if _, stillThere := now.MethodNamed(m.Name); !stillThere {
				out = append(out, match{
					symbol:  was.Name + "." + m.Name,
					message: fmt.Sprintf("method %s was removed from interface %s", m.Name, was.Name),
				})
			}
		}
	}
	return out
}

// Adding a method to an interface breaks every external implementation, so
// the addition itself is the major change.
func matchInterfaceMethodAdded(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Types {
		if was.Kind != domain.TypeInterface {
			continue
		}
		now, ok := current.TypeNamed(was.Name)
		if !ok || now.Kind != domain.TypeInterface {
			continue
		}
		for _, m := range now.Methods {
			if _, existed := was.MethodNamed(m.Name); !existed {
				out = append(out, match{
					symbol:  was.Name + "." + m.Name,
					message: fmt.Sprintf("method %s was added to interface %s", m.Name, was.Name),
				})
			}
		}
	}
	return out
}

func matchEnumVariantMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, was := range baseline.Types {
		if was.Kind != domain.TypeEnum {
			continue
		}
		now, ok := current.TypeNamed(was.Name)
		if !ok || now.Kind != domain.TypeEnum {
			continue
		}
		for _, v := range was.Variants {
			if !now.HasVariant(v) {
				out = append(out, match{
					symbol:  was.Name + "." + v,
					message: fmt.Sprintf("variant %s of enum %s has been removed", v, was.Name),
				})
			}
		}
	}
	return out
}

func matchConstantMissing(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, c := range baseline.Constants {
		if _, ok := current.ConstantNamed(c.Name); !ok {
			out = append(out, match{
				symbol:  c.Name,
				message: fmt.Sprintf("constant %s has been removed", c.Name),
			})
		}
	}
	return out
}

func matchFunctionAdded(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, f := range current.Functions {
		if _, existed := baseline.FunctionNamed(f.Name); !existed {
			out = append(out, match{
				symbol:  f.Name,
				message: fmt.Sprintf("function %s is new in this release", f.Signature()),
			})
		}
	}
	return out
}

func matchTypeAdded(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, t := range current.Types {
		if _, existed := baseline.TypeNamed(t.Name); !existed {
			out = append(out, match{
				symbol:  t.Name,
				message: fmt.Sprintf("%s type %s is new in this release", t.Kind, t.Name),
			})
		}
	}
	return out
}

func matchEnumVariantAdded(current, baseline *domain.APISnapshot) []match {
	var out []match
	for _, now := range current.Types {
		if now.Kind != domain.TypeEnum {
			continue
		}
		was, ok := baseline.TypeNamed(now.Name)
		if !ok || was.Kind != domain.TypeEnum {
			continue
		}
		for _, v := range now.Variants {
			if !was.HasVariant(v) {
				out = append(out, match{
					symbol:  now.Name + "." + v,
					message: fmt.Sprintf("variant %s of enum %s is new in this release", v, now.Name),
				})
			}
		}
	}
	return out
}
