package weather

import "strings"

// OtherGroup is the pseudo-group whose fields are read from the top level
// of the response and written to unprefixed columns.
const OtherGroup = "other"

const listSeparator = ", "

// StringToList splits a configured list on ", ". Values are not trimmed or
// validated, so an empty string yields a single empty element.
func StringToList(s string) []string {
	return strings.Split(s, listSeparator)
}

// KeyValue is one ordered entry of a configuration section.
type KeyValue struct {
	Key   string
	Value string
}

// FieldGroup lists the fields extracted from one response group.
type FieldGroup struct {
	Group  string
	Fields []string
}

// FieldSpec drives extraction. Groups are visited in order.
type FieldSpec []FieldGroup

// NewFieldSpec builds a FieldSpec from group = "field, field" pairs.
func NewFieldSpec(pairs []KeyValue) FieldSpec {
	spec := make(FieldSpec, 0, len(pairs))
	for _, p := range pairs {
		spec = append(spec, FieldGroup{
			Group:  p.Key,
			Fields: StringToList(p.Value),
		})
	}
	return spec
}

// ColumnName returns the output column for field f of group g.
func ColumnName(group, field string) string {
	if group == OtherGroup {
		return field
	}
	return group + "_" + field
}

// Columns returns the columns a record flattened with this spec carries,
// starting with the city column.
func (s FieldSpec) Columns() []string {
	cols := []string{CityColumn}
	seen := map[string]struct{}{CityColumn: {}}
	for _, g := range s {
		for _, f := range g.Fields {
			name := ColumnName(g.Group, f)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			cols = append(cols, name)
		}
	}
	return cols
}
