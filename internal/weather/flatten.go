package weather

import (
	"encoding/json"
	"fmt"
)

// Flatten extracts the fields named by spec from one location's response.
//
// Fields of the "other" group are read from the top level and stored
// unprefixed; every other group g contributes columns named g_field. The
// first missing group or field, or a group of the wrong shape, fails the
// whole record.
func Flatten(spec FieldSpec, resp Response, city string) (Record, error) {
	record := NewRecord(city)

	for _, g := range spec {
		if g.Group == OtherGroup {
			for _, f := range g.Fields {
				v, err := lookup(resp, f)
				if err != nil {
					return Record{}, fmt.Errorf("%s: %w", f, err)
				}
				record.Set(f, v)
			}
			continue
		}

		group, err := resp.Group(g.Group)
		if err != nil {
			return Record{}, err
		}
		src, err := group.Source()
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", g.Group, err)
		}

		for _, f := range g.Fields {
			v, err := lookup(src, f)
			if err != nil {
				return Record{}, fmt.Errorf("%s.%s: %w", g.Group, f, err)
			}
			record.Set(ColumnName(g.Group, f), v)
		}
	}

	return record, nil
}

func lookup(src map[string]json.RawMessage, field string) (any, error) {
	raw, ok := src[field]
	if !ok {
		return nil, ErrMissingField
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
