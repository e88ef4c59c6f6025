package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// CodeKey is the reserved response key reporting whether the location resolved.
const CodeKey = "cod"

// notFoundCode is the string value of "cod" for an unknown location. A
// numeric 404 does not match.
const notFoundCode = "404"

var (
	// ErrMissingGroup is returned when a configured group is absent from the response.
	ErrMissingGroup = errors.New("group not present in response")
	// ErrMissingField is returned when a configured field is absent from its group.
	ErrMissingField = errors.New("field not present in response")
	// ErrMalformedGroup is returned when a group is neither an object nor a list of objects.
	ErrMalformedGroup = errors.New("group has unexpected shape")
	// ErrMalformedResponse is returned when the body is not a JSON object.
	ErrMalformedResponse = errors.New("response is not a JSON object")
)

// Response is one location's decoded current-weather payload. Values stay
// raw until a field is extracted.
type Response map[string]json.RawMessage

// DecodeResponse reads a JSON object from r.
func DecodeResponse(r io.Reader) (Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp == nil {
		return nil, ErrMalformedResponse
	}
	return resp, nil
}

// NotFound reports whether the API could not resolve the location.
func (r Response) NotFound() bool {
	raw, ok := r[CodeKey]
	if !ok {
		return false
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return false
	}
	return code == notFoundCode
}

// GroupKind tags the two shapes a response group can take.
type GroupKind int

const (
	// GroupObject is a plain field -> value object, e.g. "main".
	GroupObject GroupKind = iota + 1
	// GroupList is a list of such objects, e.g. "weather".
	GroupList
)

func (k GroupKind) String() string {
	switch k {
	case GroupObject:
		return "object"
	case GroupList:
		return "list"
	default:
		return "unknown"
	}
}

// GroupValue is a decoded response group.
type GroupValue struct {
	Kind   GroupKind
	Object map[string]json.RawMessage
	List   []map[string]json.RawMessage
}

// Group decodes the named group, telling objects and lists apart by their
// first JSON token.
func (r Response) Group(name string) (GroupValue, error) {
	raw, ok := r[name]
	if !ok {
		return GroupValue{}, fmt.Errorf("%w: %q", ErrMissingGroup, name)
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return GroupValue{}, fmt.Errorf("%w: %q is empty", ErrMalformedGroup, name)
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return GroupValue{}, fmt.Errorf("%w: %q: %v", ErrMalformedGroup, name, err)
		}
		return GroupValue{Kind: GroupObject, Object: obj}, nil
	case '[':
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return GroupValue{}, fmt.Errorf("%w: %q: %v", ErrMalformedGroup, name, err)
		}
		return GroupValue{Kind: GroupList, List: list}, nil
	default:
		return GroupValue{}, fmt.Errorf("%w: %q is not an object or list", ErrMalformedGroup, name)
	}
}

// Source returns the object fields are read from: the group itself, or the
// first element of a list group.
func (g GroupValue) Source() (map[string]json.RawMessage, error) {
	switch g.Kind {
	case GroupObject:
		return g.Object, nil
	case GroupList:
		if len(g.List) == 0 || g.List[0] == nil {
			return nil, fmt.Errorf("%w: empty list", ErrMalformedGroup)
		}
		return g.List[0], nil
	default:
		return nil, ErrMalformedGroup
	}
}
