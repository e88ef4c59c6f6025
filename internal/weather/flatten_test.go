package weather

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, body string) Response {
	t.Helper()
	resp, err := DecodeResponse(strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestFlattenEndToEnd(t *testing.T) {
	spec := NewFieldSpec([]KeyValue{
		{Key: "main", Value: "temp, humidity"},
		{Key: "other", Value: "cod"},
	})
	resp := mustDecode(t, `{"main": {"temp": 280.1, "humidity": 75}, "cod": 200}`)

	record, err := Flatten(spec, resp, "Berlin")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"city":          "Berlin",
		"main_temp":     280.1,
		"main_humidity": float64(75),
		"cod":           float64(200),
	}, record.Map())
	assert.Equal(t, []string{"city", "main_temp", "main_humidity", "cod"}, record.Columns())
}

func TestFlattenOneEntryPerField(t *testing.T) {
	spec := NewFieldSpec([]KeyValue{
		{Key: "main", Value: "temp, pressure, humidity"},
		{Key: "wind", Value: "speed, deg"},
		{Key: "weather", Value: "main, description"},
		{Key: "other", Value: "name, visibility"},
	})
	resp := mustDecode(t, `{
		"weather": [{"id": 500, "main": "Rain", "description": "light rain"}],
		"main": {"temp": 281.5, "pressure": 1012, "humidity": 81},
		"wind": {"speed": 4.1, "deg": 240},
		"visibility": 10000,
		"name": "London",
		"cod": 200
	}`)

	record, err := Flatten(spec, resp, "London")
	require.NoError(t, err)

	assert.Equal(t, 1+3+2+2+2, record.Len())
	v, ok := record.Get("weather_description")
	require.True(t, ok)
	assert.Equal(t, "light rain", v)
	v, ok = record.Get("visibility")
	require.True(t, ok)
	assert.Equal(t, float64(10000), v)
	_, ok = record.Get("other_name")
	assert.False(t, ok)
}

func TestFlattenListAndObjectGroupsAgree(t *testing.T) {
	spec := NewFieldSpec([]KeyValue{{Key: "weather", Value: "main, description"}})

	fromList, err := Flatten(spec, mustDecode(t, `{"weather": [{"main": "Clouds", "description": "overcast"}, {"main": "Mist"}]}`), "Oslo")
	require.NoError(t, err)
	fromObject, err := Flatten(spec, mustDecode(t, `{"weather": {"main": "Clouds", "description": "overcast"}}`), "Oslo")
	require.NoError(t, err)

	assert.Equal(t, fromObject.Map(), fromList.Map())
	assert.Equal(t, fromObject.Columns(), fromList.Columns())
}

func TestFlattenErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    FieldSpec
		body    string
		wantErr error
	}{
		{
			name:    "missing group",
			spec:    FieldSpec{{Group: "rain", Fields: []string{"1h"}}},
			body:    `{"main": {"temp": 1}}`,
			wantErr: ErrMissingGroup,
		},
		{
			name:    "missing field in group",
			spec:    FieldSpec{{Group: "main", Fields: []string{"temp", "feels_like"}}},
			body:    `{"main": {"temp": 1}}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "missing top-level field",
			spec:    FieldSpec{{Group: OtherGroup, Fields: []string{"timezone"}}},
			body:    `{"cod": 200}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "scalar group",
			spec:    FieldSpec{{Group: "visibility", Fields: []string{"value"}}},
			body:    `{"visibility": 10000}`,
			wantErr: ErrMalformedGroup,
		},
		{
			name:    "empty list group",
			spec:    FieldSpec{{Group: "weather", Fields: []string{"main"}}},
			body:    `{"weather": []}`,
			wantErr: ErrMalformedGroup,
		},
		{
			name:    "list of scalars",
			spec:    FieldSpec{{Group: "weather", Fields: []string{"main"}}},
			body:    `{"weather": [1, 2]}`,
			wantErr: ErrMalformedGroup,
		},
		{
			name:    "empty field name",
			spec:    NewFieldSpec([]KeyValue{{Key: "main", Value: ""}}),
			body:    `{"main": {"temp": 1}}`,
			wantErr: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten(tt.spec, mustDecode(t, tt.body), "X")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFlattenOtherFieldNamedCityOverwritesValue(t *testing.T) {
	spec := FieldSpec{{Group: OtherGroup, Fields: []string{"city"}}}

	record, err := Flatten(spec, mustDecode(t, `{"city": "from-api"}`), "Berlin")
	require.NoError(t, err)

	assert.Equal(t, []string{"city"}, record.Columns())
	v, _ := record.Get("city")
	assert.Equal(t, "from-api", v)
}

func TestResponseNotFound(t *testing.T) {
	assert.True(t, mustDecode(t, `{"cod": "404", "message": "city not found"}`).NotFound())
	assert.False(t, mustDecode(t, `{"cod": 404}`).NotFound())
	assert.False(t, mustDecode(t, `{"cod": 200}`).NotFound())
	assert.False(t, mustDecode(t, `{"cod": "401"}`).NotFound())
	assert.False(t, mustDecode(t, `{}`).NotFound())
}

func TestDecodeResponseRejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[]`, `null`, `"x"`, `not json`} {
		_, err := DecodeResponse(strings.NewReader(body))
		assert.ErrorIs(t, err, ErrMalformedResponse, body)
	}
}

func TestResponseGroupKind(t *testing.T) {
	resp := mustDecode(t, `{"main": {"temp": 1}, "weather": [{"main": "Rain"}]}`)

	g, err := resp.Group("main")
	require.NoError(t, err)
	assert.Equal(t, GroupObject, g.Kind)

	g, err = resp.Group("weather")
	require.NoError(t, err)
	assert.Equal(t, GroupList, g.Kind)
	assert.Len(t, g.List, 1)
}
