package placeholder_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/utils/placeholder"
)

func testContext(t *testing.T) map[string]any {
	t.Helper()
	var ctx map[string]any
	gt.NoError(t, placeholder.Decode([]byte(`{
		"deviceCount": 42,
		"rate": 2.5,
		"name": "Acme",
		"enabled": true,
		"missingValue": null,
		"calculated": {"coverageAdjective": "excellent", "nested": {"depth": 3}},
		"byType": {"Server": 4},
		"vendors": ["Sophos", "Datto"]
	}`), &ctx)).Required()
	return ctx
}

func TestReplaceString(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "integer", input: "{deviceCount} devices", want: "42 devices"},
		{name: "float", input: "avg {rate}h", want: "avg 2.5h"},
		{name: "string", input: "Client {name}", want: "Client Acme"},
		{name: "boolean", input: "{enabled}", want: "true"},
		{name: "null value is present", input: "{missingValue}", want: "null"},
		{name: "nested path", input: "{calculated.coverageAdjective}", want: "excellent"},
		{name: "deep nested path", input: "{calculated.nested.depth}", want: "3"},
		{name: "object is rendered as JSON", input: "{byType}", want: `{"Server":4}`},
		{name: "array is rendered as JSON", input: "{vendors}", want: `["Sophos","Datto"]`},
		{name: "array index", input: "{vendors.1}", want: "Datto"},
		{name: "absent key stays verbatim", input: "{unknown}", want: "{unknown}"},
		{name: "absent nested key stays verbatim", input: "{calculated.unknown}", want: "{calculated.unknown}"},
		{name: "traversal through scalar stays verbatim", input: "{name.length}", want: "{name.length}"},
		{name: "traversal through null stays verbatim", input: "{missingValue.x}", want: "{missingValue.x}"},
		{name: "index out of range stays verbatim", input: "{vendors.5}", want: "{vendors.5}"},
		{name: "empty braces untouched", input: "{}", want: "{}"},
		{name: "multiple tokens", input: "{name}: {deviceCount}/{unknown}", want: "Acme: 42/{unknown}"},
		{name: "no tokens", input: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, placeholder.ReplaceString(tt.input, ctx)).Equal(tt.want)
		})
	}
}

func TestResolveWalksStructure(t *testing.T) {
	ctx := testContext(t)

	var doc any
	gt.NoError(t, placeholder.Decode([]byte(`{
		"title": "{name} QBR",
		"score": 75,
		"flag": false,
		"nothing": null,
		"categories": [
			{"name": "Endpoints", "items": [{"status": "{calculated.coverageAdjective}"}]},
			"{deviceCount}"
		]
	}`), &doc)).Required()

	got := placeholder.Resolve(doc, ctx)

	var want any
	gt.NoError(t, placeholder.Decode([]byte(`{
		"title": "Acme QBR",
		"score": 75,
		"flag": false,
		"nothing": null,
		"categories": [
			{"name": "Endpoints", "items": [{"status": "excellent"}]},
			"42"
		]
	}`), &want)).Required()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	ctx := testContext(t)
	doc := map[string]any{
		"list": []any{"{name}"},
		"obj":  map[string]any{"k": "{deviceCount}"},
	}

	_ = placeholder.Resolve(doc, ctx)

	gt.Value(t, doc["list"].([]any)[0]).Equal("{name}")
	gt.Value(t, doc["obj"].(map[string]any)["k"]).Equal("{deviceCount}")
}

func TestResolveWithoutContextKeepsEveryToken(t *testing.T) {
	var doc any
	gt.NoError(t, placeholder.Decode([]byte(`["{a}", {"b": "{c.d}"}, 1]`), &doc)).Required()

	got := placeholder.Resolve(doc, map[string]any{})
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("Resolve() with empty context changed the document:\n%s", diff)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "int", input: 7, want: "7"},
		{name: "whole float", input: float64(80), want: "80"},
		{name: "fraction", input: 2.1, want: "2.1"},
		{name: "large fraction", input: 1234567.5, want: "1234567.5"},
		{name: "large fraction beyond int32", input: 123456789012.5, want: "123456789012.5"},
		{name: "small fraction", input: 0.00001, want: "0.00001"},
		{name: "smallest plain decimal", input: 0.000001, want: "0.000001"},
		{name: "below plain range", input: 0.0000005, want: "5e-7"},
		{name: "below plain range whole mantissa", input: 1e-7, want: "1e-7"},
		{name: "negative small fraction", input: -0.00025, want: "-0.00025"},
		{name: "whole float below 1e21", input: 1e20, want: "100000000000000000000"},
		{name: "whole float at 1e21", input: 1e21, want: "1e+21"},
		{name: "fraction at 1e21", input: 1.5e21, want: "1.5e+21"},
		{name: "negative zero", input: math.Copysign(0, -1), want: "0"},
		{name: "json number large fraction", input: json.Number("1234567.5"), want: "1234567.5"},
		{name: "json number exponent", input: json.Number("2.5e-3"), want: "0.0025"},
		{name: "json number int", input: json.Number("12"), want: "12"},
		{name: "json number float", input: json.Number("0.25"), want: "0.25"},
		{name: "nil", input: nil, want: "null"},
		{name: "string slice", input: []string{"a"}, want: `["a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, placeholder.Stringify(tt.input)).Equal(tt.want)
		})
	}
}

func TestNewContext(t *testing.T) {
	type metrics struct {
		Total int     `json:"total"`
		Rate  float64 `json:"rate"`
	}
	ctx, err := placeholder.NewContext(struct {
		Metrics metrics `json:"metrics"`
	}{Metrics: metrics{Total: 10, Rate: 0.5}})
	gt.NoError(t, err).Required()

	ctx.Set("extra", "x")
	gt.Value(t, placeholder.ReplaceString("{metrics.total}/{metrics.rate}/{extra}", ctx)).Equal("10/0.5/x")
}

func TestNewContextRejectsNonObject(t *testing.T) {
	_, err := placeholder.NewContext([]int{1, 2})
	gt.Error(t, err)
}
