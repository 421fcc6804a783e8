package datamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cexll/ideas-portal/internal/a2ui"
)

func TestScope(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		path  string
		want  string
	}{
		{"root relative", Root(), "title", "/title"},
		{"root absolute", Root(), "/issue/title", "/issue/title"},
		{"root empty", Root(), "", "/"},
		{"element relative", At("/ideas").Child("0"), "title", "/ideas/0/title"},
		{"element absolute", At("/ideas").Child("0"), "/search/query", "/search/query"},
		{"duplicate slashes", At("//ideas/"), "./0//title", "/ideas/0/title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Abs(tt.path))
		})
	}

	assert.Equal(t, "/", Root().Path())
	assert.Equal(t, "/a/b", At("a").Child("b").String())
}

func TestResolveString(t *testing.T) {
	m := New()
	m.Apply("/", dashboardEntries())
	m.Apply("/", []a2ui.DataEntry{
		a2ui.BoolEntry("open", false),
		a2ui.NumberEntry("ratio", 0.25),
		a2ui.ListEntry("labels", a2ui.StringEntry("", "idea"), a2ui.StringEntry("", "ui")),
	})
	card := At("/ideas").Child("0")

	tests := []struct {
		name  string
		scope Scope
		value a2ui.BoundValue
		want  string
	}{
		{"literal", Root(), a2ui.LiteralText("Ideation Portal"), "Ideation Portal"},
		{"literal empty", Root(), a2ui.LiteralText(""), ""},
		{"literal number", Root(), a2ui.LiteralNum(2), "2"},
		{"literal bool", Root(), a2ui.LiteralBool(true), "true"},
		{"absolute path", Root(), a2ui.PathTo("/search/query"), "label:idea"},
		{"relative path in element", card, a2ui.PathTo("title"), "Example Idea"},
		{"integral number", card, a2ui.PathTo("reactions"), "5"},
		{"fractional number", Root(), a2ui.PathTo("/ratio"), "0.25"},
		{"bool", Root(), a2ui.PathTo("/open"), "false"},
		{"list", Root(), a2ui.PathTo("/labels"), `["idea","ui"]`},
		{"map", Root(), a2ui.PathTo("/search"), `{"query":"label:idea"}`},
		{"missing", Root(), a2ui.PathTo("/nothing/here"), ""},
		{"missing relative", card, a2ui.PathTo("department"), ""},
		{"empty bound value", Root(), a2ui.BoundValue{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ResolveString(tt.scope, tt.value))
		})
	}
}

func TestResolveValue(t *testing.T) {
	m := New()
	m.Apply("/", dashboardEntries())
	m.Apply("/issue", []a2ui.DataEntry{
		a2ui.MapEntry("labels", a2ui.StringEntry("0", "idea")),
		a2ui.MapEntry("empty"),
	})

	assert.Equal(t, 123.0, m.ResolveValue(At("/ideas/0"), a2ui.PathTo("number")))
	assert.Equal(t, []any{"idea"}, m.ResolveValue(Root(), a2ui.PathTo("/issue/labels")))
	assert.Equal(t, map[string]any{}, m.ResolveValue(Root(), a2ui.PathTo("/issue/empty")))
	assert.Equal(t, "", m.ResolveValue(Root(), a2ui.PathTo("/issue/missing")))
	assert.Equal(t, "+1", m.ResolveValue(Root(), a2ui.LiteralText("+1")))
}

func TestElements(t *testing.T) {
	m := New()
	m.Apply("/", []a2ui.DataEntry{
		a2ui.MapEntry("sparse",
			a2ui.StringEntry("10", "ten"),
			a2ui.StringEntry("2", "two"),
			a2ui.StringEntry("0", "zero"),
		),
		a2ui.MapEntry("object", a2ui.StringEntry("name", "x")),
		a2ui.StringEntry("scalar", "x"),
	})

	scopes := m.Elements(Root(), "/sparse")
	require.Len(t, scopes, 3)
	var got []string
	for _, s := range scopes {
		got = append(got, m.ResolveString(Root(), a2ui.PathTo(s.Path())))
	}
	assert.Equal(t, []string{"zero", "two", "ten"}, got)

	assert.Empty(t, m.Elements(Root(), "/object"))
	assert.Empty(t, m.Elements(Root(), "/scalar"))
	assert.Empty(t, m.Elements(Root(), "/absent"))
}

func TestEntriesFromPayload(t *testing.T) {
	payload := []any{
		map[string]any{"number": 1.0, "title": "First", "labels": []any{"idea"}, "closed": false, "body": nil},
		map[string]any{"number": 2.0, "title": "Second", "labels": []any{}},
	}

	base, entries := UpdateFor("/ideas", payload)
	assert.Equal(t, "/", base)

	m := New()
	m.Apply("/", []a2ui.DataEntry{a2ui.MapEntry("ideas",
		a2ui.MapEntry("0", a2ui.StringEntry("title", "stale")),
		a2ui.MapEntry("1", a2ui.StringEntry("title", "stale")),
		a2ui.MapEntry("2", a2ui.StringEntry("title", "stale")),
	)})
	m.Apply(base, entries)

	require.Len(t, m.Elements(Root(), "/ideas"), 2)
	assert.Equal(t, "First", m.ResolveString(Root(), a2ui.PathTo("/ideas/0/title")))
	assert.Equal(t, "1", m.ResolveString(Root(), a2ui.PathTo("/ideas/0/number")))
	assert.Equal(t, "false", m.ResolveString(Root(), a2ui.PathTo("/ideas/0/closed")))
	assert.Equal(t, "", m.ResolveString(Root(), a2ui.PathTo("/ideas/0/body")))
	assert.Equal(t, []any{"idea"}, m.ResolveValue(Root(), a2ui.PathTo("/ideas/0/labels")))
	assert.Empty(t, m.Elements(Root(), "/ideas/1/labels"))

	base, entries = UpdateFor("/issue", map[string]any{"title": "T", "error": "boom"})
	assert.Equal(t, "/issue", base)
	require.Len(t, entries, 2)
	assert.Equal(t, "error", entries[0].Key)

	scalar := EntriesFromPayload("ok")
	require.Len(t, scalar, 1)
	assert.Equal(t, "value", scalar[0].Key)
}
