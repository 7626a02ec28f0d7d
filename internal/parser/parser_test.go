package parser

import (
	"reflect"
	"strings"
	"testing"

	"storydoc/internal/story"
)

func mustParse(t *testing.T, src string) *story.Story {
	t.Helper()
	st, err := ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return st
}

func mustFail(t *testing.T, src string) *Error {
	t.Helper()
	st, err := ParseString(src)
	if err == nil {
		t.Fatalf("expected parse error, got graph %+v", st)
	}
	if st != nil {
		t.Fatalf("expected nil graph on error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	return perr
}

func TestParseStates(t *testing.T) {
	t.Run("basic list", func(t *testing.T) {
		st := mustParse(t, `states [ "alive", "dead", "missing" ]`)
		want := []story.State{{Name: "alive"}, {Name: "dead"}, {Name: "missing"}}
		if !reflect.DeepEqual(st.States, want) {
			t.Fatalf("got %+v", st.States)
		}
	})

	t.Run("trailing comma", func(t *testing.T) {
		st := mustParse(t, `states [ "alive", ]`)
		if len(st.States) != 1 {
			t.Fatalf("got %+v", st.States)
		}
	})

	t.Run("duplicate state", func(t *testing.T) {
		perr := mustFail(t, `states [ "alive", "alive" ]`)
		if !strings.Contains(perr.Message, "duplicate state") {
			t.Fatalf("got %q", perr.Message)
		}
	})
}

func TestParseGlobalVars(t *testing.T) {
	t.Run("all four types", func(t *testing.T) {
		st := mustParse(t, `global_vars [
			"Name": { type: "string", default: "Ana" },
			"Money": { type: "int", default: 100 },
			"Alive": { type: "bool", default: true },
			"Karma": { type: "float", default: -1.5 },
		]`)
		if len(st.Variables) != 4 {
			t.Fatalf("got %d variables", len(st.Variables))
		}
		if v := st.GlobalVariable("Money"); v.Type != story.VarInt || v.Default != story.IntValue(100) {
			t.Fatalf("got %+v", v)
		}
		if v := st.GlobalVariable("Karma"); v.Default != story.FloatValue(-1.5) {
			t.Fatalf("got %+v", v)
		}
	})

	t.Run("int default promotes to float", func(t *testing.T) {
		st := mustParse(t, `global_vars [ "Karma": { type: "float", default: 3 } ]`)
		if v := st.GlobalVariable("Karma"); v.Default != story.FloatValue(3) {
			t.Fatalf("got %+v", v.Default)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		perr := mustFail(t, `global_vars [ "Money": { type: "int", default: "lots" } ]`)
		if !strings.Contains(perr.Message, "does not match declared type") {
			t.Fatalf("got %q", perr.Message)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		perr := mustFail(t, `global_vars [ "X": { type: "decimal", default: 1 } ]`)
		if !strings.Contains(perr.Message, "invalid variable type") {
			t.Fatalf("got %q", perr.Message)
		}
	})

	t.Run("missing default", func(t *testing.T) {
		perr := mustFail(t, `global_vars [ "X": { type: "int" } ]`)
		if !strings.Contains(perr.Message, "missing a default") {
			t.Fatalf("got %q", perr.Message)
		}
	})
}

func TestParseLinkedLists(t *testing.T) {
	t.Run("structure fields", func(t *testing.T) {
		st := mustParse(t, `linked-lists [
			"Profession": {
				scope: "character",
				structure: {
					Title: { type: "string" },
					Value: { type: "int" },
				}
			}
		]`)
		list := st.LinkedList("Profession")
		if list == nil {
			t.Fatalf("list not found")
		}
		if list.Scope != story.ScopeCharacter {
			t.Fatalf("scope: got %q", list.Scope)
		}
		want := []story.ListField{
			{Name: "Title", Type: story.VarString},
			{Name: "Value", Type: story.VarInt},
		}
		if !reflect.DeepEqual(list.Structure, want) {
			t.Fatalf("got %+v", list.Structure)
		}
	})

	t.Run("empty structure", func(t *testing.T) {
		perr := mustFail(t, `linked-lists [ "P": { scope: "global", structure: {} } ]`)
		if !strings.Contains(perr.Message, "empty structure") {
			t.Fatalf("got %q", perr.Message)
		}
	})

	t.Run("invalid scope", func(t *testing.T) {
		perr := mustFail(t, `linked-lists [ "P": { scope: "world", structure: { F: { type: "int" } } } ]`)
		if !strings.Contains(perr.Message, "invalid linked-list scope") {
			t.Fatalf("got %q", perr.Message)
		}
	})
}

func TestParseCharacters(t *testing.T) {
	src := `characters [
		"Saniyah": {
			biography: "Grew up in the port quarter.",
			description: "Short, sharp-eyed.",
			linked-list-data: {
				Profession: { Title: "Captain", Value: 4 },
				Inventory: [
					"belt": { Slot: 1 },
					"pack": { Slot: 2 },
				]
			}
		}
	]`

	st := mustParse(t, src)
	ch := st.Character("Saniyah")
	if ch == nil {
		t.Fatalf("character not found")
	}
	if ch.Biography == "" || ch.Description == "" {
		t.Fatalf("got %+v", ch)
	}
	if len(ch.ListData) != 2 {
		t.Fatalf("got %d list data entries", len(ch.ListData))
	}

	prof := ch.ListData[0]
	if prof.List != "Profession" || prof.Single == nil || len(prof.Entries) != 0 {
		t.Fatalf("got %+v", prof)
	}
	wantRec := story.Record{
		{Name: "Title", Value: story.StringValue("Captain")},
		{Name: "Value", Value: story.IntValue(4)},
	}
	if !reflect.DeepEqual(prof.Single, wantRec) {
		t.Fatalf("got %+v", prof.Single)
	}

	inv := ch.ListData[1]
	if inv.Single != nil || len(inv.Entries) != 2 {
		t.Fatalf("got %+v", inv)
	}
	if inv.Entries[0].Key != "belt" || inv.Entries[1].Key != "pack" {
		t.Fatalf("got %+v", inv.Entries)
	}

	if !ch.OwnsList("Profession") || ch.OwnsList("Missing") {
		t.Fatalf("OwnsList misbehaves")
	}
}

func TestParseTags(t *testing.T) {
	t.Run("single and key-value", func(t *testing.T) {
		st := mustParse(t, `tags [
			"Indoor": { type: "single", color: "#aabbcc" },
			"Location": { type: "key-value", color: "#112233", keys: ["x", "y"] },
		]`)
		if tag := st.TagDefinition("Indoor"); tag.Kind != story.TagSingle || len(tag.Keys) != 0 {
			t.Fatalf("got %+v", tag)
		}
		tag := st.TagDefinition("Location")
		if tag.Kind != story.TagKeyValue || !reflect.DeepEqual(tag.Keys, []string{"x", "y"}) {
			t.Fatalf("got %+v", tag)
		}
		if !tag.HasKey("x") || tag.HasKey("z") {
			t.Fatalf("HasKey misbehaves")
		}
	})

	t.Run("single with keys", func(t *testing.T) {
		perr := mustFail(t, `tags [ "T": { type: "single", keys: ["k"] } ]`)
		if !strings.Contains(perr.Message, "must not declare keys") {
			t.Fatalf("got %q", perr.Message)
		}
	})

	t.Run("key-value without keys", func(t *testing.T) {
		perr := mustFail(t, `tags [ "T": { type: "key-value", color: "#fff" } ]`)
		if !strings.Contains(perr.Message, "must declare keys") {
			t.Fatalf("got %q", perr.Message)
		}
	})
}

func TestParseChapterGroupNode(t *testing.T) {
	src := `
	chapter 1 { name: "Arrival" }

	group 10 {
		chapter: 1,
		name: "Docks",
		content: "The western docks.",
		parent-group: 2,
		tags: [ "Indoor", "Location": { key: "x", value: "14" } ],
		linked-lists: ["Profession"],
		nodes: {
			start: 1,
			end: 3,
			points: { 1: [2], 2: [3, 1] }
		}
	}

	node 1 {
		title: "Gangway",
		content: "A narrow gangway.",
		timeline: {
			dialogue 1 { Saniyah: "Watch your step." }
		}
	}
	`

	st := mustParse(t, src)

	if ch := st.Chapter(1); ch == nil || ch.Name != "Arrival" {
		t.Fatalf("chapter: got %+v", ch)
	}

	g := st.Group(10)
	if g == nil {
		t.Fatalf("group not found")
	}
	if g.ChapterID != 1 || g.Name != "Docks" {
		t.Fatalf("got %+v", g)
	}
	if g.ParentGroup == nil || *g.ParentGroup != 2 {
		t.Fatalf("parent group: got %v", g.ParentGroup)
	}
	wantTags := []story.GroupTag{
		{Name: "Indoor"},
		{Name: "Location", SelectedKey: "x", Value: "14"},
	}
	if !reflect.DeepEqual(g.Tags, wantTags) {
		t.Fatalf("tags: got %+v", g.Tags)
	}
	if !g.UsesList("Profession") {
		t.Fatalf("linked-lists: got %+v", g.Lists)
	}
	if g.Nodes.Start != 1 || g.Nodes.End != 3 {
		t.Fatalf("node graph: got %+v", g.Nodes)
	}
	if succ := g.Nodes.Successors(2); !reflect.DeepEqual(succ, []int{3, 1}) {
		t.Fatalf("successors: got %v", succ)
	}
	if succ := g.Nodes.Successors(9); succ != nil {
		t.Fatalf("successors of unknown node: got %v", succ)
	}

	n := st.Node(1)
	if n == nil || n.Title != "Gangway" || len(n.Timeline) != 1 {
		t.Fatalf("node: got %+v", n)
	}
	d, ok := n.Timeline[0].(story.Dialogue)
	if !ok || d.Label != 1 || d.Lines[0].Speaker != "Saniyah" {
		t.Fatalf("dialogue: got %+v", n.Timeline[0])
	}
}

func TestParseUniqueness(t *testing.T) {
	cases := map[string]string{
		"chapter": "chapter 1 { name: \"a\" } chapter 1 { name: \"b\" }",
		"group":   "group 1 { chapter: 1 } group 1 { chapter: 1 }",
		"node":    "node 1 { title: \"a\" } node 1 { title: \"b\" }",
		"tag":     "tags [ \"T\": { type: \"single\" }, \"T\": { type: \"single\" } ]",
		"list":    "linked-lists [ \"L\": { scope: \"global\", structure: { F: { type: \"int\" } } }, \"L\": { scope: \"global\", structure: { F: { type: \"int\" } } } ]",
		"char":    "characters [ \"C\": {}, \"C\": {} ]",
		"var":     "global_vars [ \"V\": { type: \"int\", default: 0 }, \"V\": { type: \"int\", default: 1 } ]",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			perr := mustFail(t, src)
			if !strings.Contains(perr.Message, "duplicate") {
				t.Fatalf("got %q", perr.Message)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("message format", func(t *testing.T) {
		perr := mustFail(t, "chapter 1 { name \"X\" }")
		got := perr.Error()
		if !strings.HasPrefix(got, "Error at line 1, column ") {
			t.Fatalf("got %q", got)
		}
		if !strings.Contains(got, "(got '\"X\"')") {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("first error wins", func(t *testing.T) {
		perr := mustFail(t, "states [ 1 ]\nchapter x { }")
		if perr.Line != 1 {
			t.Fatalf("got line %d", perr.Line)
		}
		if !strings.Contains(perr.Message, "expected state name") {
			t.Fatalf("got %q", perr.Message)
		}
	})

	t.Run("lexical error is fatal", func(t *testing.T) {
		perr := mustFail(t, "states [ \"a\" ] %")
		if !strings.Contains(perr.Message, "unexpected character") {
			t.Fatalf("got %q", perr.Message)
		}
	})

	t.Run("unterminated code block references opening line", func(t *testing.T) {
		src := "node 1 {\n  timeline: {\n    action 1 { type: \"code\" <! foo\n}"
		perr := mustFail(t, src)
		if !strings.Contains(perr.Message, "unterminated code block") {
			t.Fatalf("got %q", perr.Message)
		}
		if perr.Line != 3 {
			t.Fatalf("got line %d, want 3", perr.Line)
		}
	})
}

func TestParseStrayTokensTolerated(t *testing.T) {
	st := mustParse(t, ", } chapter 1 { name: \"A\" } ]")
	if st.Chapter(1) == nil {
		t.Fatalf("chapter not parsed")
	}
}

func TestParseSectionsInAnyOrder(t *testing.T) {
	st := mustParse(t, `
		node 5 { title: "late" }
		states [ "x" ]
		chapter 2 { name: "c" }
	`)
	if st.Node(5) == nil || st.Chapter(2) == nil || !st.HasState("x") {
		t.Fatalf("got %+v", st)
	}
}
