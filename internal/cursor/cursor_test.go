package cursor

import (
	"errors"
	"reflect"
	"testing"

	"storydoc/internal/parser"
	"storydoc/internal/story"
)

func parse(t *testing.T, src string) *story.Story {
	t.Helper()
	st, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return st
}

const minimalStory = `
chapter 1 { name: "One" }
group 1 {
	chapter: 1, name: "G",
	nodes: { start: 1, end: 1, points: {} }
}
node 1 {
	title: "N",
	timeline: {
		dialogue 1 { A: "hi"  B: "hey" }
	}
}
`

func TestMinimalDialogue(t *testing.T) {
	c := New(parse(t, minimalStory))
	c.Start(1, 1, 1)

	res, ok := c.Step().(Dialogue)
	if !ok {
		t.Fatalf("got %T", res)
	}
	want := Dialogue{Label: 1, Lines: []story.DialogueLine{
		{Speaker: "A", Text: "hi"},
		{Speaker: "B", Text: "hey"},
	}}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("got %+v", res)
	}

	end, ok := c.Step().(End)
	if !ok || end.Reason != ReasonTimelineComplete {
		t.Fatalf("got %+v", end)
	}
}

func TestCodeActionPassthrough(t *testing.T) {
	src := `
	chapter 1 { name: "One" }
	group 1 { chapter: 1, nodes: { start: 1, end: 1, points: {} } }
	node 1 { timeline: { action 1 { type: "code" <! x=1; !> } } }
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	res, ok := c.Step().(Action)
	if !ok {
		t.Fatalf("got %T", res)
	}
	if res.Kind != story.ActionCode || res.Code != " x=1; " {
		t.Fatalf("got %+v (surrounding whitespace must be preserved)", res)
	}
	if end := c.Step().(End); end.Reason != ReasonTimelineComplete {
		t.Fatalf("got %+v", end)
	}
}

const choiceStory = `
chapter 1 { name: "One" }
group 1 {
	chapter: 1,
	nodes: { start: 1, end: 2, points: { 1: [2] } }
}
node 1 {
	timeline: {
		dialogue 1 { A: "pick" }
		action 2 {
			type: "choice"
			choices: [
				{ text: "Go" choice: { action 3 { type: "event" goto: @node(2) } } },
			]
		}
	}
}
node 2 {
	timeline: { dialogue 1 { A: "done" } }
}
`

func TestChoiceThenGoto(t *testing.T) {
	c := New(parse(t, choiceStory))
	c.Start(1, 1, 1)

	if _, ok := c.Step().(Dialogue); !ok {
		t.Fatalf("expected dialogue first")
	}

	choice, ok := c.Step().(Choice)
	if !ok {
		t.Fatalf("got %T", choice)
	}
	if choice.Label != 2 || !reflect.DeepEqual(choice.Options, []Option{{Index: 0, Text: "Go"}}) {
		t.Fatalf("got %+v", choice)
	}

	if err := c.SelectChoice(0); err != nil {
		t.Fatalf("select: %v", err)
	}

	tr, ok := c.Step().(Transition)
	if !ok || tr.Kind != TransitionNode || tr.Target != 2 {
		t.Fatalf("got %+v", tr)
	}

	pos := c.Position()
	if pos.Node == nil || *pos.Node != 2 || pos.TimelineIndex != 0 {
		t.Fatalf("position after transition: %+v", pos)
	}

	d, ok := c.Step().(Dialogue)
	if !ok || d.Lines[0].Text != "done" {
		t.Fatalf("got %+v", d)
	}
	if end := c.Step().(End); end.Reason != ReasonTimelineComplete {
		t.Fatalf("got %+v", end)
	}
}

func TestChoiceReEmittedUntilSelected(t *testing.T) {
	c := New(parse(t, choiceStory))
	c.Start(1, 1, 1)
	c.Step() // dialogue

	first, ok := c.Step().(Choice)
	if !ok {
		t.Fatalf("got %T", first)
	}
	second, ok := c.Step().(Choice)
	if !ok || !reflect.DeepEqual(first, second) {
		t.Fatalf("got %+v then %+v", first, second)
	}
}

func TestSelectChoiceErrors(t *testing.T) {
	c := New(parse(t, choiceStory))
	c.Start(1, 1, 1)

	if err := c.SelectChoice(0); !errors.Is(err, ErrNoChoicePending) {
		t.Fatalf("got %v", err)
	}

	c.Step() // dialogue
	c.Step() // choice

	if err := c.SelectChoice(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("got %v", err)
	}
	if err := c.SelectChoice(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("got %v", err)
	}
	if err := c.SelectChoice(0); err != nil {
		t.Fatalf("got %v", err)
	}
	if err := c.SelectChoice(0); !errors.Is(err, ErrAlreadySelected) {
		t.Fatalf("got %v", err)
	}
}

func TestAdjustVariableIncrement(t *testing.T) {
	src := `
	global_vars [ "Money": { type: "float", default: 0.0 } ]
	chapter 1 { name: "One" }
	group 1 { chapter: 1, nodes: { start: 1, end: 1, points: {} } }
	node 1 {
		timeline: {
			action 1 { type: "event" data: { type: "adjust-variable" name: "Money" increment: 5.6 } }
		}
	}
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	ev, ok := c.Step().(Event)
	if !ok {
		t.Fatalf("got %T", ev)
	}
	if ev.Kind != story.EventAdjustVariable {
		t.Fatalf("got %+v", ev)
	}
	adj := ev.Payload.(VariableAdjustment)
	want := VariableAdjustment{
		Variable: "Money",
		Type:     story.VarFloat,
		Op:       OpIncrement,
		Value:    story.FloatValue(5.6),
	}
	if !reflect.DeepEqual(adj, want) {
		t.Fatalf("got %+v", adj)
	}
}

const listStory = `
linked-lists [
	"Profession": { scope: "character", structure: { Value: { type: "int" } } }
]
characters [
	"Saniyah": { linked-list-data: { Profession: { Value: 1 } } },
	"Drifter": {},
]
chapter 1 { name: "One" }
group 1 {
	chapter: 1,
	linked-lists: ["Profession"],
	nodes: { start: 1, end: 1, points: {} }
}
node 1 {
	timeline: {
		action 1 { type: "event" data: { type: "linked-list" reference: "Profession" values: [ "Value": { amount: 4 } ] } }
		action 2 { type: "event" data: { type: "linked-list" reference: "Profession" values: [ "Value": { amount: 4 } ] } }
	}
}
`

func TestLinkedListParameterOverride(t *testing.T) {
	c := New(parse(t, listStory))
	c.Start(1, 1, 1)

	c.AddParameter("Profession", "Value", story.IntValue(10))

	ev, ok := c.Step().(Event)
	if !ok || ev.Kind != story.EventLinkedList {
		t.Fatalf("got %+v", ev)
	}
	change := ev.Payload.(ListChange)
	want := ListChange{
		List:          "Profession",
		Scope:         story.ScopeCharacter,
		Modifications: []ListModification{{Field: "Value", Op: story.ModAmount, Value: story.IntValue(10)}},
		Characters:    []string{"Saniyah"},
	}
	if !reflect.DeepEqual(change, want) {
		t.Fatalf("got %+v", change)
	}

	// Parameter stack is transient: the second event sees the parsed value.
	ev2 := c.Step().(Event)
	change2 := ev2.Payload.(ListChange)
	if change2.Modifications[0].Value != story.IntValue(4) {
		t.Fatalf("got %+v", change2.Modifications)
	}
}

func TestLinkedListOutsideGroupLists(t *testing.T) {
	src := `
	linked-lists [ "Inventory": { scope: "character", structure: { Slot: { type: "int" } } } ]
	characters [ "Saniyah": { linked-list-data: { Inventory: { Slot: 1 } } } ]
	chapter 1 { name: "One" }
	group 1 { chapter: 1, nodes: { start: 1, end: 1, points: {} } }
	node 1 {
		timeline: {
			action 1 { type: "event" data: { type: "linked-list" reference: "Inventory" values: [ "Slot": { set: 2 } ] } }
		}
	}
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	change := c.Step().(Event).Payload.(ListChange)
	if len(change.Characters) != 0 {
		t.Fatalf("group does not declare the list; got %+v", change.Characters)
	}
}

func TestNextNodeEvent(t *testing.T) {
	src := `
	chapter 1 { name: "One" }
	group 1 { chapter: 1, nodes: { start: 1, end: 2, points: { 1: [2, 3] } } }
	node 1 { timeline: { action 1 { type: "event" data: { type: "next-node" } } } }
	node 2 { timeline: { dialogue 1 { A: "two" } } }
	node 3 { timeline: { dialogue 1 { A: "three" } } }
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	tr, ok := c.Step().(Transition)
	if !ok || tr.Kind != TransitionNode || tr.Target != 2 {
		t.Fatalf("first successor must win: got %+v", tr)
	}
	if d := c.Step().(Dialogue); d.Lines[0].Text != "two" {
		t.Fatalf("got %+v", d)
	}
}

func TestNextNodeWithoutSuccessors(t *testing.T) {
	src := `
	chapter 1 { name: "One" }
	group 1 { chapter: 1, nodes: { start: 1, end: 1, points: {} } }
	node 1 {
		timeline: {
			action 1 { type: "event" data: { type: "next-node" } }
			dialogue 2 { A: "still here" }
		}
	}
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	end, ok := c.Step().(End)
	if !ok || end.Reason != ReasonNoNextNode {
		t.Fatalf("got %+v", end)
	}

	// The failed event must not wedge the cursor: the index moves past it.
	if c.Position().TimelineIndex != 1 {
		t.Fatalf("index must advance past the failed event: %+v", c.Position())
	}
	d, ok := c.Step().(Dialogue)
	if !ok || d.Lines[0].Text != "still here" {
		t.Fatalf("got %+v", d)
	}
	if end := c.Step().(End); end.Reason != ReasonTimelineComplete {
		t.Fatalf("got %+v", end)
	}
}

func TestExitEvents(t *testing.T) {
	src := `
	chapter 1 { name: "One" }
	group 1 { chapter: 1, nodes: { start: 1, end: 2, points: {} } }
	node 1 { timeline: { action 1 { exit: "node" } } }
	node 2 { timeline: { action 1 { exit: "group" } } }
	`
	st := parse(t, src)

	c := New(st)
	c.Start(1, 1, 1)
	if end := c.Step().(End); end.Reason != ReasonExitNode {
		t.Fatalf("got %+v", end)
	}
	pos := c.Position()
	if pos.Node != nil {
		t.Fatalf("node must be cleared: %+v", pos)
	}
	if pos.Group == nil {
		t.Fatalf("group must survive an exit-node: %+v", pos)
	}

	c.Start(1, 1, 2)
	if end := c.Step().(End); end.Reason != ReasonExitGroup {
		t.Fatalf("got %+v", end)
	}
	pos = c.Position()
	if pos.Node != nil || pos.Group != nil {
		t.Fatalf("node and group must be cleared: %+v", pos)
	}
}

func TestEnterGroup(t *testing.T) {
	src := `
	chapter 1 { name: "One" }
	chapter 2 { name: "Two" }
	group 1 { chapter: 1, nodes: { start: 1, end: 1, points: {} } }
	group 2 { chapter: 2, nodes: { start: 5, end: 5, points: {} } }
	node 1 { timeline: { action 1 { enter: @group(2) } } }
	node 5 { timeline: { dialogue 1 { A: "inside" } } }
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	tr, ok := c.Step().(Transition)
	if !ok || tr.Kind != TransitionGroup || tr.Target != 2 {
		t.Fatalf("got %+v", tr)
	}
	pos := c.Position()
	if pos.Group == nil || *pos.Group != 2 {
		t.Fatalf("got %+v", pos)
	}
	if pos.Chapter == nil || *pos.Chapter != 2 {
		t.Fatalf("chapter must follow the entered group: %+v", pos)
	}
	if pos.Node == nil || *pos.Node != 5 || pos.TimelineIndex != 0 {
		t.Fatalf("start node must be current: %+v", pos)
	}
	if d := c.Step().(Dialogue); d.Lines[0].Text != "inside" {
		t.Fatalf("got %+v", d)
	}
}

func TestProgressStory(t *testing.T) {
	src := `
	chapter 1 { name: "One" }
	chapter 2 { name: "Two" }
	group 1 { chapter: 1, nodes: { start: 1, end: 1, points: {} } }
	node 1 {
		timeline: {
			action 1 { type: "event" data: { type: "progress-story" } }
			action 2 { type: "event" data: { type: "progress-story" chapter: @chapter(2) node: @node(2) } }
		}
	}
	node 2 { timeline: { dialogue 1 { A: "moved" } } }
	`
	c := New(parse(t, src))
	c.Start(1, 1, 1)

	// All targets unset: still an event, and the timeline advances past it.
	ev := c.Step().(Event)
	prog := ev.Payload.(StoryProgress)
	if prog.Chapter != nil || prog.Group != nil || prog.Node != nil {
		t.Fatalf("got %+v", prog)
	}
	if c.Position().TimelineIndex != 1 {
		t.Fatalf("no-op progress must still advance: %+v", c.Position())
	}

	ev = c.Step().(Event)
	prog = ev.Payload.(StoryProgress)
	if prog.Chapter == nil || *prog.Chapter != 2 || prog.Node == nil || *prog.Node != 2 {
		t.Fatalf("got %+v", prog)
	}
	pos := c.Position()
	if *pos.Chapter != 2 || *pos.Node != 2 || pos.TimelineIndex != 0 {
		t.Fatalf("got %+v", pos)
	}
	if d := c.Step().(Dialogue); d.Lines[0].Text != "moved" {
		t.Fatalf("got %+v", d)
	}
}

func TestNoContent(t *testing.T) {
	c := New(parse(t, minimalStory))

	if end := c.Step().(End); end.Reason != ReasonNoContent {
		t.Fatalf("got %+v", end)
	}

	c.Start(1, 1, 99)
	if end := c.Step().(End); end.Reason != ReasonNoContent {
		t.Fatalf("missing node: got %+v", end)
	}
}

func TestReset(t *testing.T) {
	c := New(parse(t, choiceStory))
	c.Start(1, 1, 1)
	c.Step()
	c.AddParameter("Profession", "Value", story.IntValue(1))
	c.Reset()

	pos := c.Position()
	if pos.Chapter != nil || pos.Group != nil || pos.Node != nil || pos.TimelineIndex != 0 {
		t.Fatalf("got %+v", pos)
	}
	if err := c.SelectChoice(0); !errors.Is(err, ErrNoChoicePending) {
		t.Fatalf("got %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	st := parse(t, choiceStory)

	run := func() []Result {
		c := New(st)
		c.Start(1, 1, 1)
		var results []Result
		for i := 0; i < 6; i++ {
			res := c.Step()
			results = append(results, res)
			if _, ok := res.(Choice); ok {
				if err := c.SelectChoice(0); err != nil {
					t.Fatalf("select: %v", err)
				}
			}
		}
		return results
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
}

func TestParameterTransience(t *testing.T) {
	c := New(parse(t, listStory))
	c.Start(1, 1, 1)

	c.AddParameter("Profession", "Value", story.IntValue(10))
	c.Step()
	if len(c.params) != 0 {
		t.Fatalf("parameter stack must be empty after a non-choice step")
	}
}

func TestParametersSurviveChoiceStep(t *testing.T) {
	c := New(parse(t, choiceStory))
	c.Start(1, 1, 1)
	c.Step() // dialogue clears

	c.AddParameter("Profession", "Value", story.IntValue(10))
	if _, ok := c.Step().(Choice); !ok {
		t.Fatalf("expected a choice")
	}
	if len(c.params) != 1 {
		t.Fatalf("parameters must survive a choice step")
	}
}
