package validate

import (
	"fmt"

	"storydoc/internal/story"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnresolvedNode      = "unresolved_node_ref"
	codeUnresolvedGroup     = "unresolved_group_ref"
	codeUnresolvedChapter   = "unresolved_chapter_ref"
	codeUnresolvedTag       = "unresolved_tag"
	codeUnresolvedTagKey    = "unresolved_tag_key"
	codeUnresolvedList      = "unresolved_linked_list"
	codeUnresolvedCharacter = "unresolved_character"
	codeUnresolvedVariable  = "unresolved_variable"
	codeUnresolvedState     = "unresolved_state"
	codeUnknownListField    = "unknown_list_field"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Entity   string
}

type Report struct {
	Issues []Issue
}

// Errors returns only the error-severity issues.
func (r *Report) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// ValidateReferences checks that every @node, @group, and @chapter reference
// in event payloads, choice sub-actions, and group node-graphs resolves.
// It reports pass/fail plus the first unresolved reference. Validation is
// advisory: nothing is removed from the graph.
func ValidateReferences(st *story.Story) (bool, *Issue) {
	report := Run(st)
	errs := report.Errors()
	if len(errs) == 0 {
		return true, nil
	}
	first := errs[0]
	return false, &first
}

// Run sweeps the whole graph. Unresolvable @references and node-graph edges
// are errors; dangling names (tags, lists, characters, states) are warnings.
func Run(st *story.Story) *Report {
	v := &visitor{st: st}

	for i := range st.Groups {
		v.group(&st.Groups[i])
	}
	for i := range st.Nodes {
		n := &st.Nodes[i]
		entity := fmt.Sprintf("node %d", n.ID)
		for _, item := range n.Timeline {
			if a, ok := item.(story.Action); ok {
				v.action(entity, a)
			}
		}
	}
	for i := range st.Characters {
		v.character(&st.Characters[i])
	}

	return &Report{Issues: v.issues}
}

type visitor struct {
	st     *story.Story
	issues []Issue
}

func (v *visitor) add(severity Severity, code, entity, format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Entity:   entity,
	})
}

func (v *visitor) group(g *story.Group) {
	entity := fmt.Sprintf("group %d", g.ID)

	if v.st.Chapter(g.ChapterID) == nil {
		v.add(SeverityWarn, codeUnresolvedChapter, entity, "chapter %d does not exist", g.ChapterID)
	}
	if g.ParentGroup != nil && v.st.Group(*g.ParentGroup) == nil {
		v.add(SeverityWarn, codeUnresolvedGroup, entity, "parent group %d does not exist", *g.ParentGroup)
	}

	if v.st.Node(g.Nodes.Start) == nil {
		v.add(SeverityError, codeUnresolvedNode, entity, "start node %d does not exist", g.Nodes.Start)
	}
	if v.st.Node(g.Nodes.End) == nil {
		v.add(SeverityError, codeUnresolvedNode, entity, "end node %d does not exist", g.Nodes.End)
	}
	for _, point := range g.Nodes.Points {
		if v.st.Node(point.From) == nil {
			v.add(SeverityError, codeUnresolvedNode, entity, "point source node %d does not exist", point.From)
		}
		for _, to := range point.To {
			if v.st.Node(to) == nil {
				v.add(SeverityError, codeUnresolvedNode, entity, "point target node %d does not exist", to)
			}
		}
	}

	for _, tag := range g.Tags {
		def := v.st.TagDefinition(tag.Name)
		if def == nil {
			v.add(SeverityWarn, codeUnresolvedTag, entity, "tag %q is not defined", tag.Name)
			continue
		}
		if tag.SelectedKey != "" && !def.HasKey(tag.SelectedKey) {
			v.add(SeverityWarn, codeUnresolvedTagKey, entity, "tag %q has no key %q", tag.Name, tag.SelectedKey)
		}
	}
	for _, list := range g.Lists {
		if v.st.LinkedList(list) == nil {
			v.add(SeverityWarn, codeUnresolvedList, entity, "linked-list %q is not defined", list)
		}
	}
}

func (v *visitor) action(entity string, a story.Action) {
	switch body := a.Body.(type) {
	case story.GotoAction:
		if v.st.Node(body.Node) == nil {
			v.add(SeverityError, codeUnresolvedNode, entity, "goto target node %d does not exist", body.Node)
		}
	case story.EnterAction:
		if v.st.Group(body.Group) == nil {
			v.add(SeverityError, codeUnresolvedGroup, entity, "enter target group %d does not exist", body.Group)
		}
	case story.ChoiceAction:
		for _, opt := range body.Options {
			for _, sub := range opt.Actions {
				v.action(entity, sub)
			}
		}
	case story.EventAction:
		v.event(entity, body.Event)
	}
}

func (v *visitor) event(entity string, ev story.Event) {
	switch ev := ev.(type) {
	case story.ProgressStoryEvent:
		if ev.Chapter != nil && v.st.Chapter(*ev.Chapter) == nil {
			v.add(SeverityError, codeUnresolvedChapter, entity, "progress-story chapter %d does not exist", *ev.Chapter)
		}
		if ev.Group != nil && v.st.Group(*ev.Group) == nil {
			v.add(SeverityError, codeUnresolvedGroup, entity, "progress-story group %d does not exist", *ev.Group)
		}
		if ev.Node != nil && v.st.Node(*ev.Node) == nil {
			v.add(SeverityError, codeUnresolvedNode, entity, "progress-story node %d does not exist", *ev.Node)
		}
	case story.AddStateEvent:
		v.stateRef(entity, ev.State, ev.Character)
	case story.RemoveStateEvent:
		v.stateRef(entity, ev.State, ev.Character)
	case story.AdjustVariableEvent:
		if v.st.GlobalVariable(ev.Name) == nil {
			v.add(SeverityWarn, codeUnresolvedVariable, entity, "variable %q is not declared", ev.Name)
		}
	case story.LinkedListEvent:
		t := v.st.LinkedList(ev.List)
		if t == nil {
			v.add(SeverityWarn, codeUnresolvedList, entity, "linked-list %q is not defined", ev.List)
			return
		}
		for _, mod := range ev.Values {
			if t.Field(mod.Field) == nil {
				v.add(SeverityWarn, codeUnknownListField, entity, "linked-list %q has no field %q", ev.List, mod.Field)
			}
		}
	}
}

func (v *visitor) stateRef(entity, state, character string) {
	if !v.st.HasState(state) {
		v.add(SeverityWarn, codeUnresolvedState, entity, "state %q is not declared", state)
	}
	if v.st.Character(character) == nil {
		v.add(SeverityWarn, codeUnresolvedCharacter, entity, "character %q is not defined", character)
	}
}

func (v *visitor) character(c *story.Character) {
	entity := fmt.Sprintf("character %q", c.Name)
	for _, data := range c.ListData {
		t := v.st.LinkedList(data.List)
		if t == nil {
			v.add(SeverityWarn, codeUnresolvedList, entity, "linked-list %q is not defined", data.List)
			continue
		}
		check := func(rec story.Record) {
			for _, field := range rec {
				if t.Field(field.Name) == nil {
					v.add(SeverityWarn, codeUnknownListField, entity, "linked-list %q has no field %q", data.List, field.Name)
				}
			}
		}
		if data.Single != nil {
			check(data.Single)
		}
		for _, e := range data.Entries {
			check(e.Record)
		}
	}
}
