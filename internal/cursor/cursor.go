package cursor

import (
	"errors"

	"storydoc/internal/story"
)

var (
	ErrNoChoicePending = errors.New("no choice pending")
	ErrAlreadySelected = errors.New("choice already selected")
	ErrIndexOutOfRange = errors.New("choice index out of range")
)

// Cursor walks a node's timeline one item at a time. It borrows the story
// graph read-only; its position and parameter stack are the only mutable
// state, so one graph may back many cursors as long as each cursor stays on
// a single goroutine.
type Cursor struct {
	st *story.Story

	chapter *int
	group   *int
	node    *int
	idx     int

	pending  *pendingChoice
	selected int
	chosen   bool
	moved    bool

	params map[paramKey]story.Value
}

type pendingChoice struct {
	label  int
	choice story.ChoiceAction
}

type paramKey struct {
	Context string
	Key     string
}

// Position is a snapshot of the cursor's location. Nil fields are unset.
type Position struct {
	Chapter       *int
	Group         *int
	Node          *int
	TimelineIndex int
}

func New(st *story.Story) *Cursor {
	return &Cursor{st: st, params: make(map[paramKey]story.Value)}
}

// Start positions the cursor, resets the timeline index, and clears any
// pending choice and parameters.
func (c *Cursor) Start(chapterID, groupID, nodeID int) {
	c.Reset()
	ch, g, n := chapterID, groupID, nodeID
	c.chapter, c.group, c.node = &ch, &g, &n
}

// Reset clears all position and transient state.
func (c *Cursor) Reset() {
	c.chapter, c.group, c.node = nil, nil, nil
	c.idx = 0
	c.pending = nil
	c.chosen = false
	c.params = make(map[paramKey]story.Value)
}

// Position returns the current location.
func (c *Cursor) Position() Position {
	return Position{
		Chapter:       copyID(c.chapter),
		Group:         copyID(c.group),
		Node:          copyID(c.node),
		TimelineIndex: c.idx,
	}
}

// SelectChoice records which option of the pending choice to execute on the
// next step. It is a caller error to select when no choice is pending, to
// select twice, or to pass an out-of-range index.
func (c *Cursor) SelectChoice(index int) error {
	if c.pending == nil {
		return ErrNoChoicePending
	}
	if c.chosen {
		return ErrAlreadySelected
	}
	if index < 0 || index >= len(c.pending.choice.Options) {
		return ErrIndexOutOfRange
	}
	c.selected = index
	c.chosen = true
	return nil
}

// AddParameter pushes one override onto the transient parameter stack. The
// value substitutes the matching field in the next linked-list event and is
// cleared after the step completes.
func (c *Cursor) AddParameter(context, key string, value story.Value) {
	c.params[paramKey{Context: context, Key: key}] = value
}

// Step advances one timeline item, or consumes a previously-selected choice.
// The parameter stack is cleared after every step that does not return a
// Choice.
func (c *Cursor) Step() Result {
	res := c.step()
	if _, isChoice := res.(Choice); !isChoice {
		c.params = make(map[paramKey]story.Value)
	}
	return res
}

func (c *Cursor) step() Result {
	if c.pending != nil && c.chosen {
		return c.stepChosen()
	}
	if c.pending != nil {
		// Choice still unanswered: re-emit it rather than advancing.
		return c.choiceResult(c.pending)
	}

	node := c.currentNode()
	if node == nil {
		return End{Reason: ReasonNoContent}
	}
	if c.idx >= len(node.Timeline) {
		return End{Reason: ReasonTimelineComplete}
	}

	switch item := node.Timeline[c.idx].(type) {
	case story.Dialogue:
		c.idx++
		return Dialogue{Label: item.Label, Lines: item.Lines}
	case story.Action:
		return c.evalAction(item, true)
	}
	c.idx++
	return End{Reason: ReasonInvalidItem}
}

// stepChosen executes the selected option's sub-actions in order: the first
// Transition or End wins, otherwise the last sub-action result is returned
// and the cursor moves past the choice.
func (c *Cursor) stepChosen() Result {
	opt := c.pending.choice.Options[c.selected]
	c.pending = nil
	c.chosen = false
	c.moved = false

	var last Result
	for _, a := range opt.Actions {
		r := c.evalAction(a, false)
		switch r.(type) {
		case Transition, End:
			return r
		}
		last = r
	}
	if !c.moved {
		// Move past the choice unless a sub-action already repositioned us.
		c.idx++
	}
	if last == nil {
		return c.step()
	}
	return last
}

// evalAction evaluates one action. When advance is set the action is the
// current timeline item and pass-through results move the index forward;
// choice sub-actions leave the index alone (stepChosen advances once, past
// the choice).
func (c *Cursor) evalAction(a story.Action, advance bool) Result {
	switch body := a.Body.(type) {
	case story.CodeAction:
		if advance {
			c.idx++
		}
		return Action{Label: a.Label, Kind: story.ActionCode, Code: body.Code}
	case story.GotoAction:
		c.setNode(body.Node)
		return Transition{Kind: TransitionNode, Target: body.Node}
	case story.ExitAction:
		return c.exit(body.Target)
	case story.EnterAction:
		return c.enter(body.Group)
	case story.ChoiceAction:
		c.pending = &pendingChoice{label: a.Label, choice: body}
		return c.choiceResult(c.pending)
	case story.EventAction:
		return c.evalEvent(a.Label, body.Event, advance)
	}
	if advance {
		c.idx++
	}
	return End{Reason: ReasonInvalidItem}
}

func (c *Cursor) evalEvent(label int, ev story.Event, advance bool) Result {
	switch ev := ev.(type) {
	case story.NextNodeEvent:
		return c.nextNode(advance)
	case story.ExitNodeEvent:
		return c.exit(story.ExitNode)
	case story.ExitGroupEvent:
		return c.exit(story.ExitGroup)
	case story.AdjustVariableEvent:
		if advance {
			c.idx++
		}
		return Event{Label: label, Kind: story.EventAdjustVariable, Payload: c.adjustPayload(ev)}
	case story.AddStateEvent:
		if advance {
			c.idx++
		}
		return Event{Label: label, Kind: story.EventAddState, Payload: StateChange{State: ev.State, Character: ev.Character}}
	case story.RemoveStateEvent:
		if advance {
			c.idx++
		}
		return Event{Label: label, Kind: story.EventRemoveState, Payload: StateChange{State: ev.State, Character: ev.Character}}
	case story.ProgressStoryEvent:
		return c.progress(label, ev, advance)
	case story.LinkedListEvent:
		if advance {
			c.idx++
		}
		return Event{Label: label, Kind: story.EventLinkedList, Payload: c.listChange(ev)}
	}
	if advance {
		c.idx++
	}
	return End{Reason: ReasonInvalidItem}
}

// nextNode follows the first successor in the group's point-map. On failure
// the index still advances past the event so a later step can continue.
func (c *Cursor) nextNode(advance bool) Result {
	g := c.currentGroup()
	if g == nil || c.node == nil {
		if advance {
			c.idx++
		}
		return End{Reason: ReasonNoNextNode}
	}
	succ := g.Nodes.Successors(*c.node)
	if len(succ) == 0 {
		if advance {
			c.idx++
		}
		return End{Reason: ReasonNoNextNode}
	}
	target := succ[0]
	c.setNode(target)
	return Transition{Kind: TransitionNode, Target: target}
}

func (c *Cursor) exit(target story.ExitTarget) Result {
	c.node = nil
	c.idx = 0
	if target == story.ExitGroup {
		c.group = nil
		return End{Reason: ReasonExitGroup}
	}
	return End{Reason: ReasonExitNode}
}

func (c *Cursor) enter(groupID int) Result {
	g := c.st.Group(groupID)
	if g == nil {
		return End{Reason: ReasonNoContent}
	}
	id, ch := g.ID, g.ChapterID
	c.group = &id
	c.chapter = &ch
	c.setNode(g.Nodes.Start)
	return Transition{Kind: TransitionGroup, Target: groupID}
}

// progress applies a progress-story event. All targets are optional; a node
// target resets the timeline index, while an event with no node target still
// advances past itself, including the all-unset no-op form.
func (c *Cursor) progress(label int, ev story.ProgressStoryEvent, advance bool) Result {
	if ev.Chapter != nil {
		ch := *ev.Chapter
		c.chapter = &ch
	}
	if ev.Group != nil {
		g := *ev.Group
		c.group = &g
	}
	if ev.Node != nil {
		c.setNode(*ev.Node)
	} else if advance {
		c.idx++
	}
	return Event{Label: label, Kind: story.EventProgressStory, Payload: StoryProgress{
		Chapter: copyID(ev.Chapter),
		Group:   copyID(ev.Group),
		Node:    copyID(ev.Node),
	}}
}

func (c *Cursor) adjustPayload(ev story.AdjustVariableEvent) VariableAdjustment {
	adj := VariableAdjustment{Variable: ev.Name}
	if v := c.st.GlobalVariable(ev.Name); v != nil {
		adj.Type = v.Type
	}
	switch change := ev.Change.(type) {
	case story.Increment:
		adj.Op = OpIncrement
		adj.Value = story.FloatValue(change.Amount)
	case story.Assign:
		adj.Op = OpSet
		adj.Value = change.Value
	case story.Toggle:
		adj.Op = OpToggle
	}
	return adj
}

// listChange normalizes a linked-list event: parameter-stack overrides are
// substituted per (list, field), and affected characters are those that own
// the list and belong to the current group's declared linked lists.
func (c *Cursor) listChange(ev story.LinkedListEvent) ListChange {
	change := ListChange{List: ev.List}
	if t := c.st.LinkedList(ev.List); t != nil {
		change.Scope = t.Scope
	}
	for _, mod := range ev.Values {
		value := mod.Value
		if override, ok := c.params[paramKey{Context: ev.List, Key: mod.Field}]; ok {
			value = override
		}
		change.Modifications = append(change.Modifications, ListModification{
			Field: mod.Field,
			Op:    mod.Op,
			Value: value,
		})
	}
	if g := c.currentGroup(); g != nil && g.UsesList(ev.List) {
		for i := range c.st.Characters {
			if c.st.Characters[i].OwnsList(ev.List) {
				change.Characters = append(change.Characters, c.st.Characters[i].Name)
			}
		}
	}
	return change
}

func (c *Cursor) choiceResult(p *pendingChoice) Choice {
	res := Choice{Label: p.label}
	for i, opt := range p.choice.Options {
		res.Options = append(res.Options, Option{Index: i, Text: opt.Text})
	}
	return res
}

func (c *Cursor) setNode(id int) {
	n := id
	c.node = &n
	c.idx = 0
	c.moved = true
}

func (c *Cursor) currentNode() *story.Node {
	if c.node == nil {
		return nil
	}
	return c.st.Node(*c.node)
}

func (c *Cursor) currentGroup() *story.Group {
	if c.group == nil {
		return nil
	}
	return c.st.Group(*c.group)
}

func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
