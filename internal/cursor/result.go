package cursor

import "storydoc/internal/story"

// Result is one outcome of a cursor step. Every variant is a self-contained
// snapshot: identifier copies only, no pointers back into the story graph.
type Result interface {
	isResult()
}

// Dialogue is a spoken exchange: ordered speaker/text pairs.
type Dialogue struct {
	Label int
	Lines []story.DialogueLine
}

// Action is an opaque action passed through to the host, currently only
// code blocks. The host decides what to do with the text.
type Action struct {
	Label int
	Kind  story.ActionKind
	Code  string
}

// Event is a host-visible event with a normalized payload.
type Event struct {
	Label   int
	Kind    story.EventKind
	Payload EventPayload
}

// Choice suspends the cursor until the host selects an option.
type Choice struct {
	Label   int
	Options []Option
}

type Option struct {
	Index int
	Text  string
}

// Transition reports that the cursor moved to another node or group.
type Transition struct {
	Kind   TransitionKind
	Target int
}

type TransitionKind string

const (
	TransitionNode  TransitionKind = "node"
	TransitionGroup TransitionKind = "group"
)

// End reports that stepping cannot continue from the current position.
type End struct {
	Reason EndReason
}

type EndReason string

const (
	ReasonTimelineComplete EndReason = "timeline-complete"
	ReasonExitNode         EndReason = "exit-node"
	ReasonExitGroup        EndReason = "exit-group"
	ReasonNoNextNode       EndReason = "no-next-node"
	ReasonInvalidItem      EndReason = "invalid-item"
	ReasonNoContent        EndReason = "no-content"
)

func (Dialogue) isResult()   {}
func (Action) isResult()     {}
func (Event) isResult()      {}
func (Choice) isResult()     {}
func (Transition) isResult() {}
func (End) isResult()        {}

// EventPayload is the normalized payload of an Event result.
type EventPayload interface {
	isEventPayload()
}

// AdjustOp is the operation a variable adjustment asks the host to apply.
type AdjustOp string

const (
	OpIncrement AdjustOp = "increment"
	OpSet       AdjustOp = "set"
	OpToggle    AdjustOp = "toggle"
)

// VariableAdjustment asks the host to change a global variable. Type is the
// declared type of the variable, or empty when the variable is undeclared.
// Value is nil for toggles.
type VariableAdjustment struct {
	Variable string
	Type     story.VarType
	Op       AdjustOp
	Value    story.Value
}

// StateChange asks the host to add or remove a state on a character; the
// direction is the Event's Kind.
type StateChange struct {
	State     string
	Character string
}

// StoryProgress reports the navigation targets of a progress-story event.
// Nil targets were not supplied and remain unchanged.
type StoryProgress struct {
	Chapter *int
	Group   *int
	Node    *int
}

// ListChange asks the host to modify a linked list on every affected
// character. Characters lists the names that own the list and belong to the
// current group's declared linked lists.
type ListChange struct {
	List          string
	Scope         story.ListScope
	Modifications []ListModification
	Characters    []string
}

type ListModification struct {
	Field string
	Op    story.ModOp
	Value story.Value
}

func (VariableAdjustment) isEventPayload() {}
func (StateChange) isEventPayload()        {}
func (StoryProgress) isEventPayload()      {}
func (ListChange) isEventPayload()         {}
