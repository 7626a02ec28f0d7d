package story

// Event is the payload of an event action. The variant selects the
// behaviour; the cursor evaluates navigation events itself and passes the
// rest through to the host.
type Event interface {
	isEvent()
	EventKind() EventKind
}

type EventKind string

const (
	EventNextNode       EventKind = "next-node"
	EventExitNode       EventKind = "exit-current-node"
	EventExitGroup      EventKind = "exit-current-group"
	EventAdjustVariable EventKind = "adjust-variable"
	EventAddState       EventKind = "add-state"
	EventRemoveState    EventKind = "remove-state"
	EventProgressStory  EventKind = "progress-story"
	EventLinkedList     EventKind = "linked-list"
)

type NextNodeEvent struct{}

type ExitNodeEvent struct{}

type ExitGroupEvent struct{}

// AdjustVariableEvent asks the host to change a global variable. The change
// is one of three disjoint adjustments.
type AdjustVariableEvent struct {
	Name   string
	Change Adjustment
}

// Adjustment is the requested change: a numeric increment, an assignment,
// or a boolean toggle.
type Adjustment interface {
	isAdjustment()
}

type Increment struct {
	Amount float64
}

type Assign struct {
	Value Value
}

type Toggle struct{}

func (Increment) isAdjustment() {}
func (Assign) isAdjustment()    {}
func (Toggle) isAdjustment()    {}

type AddStateEvent struct {
	State     string
	Character string
}

type RemoveStateEvent struct {
	State     string
	Character string
}

// ProgressStoryEvent navigates to any combination of chapter, group, and
// node. Nil targets are left unchanged.
type ProgressStoryEvent struct {
	Chapter *int
	Group   *int
	Node    *int
}

// LinkedListEvent modifies a named linked list on every character in the
// current group that owns it.
type LinkedListEvent struct {
	List   string
	Values []FieldModifier
}

// ModOp is the operation a field modifier applies.
type ModOp string

const (
	ModAmount  ModOp = "amount"
	ModSet     ModOp = "set"
	ModAppend  ModOp = "append"
	ModReplace ModOp = "replace"
	ModToggle  ModOp = "toggle"
)

func ParseModOp(s string) (ModOp, bool) {
	switch ModOp(s) {
	case ModAmount, ModSet, ModAppend, ModReplace, ModToggle:
		return ModOp(s), true
	}
	return "", false
}

type FieldModifier struct {
	Field string
	Op    ModOp
	Value Value
}

func (NextNodeEvent) isEvent()       {}
func (ExitNodeEvent) isEvent()       {}
func (ExitGroupEvent) isEvent()      {}
func (AdjustVariableEvent) isEvent() {}
func (AddStateEvent) isEvent()       {}
func (RemoveStateEvent) isEvent()    {}
func (ProgressStoryEvent) isEvent()  {}
func (LinkedListEvent) isEvent()     {}

func (NextNodeEvent) EventKind() EventKind       { return EventNextNode }
func (ExitNodeEvent) EventKind() EventKind       { return EventExitNode }
func (ExitGroupEvent) EventKind() EventKind      { return EventExitGroup }
func (AdjustVariableEvent) EventKind() EventKind { return EventAdjustVariable }
func (AddStateEvent) EventKind() EventKind       { return EventAddState }
func (RemoveStateEvent) EventKind() EventKind    { return EventRemoveState }
func (ProgressStoryEvent) EventKind() EventKind  { return EventProgressStory }
func (LinkedListEvent) EventKind() EventKind     { return EventLinkedList }
