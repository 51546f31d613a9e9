package workflows

// Edge declares one legal transition: firing Trigger in state From moves to To.
type Edge struct {
	From    string
	Trigger string
	To      string
}

// StateMachine enforces status transitions driven by named triggers
type StateMachine struct {
	edges map[string]map[string]string // from -> trigger -> to
}

// NewStateMachine builds a state machine from a transition table
func NewStateMachine(table []Edge) *StateMachine {
	edges := make(map[string]map[string]string, len(table))
	for _, e := range table {
		byTrigger, ok := edges[e.From]
		if !ok {
			byTrigger = make(map[string]string)
			edges[e.From] = byTrigger
		}
		byTrigger[e.Trigger] = e.To
	}
	return &StateMachine{edges: edges}
}

// Target returns the destination state for firing trigger in state from,
// and whether such an edge exists
func (sm *StateMachine) Target(from, trigger string) (string, bool) {
	byTrigger, ok := sm.edges[from]
	if !ok {
		return "", false
	}
	to, ok := byTrigger[trigger]
	return to, ok
}

// CanTrigger checks if a trigger is legal in the given state
func (sm *StateMachine) CanTrigger(from, trigger string) bool {
	_, ok := sm.Target(from, trigger)
	return ok
}

// TriggersFrom returns the triggers that may fire from the given state
func (sm *StateMachine) TriggersFrom(from string) []string {
	byTrigger, ok := sm.edges[from]
	if !ok {
		return []string{}
	}
	triggers := make([]string, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}
	return triggers
}
