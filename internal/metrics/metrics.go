// Package metrics defines the event sink services report to. Implementations
// are injected so tests never touch process-wide registries.
package metrics

type Sink interface {
	RecordEvent(name string, labels map[string]string)
}

type Nop struct{}

func (Nop) RecordEvent(string, map[string]string) {}

const (
	EventPickListCreated        = "pick_list_created"
	EventPickListCreationFailed = "pick_list_creation_failed"
	EventPickLinePicked         = "pick_line_picked"
	EventPickLineUndone         = "pick_line_undone"
	EventPickListCompleted      = "pick_list_completed"
	EventKitContentConflict     = "kit_content_conflict"
	EventShoppingListPushed     = "shopping_list_pushed"
)
