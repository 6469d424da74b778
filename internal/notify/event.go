package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventShoppingListGenerated = "shopping_list.generated"
	EventItemToggled           = "shopping_list.item_toggled"
	EventListStatusChanged     = "shopping_list.status_changed"
	EventMemberInvited         = "family.member_invited"
)

// Event is a fire-and-forget change notification. Nothing depends on it
// being delivered.
type Event struct {
	Type     string
	FamilyID uuid.UUID
	ActorID  uuid.UUID
	EntityID uuid.UUID
	Detail   string
	At       time.Time
}

// Text renders the event as a one-line human message.
func (e Event) Text() string {
	switch e.Type {
	case EventShoppingListGenerated:
		return fmt.Sprintf("New shopping list %s generated (%s)", e.EntityID, e.Detail)
	case EventItemToggled:
		return fmt.Sprintf("Item %s on a shopping list is now %s", e.EntityID, e.Detail)
	case EventListStatusChanged:
		return fmt.Sprintf("Shopping list %s moved to %s", e.EntityID, e.Detail)
	case EventMemberInvited:
		return fmt.Sprintf("%s joined the family", e.Detail)
	default:
		return fmt.Sprintf("%s %s", e.Type, e.EntityID)
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}
