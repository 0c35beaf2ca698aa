package domain

import "fmt"

// RoomUnassigned is the synthetic catch-all room. It always exists for
// grouping and export and is never stored on the session room list.
const RoomUnassigned = "Unassigned"

// Fixed option lists offered by the configurator UI.
var (
	FloorPlans  = []string{"Olympia", "Oakley", "MGM Grand"}
	ExtraRooms  = []string{"Office", "Den", "Living", "Dining", "Family", "Garage"}
	Subsections = []string{"Subsection 1", "Subsection 2", "Subsection 3"}
)

func GenerateBedrooms(count int) []string {
	rooms := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		rooms = append(rooms, fmt.Sprintf("Bedroom %d", i))
	}
	return rooms
}

func GenerateBathrooms(count int) []string {
	rooms := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		rooms = append(rooms, fmt.Sprintf("Bath %d", i))
	}
	return rooms
}

// IsKnownExtraRoom reports whether name is one of the fixed extra-room
// toggles.
func IsKnownExtraRoom(name string) bool {
	for _, r := range ExtraRooms {
		if r == name {
			return true
		}
	}
	return false
}
