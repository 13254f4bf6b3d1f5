package domain

// Service kinds offered on the marketplace
const (
	ServicePublicAreaAttendant int64 = 1
	ServiceRoomAttendant       int64 = 2
	ServiceLinenPorter         int64 = 3
)

var serviceNames = map[int64]string{
	ServicePublicAreaAttendant: "Public Area Attendant",
	ServiceRoomAttendant:       "Room Attendant",
	ServiceLinenPorter:         "Linen Porter",
}

// ServiceName returns the display name for a service kind
func ServiceName(id int64) (string, bool) {
	name, ok := serviceNames[id]
	return name, ok
}
