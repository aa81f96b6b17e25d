package model

import "time"

// FriendStatus is the safety state reported for a tracked contact.
type FriendStatus string

const (
	StatusSafe       FriendStatus = "Safe"
	StatusInRiskZone FriendStatus = "In Risk Zone"
	StatusUnknown    FriendStatus = "Unknown"
	StatusEmergency  FriendStatus = "Emergency"
)

// FriendStatuses lists every accepted status in display order.
var FriendStatuses = []FriendStatus{StatusSafe, StatusInRiskZone, StatusUnknown, StatusEmergency}

// Valid reports whether s is one of the known statuses.
func (s FriendStatus) Valid() bool {
	for _, v := range FriendStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// MaxUsernameLen bounds Friend.Username.
const MaxUsernameLen = 50

// Friend is a contact tracked by exactly one owner.  It is not a social
// graph edge: the tracked person never sees the owner.  Removal only
// clears IsActive; the row stays in storage.
//
// Fields:
//
//	ID          – opaque record identifier.
//	OwnerID     – id of the user who tracks this friend.
//	Username    – display name.
//	Email       – lower-cased email, unique per owner among active rows.
//	Location    – last known position.
//	Status      – safety status.
//	LastUpdated – refreshed whenever status or location changes.
//	IsActive    – false once the owner removed the friend.
//	CreatedAt   – creation timestamp, used for list ordering.
//	UpdatedAt   – last modification timestamp.
type Friend struct {
	ID          string
	OwnerID     string
	Username    string
	Email       string
	Location    Coordinates
	Status      FriendStatus
	LastUpdated time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FriendView is the map-facing projection of a friend.
type FriendView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Status      FriendStatus `json:"status"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// MapView projects the friend for map rendering.
func (f Friend) MapView() FriendView {
	return FriendView{
		ID:          f.ID,
		Name:        f.Username,
		Status:      f.Status,
		Lat:         f.Location.Lat,
		Lng:         f.Location.Lng,
		LastUpdated: f.LastUpdated,
	}
}
