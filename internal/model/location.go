package model

import "time"

// LocationType is the category of a saved point of interest.
type LocationType string

const (
	TypeHome          LocationType = "Home"
	TypeWork          LocationType = "Work"
	TypeSchool        LocationType = "School"
	TypeHospital      LocationType = "Hospital"
	TypePoliceStation LocationType = "Police Station"
	TypeFireStation   LocationType = "Fire Station"
	TypeShelter       LocationType = "Shelter"
	TypeGasStation    LocationType = "Gas Station"
	TypeGroceryStore  LocationType = "Grocery Store"
	TypePharmacy      LocationType = "Pharmacy"
	TypeBank          LocationType = "Bank"
	TypeOther         LocationType = "Other"
)

// LocationTypes is the closed set of categories.
var LocationTypes = []LocationType{
	TypeHome, TypeWork, TypeSchool, TypeHospital, TypePoliceStation, TypeFireStation,
	TypeShelter, TypeGasStation, TypeGroceryStore, TypePharmacy, TypeBank, TypeOther,
}

// ParseLocationType maps raw input onto a known category.  Anything not in
// LocationTypes, including the empty string, becomes TypeOther.
func ParseLocationType(raw string) LocationType {
	for _, t := range LocationTypes {
		if string(t) == raw {
			return t
		}
	}
	return TypeOther
}

// Location is a named point of interest owned by one user.  Unlike Friend
// it is hard-deleted.
type Location struct {
	ID          string
	OwnerID     string
	Name        string
	Type        LocationType
	Location    Coordinates
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocationView is the map-facing projection of a location.
type LocationView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        LocationType `json:"type"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// MapView projects the location for map rendering.
func (l Location) MapView() LocationView {
	return LocationView{
		ID:          l.ID,
		Name:        l.Name,
		Type:        l.Type,
		Lat:         l.Location.Lat,
		Lng:         l.Location.Lng,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
