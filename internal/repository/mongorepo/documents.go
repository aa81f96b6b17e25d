package mongorepo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/allclear/internal/model"
)

// userDoc is the 'users' collection shape.  The hash lives under
// "password" for compatibility with existing collections.
type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	IsActive  bool               `bson:"isActive"`
	LastLogin *time.Time         `bson:"lastLogin,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type pointDoc struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

// friendDoc is the 'friends' collection shape.
type friendDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	Username    string             `bson:"username"`
	Email       string             `bson:"email"`
	Location    pointDoc           `bson:"location"`
	Status      string             `bson:"status"`
	LastUpdated time.Time          `bson:"lastUpdated"`
	IsActive    bool               `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// locationDoc is the 'locations' collection shape.
type locationDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	Name        string             `bson:"name"`
	Type        string             `bson:"type"`
	Location    pointDoc           `bson:"location"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d userDoc) toModel() model.User {
	u := model.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.Password,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.LastLogin != nil {
		u.LastLogin = *d.LastLogin
	}
	return u
}

func (d friendDoc) toModel() model.Friend {
	return model.Friend{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID.Hex(),
		Username:    d.Username,
		Email:       d.Email,
		Location:    model.Coordinates{Lat: d.Location.Lat, Lng: d.Location.Lng},
		Status:      model.FriendStatus(d.Status),
		LastUpdated: d.LastUpdated,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d locationDoc) toModel() model.Location {
	return model.Location{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID.Hex(),
		Name:        d.Name,
		Type:        model.ParseLocationType(d.Type),
		Location:    model.Coordinates{Lat: d.Location.Lat, Lng: d.Location.Lng},
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
