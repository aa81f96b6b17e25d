package handler

import "github.com/iliyamo/allclear/internal/model"

// ----- request bodies -----

type signUpReq struct {
	FirstName string `json:"firstName" validate:"notblank" msg:"First name is required"`
	LastName  string `json:"lastName" validate:"notblank" msg:"Last name is required"`
	Email     string `json:"email" validate:"required,email" msg:"Valid email is required"`
	Password  string `json:"password" validate:"min=6" msg:"Password must be at least 6 characters long"`
}

type signInReq struct {
	Email    string `json:"email" validate:"required,email" msg:"Valid email is required"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

type updateProfileReq struct {
	FirstName *string `json:"firstName" validate:"omitnil,notblank" msg:"First name cannot be empty"`
	LastName  *string `json:"lastName" validate:"omitnil,notblank" msg:"Last name cannot be empty"`
	Email     *string `json:"email" validate:"omitnil,email" msg:"Valid email is required"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required" msg:"Current password is required"`
	NewPassword     string `json:"newPassword" validate:"min=6" msg:"New password must be at least 6 characters long"`
}

// pointReq is a nested {lat, lng} object.  Pointers tell a missing value
// from zero.
type pointReq struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90" msg:"Valid latitude is required"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180" msg:"Valid longitude is required"`
}

func (p pointReq) coordinates() model.Coordinates {
	var c model.Coordinates
	if p.Lat != nil {
		c.Lat = *p.Lat
	}
	if p.Lng != nil {
		c.Lng = *p.Lng
	}
	return c
}

type addFriendReq struct {
	Username string   `json:"username" validate:"notblank,max=50" msg:"Username is required" msg_max:"Username must be at most 50 characters"`
	Email    string   `json:"email" validate:"required,email" msg:"Valid email is required"`
	Location pointReq `json:"location"`
	Status   string   `json:"status" validate:"omitempty,friendstatus" msg:"Status must be one of: Safe, In Risk Zone, Unknown, Emergency"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,friendstatus" msg:"Status must be one of: Safe, In Risk Zone, Unknown, Emergency"`
}

type addLocationReq struct {
	Name        string   `json:"name" validate:"notblank" msg:"Name is required"`
	Type        string   `json:"type"`
	Location    pointReq `json:"location"`
	Description string   `json:"description"`
}

// moveReq is the body of the coordinate update endpoints.  Range checks
// happen in the service so a bad value is reported as invalid
// coordinates rather than a field error.
type moveReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}
