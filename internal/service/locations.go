package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// NewLocation is a validated add-location request.  Type is the raw
// category string; unknown values are stored as Other.
type NewLocation struct {
	Name        string
	Type        string
	Location    model.Coordinates
	Description string
}

// Locations is the per-owner point-of-interest registry.
type Locations struct {
	store repository.LocationStore
	now   func() time.Time
}

func NewLocations(store repository.LocationStore, now func() time.Time) *Locations {
	if now == nil {
		now = time.Now
	}
	return &Locations{store: store, now: now}
}

func (l *Locations) List(ctx context.Context, ownerID string) ([]model.Location, error) {
	out, err := l.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return out, nil
}

// Add saves a new point of interest for the owner.
func (l *Locations) Add(ctx context.Context, ownerID string, in NewLocation) (model.Location, error) {
	if !in.Location.Valid() {
		return model.Location{}, ErrInvalidCoordinates
	}
	now := l.now().UTC()
	loc := model.Location{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Type:        model.ParseLocationType(strings.TrimSpace(in.Type)),
		Location:    in.Location,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.store.Create(ctx, &loc); err != nil {
		return model.Location{}, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

// UpdateCoordinates moves a location and refreshes UpdatedAt.
func (l *Locations) UpdateCoordinates(ctx context.Context, ownerID, id string, c model.Coordinates) (model.Location, error) {
	if !c.Valid() {
		return model.Location{}, ErrInvalidCoordinates
	}
	loc, err := l.store.UpdateCoordinates(ctx, ownerID, id, c, l.now().UTC())
	return loc, locationErr(err, "update location coordinates")
}

// Remove deletes the location permanently.
func (l *Locations) Remove(ctx context.Context, ownerID, id string) error {
	return locationErr(l.store.Delete(ctx, ownerID, id), "delete location")
}

func locationErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrLocationNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
