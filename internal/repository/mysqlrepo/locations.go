package mysqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// LocationRepo encapsulates queries on the 'locations' table.
type LocationRepo struct{ db *sql.DB }

const locationCols = "id,owner_id,name,type,lat,lng,description,created_at,updated_at"

func scanLocation(row interface{ Scan(...any) error }) (model.Location, error) {
	var (
		l         model.Location
		id, owner uint64
		typ       string
	)
	err := row.Scan(&id, &owner, &l.Name, &typ, &l.Location.Lat, &l.Location.Lng, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return model.Location{}, translate(err)
	}
	l.ID, l.OwnerID, l.Type = formatID(id), formatID(owner), model.ParseLocationType(typ)
	return l, nil
}

// List returns the owner's locations, newest first.
func (r *LocationRepo) List(ctx context.Context, ownerID string) ([]model.Location, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return []model.Location{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+locationCols+" FROM locations WHERE owner_id=? ORDER BY created_at DESC, id DESC", owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a location and fills l.ID.
func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	owner, ok := parseID(l.OwnerID)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO locations (owner_id,name,type,lat,lng,description,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)",
		owner, l.Name, string(l.Type), l.Location.Lat, l.Location.Lng, l.Description, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = formatID(uint64(id))
	return nil
}

// Get fetches a location by id and owner.
func (r *LocationRepo) Get(ctx context.Context, ownerID, id string) (model.Location, error) {
	owner, ok1 := parseID(ownerID)
	lid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return model.Location{}, repository.ErrNotFound
	}
	return scanLocation(r.db.QueryRowContext(ctx,
		"SELECT "+locationCols+" FROM locations WHERE id=? AND owner_id=? LIMIT 1", lid, owner))
}

// UpdateCoordinates moves the point and refreshes updated_at.
func (r *LocationRepo) UpdateCoordinates(ctx context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Location, error) {
	owner, ok1 := parseID(ownerID)
	lid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return model.Location{}, repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE locations SET lat=?, lng=?, updated_at=? WHERE id=? AND owner_id=?", loc.Lat, loc.Lng, at, lid, owner)
	if err != nil {
		return model.Location{}, translate(err)
	}
	if err := affected(res); err != nil {
		return model.Location{}, err
	}
	return r.Get(ctx, ownerID, id)
}

// Delete hard-deletes a location.
func (r *LocationRepo) Delete(ctx context.Context, ownerID, id string) error {
	owner, ok1 := parseID(ownerID)
	lid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE id=? AND owner_id=?", lid, owner)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// DeleteAllForOwner purges every location of the owner.
func (r *LocationRepo) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	owner, ok := parseID(ownerID)
	if !ok {
		return nil
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE owner_id=?", owner)
	return err
}
