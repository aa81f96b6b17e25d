package mysqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// FriendRepo encapsulates queries on the 'friends' table.  Every statement
// carries owner_id in its WHERE clause.
type FriendRepo struct{ db *sql.DB }

const friendCols = "id,owner_id,username,email,lat,lng,status,last_updated,is_active,created_at,updated_at"

func scanFriend(row interface{ Scan(...any) error }) (model.Friend, error) {
	var (
		f         model.Friend
		id, owner uint64
		status    string
	)
	err := row.Scan(&id, &owner, &f.Username, &f.Email, &f.Location.Lat, &f.Location.Lng,
		&status, &f.LastUpdated, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return model.Friend{}, translate(err)
	}
	f.ID, f.OwnerID, f.Status = formatID(id), formatID(owner), model.FriendStatus(status)
	return f, nil
}

// ListActive returns active friends of the owner, newest first.
func (r *FriendRepo) ListActive(ctx context.Context, ownerID string) ([]model.Friend, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return []model.Friend{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+friendCols+" FROM friends WHERE owner_id=? AND is_active=1 ORDER BY created_at DESC, id DESC", owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Friend{}
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a friend.  The unique key on (owner_id, active_email)
// rejects a second active friend with the same email.
func (r *FriendRepo) Create(ctx context.Context, f *model.Friend) error {
	owner, ok := parseID(f.OwnerID)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO friends (owner_id,username,email,lat,lng,status,last_updated,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		owner, f.Username, f.Email, f.Location.Lat, f.Location.Lng, string(f.Status), f.LastUpdated, f.IsActive, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = formatID(uint64(id))
	return nil
}

// GetActive fetches an active friend by id and owner.
func (r *FriendRepo) GetActive(ctx context.Context, ownerID, id string) (model.Friend, error) {
	owner, ok1 := parseID(ownerID)
	fid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return model.Friend{}, repository.ErrNotFound
	}
	return scanFriend(r.db.QueryRowContext(ctx,
		"SELECT "+friendCols+" FROM friends WHERE id=? AND owner_id=? AND is_active=1 LIMIT 1", fid, owner))
}

// UpdateStatus sets the status and refreshes last_updated.
func (r *FriendRepo) UpdateStatus(ctx context.Context, ownerID, id string, status model.FriendStatus, at time.Time) (model.Friend, error) {
	return r.update(ctx, ownerID, id, "status=?, last_updated=?, updated_at=?", string(status), at, at)
}

// UpdateLocation sets the coordinates and refreshes last_updated.
func (r *FriendRepo) UpdateLocation(ctx context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Friend, error) {
	return r.update(ctx, ownerID, id, "lat=?, lng=?, last_updated=?, updated_at=?", loc.Lat, loc.Lng, at, at)
}

func (r *FriendRepo) update(ctx context.Context, ownerID, id, set string, args ...any) (model.Friend, error) {
	owner, ok1 := parseID(ownerID)
	fid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return model.Friend{}, repository.ErrNotFound
	}
	args = append(args, fid, owner)
	res, err := r.db.ExecContext(ctx, "UPDATE friends SET "+set+" WHERE id=? AND owner_id=? AND is_active=1", args...)
	if err != nil {
		return model.Friend{}, translate(err)
	}
	if err := affected(res); err != nil {
		return model.Friend{}, err
	}
	return r.GetActive(ctx, ownerID, id)
}

// Deactivate soft-deletes a friend.
func (r *FriendRepo) Deactivate(ctx context.Context, ownerID, id string, at time.Time) error {
	owner, ok1 := parseID(ownerID)
	fid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE friends SET is_active=0, updated_at=? WHERE id=? AND owner_id=? AND is_active=1", at, fid, owner)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// DeleteAllForOwner purges every friend row of the owner.
func (r *FriendRepo) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	owner, ok := parseID(ownerID)
	if !ok {
		return nil
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM friends WHERE owner_id=?", owner)
	return err
}
