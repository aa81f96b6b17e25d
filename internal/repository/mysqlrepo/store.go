// Package mysqlrepo implements repository.Store on MySQL.  Record ids are
// AUTO_INCREMENT keys rendered as decimal strings; an id that does not
// parse is treated as a missing row.
package mysqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/allclear/internal/repository"
)

// erDupEntry is MySQL's "Duplicate entry for key" error number.
const erDupEntry = 1062

// Store wraps a *sql.DB.  The pool is owned by the caller that opened it
// unless Close is called.
type Store struct {
	db *sql.DB
}

// New builds a Store on an open pool.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Users() repository.UserStore         { return &UserRepo{db: s.db} }
func (s *Store) Friends() repository.FriendStore     { return &FriendRepo{db: s.db} }
func (s *Store) Locations() repository.LocationStore { return &LocationRepo{db: s.db} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close(context.Context) error    { return s.db.Close() }

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}

// translate maps driver errors onto repository tags.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case isDuplicate(err):
		return repository.ErrDuplicate
	}
	return err
}

func parseID(id string) (uint64, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	return n, err == nil && n > 0
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }

// affected turns a zero-row update into ErrNotFound.  The DSN sets
// clientFoundRows so matched-but-unchanged rows still count.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
