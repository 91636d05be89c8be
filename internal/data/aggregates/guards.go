package aggregates

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

var plainColumn = regexp.MustCompile(`^[a-z_]+$`)

// CASGuard applies single-row updates only while a guard column still holds
// the value the caller read.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// UpdateByVersion guards on the row's "version" column.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table string, id uuid.UUID, version int, updates map[string]any) (bool, error) {
	if version < 0 {
		return false, ValidationError(fmt.Sprintf("negative version %d", version))
	}
	return g.UpdateByColumn(dbc, table, id, "version", version, updates)
}

// UpdateByColumn reports whether the row was updated. false with a nil error
// means another writer got there first.
func (g CASGuard) UpdateByColumn(dbc dbctx.Context, table string, id uuid.UUID, column string, expected any, updates map[string]any) (bool, error) {
	switch {
	case table == "" || id == uuid.Nil:
		return false, ValidationError("guarded update needs a table and a row id")
	case !plainColumn.MatchString(column):
		return false, ValidationError(fmt.Sprintf("guard column %q is not a plain column name", column))
	case len(updates) == 0:
		return false, ValidationError("guarded update has nothing to set")
	}
	tx := dbc.Tx
	if tx == nil {
		tx = g.db
	}
	if tx == nil {
		return false, ValidationError("guarded update without a database")
	}
	res := tx.WithContext(dbc.Ctx).
		Table(table).
		Where(fmt.Sprintf("id = ? AND %s = ?", column), id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// requireApplied turns a guarded update that matched no row into a conflict.
func requireApplied(ok bool, what string) error {
	if ok {
		return nil
	}
	return ConflictError(what)
}
