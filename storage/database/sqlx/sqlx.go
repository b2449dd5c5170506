// Package sqlxrepos implements the repositories on PostgreSQL with sqlx & squirrel.
package sqlxrepos

import (
	"database/sql"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

var (
	psql   = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	mapper = reflectx.NewMapperFunc("db", strings.ToLower)
)

// trapNoRowsErr maps "no rows" errors to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// validID reports whether id can be looked up; malformed IDs cannot match any row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func orderBy(b sq.SelectBuilder, ordering []core.DBOrdering) sq.SelectBuilder {
	for _, ord := range ordering {
		b = b.OrderBy(ord.String())
	}
	return b
}

// searchAny matches rows where any of cols contains search, case-insensitively.
func searchAny(search string, cols ...string) sq.Or {
	val := "%" + search + "%"
	or := make(sq.Or, 0, len(cols))
	for _, col := range cols {
		or = append(or, sq.ILike{col: val})
	}
	return or
}

// rowMap returns the values of the db tagged fields of row for cols.
func rowMap(cols []string, row interface{}) map[string]interface{} {
	fields := mapper.FieldMap(reflect.ValueOf(row))
	values := make(map[string]interface{}, len(cols))
	for _, col := range cols {
		if f, ok := fields[col]; ok {
			values[col] = f.Interface()
		}
	}
	return values
}
