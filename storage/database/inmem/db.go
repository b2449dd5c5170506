// Package inmemdb implements the repositories in memory. It backs the tests & the "inmem" database engine.
package inmemdb

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx/reflectx"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/mailtmpl"
	"github.com/trezcool/sadaka/core/organization"
	"github.com/trezcool/sadaka/core/payment"
	"github.com/trezcool/sadaka/core/user"
)

// mapper finds fields by their JSON names, which match the orderable column names.
var mapper = reflectx.NewMapperFunc("json", strings.ToLower)

type (
	DB struct {
		users         *table[user.User]
		pages         *table[content.Page]
		faqs          *table[content.FAQ]
		features      *table[content.Feature]
		guides        *table[content.Guide]
		testimonials  *table[content.Testimonial]
		organizations *table[organization.Organization]
		mailTemplates *table[mailtmpl.MailTemplate]

		paymentMu sync.RWMutex
		payment   *payment.FeeSettings
	}

	// table is a map of rows guarded by a mutex; rows are stored & returned by value.
	table[T any] struct {
		mutex sync.RWMutex
		rows  map[string]T
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func Open() *DB {
	return &DB{
		users:         newTable[user.User](),
		pages:         newTable[content.Page](),
		faqs:          newTable[content.FAQ](),
		features:      newTable[content.Feature](),
		guides:        newTable[content.Guide](),
		testimonials:  newTable[content.Testimonial](),
		organizations: newTable[organization.Organization](),
		mailTemplates: newTable[mailtmpl.MailTemplate](),
	}
}

// all must be called with the table's mutex held.
func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, row)
	}
	return rows
}

// sortRows orders rows by the fields of ordering. Rows with equal values keep a stable order.
func sortRows[T any](rows []T, ordering []core.DBOrdering) {
	sort.SliceStable(rows, func(i, j int) bool {
		vi := reflect.ValueOf(rows[i])
		vj := reflect.ValueOf(rows[j])
		for _, ord := range ordering {
			fi := mapper.FieldByName(vi, ord.Field)
			fj := mapper.FieldByName(vj, ord.Field)
			if !fi.IsValid() || !fj.IsValid() {
				continue
			}
			if c := compare(fi.Interface(), fj.Interface()); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return false
	})
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(strings.ToLower(av), strings.ToLower(b.(string)))
	case int:
		return av - b.(int)
	case int64:
		bv := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case bool:
		bv := b.(bool)
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		}
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
	}
	return 0
}

func containsFold(search string, values ...string) bool {
	search = strings.ToLower(search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}
