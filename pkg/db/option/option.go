package option

import (
	"time"

	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a query before it is executed. Options compose, the
// store applies them in order.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset)
	})
}

func WithOrder(order string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

func WithPreload(relation string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Preload(relation)
	})
}

// WithCursorAfter restricts the result to rows strictly after the given id,
// for keyset pagination on snowflake ids.
func WithCursorAfter(id string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if id == "" {
			return db
		}
		return db.Where("id > ?", id)
	})
}

// ApplyPagination decodes the cursor token and fetches one row past the page
// size so the caller can detect whether more rows exist.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor.ID != "" {
				db = db.Where("id < ?", cursor.ID)
			}
		}
		if page.PageSize > 0 {
			db = db.Limit(page.PageSize + 1)
		}
		return db
	})
}

// WithWindow bounds a timestamp column to [from, to]. Nil bounds are open.
func WithWindow(column string, from, to *time.Time) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", *from)
		}
		if to != nil {
			db = db.Where(column+" <= ?", *to)
		}
		return db
	})
}

// WithSearch adds a case-insensitive substring match on the given column.
func WithSearch(column, term string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?", "%"+term+"%")
	})
}
