package persistence

import (
	"fmt"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"gorm.io/gorm"
)

// sqlDialect abstracts the date primitives that differ between the
// production store (Postgres) and the in-memory test store (SQLite).
type sqlDialect struct {
	sqlite bool
}

func dialectFor(db *gorm.DB) sqlDialect {
	return sqlDialect{sqlite: db.Dialector.Name() == "sqlite"}
}

// periodExpr renders col truncated to the granularity as a sortable label:
// day "YYYY-MM-DD", month "YYYY-MM", week "YYYY-Www". Postgres weeks are ISO
// (IYYY-IW); SQLite uses strftime's Monday-first %W numbering, which can
// differ from ISO around year boundaries.
func (d sqlDialect) periodExpr(col string, g analytics.Granularity) string {
	if d.sqlite {
		switch g {
		case analytics.GranularityWeek:
			return fmt.Sprintf("strftime('%%Y-W%%W', %s)", col)
		case analytics.GranularityMonth:
			return fmt.Sprintf("strftime('%%Y-%%m', %s)", col)
		default:
			return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col)
		}
	}
	switch g {
	case analytics.GranularityWeek:
		return fmt.Sprintf(`to_char(date_trunc('week', %s), 'IYYY-"W"IW')`, col)
	case analytics.GranularityMonth:
		return fmt.Sprintf("to_char(%s, 'YYYY-MM')", col)
	default:
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
	}
}

// dowExpr extracts the day of week from col. Both dialects natively use
// 0=Sunday .. 6=Saturday.
func (d sqlDialect) dowExpr(col string) string {
	if d.sqlite {
		return fmt.Sprintf("CAST(strftime('%%w', %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(EXTRACT(DOW FROM %s) AS INTEGER)", col)
}

// hourExpr extracts the hour of day (0-23) from col.
func (d sqlDialect) hourExpr(col string) string {
	if d.sqlite {
		return fmt.Sprintf("CAST(strftime('%%H', %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("CAST(EXTRACT(HOUR FROM %s) AS INTEGER)", col)
}

// applySaleFilter conjunctively applies every set field of f to tx. The sales
// table must be joined under the given alias. Nil fields are no-ops and the
// application never errors: date ordering and hour/day ranges are validated
// at the HTTP boundary before a filter is built. Applying the same filter
// twice only duplicates predicates and yields the same result set.
func applySaleFilter(tx *gorm.DB, d sqlDialect, alias string, f analytics.SaleFilter) *gorm.DB {
	created := alias + ".created_at"

	if f.StartDate != nil {
		tx = tx.Where(created+" >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		tx = tx.Where(created+" <= ?", *f.EndDate)
	}
	if f.StoreID != nil {
		tx = tx.Where(alias+".store_id = ?", *f.StoreID)
	}
	if f.ChannelID != nil {
		tx = tx.Where(alias+".channel_id = ?", *f.ChannelID)
	}
	if f.DayOfWeek != nil {
		// ISO 0=Monday at the interface; the store extracts 0=Sunday.
		nativeDow := (*f.DayOfWeek + 1) % 7
		tx = tx.Where(d.dowExpr(created)+" = ?", nativeDow)
	}
	if f.HourStart != nil {
		tx = tx.Where(d.hourExpr(created)+" >= ?", *f.HourStart)
	}
	if f.HourEnd != nil {
		tx = tx.Where(d.hourExpr(created)+" <= ?", *f.HourEnd)
	}
	return tx
}
