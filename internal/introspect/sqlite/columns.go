package sqlite

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"smlite/internal/core"
	"smlite/internal/engine"
)

// sizedType matches declared types such as "TEXT(254,0)" or "NUMERIC(19)".
var sizedType = regexp.MustCompile(`^\s*(\w+)\s*\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)`)

func (i *sqliteIntrospecter) TableColumns(ctx context.Context, r engine.Runner, table string) ([]core.ColumnInfo, error) {
	// PRAGMA statements do not take bound parameters; the table-valued form does.
	res, err := r.Run(ctx, `SELECT cid, name, type, "notnull" AS not_null, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %q: %w", table, err)
	}

	columns := make([]core.ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		cid, _ := row.Int64("cid")
		name, _ := row.String("name")
		typ, _ := row.String("type")
		notNull, _ := row.Int64("not_null")
		pk, _ := row.Int64("pk")

		col := core.ColumnInfo{
			Name:         name,
			Ordinal:      int(cid),
			PhysicalType: typ,
			Nullable:     notNull == 0,
			Primary:      pk > 0,
		}
		col.Size, col.Scale = parseSize(typ)
		columns = append(columns, col)
	}
	return columns, nil
}

func parseSize(typ string) (size, scale uint) {
	m := sizedType.FindStringSubmatch(typ)
	if m == nil {
		return 0, 0
	}
	if n, err := strconv.ParseUint(m[2], 10, 32); err == nil {
		size = uint(n)
	}
	if m[3] != "" {
		if n, err := strconv.ParseUint(m[3], 10, 32); err == nil {
			scale = uint(n)
		}
	}
	return size, scale
}
