package adapter

import (
	"context"
	"fmt"

	"smlite/internal/core"
	"smlite/internal/query"
)

const (
	selectSequenceSQL = "SELECT `value` FROM `" + core.SequenceTable + "` WHERE `entity` = ? AND `attribute` = ?"
	updateSequenceSQL = "UPDATE `" + core.SequenceTable + "` SET `value` = ? WHERE `entity` = ? AND `attribute` = ?"
	insertSequenceSQL = "INSERT INTO `" + core.SequenceTable + "` (`entity`, `attribute`, `value`) VALUES (?, ?, ?)"
)

// NextValue returns the next value of the (entity, attribute) sequence. The
// first call for a pair seeds it at MAX(attribute)+1 over the entity's rows,
// or 1 when the table is absent or empty.
//
// Values are unique for callers going through this adapter: the read and the
// write run in one transaction. Rows inserted by other writers with explicit
// values are not seen after seeding.
func (a *Adapter) NextValue(ctx context.Context, entity, attribute string) (int64, error) {
	if entity == "" || attribute == "" {
		return 0, &core.FormatError{Reason: "sequence requires an entity and an attribute"}
	}

	var next int64
	err := a.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.sequences.Migrate(ctx, core.SequenceMigration()); err != nil {
			return err
		}

		res, err := a.run(ctx, selectSequenceSQL, entity, attribute)
		if err != nil {
			return err
		}
		if row := res.First(); row != nil {
			current, _ := row.Int64("value")
			next = current + 1
			_, err = a.run(ctx, updateSequenceSQL, next, entity, attribute)
			return err
		}

		seed, err := a.maxValue(ctx, entity, attribute)
		if err != nil {
			return err
		}
		next = seed + 1
		_, err = a.run(ctx, insertSequenceSQL, entity, attribute, next)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("next value of %s.%s: %w", entity, attribute, err)
	}
	return next, nil
}

func (a *Adapter) maxValue(ctx context.Context, entity, attribute string) (int64, error) {
	exists, err := a.introspecter.TableExists(ctx, a.conn, entity)
	if err != nil || !exists {
		return 0, err
	}
	stmt, err := a.dialect.Formatter().Format(query.From(entity).Select(query.Max(attribute)))
	if err != nil {
		return 0, err
	}
	res, err := a.run(ctx, stmt)
	if err != nil {
		return 0, err
	}
	n, _ := res.First().Int64(attribute)
	return n, nil
}
