package adapter

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smlite/internal/core"
	"smlite/internal/query"
)

func setupAdapter(t *testing.T, name string, opts ...Option) *Adapter {
	t.Helper()
	a, err := Open("file:"+name+"?mode=memory", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func personSpec() *core.MigrationSpec {
	return &core.MigrationSpec{
		AppliesTo: "Person",
		Model:     "Person",
		Version:   "1.0",
		Add: []core.FieldDescriptor{
			{Name: "id", Type: core.TypeCounter, Primary: true},
			{Name: "email", Type: core.TypeText, Size: 254, Nullable: core.Bool(false)},
		},
	}
}

func count(ctx context.Context, t *testing.T, a *Adapter, table string) int64 {
	t.Helper()
	res, err := a.Execute(ctx, query.From(table).Select(query.Count().As("n")))
	require.NoError(t, err)
	n, ok := res.First().Int64("n")
	require.True(t, ok)
	return n
}

func TestPersonScenario(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_person")

	spec := personSpec()
	res, err := a.Migrate(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCreated, res.Status)
	assert.True(t, spec.Updated)

	cols, err := a.TableColumns(ctx, "Person")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].Primary)
	assert.Equal(t, "email", cols[1].Name)
	assert.False(t, cols[1].Nullable)
	assert.Equal(t, uint(254), cols[1].Size)

	v, err := a.TableVersion(ctx, "Person")
	require.NoError(t, err)
	assert.Equal(t, "1.0", v)
	assert.Equal(t, int64(1), count(ctx, t, a, core.LedgerTable))

	again, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	assert.Equal(t, core.StatusAlreadyApplied, again.Status)
	assert.Equal(t, int64(1), count(ctx, t, a, core.LedgerTable))
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_execute")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)

	res, err := a.Execute(ctx, query.InsertInto("Person").Set("email", "ann@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Equal(t, int64(1), res.LastInsertID)

	res, err = a.Execute(ctx, "INSERT INTO `Person` (`email`) VALUES (?)", "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.LastInsertID)

	id, err := a.LastIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	res, err = a.Execute(ctx, query.From("Person").Columns("email").Where(query.EndsWith(query.Field("email"), "@example.com")).OrderByDesc("id"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "bob@example.com", res.Rows[0]["email"])

	res, err = a.Execute(ctx, query.UpdateTable("Person").Set("email", "carl@example.com").Where(query.EQ("id", 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = a.Execute(ctx, query.From("Person").Select(query.IndexOf(query.Field("email"), query.Value("@")).As("at")).Where(query.EQ("id", 1)))
	require.NoError(t, err)
	at, _ := res.First().Int64("at")
	assert.Equal(t, int64(4), at)

	_, err = a.Execute(ctx, 42)
	assert.ErrorIs(t, err, core.ErrFormat)

	_, err = a.Execute(ctx, query.From("Person").Select(query.Func("soundex", query.Field("email"))))
	assert.ErrorIs(t, err, core.ErrUnsupportedExpression)

	_, err = a.Execute(ctx, "SELECT * FROM `Nobody`")
	assert.ErrorIs(t, err, core.ErrEngineExecution)
}

func TestEscapingRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_escape")

	_, err := a.Migrate(ctx, &core.MigrationSpec{AppliesTo: "Note", Version: "1.0", Add: []core.FieldDescriptor{
		{Name: "id", Type: core.TypeCounter, Primary: true},
		{Name: "body", Type: core.TypeNote},
	}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
	}{
		{"single_quote", "it's"},
		{"double_quote", `say "hi"`},
		{"backslash", `C:\temp\new`},
		{"escape_lookalikes", `\' \" \\ \n`},
		{"mixed", "O'Neil said \"\\\"\n\ttabbed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Execute(ctx, query.InsertInto("Note").Set("body", tt.value))
			require.NoError(t, err)

			got, err := a.Execute(ctx, query.From("Note").Columns("body").Where(query.EQ("id", res.LastInsertID)))
			require.NoError(t, err)
			body, ok := got.First().String("body")
			require.True(t, ok)
			assert.Equal(t, tt.value, body)
		})
	}
}

func TestNextValue(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_next_value")

	for want := int64(1); want <= 3; want++ {
		got, err := a.NextValue(ctx, "Order", "id")
		require.NoError(t, err)
		assert.Equal(t, want, got, "absent table seeds at 1")
	}

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	_, err = a.Execute(ctx, "INSERT INTO `Person` (`id`, `email`) VALUES (5, 'x@y.z')")
	require.NoError(t, err)

	got, err := a.NextValue(ctx, "Person", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(6), got, "seeded from MAX(id)")

	got, err = a.NextValue(ctx, "Person", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	got, err = a.NextValue(ctx, "Order", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got, "pairs are independent")

	ok, err := a.TableExists(ctx, core.SequenceTable)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.NextValue(ctx, "", "id")
	assert.ErrorIs(t, err, core.ErrFormat)
}

func TestNextValueEmptyTable(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_next_value_empty")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)

	got, err := a.NextValue(ctx, "Person", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestNextValueConcurrentCallers(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_next_value_concurrent")

	const n = 20
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values []int64
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.NextValue(ctx, "Order", "id")
			assert.NoError(t, err)
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	require.Len(t, values, n)
	for i, v := range values {
		assert.Equal(t, int64(i+1), v)
	}
}

func TestRunInTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_tx_rollback")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = a.RunInTransaction(ctx, func(ctx context.Context) error {
		assert.Equal(t, TxActive, a.TxState())
		if _, err := a.Execute(ctx, query.InsertInto("Person").Set("email", "a@b.c")); err != nil {
			return err
		}
		assert.Equal(t, int64(1), count(ctx, t, a, "Person"), "visible inside the transaction")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TxIdle, a.TxState())
	assert.Equal(t, int64(0), count(ctx, t, a, "Person"))
}

func TestRunInTransactionCommitsAndNests(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_tx_nested")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)

	err = a.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.Execute(ctx, query.InsertInto("Person").Set("email", "outer@b.c")); err != nil {
			return err
		}
		return a.RunInTransaction(ctx, func(ctx context.Context) error {
			assert.Equal(t, TxActive, a.TxState())
			_, err := a.Execute(ctx, query.InsertInto("Person").Set("email", "inner@b.c"))
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count(ctx, t, a, "Person"))

	// A failing nested unit of work fails the whole transaction.
	err = a.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.Execute(ctx, query.InsertInto("Person").Set("email", "third@b.c")); err != nil {
			return err
		}
		return a.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := a.Execute(ctx, "INSERT INTO `Nobody` VALUES (1)")
			return err
		})
	})
	assert.ErrorIs(t, err, core.ErrEngineExecution)
	assert.Equal(t, int64(2), count(ctx, t, a, "Person"))
}

func TestRunInTransactionRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_tx_panic")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = a.RunInTransaction(ctx, func(ctx context.Context) error {
			_, _ = a.Execute(ctx, query.InsertInto("Person").Set("email", "a@b.c"))
			panic("unit of work bug")
		})
	})
	assert.Equal(t, TxIdle, a.TxState())
	assert.Equal(t, int64(0), count(ctx, t, a, "Person"))
}

func TestRolledBackMigrationRecreatesLedger(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_ledger_rollback")

	boom := errors.New("abort")
	err := a.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.Migrate(ctx, personSpec()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	ok, err := a.TableExists(ctx, core.LedgerTable)
	require.NoError(t, err)
	assert.False(t, ok, "ledger creation was rolled back")

	res, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	assert.Equal(t, core.StatusCreated, res.Status)
}

func TestMigrateRejectsRewriteWithoutDDL(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_rewrite")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	before, err := a.TableColumns(ctx, "Person")
	require.NoError(t, err)

	spec := &core.MigrationSpec{AppliesTo: "Person", Version: "2.0",
		Add:    []core.FieldDescriptor{{Name: "born", Type: core.TypeDate}},
		Change: []core.FieldDescriptor{{Name: "email", Type: core.TypeInteger}},
	}
	_, err = a.Migrate(ctx, spec)
	require.ErrorIs(t, err, core.ErrUnsupportedMigration)

	after, err := a.TableColumns(ctx, "Person")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, TxIdle, a.TxState())
}

func TestViews(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_views")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	_, err = a.Execute(ctx, query.InsertInto("Person").Set("email", "ann@example.com"))
	require.NoError(t, err)

	require.NoError(t, a.CreateView(ctx, "Emails", query.From("Person").Columns("email")))
	ok, err := a.ViewExists(ctx, "Emails")
	require.NoError(t, err)
	assert.True(t, ok)

	// Re-creating replaces the definition.
	require.NoError(t, a.CreateView(ctx, "Emails", query.From("Person").Select(query.Field("email").As("address"))))
	res, err := a.Execute(ctx, query.From("Emails"))
	require.NoError(t, err)
	assert.Equal(t, []string{"address"}, res.Columns)

	err = a.CreateView(ctx, "Broken", query.From("Person").Select(query.Func("nope")))
	assert.ErrorIs(t, err, core.ErrUnsupportedExpression)
	err = a.CreateView(ctx, "Empty", nil)
	assert.ErrorIs(t, err, core.ErrFormat)

	require.NoError(t, a.DropView(ctx, "Emails"))
	require.NoError(t, a.DropView(ctx, "Emails"), "dropping a missing view is fine")
	ok, err = a.ViewExists(ctx, "Emails")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTableHasSequence(t *testing.T) {
	ctx := context.Background()
	a := setupAdapter(t, "adapter_has_sequence")

	_, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)

	ok, err := a.TableHasSequence(ctx, "Person")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = a.Execute(ctx, query.InsertInto("Person").Set("email", "a@b.c"))
	require.NoError(t, err)

	ok, err = a.TableHasSequence(ctx, "Person")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQueueHonoursContext(t *testing.T) {
	a := setupAdapter(t, "adapter_queue")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- a.RunInTransaction(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.TableExists(ctx, "Person")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "waits behind the running transaction")

	close(release)
	require.NoError(t, <-done)

	ok, err := a.TableExists(context.Background(), "Person")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDryRunAdapter(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	a := setupAdapter(t, "adapter_dry_run", WithDryRun(&buf))

	res, err := a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Contains(t, buf.String(), "CREATE TABLE `Person`")

	ok, err := a.TableExists(ctx, "Person")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextValueOnDryRunAdapter(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	a := setupAdapter(t, "adapter_dry_run_sequence", WithDryRun(&buf))

	for want := int64(1); want <= 2; want++ {
		v, err := a.NextValue(ctx, "Order", "id")
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Empty(t, buf.String(), "sequence bookkeeping is not reported as a dry run")

	ok, err := a.TableExists(ctx, core.SequenceTable)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.Migrate(ctx, personSpec())
	require.NoError(t, err)
	ok, err = a.TableExists(ctx, "Person")
	require.NoError(t, err)
	assert.False(t, ok, "migrations stay plan-only")
}

func TestCloseIsBestEffort(t *testing.T) {
	a, err := Open("file:adapter_close?mode=memory")
	require.NoError(t, err)

	assert.NoError(t, a.Close(), "closing an unopened adapter")

	_, err = a.TableExists(context.Background(), "Person")
	require.NoError(t, err)
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
