package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// postgres allows at most 65535 bind parameters per statement
const maxParams = 65535

type batchInserter struct {
	tableName  string
	columns    []string
	values     []interface{}
	valueCount int
	batchSize  int
	tx         *sql.Tx
}

func newBatchInserter(tx *sql.Tx, tableName string, batchSize int) *batchInserter {
	columns := columnsForTable(tableName)
	if limit := maxParams / len(columns); batchSize > limit {
		batchSize = limit
	}
	return &batchInserter{
		tableName: tableName,
		columns:   columns,
		values:    make([]interface{}, 0, batchSize*len(columns)),
		batchSize: batchSize,
		tx:        tx,
	}
}

func (b *batchInserter) Add(ctx context.Context, values ...interface{}) error {
	if len(values) != len(b.columns) {
		return fmt.Errorf("%s: got %d values for %d columns", b.tableName, len(values), len(b.columns))
	}
	b.values = append(b.values, values...)
	b.valueCount++

	if b.valueCount >= b.batchSize {
		return b.Flush(ctx)
	}

	return nil
}

func (b *batchInserter) Flush(ctx context.Context) error {
	if b.valueCount == 0 {
		return nil
	}

	query := b.buildInsertQuery()
	_, err := b.tx.ExecContext(ctx, query, b.values...)
	if err != nil {
		return fmt.Errorf("executing batch insert into %s: %w", b.tableName, err)
	}

	// Reset
	b.values = b.values[:0]
	b.valueCount = 0

	return nil
}

func (b *batchInserter) buildInsertQuery() string {
	var sb strings.Builder
	fieldCount := len(b.columns)

	sb.WriteString(fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES ",
		schemaName,
		b.tableName,
		strings.Join(b.columns, ", ")))

	for i := 0; i < b.valueCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < fieldCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", i*fieldCount+j+1))
		}
		sb.WriteString(")")
	}

	sb.WriteString(" ON CONFLICT DO NOTHING")

	return sb.String()
}
