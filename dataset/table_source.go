package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// TableSource reads customer records from a SQL table. Column names play the
// role of the CSV header, so the same capability negotiation applies.
type TableSource struct {
	DB    *gorm.DB
	Table string
}

func (s TableSource) Name() string {
	return "table " + s.Table
}

func (s TableSource) Rows(ctx context.Context) ([]string, [][]string, error) {
	if s.DB == nil {
		return nil, nil, errors.New("no database connection")
	}
	db := s.DB.WithContext(ctx)

	if !db.Migrator().HasTable(s.Table) {
		return nil, nil, fmt.Errorf("table %q does not exist", s.Table)
	}
	types, err := db.Migrator().ColumnTypes(s.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("column types: %w", err)
	}
	header := make([]string, 0, len(types))
	for _, ct := range types {
		header = append(header, ct.Name())
	}

	rows, err := db.Table(s.Table).Select(header).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]any, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", s.Table, err)
		}
		row := make([]string, len(header))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return header, out, nil
}
