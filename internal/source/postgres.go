package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/leadscan/internal/contracts"
)

// PostgresSource loads the price table from data.daily_prices
// ⭐ SSOT: DB 시세 조회는 여기서만 (읽기 전용)
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a Postgres price source
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

const loadPricesQuery = `
	SELECT trade_date, stock_code,
		prev_close::float8, open_price::float8, high_price::float8,
		low_price::float8, close_price::float8
	FROM data.daily_prices
	ORDER BY trade_date ASC, stock_code ASC
`

// Load reads every row once
func (s *PostgresSource) Load(ctx context.Context) (*contracts.PriceTable, error) {
	rows, err := s.pool.Query(ctx, loadPricesQuery)
	if err != nil {
		return nil, fmt.Errorf("query daily prices: %w", err)
	}

	records, err := scanPrices(rows)
	if err != nil {
		return nil, fmt.Errorf("scan daily prices: %w", err)
	}

	table, err := contracts.NewPriceTable(records)
	if err != nil {
		return nil, fmt.Errorf("build price table: %w", err)
	}
	return table, nil
}

func scanPrices(rows pgx.Rows) ([]contracts.PriceRecord, error) {
	defer rows.Close()

	records := make([]contracts.PriceRecord, 0)
	for rows.Next() {
		var p contracts.PriceRecord
		if err := rows.Scan(&p.Date, &p.Symbol, &p.PrevClose, &p.Open, &p.High, &p.Low, &p.Close); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
