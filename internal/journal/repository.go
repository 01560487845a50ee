package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/tradejournal/backend/internal/contracts"
	"github.com/wonny/tradejournal/backend/pkg/database"
)

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS journal;

	CREATE TABLE IF NOT EXISTS journal.trades (
		id             TEXT NOT NULL,
		user_id        TEXT NOT NULL,
		account_id     TEXT NOT NULL DEFAULT '',
		symbol         TEXT NOT NULL DEFAULT '',
		asset_class    TEXT NOT NULL DEFAULT '',
		side           TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		entry_time     TIMESTAMPTZ,
		exit_time      TIMESTAMPTZ,
		profit_or_loss NUMERIC(20, 8),
		commission     NUMERIC(20, 8) NOT NULL DEFAULT 0,
		r_multiple     NUMERIC(12, 4),
		notes          TEXT NOT NULL DEFAULT '',
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS journal.trade_tags (
		user_id  TEXT NOT NULL,
		trade_id TEXT NOT NULL,
		position INT  NOT NULL,
		name     TEXT NOT NULL,
		PRIMARY KEY (user_id, trade_id, position),
		FOREIGN KEY (user_id, trade_id) REFERENCES journal.trades (user_id, id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_time
		ON journal.trades (user_id, account_id, (COALESCE(exit_time, entry_time)));
	CREATE INDEX IF NOT EXISTS idx_trades_updated_at ON journal.trades (updated_at);
`

// Repository reads and writes journal trades in PostgreSQL.
// Implements contracts.TradeRepository and contracts.TradeWriter.
// Trade ids are unique per user, so imports never touch another user's rows.
// ⭐ SSOT: 거래 데이터 저장/조회는 여기서만
type Repository struct {
	db *database.DB
}

// NewRepository creates a new journal repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the journal tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure journal schema: %w", err)
	}
	return nil
}

// ListTrades returns the trades matching filter, oldest first.
// Tags keep the order they were recorded in.
func (r *Repository) ListTrades(ctx context.Context, filter contracts.TradeFilter) ([]contracts.Trade, error) {
	query := `
		SELECT
			t.id, t.user_id, t.account_id, t.symbol, t.asset_class, t.side, t.status,
			t.entry_time, t.exit_time, t.profit_or_loss, t.commission, t.r_multiple, t.notes,
			COALESCE(
				array_agg(tg.name ORDER BY tg.position) FILTER (WHERE tg.name IS NOT NULL),
				'{}'
			) AS tags
		FROM journal.trades t
		LEFT JOIN journal.trade_tags tg ON tg.user_id = t.user_id AND tg.trade_id = t.id
		WHERE t.user_id = $1
		  AND ($2::text = '' OR t.account_id = $2)
		  AND ($3::timestamptz IS NULL OR COALESCE(t.exit_time, t.entry_time) >= $3)
		  AND ($4::timestamptz IS NULL OR COALESCE(t.exit_time, t.entry_time) <= $4)
		GROUP BY t.user_id, t.id
		ORDER BY COALESCE(t.exit_time, t.entry_time) ASC NULLS LAST, t.id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, filter.UserID, filter.AccountID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]contracts.Trade, 0)

	for rows.Next() {
		var (
			t       contracts.Trade
			side    string
			status  string
			tagList []string
		)

		err := rows.Scan(
			&t.ID, &t.UserID, &t.AccountID, &t.Symbol, &t.AssetClass, &side, &status,
			&t.EntryTime, &t.ExitTime, &t.ProfitOrLoss, &t.Commission, &t.RMultiple, &t.Notes,
			&tagList,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		t.Side = contracts.TradeSide(side)
		t.Status = contracts.TradeStatus(status)
		t.Tags = toTags(tagList)
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return trades, nil
}

// SaveTrades upserts trades and replaces their tags in one transaction.
// Returns the number of trade rows written.
func (r *Repository) SaveTrades(ctx context.Context, trades []contracts.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	upsert := `
		INSERT INTO journal.trades (
			id, user_id, account_id, symbol, asset_class, side, status,
			entry_time, exit_time, profit_or_loss, commission, r_multiple, notes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (user_id, id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			symbol = EXCLUDED.symbol,
			asset_class = EXCLUDED.asset_class,
			side = EXCLUDED.side,
			status = EXCLUDED.status,
			entry_time = EXCLUDED.entry_time,
			exit_time = EXCLUDED.exit_time,
			profit_or_loss = EXCLUDED.profit_or_loss,
			commission = EXCLUDED.commission,
			r_multiple = EXCLUDED.r_multiple,
			notes = EXCLUDED.notes,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	upserts := make(map[int]bool, len(trades))
	for _, t := range trades {
		upserts[batch.Len()] = true
		batch.Queue(upsert,
			t.ID, t.UserID, t.AccountID, t.Symbol, t.AssetClass, string(t.Side), string(t.Status),
			t.EntryTime, t.ExitTime, t.ProfitOrLoss, t.Commission, t.RMultiple, t.Notes,
		)
		batch.Queue(`DELETE FROM journal.trade_tags WHERE user_id = $1 AND trade_id = $2`, t.UserID, t.ID)
		for i, tag := range t.Tags {
			batch.Queue(`INSERT INTO journal.trade_tags (user_id, trade_id, position, name) VALUES ($1, $2, $3, $4)`,
				t.UserID, t.ID, i, tag.Name)
		}
	}

	var written int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("batch statement %d: %w", i, err)
			}
			if upserts[i] {
				written += tag.RowsAffected()
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save trades: %w", err)
	}

	return int(written), nil
}

// ListActiveScopes returns the filters worth pre-computing: every user with
// trades touched since the given time, once per account and once across all
// accounts.
func (r *Repository) ListActiveScopes(ctx context.Context, since time.Time) ([]contracts.TradeFilter, error) {
	query := `
		SELECT DISTINCT user_id, account_id FROM journal.trades
		WHERE updated_at >= $1 OR exit_time >= $1
		UNION
		SELECT DISTINCT user_id, '' FROM journal.trades
		WHERE updated_at >= $1 OR exit_time >= $1
		ORDER BY 1, 2
	`

	rows, err := r.db.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query active scopes: %w", err)
	}

	scopes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.TradeFilter, error) {
		var f contracts.TradeFilter
		err := row.Scan(&f.UserID, &f.AccountID)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan active scopes: %w", err)
	}

	return scopes, nil
}

func toTags(names []string) []contracts.Tag {
	if len(names) == 0 {
		return nil
	}
	tags := make([]contracts.Tag, len(names))
	for i, name := range names {
		tags[i] = contracts.Tag{Name: name}
	}
	return tags
}
