package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fxhashETL/internal/model"
)

const insertTransactionSQL = `
	INSERT INTO transactions (
		transaction_type, timestamp, collection_id, collection_iteration, collection_name,
		collection_editions, collection_thumbnail, nft_thumbnail, artist_address, artist_alias,
		raw_account_id, price_tz, nft_mint_year, nft_mint_month, fx_nft_id, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
`

// Store provides Postgres persistence for normalized transactions.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutTransactions inserts transactions in a single batch. Rows are not
// deduplicated against earlier loads.
func (s *Store) PutTransactions(ctx context.Context, txs []model.NormalizedTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(insertTransactionSQL, transactionArgs(tx)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range txs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return nil
}

// RecordRun writes a progress row for one processed day.
func (s *Store) RecordRun(ctx context.Context, run model.IngestRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingest_runs (run_id, day, collected, stored, failed, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.RunID.String(), run.Day, run.Collected, run.Stored, run.Failed, run.StartedAt, run.CompletedAt)
	return err
}

// LoadState returns the last processed day for a name.
func (s *Store) LoadState(ctx context.Context, name string) (string, bool, error) {
	if name == "" {
		return "", false, fmt.Errorf("state name required")
	}
	var day string
	row := s.pool.QueryRow(ctx, `SELECT last_processed_day FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&day); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return day, true, nil
}

// SaveState upserts the last processed day for a name.
func (s *Store) SaveState(ctx context.Context, name string, day string) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_day, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_day = EXCLUDED.last_processed_day, updated_at = now()
	`, name, day)
	return err
}

func transactionArgs(tx model.NormalizedTransaction) []interface{} {
	var price *string
	if tx.PriceTz != nil {
		val := tx.PriceTz.String()
		price = &val
	}
	return []interface{}{
		string(tx.TransactionType),
		tx.Timestamp,
		tx.CollectionID,
		tx.CollectionIteration,
		tx.CollectionName,
		tx.CollectionEditions,
		tx.CollectionThumbnail,
		tx.NftThumbnail,
		tx.ArtistAddress,
		tx.ArtistAlias,
		tx.RawAccountID,
		price,
		tx.NftMintYear,
		tx.NftMintMonth,
		tx.FxNftID,
	}
}
