package tidb

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fxhashETL/internal/model"
)

const defaultBatchSize = 500

// transactionRow maps a NormalizedTransaction onto the transactions table.
type transactionRow struct {
	TransactionType     string           `gorm:"column:transaction_type"`
	Timestamp           string           `gorm:"column:timestamp"`
	CollectionID        int64            `gorm:"column:collection_id"`
	CollectionIteration int64            `gorm:"column:collection_iteration"`
	CollectionName      string           `gorm:"column:collection_name"`
	CollectionEditions  int64            `gorm:"column:collection_editions"`
	CollectionThumbnail string           `gorm:"column:collection_thumbnail"`
	NftThumbnail        string           `gorm:"column:nft_thumbnail"`
	ArtistAddress       string           `gorm:"column:artist_address"`
	ArtistAlias         string           `gorm:"column:artist_alias"`
	RawAccountID        string           `gorm:"column:raw_account_id"`
	PriceTz             *decimal.Decimal `gorm:"column:price_tz;type:decimal(24,6)"`
	NftMintYear         *int             `gorm:"column:nft_mint_year"`
	NftMintMonth        *int             `gorm:"column:nft_mint_month"`
	FxNftID             string           `gorm:"column:fx_nft_id"`
}

func (transactionRow) TableName() string {
	return "transactions"
}

// Store writes normalized transactions to TiDB or MySQL.
type Store struct {
	db        *gorm.DB
	batchSize int
}

// NewStore opens a connection, e.g. "user:pass@tcp(host:4000)/fxhash?charset=utf8mb4&parseTime=True".
func NewStore(dsn string, batchSize int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("tidb dsn is required")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{db: db, batchSize: batchSize}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PutTransactions inserts transactions in batches of the configured size.
func (s *Store) PutTransactions(ctx context.Context, txs []model.NormalizedTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := toRows(txs)
	if err := s.db.WithContext(ctx).CreateInBatches(rows, s.batchSize).Error; err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return nil
}

func toRows(txs []model.NormalizedTransaction) []transactionRow {
	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow{
			TransactionType:     string(tx.TransactionType),
			Timestamp:           tx.Timestamp,
			CollectionID:        tx.CollectionID,
			CollectionIteration: tx.CollectionIteration,
			CollectionName:      tx.CollectionName,
			CollectionEditions:  tx.CollectionEditions,
			CollectionThumbnail: tx.CollectionThumbnail,
			NftThumbnail:        tx.NftThumbnail,
			ArtistAddress:       tx.ArtistAddress,
			ArtistAlias:         tx.ArtistAlias,
			RawAccountID:        tx.RawAccountID,
			PriceTz:             tx.PriceTz,
			NftMintYear:         tx.NftMintYear,
			NftMintMonth:        tx.NftMintMonth,
			FxNftID:             tx.FxNftID,
		})
	}
	return rows
}
