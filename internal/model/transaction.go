package model

import "github.com/shopspring/decimal"

// NormalizedTransaction is the storage representation of a classified fxhash event.
type NormalizedTransaction struct {
	TransactionType     TransactionType  `json:"transaction_type"`
	Timestamp           string           `json:"timestamp"`
	CollectionID        int64            `json:"collection_id"`
	CollectionIteration int64            `json:"collection_iteration"`
	CollectionName      string           `json:"collection_name"`
	CollectionEditions  int64            `json:"collection_editions"`
	CollectionThumbnail string           `json:"collection_thumbnail"`
	NftThumbnail        string           `json:"nft_thumbnail"`
	ArtistAddress       string           `json:"artist_address"`
	ArtistAlias         string           `json:"artist_alias"`
	RawAccountID        string           `json:"raw_account_id"`
	PriceTz             *decimal.Decimal `json:"price_tz"`
	NftMintYear         *int             `json:"nft_mint_year"`
	NftMintMonth        *int             `json:"nft_mint_month"`
	FxNftID             string           `json:"fx_nft_id"`
}
