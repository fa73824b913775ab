package transform

import "github.com/shopspring/decimal"

// Defaults is the placeholder policy for optional upstream fields. A token may
// not have collection metadata attached yet when an event is indexed, so every
// absent value is replaced by a fixed sentinel instead of null. The numeric
// sentinels only distort collection-level rollups.
type Defaults struct {
	CollectionID        int64
	CollectionIteration int64
	CollectionName      string
	CollectionEditions  int64
	CollectionThumbnail string
	NftThumbnail        string
	ArtistAddress       string
	ArtistAlias         string
	// PriceTz applies to purchases only; listings keep a null price.
	PriceTz decimal.Decimal
}

// StandardDefaults returns the sentinels used by the loaded transactions table.
func StandardDefaults() Defaults {
	return Defaults{
		CollectionID:        999999,
		CollectionIteration: 999999,
		CollectionName:      "No collection name",
		CollectionEditions:  0,
		CollectionThumbnail: "",
		NftThumbnail:        "",
		ArtistAddress:       "",
		ArtistAlias:         "No artist alias",
		PriceTz:             decimal.Zero,
	}
}

func int64Or(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
