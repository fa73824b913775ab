package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RawEvent is an fxhash event as returned by the teztok events query.
type RawEvent struct {
	Type          EventTag       `json:"type"`
	Timestamp     string         `json:"timestamp"`
	Price         *Mutez         `json:"price"`
	BuyerAddress  string         `json:"buyer_address"`
	SellerAddress string         `json:"seller_address"`
	ArtistAddress *string        `json:"artist_address"`
	ArtistProfile *ArtistProfile `json:"artist_profile"`
	Token         *Token         `json:"token"`
}

// ArtistProfile is the optional profile attached to the token's artist.
type ArtistProfile struct {
	Alias *string `json:"alias"`
}

// Token carries the token identifiers and optional fxhash collection metadata.
type Token struct {
	FA2Address               string  `json:"fa2_address"`
	TokenID                  string  `json:"token_id"`
	FxIssuerID               *int64  `json:"fx_issuer_id"`
	FxIteration              *int64  `json:"fx_iteration"`
	FxCollectionName         *string `json:"fx_collection_name"`
	FxCollectionEditions     *int64  `json:"fx_collection_editions"`
	FxCollectionThumbnailURI *string `json:"fx_collection_thumbnail_uri"`
	ThumbnailURI             *string `json:"thumbnail_uri"`
}

// UnmarshalJSON accepts the numeric metadata columns as numbers or strings.
func (t *Token) UnmarshalJSON(data []byte) error {
	type Alias Token
	aux := struct {
		*Alias
		FxIssuerID           *bigint `json:"fx_issuer_id"`
		FxIteration          *bigint `json:"fx_iteration"`
		FxCollectionEditions *bigint `json:"fx_collection_editions"`
	}{Alias: (*Alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.FxIssuerID = aux.FxIssuerID.int64Ptr()
	t.FxIteration = aux.FxIteration.int64Ptr()
	t.FxCollectionEditions = aux.FxCollectionEditions.int64Ptr()
	return nil
}

// Mutez is an amount in the smallest tez unit (1 tez = 1_000_000 mutez).
// teztok encodes bigint columns as strings; older dumps carry plain numbers.
type Mutez int64

func (m *Mutez) UnmarshalJSON(data []byte) error {
	val, ok, err := parseBigint(data)
	if err != nil {
		return fmt.Errorf("invalid mutez amount %s: %w", data, err)
	}
	if ok {
		*m = Mutez(val)
	}
	return nil
}

type bigint int64

func (b *bigint) UnmarshalJSON(data []byte) error {
	val, ok, err := parseBigint(data)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	if ok {
		*b = bigint(val)
	}
	return nil
}

func (b *bigint) int64Ptr() *int64 {
	if b == nil {
		return nil
	}
	v := int64(*b)
	return &v
}

// parseBigint reads a JSON number or numeric string. ok is false for null.
func parseBigint(data []byte) (int64, bool, error) {
	if bytes.Equal(data, []byte("null")) {
		return 0, false, nil
	}
	val, err := strconv.ParseInt(string(bytes.Trim(data, `"`)), 10, 64)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// eventHeader holds the identifying fields of an event. Its fields have no
// custom decoding, so it still fills when the full record does not decode.
type eventHeader struct {
	Type      EventTag `json:"type"`
	Timestamp string   `json:"timestamp"`
	Token     *struct {
		FA2Address string `json:"fa2_address"`
		TokenID    string `json:"token_id"`
	} `json:"token"`
}

// DecodeRawEvent decodes one upstream record. On failure the returned event
// carries whatever identifying fields could be read, for error reporting.
func DecodeRawEvent(data []byte) (RawEvent, error) {
	var event RawEvent
	if err := json.Unmarshal(data, &event); err != nil {
		var header eventHeader
		_ = json.Unmarshal(data, &header)
		partial := RawEvent{Type: header.Type, Timestamp: header.Timestamp}
		if header.Token != nil {
			partial.Token = &Token{FA2Address: header.Token.FA2Address, TokenID: header.Token.TokenID}
		}
		return partial, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return event, nil
}
