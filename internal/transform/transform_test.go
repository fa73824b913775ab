package transform

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxhashETL/internal/metrics"
	"fxhashETL/internal/model"
)

const fa2V1 = "KT1U6EHmNxJTkvaWJ4ThczG4FSDaHC21ssvi"

func newEvent(tag model.EventTag, price int64) model.RawEvent {
	p := model.Mutez(price)
	issuer := int64(1234)
	iteration := int64(17)
	name := "Fidenza-like"
	editions := int64(256)
	collThumb := "ipfs://collection"
	thumb := "ipfs://token"
	artist := "tz1artist"
	alias := "someone"
	return model.RawEvent{
		Type:          tag,
		Timestamp:     "2022-04-02T10:11:12+00:00",
		Price:         &p,
		BuyerAddress:  "tz1buyer",
		SellerAddress: "tz1seller",
		ArtistAddress: &artist,
		ArtistProfile: &model.ArtistProfile{Alias: &alias},
		Token: &model.Token{
			FA2Address:               fa2V1,
			TokenID:                  "42",
			FxIssuerID:               &issuer,
			FxIteration:              &iteration,
			FxCollectionName:         &name,
			FxCollectionEditions:     &editions,
			FxCollectionThumbnailURI: &collThumb,
			ThumbnailURI:             &thumb,
		},
	}
}

func newTransformer() *Transformer {
	return NewTransformer(StandardDefaults(), zap.NewNop())
}

func TestTransformPrimaryPurchase(t *testing.T) {
	res := newTransformer().Transform(newEvent(model.EventMintV3, 2_500_000))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	year, month := 2022, 4
	price := decimal.RequireFromString("2.5")
	want := model.NormalizedTransaction{
		TransactionType:     model.PrimaryPurchase,
		Timestamp:           "2022-04-02T10:11:12+00:00",
		CollectionID:        1234,
		CollectionIteration: 17,
		CollectionName:      "Fidenza-like",
		CollectionEditions:  256,
		CollectionThumbnail: "ipfs://collection",
		NftThumbnail:        "ipfs://token",
		ArtistAddress:       "tz1artist",
		ArtistAlias:         "someone",
		RawAccountID:        "tz1buyer",
		NftMintYear:         &year,
		NftMintMonth:        &month,
		FxNftID:             "1ssvi_42",
	}

	got := *res.Transaction
	if got.PriceTz == nil || !got.PriceTz.Equal(price) {
		t.Fatalf("price mismatch: %v", got.PriceTz)
	}
	got.PriceTz = nil
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("transaction mismatch:\n%+v\n%+v", got, want)
	}
}

func TestTransformSecondaryPurchase(t *testing.T) {
	res := newTransformer().Transform(newEvent(model.EventListingAccept, 1))
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	tx := res.Transaction
	if tx.RawAccountID != "tz1buyer" {
		t.Fatalf("raw account should be buyer, got %s", tx.RawAccountID)
	}
	if tx.PriceTz == nil || tx.PriceTz.String() != "0.000001" {
		t.Fatalf("price mismatch: %v", tx.PriceTz)
	}
	if tx.NftMintYear != nil || tx.NftMintMonth != nil {
		t.Fatalf("mint year/month only apply to primary purchases")
	}
}

func TestTransformListingRoles(t *testing.T) {
	for _, tag := range []model.EventTag{model.EventListing, model.EventOffer, model.EventListingCancel, model.EventCancelOffer} {
		res := newTransformer().Transform(newEvent(tag, 9_000_000))
		if !res.OK() {
			t.Fatalf("%s: unexpected error: %v", tag, res.Err)
		}
		tx := res.Transaction
		if tx.RawAccountID != "tz1seller" {
			t.Fatalf("%s: raw account should be seller, got %s", tag, tx.RawAccountID)
		}
		if tx.PriceTz != nil {
			t.Fatalf("%s: listing price should be nil", tag)
		}
		if tx.NftMintYear != nil || tx.NftMintMonth != nil {
			t.Fatalf("%s: mint year/month should be nil", tag)
		}
	}
}

func TestTransformListingWithoutPrice(t *testing.T) {
	event := newEvent(model.EventListingCancel, 0)
	event.Price = nil
	if res := newTransformer().Transform(event); !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
}

func TestTransformPurchaseWithoutPrice(t *testing.T) {
	for _, tag := range []model.EventTag{model.EventMintV4, model.EventListingAccept} {
		event := newEvent(tag, 0)
		event.Price = nil
		res := newTransformer().Transform(event)
		if !res.OK() {
			t.Fatalf("%s: unexpected error: %v", tag, res.Err)
		}
		if res.Transaction.PriceTz == nil || !res.Transaction.PriceTz.IsZero() {
			t.Fatalf("%s: expected zero price, got %v", tag, res.Transaction.PriceTz)
		}
		if res.Transaction.RawAccountID != "tz1buyer" {
			t.Fatalf("%s: buyer should be kept, got %q", tag, res.Transaction.RawAccountID)
		}
	}
}

func TestTransformPriceConversionExact(t *testing.T) {
	for _, mutez := range []int64{0, 1, 999_999, 1_000_000, 123_456_789, 9_007_199_254_740_993} {
		res := newTransformer().Transform(newEvent(model.EventCollect, mutez))
		if !res.OK() {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		want := decimal.NewFromInt(mutez).Div(decimal.NewFromInt(1_000_000))
		if !res.Transaction.PriceTz.Equal(want) {
			t.Fatalf("price %d: got %s want %s", mutez, res.Transaction.PriceTz, want)
		}
	}
}

func TestTransformMissingMetadataUsesDefaults(t *testing.T) {
	event := newEvent(model.EventMint, 1_000_000)
	event.ArtistAddress = nil
	event.ArtistProfile = nil
	event.Token = &model.Token{FA2Address: "KT1KEa8z6vWXDJrVqtMrAeDVzsvxat3kHaCE", TokenID: "5"}

	res := newTransformer().Transform(event)
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	tx := res.Transaction
	d := StandardDefaults()
	if tx.CollectionID != 999999 || tx.CollectionIteration != 999999 {
		t.Fatalf("collection sentinels mismatch: %d %d", tx.CollectionID, tx.CollectionIteration)
	}
	if tx.CollectionName != d.CollectionName || tx.CollectionEditions != 0 {
		t.Fatalf("collection defaults mismatch: %+v", tx)
	}
	if tx.CollectionThumbnail != "" || tx.NftThumbnail != "" || tx.ArtistAddress != "" {
		t.Fatalf("empty string defaults mismatch: %+v", tx)
	}
	if tx.ArtistAlias != "No artist alias" {
		t.Fatalf("artist alias mismatch: %s", tx.ArtistAlias)
	}
	if tx.FxNftID != "kHaCE_5" {
		t.Fatalf("nft id mismatch: %s", tx.FxNftID)
	}
}

func TestTransformProfileWithoutAlias(t *testing.T) {
	event := newEvent(model.EventListing, 1)
	event.ArtistProfile = &model.ArtistProfile{}
	res := newTransformer().Transform(event)
	if !res.OK() || res.Transaction.ArtistAlias != "No artist alias" {
		t.Fatalf("alias default not applied: %+v", res)
	}
}

func TestStandardDefaults(t *testing.T) {
	want := Defaults{
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
	if got := StandardDefaults(); !reflect.DeepEqual(got, want) {
		t.Fatalf("defaults mismatch: %+v", got)
	}
}

func TestTransformFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.RawEvent)
		want   error
	}{
		{"unknown tag", func(e *model.RawEvent) { e.Type = "FX_OFFER_V3" }, ErrUnknownEventTag},
		{"missing token", func(e *model.RawEvent) { e.Token = nil }, ErrMissingToken},
		{"missing fa2", func(e *model.RawEvent) { e.Token.FA2Address = "" }, ErrMissingTokenID},
		{"missing token id", func(e *model.RawEvent) { e.Token.TokenID = "" }, ErrMissingTokenID},
		{"bad timestamp", func(e *model.RawEvent) { e.Timestamp = "yesterday" }, ErrInvalidTimestamp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := newEvent(model.EventMintV2, 1_000_000)
			tc.mutate(&event)
			res := newTransformer().Transform(event)
			if res.OK() || res.Transaction != nil {
				t.Fatalf("expected failure")
			}
			if !errors.Is(res.Err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, res.Err)
			}
		})
	}
}

func TestTransformTimestampWithoutOffset(t *testing.T) {
	event := newEvent(model.EventMintWithTicket, 1)
	event.Timestamp = "2023-12-31T23:59:59"
	res := newTransformer().Transform(event)
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if *res.Transaction.NftMintYear != 2023 || *res.Transaction.NftMintMonth != 12 {
		t.Fatalf("year/month mismatch")
	}
}

func TestTransformYearMonthUsesUTC(t *testing.T) {
	event := newEvent(model.EventMintV4, 1)
	event.Timestamp = "2023-01-01T01:30:00+02:00"
	res := newTransformer().Transform(event)
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if *res.Transaction.NftMintYear != 2022 || *res.Transaction.NftMintMonth != 12 {
		t.Fatalf("expected 2022-12, got %d-%d", *res.Transaction.NftMintYear, *res.Transaction.NftMintMonth)
	}
	if res.Transaction.Timestamp != event.Timestamp {
		t.Fatalf("timestamp should be copied verbatim")
	}
}

func TestTransformRecordsIsolatesMalformed(t *testing.T) {
	good, err := json.Marshal(newEvent(model.EventCollect, 3_000_000))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	records := []json.RawMessage{
		good,
		json.RawMessage(`{"type":"FX_COLLECT","timestamp":"2022-04-02T10:11:12+00:00","price":"1000000","token":{"fa2_address":"` + fa2V1 + `","token_id":"7","fx_collection_editions":"many"}}`),
		json.RawMessage(`{"type":"FX_LISTING","timestamp":"2022-04-02T10:11:12+00:00","price":"1000000","seller_address":"tz1s","token":{"fa2_address":"` + fa2V1 + `","token_id":"8","fx_collection_editions":"256"}}`),
	}

	failedBefore := testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("failed"))

	txs, failures := newTransformer().TransformRecords(records)
	if len(txs) != 2 || len(failures) != 1 {
		t.Fatalf("expected 2 transactions and 1 failure, got %d and %d", len(txs), len(failures))
	}
	if txs[0].FxNftID != "1ssvi_42" || txs[1].FxNftID != "1ssvi_8" || txs[1].CollectionEditions != 256 {
		t.Fatalf("transactions mismatch: %+v", txs)
	}
	if failures[0].TokenID != "7" || failures[0].Type != model.EventCollect {
		t.Fatalf("failure should keep identifiers: %+v", failures[0])
	}
	if got := testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("failed")) - failedBefore; got != 1 {
		t.Fatalf("failed counter delta %v", got)
	}
}

func TestTransformAllIsolatesFailures(t *testing.T) {
	events := make([]model.RawEvent, 0, 10)
	for i := 0; i < 10; i++ {
		events = append(events, newEvent(model.EventCollect, int64(i+1)*1_000_000))
	}
	events[4].Token = nil

	failedBefore := testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("failed"))
	okBefore := testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("ok"))

	txs, failures := newTransformer().TransformAll(events)
	if len(txs) != 9 {
		t.Fatalf("expected 9 transactions, got %d", len(txs))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Type != model.EventCollect || failures[0].Error != ErrMissingToken.Error() {
		t.Fatalf("failure mismatch: %+v", failures[0])
	}
	if !txs[4].PriceTz.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("order not preserved: %s", txs[4].PriceTz)
	}

	if got := testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("failed")) - failedBefore; got != 1 {
		t.Fatalf("failed counter delta %v", got)
	}
	if got := testutil.ToFloat64(metrics.TransformsTotal.WithLabelValues("ok")) - okBefore; got != 9 {
		t.Fatalf("ok counter delta %v", got)
	}
}
