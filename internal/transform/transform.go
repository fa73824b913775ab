package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxhashETL/internal/metrics"
	"fxhashETL/internal/model"
)

// mutezExp scales mutez to tez.
const mutezExp = -6

var (
	ErrMissingToken     = errors.New("event has no token")
	ErrMissingTokenID   = errors.New("token is missing fa2 address or token id")
	ErrInvalidTimestamp = errors.New("invalid event timestamp")
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Result is the outcome of transforming one raw event. Exactly one of
// Transaction and Err is set.
type Result struct {
	Transaction *model.NormalizedTransaction
	Err         error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Transformer converts raw teztok events into normalized transactions.
type Transformer struct {
	defaults Defaults
	logger   *zap.Logger
}

func NewTransformer(defaults Defaults, logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{defaults: defaults, logger: logger}
}

// Transform classifies event and derives every NormalizedTransaction field.
// Failures are returned in the Result and never affect other events.
func (t *Transformer) Transform(event model.RawEvent) Result {
	tx, err := t.build(event)
	if err != nil {
		return t.reject(event, err)
	}
	metrics.TransformsTotal.WithLabelValues("ok").Inc()
	return Result{Transaction: tx}
}

// TransformRecord decodes one upstream record and transforms it. The returned
// event holds the identifiers that could be read, even when decoding fails.
func (t *Transformer) TransformRecord(data []byte) (model.RawEvent, Result) {
	event, err := model.DecodeRawEvent(data)
	if err != nil {
		return event, t.reject(event, err)
	}
	return event, t.Transform(event)
}

// TransformRecords is TransformAll over undecoded upstream records. A record
// that does not decode fails alone.
func (t *Transformer) TransformRecords(records []json.RawMessage) ([]model.NormalizedTransaction, []model.TransformError) {
	txs := make([]model.NormalizedTransaction, 0, len(records))
	var failures []model.TransformError
	for _, record := range records {
		event, res := t.TransformRecord(record)
		if !res.OK() {
			failures = append(failures, model.NewTransformError(event, res.Err))
			continue
		}
		txs = append(txs, *res.Transaction)
	}
	return txs, failures
}

// TransformAll transforms every event in order, splitting successes from failures.
func (t *Transformer) TransformAll(events []model.RawEvent) ([]model.NormalizedTransaction, []model.TransformError) {
	txs := make([]model.NormalizedTransaction, 0, len(events))
	var failures []model.TransformError
	for _, event := range events {
		res := t.Transform(event)
		if !res.OK() {
			failures = append(failures, model.NewTransformError(event, res.Err))
			continue
		}
		txs = append(txs, *res.Transaction)
	}
	return txs, failures
}

func (t *Transformer) reject(event model.RawEvent, err error) Result {
	metrics.TransformsTotal.WithLabelValues("failed").Inc()
	t.logger.Warn("transform event",
		zap.Error(err),
		zap.String("type", string(event.Type)),
		zap.String("timestamp", event.Timestamp),
	)
	return Result{Err: err}
}

func (t *Transformer) build(event model.RawEvent) (*model.NormalizedTransaction, error) {
	txType, err := Classify(event.Type)
	if err != nil {
		return nil, err
	}

	token := event.Token
	if token == nil {
		return nil, ErrMissingToken
	}
	if token.FA2Address == "" || token.TokenID == "" {
		return nil, ErrMissingTokenID
	}

	d := t.defaults
	tx := &model.NormalizedTransaction{
		TransactionType:     txType,
		Timestamp:           event.Timestamp,
		CollectionID:        int64Or(token.FxIssuerID, d.CollectionID),
		CollectionIteration: int64Or(token.FxIteration, d.CollectionIteration),
		CollectionName:      stringOr(token.FxCollectionName, d.CollectionName),
		CollectionEditions:  int64Or(token.FxCollectionEditions, d.CollectionEditions),
		CollectionThumbnail: stringOr(token.FxCollectionThumbnailURI, d.CollectionThumbnail),
		NftThumbnail:        stringOr(token.ThumbnailURI, d.NftThumbnail),
		ArtistAddress:       stringOr(event.ArtistAddress, d.ArtistAddress),
		ArtistAlias:         d.ArtistAlias,
	}
	if event.ArtistProfile != nil {
		tx.ArtistAlias = stringOr(event.ArtistProfile.Alias, d.ArtistAlias)
	}

	// buyer is the scoring account for purchases, seller for listings
	if txType.IsPurchase() {
		price := d.PriceTz
		if event.Price != nil {
			price = decimal.New(int64(*event.Price), mutezExp)
		}
		tx.RawAccountID = event.BuyerAddress
		tx.PriceTz = &price
	} else {
		tx.RawAccountID = event.SellerAddress
	}

	if txType == model.PrimaryPurchase {
		ts, err := parseTimestamp(event.Timestamp)
		if err != nil {
			return nil, err
		}
		year, month := ts.Year(), int(ts.Month())
		tx.NftMintYear = &year
		tx.NftMintMonth = &month
	}

	tx.FxNftID = NftID(token.FA2Address, token.TokenID)
	return tx, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}
