package transform

import (
	"errors"
	"fmt"

	"fxhashETL/internal/model"
)

// ErrUnknownEventTag is returned for tags outside the fxhash vocabulary.
var ErrUnknownEventTag = errors.New("unknown event tag")

// Classify maps a teztok event tag to its transaction type.
func Classify(tag model.EventTag) (model.TransactionType, error) {
	switch tag {
	case model.EventMintWithTicket,
		model.EventMintV4,
		model.EventMintV3,
		model.EventMintV2,
		model.EventMint:
		return model.PrimaryPurchase, nil
	case model.EventListingAccept,
		model.EventCollect,
		model.EventOfferAcceptV3,
		model.EventCollectionOfferAccept:
		return model.SecondaryPurchase, nil
	case model.EventOffer,
		model.EventListing:
		return model.Listing, nil
	case model.EventCancelOffer,
		model.EventListingCancel:
		return model.Delisting, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventTag, tag)
	}
}
