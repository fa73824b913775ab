package model

// EventTag is the teztok event type discriminator for fxhash activity.
type EventTag string

const (
	EventMintWithTicket        EventTag = "FX_MINT_WITH_TICKET"
	EventMintV4                EventTag = "FX_MINT_V4"
	EventMintV3                EventTag = "FX_MINT_V3"
	EventMintV2                EventTag = "FX_MINT_V2"
	EventMint                  EventTag = "FX_MINT"
	EventListingAccept         EventTag = "FX_LISTING_ACCEPT"
	EventCollect               EventTag = "FX_COLLECT"
	EventOfferAcceptV3         EventTag = "FX_OFFER_ACCEPT_V3"
	EventCollectionOfferAccept EventTag = "FX_COLLECTION_OFFER_ACCEPT"
	EventOffer                 EventTag = "FX_OFFER"
	EventListing               EventTag = "FX_LISTING"
	EventCancelOffer           EventTag = "FX_CANCEL_OFFER"
	EventListingCancel         EventTag = "FX_LISTING_CANCEL"
)

// KnownEventTags returns every tag the ETL requests from teztok, in query order.
//
// FX_MINT and the marketplace v1 tags (FX_COLLECT, FX_OFFER, FX_CANCEL_OFFER)
// only apply to beta projects. FX_OFFER_V3 is deliberately absent.
func KnownEventTags() []EventTag {
	return []EventTag{
		EventMintWithTicket,
		EventMintV4,
		EventMintV3,
		EventMintV2,
		EventMint,
		EventListingAccept,
		EventCollect,
		EventOfferAcceptV3,
		EventCollectionOfferAccept,
		EventOffer,
		EventListing,
		EventCancelOffer,
		EventListingCancel,
	}
}
