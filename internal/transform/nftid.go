package transform

const nftIDSuffixLen = 5

// NftID builds the fx_nft_id for a token, e.g. "sAHCE_1".
//
// token_id restarted from small integers with each fxhash contract generation
// (beta KT1KEa8z6vWXDJrVqtMrAeDVzsvxat3kHaCE, 1.0 KT1U6EHmNxJTkvaWJ4ThczG4FSDaHC21ssvi,
// params KT1EfsNuqwLAWDd3o4pvfUx1CAh5GMdTrRvr), so the id is qualified with
// the tail of the fa2 contract address.
func NftID(fa2Address, tokenID string) string {
	suffix := fa2Address
	if len(suffix) > nftIDSuffixLen {
		suffix = suffix[len(suffix)-nftIDSuffixLen:]
	}
	return suffix + "_" + tokenID
}
