package indexer

const subsidyHalvingInterval = 210_000
const initialSubsidy = 50 * 100_000_000 // sats

// blockSubsidy returns the block reward at height under the standard
// Bitcoin halving schedule.
func blockSubsidy(height int32) uint64 {
	halvings := height / subsidyHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return initialSubsidy >> uint(halvings)
}

// firstSubsidySat returns the ordinal number of the first satoshi minted
// by height's coinbase: the cumulative subsidy issued by every earlier
// height. Purely a function of height under the halving schedule, so
// unlike a UTXO's first sat (tracker.SatRangeResolver's concern, which
// needs the full embedded index) this never requires external state.
func firstSubsidySat(height int32) uint64 {
	var total uint64
	var h int32
	for h < height {
		epochEnd := ((h / subsidyHalvingInterval) + 1) * subsidyHalvingInterval
		if epochEnd > height {
			epochEnd = height
		}
		total += uint64(epochEnd-h) * blockSubsidy(h)
		h = epochEnd
	}
	return total
}
