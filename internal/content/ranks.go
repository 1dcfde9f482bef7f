package content

// Source rank tiers. Higher ranks win duplicate resolution.
const (
	RankOfficial  = 100
	RankMedia     = 60
	RankDefault   = 40
	RankCommunity = 20
)

// SourceRanks maps a source name (Item.Source) to its trust rank.
type SourceRanks map[string]int

// Rank returns the rank of source, or RankDefault when it is not listed.
func (r SourceRanks) Rank(source string) int {
	if rank, ok := r[source]; ok {
		return rank
	}
	return RankDefault
}

// DefaultSourceRanks returns the built-in trust table.
func DefaultSourceRanks() SourceRanks {
	return SourceRanks{
		"National Weather Service":             RankOfficial,
		"NOAA Space Weather Prediction Center": RankOfficial,
		"National Hurricane Center":            RankOfficial,
		"Storm Prediction Center":              RankOfficial,
		"NASA":                                 RankOfficial,
		"USGS":                                 RankOfficial,
		"Reuters":                              RankMedia,
		"Associated Press":                     RankMedia,
		"BBC News":                             RankMedia,
		"The Weather Channel":                  RankMedia,
		"Space.com":                            RankMedia,
		"Reddit":                               RankCommunity,
		"Mastodon":                             RankCommunity,
		"Bluesky":                              RankCommunity,
	}
}
