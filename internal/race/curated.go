package race

// Curated returns the hand-maintained seed list of well-known marathons.
// These records are dateless on purpose: the crawl fills dates in when an
// authoritative source publishes them, and dateless records survive the
// past-date filter.
func Curated() []Race {
	return []Race{
		{
			Name:       "Boston Marathon",
			City:       "Boston",
			Region:     "MA",
			Country:    "US",
			DistanceKm: MarathonDistanceKm,
			Website:    "https://www.baa.org/races/boston-marathon",
			Source:     "curated",
			Status:     StatusScheduled,
		},
		{
			Name:       "London Marathon",
			City:       "London",
			Country:    "GB",
			DistanceKm: MarathonDistanceKm,
			Website:    "https://www.tcslondonmarathon.com",
			Source:     "curated",
			Status:     StatusScheduled,
		},
		{
			Name:       "Berlin Marathon",
			City:       "Berlin",
			Country:    "DE",
			DistanceKm: MarathonDistanceKm,
			Website:    "https://www.bmw-berlin-marathon.com",
			Source:     "curated",
			Status:     StatusScheduled,
		},
		{
			Name:       "Chicago Marathon",
			City:       "Chicago",
			Region:     "IL",
			Country:    "US",
			DistanceKm: MarathonDistanceKm,
			Website:    "https://www.chicagomarathon.com",
			Source:     "curated",
			Status:     StatusScheduled,
		},
		{
			Name:       "New York City Marathon",
			City:       "New York",
			Region:     "NY",
			Country:    "US",
			DistanceKm: MarathonDistanceKm,
			Website:    "https://www.nycmarathon.org",
			Source:     "curated",
			Status:     StatusScheduled,
		},
		{
			Name:       "Tokyo Marathon",
			City:       "Tokyo",
			Country:    "JP",
			DistanceKm: MarathonDistanceKm,
			Website:    "https://www.marathon.tokyo",
			Source:     "curated",
			Status:     StatusScheduled,
		},
	}
}
