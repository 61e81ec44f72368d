package domain

// EstimatedAnnualRevenue estimates a listing's yearly gross from its
// nightly price and review volume. Reviews proxy bookings at 2.5x,
// capped at 25 booked nights a month.
func (l *ScrapedListing) EstimatedAnnualRevenue() float64 {
	if l.PricePerNight == nil || *l.PricePerNight <= 0 {
		return 0
	}
	reviews := 0.0
	if l.ReviewCount != nil {
		reviews = float64(*l.ReviewCount)
	}
	nights := reviews * 2.5
	if nights > 25 {
		nights = 25
	}
	return *l.PricePerNight * nights * 12
}
