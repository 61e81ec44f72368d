// Package scoring computes deterministic weighted multi-factor risk
// scores for landlords, scraped listings, and geographic areas.
//
// Each scorer is a pure function of store reads: same inputs, same
// score. All weights and level thresholds come from configuration.
// Landlord and listing overall scores run 0..100 with higher = safer;
// area scores and listing investigation priority invert that, higher
// meaning worse.
package scoring
