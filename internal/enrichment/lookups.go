package enrichment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs the given lookups concurrently, each under the adapter
// timeout, and returns results in call order.
func (o *Orchestrator) fanOut(ctx context.Context, lookups ...func(context.Context) Result) []Result {
	results := make([]Result, len(lookups))
	g, gctx := errgroup.WithContext(ctx)
	for i, lookup := range lookups {
		i, lookup := i, lookup
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, o.timeout)
			defer cancel()
			results[i] = lookup(callCtx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// PhoneLookup runs only the phone-family adapters.
func (o *Orchestrator) PhoneLookup(ctx context.Context, phone string) []Result {
	return o.fanOut(ctx,
		func(c context.Context) Result { return o.truecaller.Lookup(c, phone) },
		func(c context.Context) Result { return o.numverify.Lookup(c, phone) },
		func(c context.Context) Result { return AnalyzeLocalPhone(phone) },
	)
}

// EmailLookup runs only the email-family adapters.
func (o *Orchestrator) EmailLookup(ctx context.Context, email string) []Result {
	return o.fanOut(ctx,
		func(c context.Context) Result { return o.fullcontact.Lookup(c, email) },
		func(c context.Context) Result { return o.emailrep.Lookup(c, email) },
		func(c context.Context) Result { return o.hibp.Lookup(c, email) },
	)
}

// SanctionsCheck runs the full sanctions family: the broad screen plus
// the OFAC, UN, and EU dataset-scoped screens.
func (o *Orchestrator) SanctionsCheck(ctx context.Context, q SanctionsQuery) []Result {
	return o.fanOut(ctx,
		func(c context.Context) Result { return o.sanctions.CheckSanctions(c, q) },
		func(c context.Context) Result { return o.sanctions.CheckOFAC(c, q) },
		func(c context.Context) Result { return o.sanctions.CheckUN(c, q) },
		func(c context.Context) Result { return o.sanctions.CheckEU(c, q) },
	)
}

// WatchlistCheck runs the law-enforcement watchlist family.
func (o *Orchestrator) WatchlistCheck(ctx context.Context, name, nationality string) []Result {
	return o.fanOut(ctx,
		func(c context.Context) Result {
			return o.interpol.Search(c, InterpolQuery{Name: name, Nationality: nationality})
		},
		func(c context.Context) Result { return o.fbi.Search(c, name) },
		func(c context.Context) Result {
			return o.sanctions.CheckEuropol(c, SanctionsQuery{Name: name, Nationality: nationality})
		},
	)
}

// PEPCheck runs only the politically-exposed-person screen.
func (o *Orchestrator) PEPCheck(ctx context.Context, q SanctionsQuery) []Result {
	return o.fanOut(ctx,
		func(c context.Context) Result { return o.sanctions.CheckPEP(c, q) },
	)
}
