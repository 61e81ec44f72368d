package enrichment

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/pkg/logger"
)

// AuditStore records one audit row per request. Optional; a nil store
// disables audit logging.
type AuditStore interface {
	InsertEnrichmentLog(ctx context.Context, l *domain.EnrichmentLog) error
	InsertVerificationLog(ctx context.Context, l *domain.VerificationLog) error
}

// Orchestrator fans one request out to every relevant provider,
// gathers the results, and computes the verdict.
type Orchestrator struct {
	truecaller  *TruecallerClient
	numverify   *NumverifyClient
	fullcontact *FullContactClient
	emailrep    *EmailRepClient
	hibp        *HIBPClient
	sanctions   *OpenSanctionsClient
	interpol    *InterpolClient
	fbi         *FBIClient

	audit   AuditStore
	timeout time.Duration
}

// NewOrchestrator wires all provider adapters from configuration.
func NewOrchestrator(cfg config.ProvidersConfig, audit AuditStore) *Orchestrator {
	return &Orchestrator{
		truecaller:  NewTruecallerClient(cfg),
		numverify:   NewNumverifyClient(cfg),
		fullcontact: NewFullContactClient(cfg),
		emailrep:    NewEmailRepClient(cfg),
		hibp:        NewHIBPClient(cfg),
		sanctions:   NewOpenSanctionsClient(cfg),
		interpol:    NewInterpolClient(cfg),
		fbi:         NewFBIClient(cfg),
		audit:       audit,
		timeout:     cfg.Timeout(),
	}
}

// Interpol exposes the Red Notice client for the detail proxy endpoint.
func (o *Orchestrator) Interpol() *InterpolClient { return o.interpol }

// SourceStatus reports which provider adapters hold credentials.
// Keyless providers always count as configured.
func (o *Orchestrator) SourceStatus() map[string]bool {
	return map[string]bool{
		sourceTruecaller:  o.truecaller.installationID != "",
		sourceNumverify:   o.numverify.apiKey != "",
		sourceLocalPhone:  true,
		sourceFullContact: o.fullcontact.apiKey != "",
		sourceEmailRep:    true,
		sourceHIBP:        o.hibp.apiKey != "",
		sourceSanctions:   o.sanctions.Configured(),
		sourceInterpol:    true,
		sourceFBI:         true,
	}
}

// EnrichmentOptions narrows which provider families an enrichment
// request runs. Zero value runs everything applicable.
type EnrichmentOptions struct {
	SkipSanctions  bool `json:"skip_sanctions,omitempty"`
	SkipWatchlists bool `json:"skip_watchlists,omitempty"`
}

// EnrichmentRequest is the subject of an enrichment run. At least one
// of Phone, Email, or Name must be set.
type EnrichmentRequest struct {
	Phone       string            `json:"phone,omitempty"`
	Email       string            `json:"email,omitempty"`
	Name        string            `json:"name,omitempty"`
	DateOfBirth string            `json:"dateOfBirth,omitempty"`
	Nationality string            `json:"nationality,omitempty"`
	Options     EnrichmentOptions `json:"options,omitempty"`
}

// iso2Pattern is the strict nationality format: two uppercase letters.
var iso2Pattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Validate checks the request shape. The error strings surface as
// HTTP 400 bodies.
func (r *EnrichmentRequest) Validate() error {
	if r.Phone == "" && r.Email == "" && r.Name == "" {
		return errAtLeastOneIdentifier
	}
	if r.Nationality != "" && !iso2Pattern.MatchString(r.Nationality) {
		return errBadNationality
	}
	return nil
}

// SourceError is one provider failure reported to the caller.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// EnrichmentResponse is the merged identity picture plus the verdict.
type EnrichmentResponse struct {
	Names          []string     `json:"names"`
	Emails         []string     `json:"emails"`
	Phones         []string     `json:"phones"`
	Photos         []string     `json:"photos,omitempty"`
	Locations      []string     `json:"locations,omitempty"`
	SocialProfiles []string     `json:"social_profiles,omitempty"`
	RiskFactors    []string     `json:"risk_factors"`
	Risk           RiskVerdict  `json:"risk"`
	Results        []Result     `json:"results"`
	Errors         []SourceError `json:"errors"`
	CheckedAt      time.Time    `json:"checked_at"`
}

// Enrich runs every applicable adapter concurrently and merges the
// results. Provider failures never fail the request.
func (o *Orchestrator) Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	// Fixed result slots keep the merge deterministic no matter which
	// adapter finishes first.
	const (
		slotTruecaller = iota
		slotNumverify
		slotLocal
		slotFullContact
		slotEmailRep
		slotHIBP
		slotSanctions
		slotPEP
		slotInterpol
		slotFBI
		slotEuropol
		slotCount
	)
	slots := make([]*Result, slotCount)

	g, gctx := errgroup.WithContext(ctx)
	run := func(slot int, lookup func(context.Context) Result) {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, o.timeout)
			defer cancel()
			r := lookup(callCtx)
			slots[slot] = &r
			return nil
		})
	}

	sq := SanctionsQuery{Name: req.Name, DateOfBirth: req.DateOfBirth, Nationality: req.Nationality}
	if req.Phone != "" {
		run(slotTruecaller, func(c context.Context) Result { return o.truecaller.Lookup(c, req.Phone) })
		run(slotNumverify, func(c context.Context) Result { return o.numverify.Lookup(c, req.Phone) })
		run(slotLocal, func(c context.Context) Result { return AnalyzeLocalPhone(req.Phone) })
	}
	if req.Email != "" {
		run(slotFullContact, func(c context.Context) Result { return o.fullcontact.Lookup(c, req.Email) })
		run(slotEmailRep, func(c context.Context) Result { return o.emailrep.Lookup(c, req.Email) })
		run(slotHIBP, func(c context.Context) Result { return o.hibp.Lookup(c, req.Email) })
	}
	if req.Name != "" && !req.Options.SkipSanctions {
		run(slotSanctions, func(c context.Context) Result { return o.sanctions.CheckSanctions(c, sq) })
		run(slotPEP, func(c context.Context) Result { return o.sanctions.CheckPEP(c, sq) })
	}
	if req.Name != "" && !req.Options.SkipWatchlists {
		run(slotInterpol, func(c context.Context) Result {
			return o.interpol.Search(c, InterpolQuery{Name: req.Name, Nationality: req.Nationality})
		})
		run(slotFBI, func(c context.Context) Result { return o.fbi.Search(c, req.Name) })
		run(slotEuropol, func(c context.Context) Result { return o.sanctions.CheckEuropol(c, sq) })
	}

	// Adapters never return errors through the group; Wait only
	// propagates a cancelled parent context.
	_ = g.Wait()

	resp := o.merge(req, slots)
	resp.CheckedAt = start.UTC()
	o.auditEnrichment(req, resp, time.Since(start))
	return resp, nil
}

// merge folds the per-provider results into one identity picture.
// Field precedence is fixed: request input first, then Truecaller,
// then FullContact.
func (o *Orchestrator) merge(req EnrichmentRequest, slots []*Result) *EnrichmentResponse {
	resp := &EnrichmentResponse{
		Names:       []string{},
		Emails:      []string{},
		Phones:      []string{},
		RiskFactors: []string{},
		Results:     []Result{},
		Errors:      []SourceError{},
	}
	var signals riskSignals

	addUnique := func(dst *[]string, values ...string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			seen := false
			for _, existing := range *dst {
				if strings.EqualFold(existing, v) {
					seen = true
					break
				}
			}
			if !seen {
				*dst = append(*dst, v)
			}
		}
	}

	addUnique(&resp.Names, req.Name)
	addUnique(&resp.Emails, req.Email)
	addUnique(&resp.Phones, req.Phone)

	for _, slot := range slots {
		if slot == nil {
			continue
		}
		resp.Results = append(resp.Results, *slot)
		if !slot.Success {
			resp.Errors = append(resp.Errors, SourceError{Source: slot.Source, Error: slot.Error})
			continue
		}

		switch data := slot.Data.(type) {
		case TruecallerData:
			addUnique(&resp.Names, data.Name)
			addUnique(&resp.Emails, data.Email)
			addUnique(&resp.Phones, data.AlternatePhones...)
			addUnique(&resp.Photos, data.Photo)
			addUnique(&resp.Locations, data.Addresses...)
			signals.spamScore = data.SpamScore
		case NumverifyData:
			addUnique(&resp.Locations, data.Location)
		case FullContactData:
			addUnique(&resp.Names, data.FullName)
			addUnique(&resp.Phones, data.Phones...)
			addUnique(&resp.Photos, data.Photos...)
			addUnique(&resp.Locations, data.Locations...)
			addUnique(&resp.SocialProfiles, data.SocialProfiles...)
		case EmailRepData:
			signals.suspicious = signals.suspicious || data.Suspicious
			signals.malicious = signals.malicious || data.Malicious
			signals.spam = signals.spam || data.Spam
			signals.disposable = signals.disposable || data.Disposable
			addUnique(&resp.SocialProfiles, data.ProfilesFound...)
		case HIBPData:
			signals.breachCount = data.BreachCount
		case SanctionsData:
			if slot.Source == sourceEuropol {
				signals.watchlistMatches += len(data.Matches)
			} else {
				signals.sanctionsMatches += len(data.Matches)
			}
		case InterpolData:
			signals.watchlistMatches += len(data.Notices)
		case FBIData:
			signals.watchlistMatches += len(data.Items)
		case LocalPhoneData:
			// Classification only; carries no risk signal.
		}
	}

	resp.RiskFactors = riskFactorStrings(signals)
	resp.Risk = enrichmentRisk(signals)
	return resp
}

func (o *Orchestrator) auditEnrichment(req EnrichmentRequest, resp *EnrichmentResponse, took time.Duration) {
	if o.audit == nil {
		return
	}
	queried := len(resp.Results)
	succeeded := 0
	for _, r := range resp.Results {
		if r.Success {
			succeeded++
		}
	}
	row := &domain.EnrichmentLog{
		ID:               uuid.NewString(),
		QueryName:        req.Name,
		SourcesQueried:   queried,
		SourcesSucceeded: succeeded,
		SourcesFailed:    queried - succeeded,
		RiskScore:        resp.Risk.Score,
		RiskLevel:        resp.Risk.Level,
		DurationMs:       took.Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}
	if req.Phone != "" {
		row.QueryPhone = logger.RedactPhone(req.Phone)
	}
	if req.Email != "" {
		row.QueryEmail = logger.RedactEmail(req.Email)
	}

	// Audit writes ride a fresh context so request cancellation does
	// not lose the trail.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.audit.InsertEnrichmentLog(ctx, row); err != nil {
		log.Printf("[Enrichment] audit write failed: %v", err)
	}
}
