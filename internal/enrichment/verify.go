package enrichment

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/setal/compliance-intel/internal/domain"
)

// Validation errors surfaced as HTTP 400 bodies.
var (
	errAtLeastOneIdentifier = errors.New("at least one of phone, email, or name is required")
	errNamesRequired        = errors.New("firstName and lastName are required")
	errBadNationality       = errors.New("nationality must be an ISO-2 country code")
)

// VerifyOptions selects which check families run. Omitted fields
// default to true.
type VerifyOptions struct {
	Sanctions *bool `json:"sanctions,omitempty"`
	PEP       *bool `json:"pep,omitempty"`
	Interpol  *bool `json:"interpol,omitempty"`
	FBI       *bool `json:"fbi,omitempty"`
	Europol   *bool `json:"europol,omitempty"`
}

func enabled(p *bool) bool { return p == nil || *p }

// VerificationRequest identifies the person to screen.
type VerificationRequest struct {
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	DateOfBirth string        `json:"dateOfBirth,omitempty"`
	Nationality string        `json:"nationality,omitempty"`
	Options     VerifyOptions `json:"options,omitempty"`
}

// Validate checks the request shape. Nationality is strict ISO-2;
// free-text country names are rejected rather than fuzzily matched.
func (r *VerificationRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return errNamesRequired
	}
	if r.Nationality != "" && !iso2Pattern.MatchString(r.Nationality) {
		return errBadNationality
	}
	return nil
}

// FullName returns the subject's assembled name.
func (r *VerificationRequest) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// CheckOutcome is the result of one check family.
type CheckOutcome struct {
	Checked bool `json:"checked"`
	Matches int  `json:"matches"`
	Data    any  `json:"data,omitempty"`
}

// VerificationResponse is the screening outcome for one person.
type VerificationResponse struct {
	Subject         string        `json:"subject"`
	Status          string        `json:"status"`
	Risk            RiskVerdict   `json:"risk"`
	Sanctions       CheckOutcome  `json:"sanctions"`
	PEP             CheckOutcome  `json:"pep"`
	Interpol        CheckOutcome  `json:"interpol"`
	FBI             CheckOutcome  `json:"fbi"`
	Europol         CheckOutcome  `json:"europol"`
	Errors          []SourceError `json:"errors"`
	Recommendations []string      `json:"recommendations"`
	CheckedAt       time.Time     `json:"checked_at"`
}

// Verify screens one person against the selected check families.
func (o *Orchestrator) Verify(ctx context.Context, req VerificationRequest) (*VerificationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	fullName := req.FullName()
	sq := SanctionsQuery{Name: fullName, DateOfBirth: req.DateOfBirth, Nationality: req.Nationality}

	const (
		slotSanctions = iota
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

	if enabled(req.Options.Sanctions) {
		run(slotSanctions, func(c context.Context) Result { return o.sanctions.CheckSanctions(c, sq) })
	}
	if enabled(req.Options.PEP) {
		run(slotPEP, func(c context.Context) Result { return o.sanctions.CheckPEP(c, sq) })
	}
	if enabled(req.Options.Interpol) {
		run(slotInterpol, func(c context.Context) Result {
			q := InterpolQuery{Forename: req.FirstName, Name: req.LastName, Nationality: req.Nationality}
			if age := ageFromDOB(req.DateOfBirth, start); age > 0 {
				q.Age = age
			}
			return o.interpol.Search(c, q)
		})
	}
	if enabled(req.Options.FBI) {
		run(slotFBI, func(c context.Context) Result { return o.fbi.Search(c, fullName) })
	}
	if enabled(req.Options.Europol) {
		run(slotEuropol, func(c context.Context) Result { return o.sanctions.CheckEuropol(c, sq) })
	}

	_ = g.Wait()

	resp := &VerificationResponse{
		Subject:   fullName,
		Errors:    []SourceError{},
		CheckedAt: start.UTC(),
	}

	var highestScore float64
	outcome := func(slot int) CheckOutcome {
		r := slots[slot]
		if r == nil {
			return CheckOutcome{}
		}
		if !r.Success {
			resp.Errors = append(resp.Errors, SourceError{Source: r.Source, Error: r.Error})
			return CheckOutcome{}
		}
		out := CheckOutcome{Checked: true, Data: r.Data}
		switch data := r.Data.(type) {
		case SanctionsData:
			out.Matches = len(data.Matches)
			for _, m := range data.Matches {
				if m.Score > highestScore && (slot == slotSanctions) {
					highestScore = m.Score
				}
			}
		case InterpolData:
			out.Matches = len(data.Notices)
		case FBIData:
			out.Matches = len(data.Items)
		}
		return out
	}

	resp.Sanctions = outcome(slotSanctions)
	resp.PEP = outcome(slotPEP)
	resp.Interpol = outcome(slotInterpol)
	resp.FBI = outcome(slotFBI)
	resp.Europol = outcome(slotEuropol)

	resp.Risk = verificationRisk(
		resp.Sanctions.Matches, highestScore,
		resp.Interpol.Matches, resp.FBI.Matches, resp.Europol.Matches,
		resp.PEP.Matches,
	)
	watchlist := resp.Interpol.Matches + resp.FBI.Matches + resp.Europol.Matches
	resp.Status = verificationStatus(resp.Risk, resp.Sanctions.Matches, watchlist, resp.PEP.Matches)
	resp.Recommendations = verificationRecommendations(resp)

	o.auditVerification(req, resp, time.Since(start))
	return resp, nil
}

func ageFromDOB(dob string, now time.Time) int {
	t, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}
	age := now.Year() - t.Year()
	if now.YearDay() < t.YearDay() {
		age--
	}
	return age
}

func verificationRecommendations(resp *VerificationResponse) []string {
	var recs []string
	switch resp.Status {
	case StatusBlocked:
		recs = append(recs,
			"Do not proceed; confirmed sanctions or watchlist exposure",
			"Escalate to the compliance officer for formal review")
	case StatusFlagged:
		recs = append(recs, "Hold onboarding pending manual document review")
	case StatusReview:
		recs = append(recs, "Request secondary identity verification before approval")
	}
	if resp.PEP.Matches > 0 {
		recs = append(recs, "Apply enhanced due diligence; subject is politically exposed")
	}
	if len(resp.Errors) > 0 {
		recs = append(recs, "Some screening sources were unavailable; consider re-running the check")
	}
	if len(recs) == 0 {
		recs = append(recs, "No adverse findings; standard onboarding applies")
	}
	return recs
}

func (o *Orchestrator) auditVerification(req VerificationRequest, resp *VerificationResponse, took time.Duration) {
	if o.audit == nil {
		return
	}
	var checks []string
	for _, c := range []struct {
		name    string
		outcome CheckOutcome
	}{
		{"sanctions", resp.Sanctions},
		{"pep", resp.PEP},
		{"interpol", resp.Interpol},
		{"fbi", resp.FBI},
		{"europol", resp.Europol},
	} {
		if c.outcome.Checked {
			checks = append(checks, c.name)
		}
	}
	row := &domain.VerificationLog{
		ID:          uuid.NewString(),
		SubjectName: resp.Subject,
		Status:      resp.Status,
		RiskScore:   resp.Risk.Score,
		ChecksRun:   checks,
		DurationMs:  took.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.audit.InsertVerificationLog(ctx, row); err != nil {
		log.Printf("[Verification] audit write failed: %v", err)
	}
}

// BatchSummary buckets batch verification outcomes.
type BatchSummary struct {
	Clear   int `json:"clear"`
	Review  int `json:"review"`
	Flagged int `json:"flagged"`
	Blocked int `json:"blocked"`
}

// BatchResult pairs one subject with its outcome or validation error.
type BatchResult struct {
	Subject string                `json:"subject"`
	Result  *VerificationResponse `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// BatchVerify screens up to maxBatchSize persons sequentially. Size
// enforcement happens at the HTTP layer; this method processes
// whatever it is given.
func (o *Orchestrator) BatchVerify(ctx context.Context, reqs []VerificationRequest) ([]BatchResult, BatchSummary) {
	results := make([]BatchResult, 0, len(reqs))
	var summary BatchSummary

	for _, req := range reqs {
		entry := BatchResult{Subject: req.FullName()}
		resp, err := o.Verify(ctx, req)
		if err != nil {
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}
		entry.Result = resp
		switch resp.Status {
		case StatusClear:
			summary.Clear++
		case StatusReview:
			summary.Review++
		case StatusFlagged:
			summary.Flagged++
		case StatusBlocked:
			summary.Blocked++
		}
		results = append(results, entry)
	}
	return results, summary
}

// MaxBatchSize caps one batch-verify request.
const MaxBatchSize = 50
