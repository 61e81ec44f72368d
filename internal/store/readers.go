package store

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/setal/compliance-intel/internal/domain"
)

var descending = &postgrest.OrderOpts{Ascending: false}

// GetLandlord returns one landlord or ErrNotFound.
func (s *Supabase) GetLandlord(ctx context.Context, id string) (*domain.Landlord, error) {
	var rows []domain.Landlord
	_, err := s.client.From("landlords").
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get landlord %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListLandlords returns all landlords. Used by the bulk risk-update job.
func (s *Supabase) ListLandlords(ctx context.Context) ([]domain.Landlord, error) {
	var rows []domain.Landlord
	_, err := s.client.From("landlords").
		Select("*", "", false).
		Order("created_at", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list landlords: %w", err)
	}
	return rows, nil
}

// ListPaymentsByLandlord returns the most recent payments for a landlord,
// newest first, capped at limit.
func (s *Supabase) ListPaymentsByLandlord(ctx context.Context, landlordID string, limit int) ([]domain.TptPayment, error) {
	var rows []domain.TptPayment
	_, err := s.client.From("tpt_payments").
		Select("*", "", false).
		Eq("landlord_id", landlordID).
		Order("due_date", descending).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list payments for landlord %s: %w", landlordID, err)
	}
	return rows, nil
}

// ListComplianceEvents returns the full compliance history for a landlord.
func (s *Supabase) ListComplianceEvents(ctx context.Context, landlordID string) ([]domain.ComplianceEvent, error) {
	var rows []domain.ComplianceEvent
	_, err := s.client.From("compliance_events").
		Select("*", "", false).
		Eq("landlord_id", landlordID).
		Order("event_date", descending).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list compliance events for %s: %w", landlordID, err)
	}
	return rows, nil
}

// ListResponseSamples returns up to limit response-time samples for a landlord.
func (s *Supabase) ListResponseSamples(ctx context.Context, landlordID string, limit int) ([]domain.ResponseSample, error) {
	var rows []domain.ResponseSample
	_, err := s.client.From("response_samples").
		Select("*", "", false).
		Eq("landlord_id", landlordID).
		Order("sent_at", descending).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list response samples for %s: %w", landlordID, err)
	}
	return rows, nil
}

// CountPropertiesByLandlord returns the number of properties a landlord holds.
func (s *Supabase) CountPropertiesByLandlord(ctx context.Context, landlordID string) (int, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	count, err := s.client.From("properties").
		Select("id", "exact", false).
		Eq("landlord_id", landlordID).
		ExecuteTo(&rows)
	if err != nil {
		return 0, fmt.Errorf("count properties for %s: %w", landlordID, err)
	}
	return int(count), nil
}

// CountProperties returns the territory-wide property count.
func (s *Supabase) CountProperties(ctx context.Context) (int, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	count, err := s.client.From("properties").
		Select("id", "exact", false).
		ExecuteTo(&rows)
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return int(count), nil
}

// ListProperties returns properties filtered by city and optionally
// neighborhood. Empty city returns everything.
func (s *Supabase) ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error) {
	q := s.client.From("properties").Select("*", "", false)
	if city != "" {
		q = q.Eq("city", city)
	}
	if neighborhood != "" {
		q = q.Eq("neighborhood", neighborhood)
	}
	var rows []domain.Property
	_, err := q.ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return rows, nil
}

// GetListing returns one scraped listing or ErrNotFound.
func (s *Supabase) GetListing(ctx context.Context, id string) (*domain.ScrapedListing, error) {
	var rows []domain.ScrapedListing
	_, err := s.client.From("scraped_listings").
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListListings returns all scraped listings. Used by the bulk risk-update job.
func (s *Supabase) ListListings(ctx context.Context) ([]domain.ScrapedListing, error) {
	var rows []domain.ScrapedListing
	_, err := s.client.From("scraped_listings").
		Select("*", "", false).
		Order("first_scraped_at", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return rows, nil
}

// ListListingsByCity returns the scraped listings observed in a city.
func (s *Supabase) ListListingsByCity(ctx context.Context, city string) ([]domain.ScrapedListing, error) {
	var rows []domain.ScrapedListing
	_, err := s.client.From("scraped_listings").
		Select("*", "", false).
		Eq("city", city).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list listings for city %s: %w", city, err)
	}
	return rows, nil
}

// ListListingsByHost returns all listings sharing a host account.
func (s *Supabase) ListListingsByHost(ctx context.Context, hostID string) ([]domain.ScrapedListing, error) {
	var rows []domain.ScrapedListing
	_, err := s.client.From("scraped_listings").
		Select("*", "", false).
		Eq("host_id", hostID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list listings for host %s: %w", hostID, err)
	}
	return rows, nil
}

// ListUnregisteredListings returns listings without a matched registration.
// Callers filter out rows with zero coordinates before geospatial work.
func (s *Supabase) ListUnregisteredListings(ctx context.Context) ([]domain.ScrapedListing, error) {
	var rows []domain.ScrapedListing
	_, err := s.client.From("scraped_listings").
		Select("*", "", false).
		Eq("matched_registration", "false").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list unregistered listings: %w", err)
	}
	return rows, nil
}

// ListPaymentsSince returns payments with a due date at or after since.
func (s *Supabase) ListPaymentsSince(ctx context.Context, since time.Time) ([]domain.TptPayment, error) {
	var rows []domain.TptPayment
	_, err := s.client.From("tpt_payments").
		Select("*", "", false).
		Gte("due_date", since.UTC().Format(time.RFC3339)).
		Order("due_date", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list payments since %s: %w", since.Format("2006-01-02"), err)
	}
	return rows, nil
}

// ListCompletedPayments returns the full completed-payment history,
// oldest first. Input to the revenue forecaster.
func (s *Supabase) ListCompletedPayments(ctx context.Context) ([]domain.TptPayment, error) {
	var rows []domain.TptPayment
	_, err := s.client.From("tpt_payments").
		Select("*", "", false).
		Eq("status", string(domain.PaymentCompleted)).
		Order("paid_date", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list completed payments: %w", err)
	}
	return rows, nil
}

// ListBookings returns bookings checking in at or after since.
func (s *Supabase) ListBookings(ctx context.Context, since time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	_, err := s.client.From("bookings").
		Select("*", "", false).
		Gte("check_in_date", since.UTC().Format("2006-01-02")).
		Order("check_in_date", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return rows, nil
}

// ListEnforcementActions returns enforcement actions for a city created
// at or after since. Empty city returns all cities.
func (s *Supabase) ListEnforcementActions(ctx context.Context, city string, since time.Time) ([]domain.EnforcementAction, error) {
	q := s.client.From("enforcement_actions").
		Select("*", "", false).
		Gte("created_at", since.UTC().Format(time.RFC3339))
	if city != "" {
		q = q.Eq("city", city)
	}
	var rows []domain.EnforcementAction
	_, err := q.ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list enforcement actions: %w", err)
	}
	return rows, nil
}
