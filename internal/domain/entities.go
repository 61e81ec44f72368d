package domain

import "time"

// RegistrationStatus enumerates landlord-level registration states.
type RegistrationStatus string

const (
	RegistrationFullyCompliant     RegistrationStatus = "fully_compliant"
	RegistrationPartiallyCompliant RegistrationStatus = "partially_compliant"
	RegistrationPending            RegistrationStatus = "pending"
	RegistrationNonCompliant       RegistrationStatus = "non_compliant"
)

// PropertyRegistration enumerates property-level registration states.
type PropertyRegistration string

const (
	PropertyRegistered   PropertyRegistration = "registered"
	PropertyUnregistered PropertyRegistration = "unregistered"
	PropertyPendingReg   PropertyRegistration = "pending"
)

// PaymentStatus enumerates TPT payment states.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentLate      PaymentStatus = "late"
)

// ComplianceEventType enumerates events in a landlord's compliance record.
type ComplianceEventType string

const (
	EventViolation        ComplianceEventType = "violation"
	EventWarning          ComplianceEventType = "warning"
	EventLateRegistration ComplianceEventType = "late_registration"
	EventResolvedIssue    ComplianceEventType = "resolved_issue"
	EventAuditPassed      ComplianceEventType = "audit_passed"
	EventOnTimePayment    ComplianceEventType = "on_time_payment"
	EventLatePayment      ComplianceEventType = "late_payment"
)

// Landlord is a registered (or registerable) property owner.
// Created externally; this service only reads it.
type Landlord struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	CreatedAt          time.Time          `json:"created_at"`
	PropertyCount      int                `json:"property_count"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	PaymentStatus      string             `json:"payment_status"`
}

// Property is a declared short-term rental property.
type Property struct {
	ID                 string               `json:"id"`
	LandlordID         string               `json:"landlord_id"`
	City               string               `json:"city"`
	Neighborhood       string               `json:"neighborhood,omitempty"`
	PropertyType       string               `json:"property_type"`
	RegistrationStatus PropertyRegistration `json:"registration_status"`
	CreatedAt          time.Time            `json:"created_at"`
	Latitude           *float64             `json:"latitude,omitempty"`
	Longitude          *float64             `json:"longitude,omitempty"`
}

// ScrapedListing is a short-term rental listing observed on an aggregator
// site. Invariant: MatchedLandlordID set implies MatchedRegistration=true.
type ScrapedListing struct {
	ID                  string    `json:"id"`
	Platform            string    `json:"platform"`
	SourceURL           string    `json:"source_url"`
	City                string    `json:"city"`
	Neighborhood        string    `json:"neighborhood,omitempty"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	PricePerNight       *float64  `json:"price_per_night,omitempty"`
	ReviewCount         *int      `json:"review_count,omitempty"`
	Rating              *float64  `json:"rating,omitempty"`
	HostID              string    `json:"host_id,omitempty"`
	HostName            string    `json:"host_name,omitempty"`
	FirstScrapedAt      time.Time `json:"first_scraped_at"`
	LastScrapedAt       time.Time `json:"last_scraped_at"`
	MatchedRegistration bool      `json:"matched_registration"`
	MatchedLandlordID   string    `json:"matched_landlord_id,omitempty"`
}

// TptPayment is a transient-occupancy tax payment record.
// Invariant: Status=completed implies PaidDate present.
type TptPayment struct {
	ID          string        `json:"id"`
	LandlordID  string        `json:"landlord_id"`
	City        string        `json:"city"`
	Amount      float64       `json:"amount"`
	Status      PaymentStatus `json:"status"`
	DueDate     time.Time     `json:"due_date"`
	PaymentDate *time.Time    `json:"payment_date,omitempty"`
	PaidDate    *time.Time    `json:"paid_date,omitempty"`
}

// Booking is a lazy aggregate input for seasonal analysis.
type Booking struct {
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`
	TotalNights  int       `json:"total_nights"`
	Revenue      float64   `json:"revenue"`
}

// ComplianceEvent is one entry in a landlord's compliance history.
type ComplianceEvent struct {
	LandlordID  string              `json:"landlord_id"`
	EventType   ComplianceEventType `json:"event_type"`
	EventDate   time.Time           `json:"event_date"`
	Description string              `json:"description,omitempty"`
}

// EnforcementAction is a past or ongoing enforcement intervention.
type EnforcementAction struct {
	TargetID   string    `json:"target_id"`
	TargetType string    `json:"target_type"`
	City       string    `json:"city"`
	ActionType string    `json:"action_type"`
	Status     string    `json:"status"`
	Outcome    string    `json:"outcome,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResponseSample records how long a landlord took to answer an official
// request. Used by the response-time risk factor.
type ResponseSample struct {
	LandlordID  string     `json:"landlord_id"`
	SentAt      time.Time  `json:"sent_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}
