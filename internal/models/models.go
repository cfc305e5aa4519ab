package models

import "time"

// RequestType is the categorized intent of a ticket. The set is closed:
// the classifiers never emit a value outside these seven.
type RequestType string

const (
	TypeComplaint    RequestType = "Complaint"
	TypeDataChange   RequestType = "DataChange"
	TypeConsultation RequestType = "Consultation"
	TypeClaim        RequestType = "Claim"
	TypeAppFailure   RequestType = "AppFailure"
	TypeFraud        RequestType = "FraudulentActivity"
	TypeSpam         RequestType = "Spam"
)

// RequestTypes lists every request type in scoring order.
var RequestTypes = []RequestType{
	TypeComplaint,
	TypeDataChange,
	TypeConsultation,
	TypeClaim,
	TypeAppFailure,
	TypeFraud,
	TypeSpam,
}

type Tone string

const (
	TonePositive Tone = "Positive"
	ToneNeutral  Tone = "Neutral"
	ToneNegative Tone = "Negative"
)

type Language string

const (
	LangRU  Language = "RU"
	LangKZ  Language = "KZ"
	LangENG Language = "ENG"
)

// Languages is the detection order; ties fall to the earlier entry,
// so an all-zero score defaults to RU.
var Languages = []Language{LangRU, LangKZ, LangENG}

type Ticket struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Segment     string    `json:"segment"`
	Country     string    `json:"country"`
	Region      string    `json:"region"`
	Settlement  string    `json:"settlement"`
	Street      string    `json:"street"`
	House       string    `json:"house"`
	Description string    `json:"description"`
	Attachments string    `json:"attachments,omitempty"`
}

// AIMetadata is the classification record produced for every ticket.
// Priority is always within [1,10] and Source is never empty.
type AIMetadata struct {
	TicketID       string      `json:"ticket_id"`
	RequestType    RequestType `json:"request_type"`
	Tone           Tone        `json:"tone"`
	Priority       int         `json:"priority"`
	Language       Language    `json:"language"`
	Summary        string      `json:"summary"`
	Recommendation string      `json:"recommendation"`
	ImageAnalysis  string      `json:"image_analysis,omitempty"`
	Source         string      `json:"source"`
	CreatedAt      time.Time   `json:"created_at"`
}

type Manager struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Office      string    `json:"office"`
	Role        string    `json:"role"`
	Skills      []string  `json:"skills"`
	CurrentLoad int       `json:"current_load"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BusinessUnit struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// ProcessedTicket is the assignment record: one per input ticket,
// immutable after creation. ManagerName is empty when nobody matched.
type ProcessedTicket struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticket_id"`
	ManagerID      *string   `json:"manager_id"`
	ManagerName    string    `json:"manager_name,omitempty"`
	Office         string    `json:"office"`
	AttachmentInfo string    `json:"attachment_info,omitempty"`
	Reason         string    `json:"reason"`
	AssignedAt     time.Time `json:"assigned_at"`
}

type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Summary    []byte    `json:"summary"`
}

// ClampPriority forces a priority into the valid [1,10] range.
func ClampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}
