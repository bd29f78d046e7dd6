package calls

import "time"

// Contact is an address-book entry. Contacts are immutable after creation;
// the store assigns the id.
type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Call is a local record of one outbound call attempt.
//
// ExternalCallID is the calling service's identifier and the join key for
// inbound webhook events. It is unique across all records: assigned from the
// service response on a real call, synthesized locally in simulation mode.
//
// Status is intentionally NOT validated against the known constants below.
// The calling service's event vocabulary evolves; a direct status field on a
// webhook event is stored verbatim, whatever it says.
type Call struct {
	ID             string `json:"id"`
	ExternalCallID string `json:"externalCallId"`

	// ContactID is a weak reference, lookup only. Contact is populated by the
	// persistent backend when listing; the volatile backend keeps the raw id.
	ContactID string   `json:"contactId,omitempty"`
	Contact   *Contact `json:"contact,omitempty"`

	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`

	Status CallStatus `json:"status"`

	// Transcript starts nil and is overwritten by later non-nil values.
	// The service sends either a plain string or structured JSON; both are
	// kept as-is (no merge semantics).
	Transcript any `json:"transcript"`

	CreatedAt time.Time `json:"createdAt"`
}

type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

// CallUpdate is a shallow partial update applied by external id.
// Nil fields are left untouched.
type CallUpdate struct {
	Status     *CallStatus
	Transcript any
}
