package registration

import "time"

// Status is the payment lifecycle state of a registration.
//
//	initiated → pending → paid | failed        (gateway path)
//	any       → manual_verified | failed       (admin path)
//
// paid, failed, refunded and manual_verified are terminal.
type Status string

const (
	StatusInitiated           Status = "initiated"
	StatusPending             Status = "pending"
	StatusPaid                Status = "paid"
	StatusFailed              Status = "failed"
	StatusRefunded            Status = "refunded"
	StatusVerificationPending Status = "verification_pending"
	StatusManualVerified      Status = "manual_verified"
)

// Terminal reports whether no further gateway transition is allowed.
func (s Status) Terminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusRefunded, StatusManualVerified:
		return true
	}
	return false
}

// Settled reports whether the registration counts as paid for access
// decisions (forum gating, team locking).
func (s Status) Settled() bool {
	return s == StatusPaid || s == StatusManualVerified
}

// PaymentAttempt is one entry in the audit trail of gateway interactions.
type PaymentAttempt struct {
	At             time.Time `bson:"at" json:"at"`
	GatewayOrderID string    `bson:"gateway_order_id,omitempty" json:"gatewayOrderId,omitempty"`
	Status         Status    `bson:"status" json:"status"`
	Note           string    `bson:"note,omitempty" json:"note,omitempty"`
}

// Verification records an out-of-band admin decision.
type Verification struct {
	VerifierID string    `bson:"verifier_id" json:"verifierId"`
	At         time.Time `bson:"at" json:"at"`
	Note       string    `bson:"note,omitempty" json:"note,omitempty"`
}

// DisplayCache holds denormalized read-path fields. It is a read
// optimization recomputed on every write path, potentially stale otherwise,
// and never consulted for authorization.
type DisplayCache struct {
	TeamName    string `bson:"team_name,omitempty" json:"teamName,omitempty"`
	EventTitle  string `bson:"event_title" json:"eventTitle"`
	EventSlug   string `bson:"event_slug" json:"eventSlug"`
	LeaderName  string `bson:"leader_name,omitempty" json:"leaderName,omitempty"`
	LeaderEmail string `bson:"leader_email,omitempty" json:"leaderEmail,omitempty"`
	MemberCount int    `bson:"member_count" json:"memberCount"`
}

// Registration links an owner (team, or profile for individual events) to an
// event with the roster chosen for it. OwnerID and EventID carry the unique
// compound index that enforces one registration per pair.
type Registration struct {
	ID string `bson:"_id,omitempty" json:"id"`
	// OwnerID is the team id for team events, the profile id for
	// individual events.
	OwnerID string `bson:"owner_id" json:"-"`
	TeamID  string `bson:"team_id,omitempty" json:"teamId,omitempty"`
	EventID string `bson:"event_id" json:"eventId"`

	SelectedMembers []string `bson:"selected_members" json:"selectedMembers"`

	Status           Status `bson:"status" json:"status"`
	GatewayOrderID   string `bson:"gateway_order_id,omitempty" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string `bson:"gateway_payment_id,omitempty" json:"gatewayPaymentId,omitempty"`
	AmountExpected   int    `bson:"amount_expected" json:"amountExpected"`
	AmountPaid       int    `bson:"amount_paid" json:"amountPaid"`

	Attempts     []PaymentAttempt `bson:"attempts,omitempty" json:"attempts,omitempty"`
	Verification *Verification    `bson:"verification,omitempty" json:"verification,omitempty"`
	CheckedIn    bool             `bson:"checked_in" json:"checkedIn"`

	Display DisplayCache `bson:"display" json:"display"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Names reports whether the profile is part of this registration's roster.
func (r *Registration) Names(profileID string) bool {
	for _, m := range r.SelectedMembers {
		if m == profileID {
			return true
		}
	}
	return false
}

// PaymentSubmission is a user-reported manual payment: an audit record, not
// a state machine.
type PaymentSubmission struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	AuthID         string    `bson:"auth_id" json:"-"`
	RegistrationID string    `bson:"registration_id" json:"registrationId"`
	TransactionID  string    `bson:"transaction_id" json:"transactionId"`
	ScreenshotURL  string    `bson:"screenshot_url,omitempty" json:"screenshotUrl,omitempty"`
	ClaimedAmount  int       `bson:"claimed_amount" json:"claimedAmount"`
	ReviewStatus   string    `bson:"review_status" json:"reviewStatus"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}
