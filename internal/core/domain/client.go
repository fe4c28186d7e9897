package domain

import "time"

// ClientStatus is the commercial stage of a client.
type ClientStatus string

const (
	ClientProspect ClientStatus = "prospect"
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientCustomer ClientStatus = "customer"
)

// Valid reports whether s is a known status.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientProspect, ClientActive, ClientInactive, ClientCustomer:
		return true
	}
	return false
}

// ClientPriority orders follow-up work.
type ClientPriority string

const (
	PriorityLow    ClientPriority = "low"
	PriorityMedium ClientPriority = "medium"
	PriorityHigh   ClientPriority = "high"
)

// Valid reports whether p is a known priority.
func (p ClientPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// FollowUpAfter is how long a client may go without contact before it shows
// up in the follow-up list.
const FollowUpAfter = 14 * 24 * time.Hour

// Client is a contact record owned by exactly one user.
type Client struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	FirstName     string         `json:"firstName"`
	LastName      string         `json:"lastName"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address"`
	Company       string         `json:"company"`
	Notes         string         `json:"notes"`
	Status        ClientStatus   `json:"status"`
	Priority      ClientPriority `json:"priority"`
	Tags          []string       `json:"tags"`
	LastContactAt *time.Time     `json:"lastContactAt"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// OwnedBy reports whether the client belongs to userID.
func (c *Client) OwnedBy(userID string) bool {
	return c != nil && c.OwnerID == userID
}

// NeedsFollowUp reports whether the client has not been contacted within
// FollowUpAfter of now.
func (c *Client) NeedsFollowUp(now time.Time) bool {
	if c.LastContactAt == nil {
		return true
	}
	return c.LastContactAt.Before(now.Add(-FollowUpAfter))
}
