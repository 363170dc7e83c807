package domain

// Contact is a customer record owned by the contacts module. The ticket
// workflow only reads it, to resolve display labels and notification
// targets.
type Contact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
}
