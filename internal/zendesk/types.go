package zendesk

// TicketUpdate is the request body for PUT /api/v2/tickets/{id}.json.
type TicketUpdate struct {
	Ticket Ticket `json:"ticket"`
}

// Ticket carries the subset of ticket attributes this service writes.
type Ticket struct {
	Comment      Comment       `json:"comment"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
	Tags         []string      `json:"tags"`
}

// Comment is a ticket comment. Public false makes it an internal note.
type Comment struct {
	Body   string `json:"body"`
	Public bool   `json:"public"`
}

// CustomField sets the value of an account-defined ticket field.
type CustomField struct {
	ID    int64 `json:"id"`
	Value any   `json:"value"`
}
