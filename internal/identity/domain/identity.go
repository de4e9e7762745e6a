package domain

// Identity is the authenticated end user for one request, independent of any
// organization. Resolved fresh per request and never persisted by this layer.
type Identity struct {
	ID    string
	Email string
}
