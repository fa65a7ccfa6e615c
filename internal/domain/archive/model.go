package archive

import "time"

// Payload is one archived bootstrap-static document, stored verbatim so
// past refreshes can be replayed or diffed later.
type Payload struct {
	EventID     int
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
