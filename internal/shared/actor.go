package shared

import (
	"net/http"

	"github.com/google/uuid"
)

// ActorHeader carries the authenticated operator id set by the upstream
// gateway. Authentication itself lives outside this service.
const ActorHeader = "X-Actor-ID"

// ActorID extracts the acting operator from the request headers. Returns the
// zero UUID when the header is absent or malformed; mutating endpoints treat
// that as anonymous and still record the operation.
func ActorID(r *http.Request) uuid.UUID {
	raw := r.Header.Get(ActorHeader)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
