package api

import (
	"encoding/json"
	"net/http"
)

// Request failures travel as RFC 7807 problem documents so clients can key
// off the title without parsing free text. Planner outcomes that find no
// route are results, not problems; they go out through writeJSON with
// found=false.
type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// The API does not mint its own type URIs.
const problemType = "about:blank"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already on the wire, nothing useful to do on
	// an encode error
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem reports a failed request, recording the request path as the
// problem instance.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}
