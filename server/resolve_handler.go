package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/namecoin/bcresolve/api"
	"github.com/namecoin/bcresolve/resolve"
)

// newResolveHandler adapts a *resolve.Resolver to api.PathResolvePath.
//
// Adapted from blocky's apiQuery handler (server/server_endpoints.go):
// decode the request body, run the operation, encode either the
// result or an error body, choosing the status code from the error
// class instead of always 200/500.
func newResolveHandler(resolver *resolve.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.QueryRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "can't parse request body: "+err.Error())

			return
		}

		value, err := resolver.Resolve(r.Context(), req.Name, req.Type)
		if err != nil {
			writeError(w, statusForError(err), err.Error())

			return
		}

		if value == nil {
			// Every nameserver was tried with no classification error ever
			// recorded (the original's "else return None"): a legitimate
			// empty outcome, not a server fault.
			writeError(w, http.StatusNotFound, "no answer found for this name")

			return
		}

		writeJSON(w, http.StatusOK, toQueryResult(value))
	}
}

func toQueryResult(value *resolve.Value) api.QueryResult {
	switch value.Kind {
	case resolve.KindAddress:
		return api.QueryResult{Kind: "address", Address: value.Address}
	case resolve.KindMX:
		return api.QueryResult{Kind: "mx", Preference: value.Preference, Exchange: value.Exchange}
	case resolve.KindDomain:
		fallthrough
	default:
		return api.QueryResult{Kind: "domain", Domain: value.Domain}
	}
}

// statusForError classifies a resolve error into an HTTP status: a
// caller mistake (bad name, unsupported type) is a 400, an upstream
// validation/lookup failure is a 502, anything else falls back to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, resolve.ErrInvalidName),
		errors.Is(err, resolve.ErrInvalidQueryType),
		errors.Is(err, resolve.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, resolve.ErrNoDSRecord),
		errors.Is(err, resolve.ErrNoNameserver),
		errors.Is(err, resolve.ErrNoNameValue),
		errors.Is(err, resolve.ErrTrustAnchorMissing),
		errors.Is(err, resolve.ErrInsecureResult),
		errors.Is(err, resolve.ErrBogusResult),
		errors.Is(err, resolve.ErrEmptyResult),
		errors.Is(err, resolve.ErrInvalidNameserver):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResult{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
