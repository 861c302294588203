package resolve

import "errors"

// Sentinel errors, one per distinct failure kind a resolve call can
// raise. Compare with errors.Is; each carries no payload beyond its
// identity, matching the original's bare exception classes.
var (
	ErrInvalidName        = errors.New("resolve: name is not a valid .bit domain")
	ErrInvalidQueryType   = errors.New("resolve: query type is not a recognized DNS type")
	ErrNoNameValue        = errors.New("resolve: no name value data found on the blockchain")
	ErrNoDSRecord         = errors.New("resolve: no DS records present for domain")
	ErrNoNameserver       = errors.New("resolve: no NS records present for domain")
	ErrTrustAnchorMissing = errors.New("resolve: public trust anchor file is missing or inaccessible")
	ErrInvalidNameserver  = errors.New("resolve: no nameserver resolved to a usable address")
	ErrInsecureResult     = errors.New("resolve: authoritative answer was insecure on every attempted nameserver")
	ErrBogusResult        = errors.New("resolve: authoritative answer was bogus on every attempted nameserver")
	ErrEmptyResult        = errors.New("resolve: authoritative answer carried no data on every attempted nameserver")
	ErrUnsupportedType    = errors.New("resolve: query type is not supported by the authoritative extractor")
)
