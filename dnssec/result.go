package dnssec

import "github.com/miekg/dns"

// Status mirrors the integer status unbound's ub_ctx.resolve returns:
// 0 means the resolution itself completed (regardless of the DNSSEC
// verdict), anything else means the query could not be completed at
// all (network failure, SERVFAIL, ...).
type Status int

const (
	StatusSuccess Status = iota
	StatusError
)

// Result mirrors unbound's ub_result fields: secure, bogus, havedata,
// plus the answer data itself.
type Result struct {
	Status   Status
	Secure   bool
	Bogus    bool
	HaveData bool
	Answer   []dns.RR
}
