package resolve

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namecoin/bcresolve/dnssec"
)

// fakeNamecoinClient substitutes the external registry client.
type fakeNamecoinClient struct {
	value string
	found bool
	err   error
	calls int
}

func (f *fakeNamecoinClient) Lookup(ctx context.Context, fullName string) (string, bool, error) {
	f.calls++

	return f.value, f.found, f.err
}

// fakeContext substitutes a *dnssec.Context with a scripted answer.
type fakeContext struct {
	loadResolvConfErr     error
	addTrustAnchorFileErr error
	addTrustAnchorErr     error
	result                *dnssec.Result
	resolveErr            error

	forwardZone, forwardAddr, anchor string
}

func (f *fakeContext) LoadResolvConf(string) error         { return f.loadResolvConfErr }
func (f *fakeContext) AddTrustAnchorFile(string) error      { return f.addTrustAnchorFileErr }
func (f *fakeContext) AddTrustAnchor(presentation string) error {
	f.anchor = presentation

	return f.addTrustAnchorErr
}
func (f *fakeContext) LoadForwardZone(zone, addr string) {
	f.forwardZone, f.forwardAddr = zone, addr
}
func (f *fakeContext) Resolve(_ context.Context, _ string, _ uint16) (*dnssec.Result, error) {
	return f.result, f.resolveErr
}

// queueFactory returns contexts from contexts, in order, one per call.
func queueFactory(t *testing.T, contexts ...*fakeContext) ContextFactory {
	t.Helper()

	idx := 0

	return func() DNSSECContext {
		require.Less(t, idx, len(contexts), "ContextFactory invoked more times than scripted")
		c := contexts[idx]
		idx++

		return c
	}
}

func panicFactory(t *testing.T) ContextFactory {
	t.Helper()

	return func() DNSSECContext {
		t.Fatal("ContextFactory must not be invoked")

		return nil
	}
}

func trackingNamecoinClient() *fakeNamecoinClient {
	return &fakeNamecoinClient{}
}

func nsAAnswer(ip string) *dnssec.Result {
	return &dnssec.Result{
		Status:   dnssec.StatusSuccess,
		HaveData: true,
		Answer: []dns.RR{
			&dns.A{Hdr: dns.RR_Header{Name: "ns.example.bit.", Rrtype: dns.TypeA}, A: net.ParseIP(ip).To4()},
		},
	}
}

const base64DSRecord = `{"ds":[[40039,8,2,"NZbut7iqVxCP0IGCX7J1DA/DrbrkFJzEML1PetAxVzQ="]],"ns":["pdns83.ultradns.org","pdns84.ultradns.net"]}`

const hexDSRecord = `{"ds":[[40039,8,2,"3596EEB7B8AA57108FD081825FB2750C0FC3ADBAE4149CC430BD4F7AD0315734"]],"ns":["pdns83.ultradns.org","pdns84.ultradns.net"]}`

const expectedTrustAnchor = "testdomain.bit. IN DS 40039 8 2 3596EEB7B8AA57108FD081825FB2750C0FC3ADBAE4149CC430BD4F7AD0315734"

func newResolver(t *testing.T, client NamecoinClient, factory ContextFactory) *Resolver {
	t.Helper()

	return &Resolver{
		Namecoin:   client,
		NewContext: factory,
		Options:    Options{ResolvConf: "/etc/resolv.conf", DNSSECRootKey: "/dev/null", TempDir: t.TempDir()},
	}
}

func TestResolveInvalidNameMakesNoExternalCalls(t *testing.T) {
	r := newResolver(t, trackingNamecoinClient(), panicFactory(t))

	client := r.Namecoin.(*fakeNamecoinClient)

	_, err := r.Resolve(context.Background(), "www.example.com", "A")
	require.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, 0, client.calls)
}

func TestResolveTooFewLabelsIsInvalidName(t *testing.T) {
	r := newResolver(t, trackingNamecoinClient(), panicFactory(t))

	_, err := r.Resolve(context.Background(), "bit", "A")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestResolveNoDSRecordBeforeAnyContext(t *testing.T) {
	client := &fakeNamecoinClient{value: `{"ns":["ns1.example.bit"]}`, found: true}
	r := newResolver(t, client, panicFactory(t))

	_, err := r.Resolve(context.Background(), "example.bit", "A")
	require.ErrorIs(t, err, ErrNoDSRecord)
}

func TestResolveNoNameserverBeforeAnyContext(t *testing.T) {
	client := &fakeNamecoinClient{value: `{"ds":[[1,8,2,"AABB"]]}`, found: true}
	r := newResolver(t, client, panicFactory(t))

	_, err := r.Resolve(context.Background(), "example.bit", "A")
	require.ErrorIs(t, err, ErrNoNameserver)
}

// Scenario 1: base64 DS, TXT success on the first nameserver.
func TestResolveScenario1Base64DSTXTSuccess(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	nsCtx := &fakeContext{result: nsAAnswer("127.0.0.1")}
	authCtx := &fakeContext{result: &dnssec.Result{
		Status:   dnssec.StatusSuccess,
		Secure:   true,
		HaveData: true,
		Answer:   []dns.RR{&dns.TXT{Hdr: dns.RR_Header{Rrtype: dns.TypeTXT}, Txt: []string{"btc"}}},
	}}

	r := newResolver(t, client, queueFactory(t, nsCtx, authCtx))

	value, err := r.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "btc", value.Domain)
	assert.Equal(t, expectedTrustAnchor, authCtx.anchor)
}

// Scenario 2: hex DS, same expected trust anchor.
func TestResolveScenario2HexDSTXTSuccess(t *testing.T) {
	client := &fakeNamecoinClient{value: hexDSRecord, found: true}

	nsCtx := &fakeContext{result: nsAAnswer("127.0.0.1")}
	authCtx := &fakeContext{result: &dnssec.Result{
		Status:   dnssec.StatusSuccess,
		Secure:   true,
		HaveData: true,
		Answer:   []dns.RR{&dns.TXT{Hdr: dns.RR_Header{Rrtype: dns.TypeTXT}, Txt: []string{"btc"}}},
	}}

	r := newResolver(t, client, queueFactory(t, nsCtx, authCtx))

	value, err := r.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.NoError(t, err)
	assert.Equal(t, "btc", value.Domain)
	assert.Equal(t, expectedTrustAnchor, authCtx.anchor)
}

// Scenario 3: first NS invalid, second succeeds; exactly one scratch
// config created and unlinked (verified via an empty temp dir after
// the call, since exactly one queryAuthoritative call happens).
func TestResolveScenario3FirstNSInvalidSecondSucceeds(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	badNS := &fakeContext{result: &dnssec.Result{Status: dnssec.StatusError}}
	goodNS := &fakeContext{result: nsAAnswer("127.0.0.1")}
	authCtx := &fakeContext{result: &dnssec.Result{
		Status:   dnssec.StatusSuccess,
		Secure:   true,
		HaveData: true,
		Answer:   []dns.RR{&dns.TXT{Hdr: dns.RR_Header{Rrtype: dns.TypeTXT}, Txt: []string{"btc"}}},
	}}

	r := newResolver(t, client, queueFactory(t, badNS, goodNS, authCtx))

	value, err := r.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.NoError(t, err)
	assert.Equal(t, "btc", value.Domain)

	entries, rerr := os.ReadDir(r.Options.TempDir)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

// Scenario 4: authoritative secure=0 once, then success; two scratch
// configs created and unlinked.
func TestResolveScenario4SecureZeroThenSuccess(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	ns1 := &fakeContext{result: nsAAnswer("127.0.0.1")}
	auth1 := &fakeContext{result: &dnssec.Result{Status: dnssec.StatusSuccess, Secure: false, HaveData: true}}
	ns2 := &fakeContext{result: nsAAnswer("127.0.0.2")}
	auth2 := &fakeContext{result: &dnssec.Result{
		Status:   dnssec.StatusSuccess,
		Secure:   true,
		HaveData: true,
		Answer:   []dns.RR{&dns.TXT{Hdr: dns.RR_Header{Rrtype: dns.TypeTXT}, Txt: []string{"btc"}}},
	}}

	r := newResolver(t, client, queueFactory(t, ns1, auth1, ns2, auth2))

	value, err := r.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.NoError(t, err)
	assert.Equal(t, "btc", value.Domain)

	entries, rerr := os.ReadDir(r.Options.TempDir)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

// Scenario 5: all NS return bogus authoritative answers; loop
// exhausts and raises BogusResult.
func TestResolveScenario5AllBogus(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	ns1 := &fakeContext{result: nsAAnswer("127.0.0.1")}
	auth1 := &fakeContext{result: &dnssec.Result{Status: dnssec.StatusSuccess, Secure: true, Bogus: true, HaveData: true}}
	ns2 := &fakeContext{result: nsAAnswer("127.0.0.2")}
	auth2 := &fakeContext{result: &dnssec.Result{Status: dnssec.StatusSuccess, Secure: true, Bogus: true, HaveData: true}}

	r := newResolver(t, client, queueFactory(t, ns1, auth1, ns2, auth2))

	_, err := r.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.ErrorIs(t, err, ErrBogusResult)
}

// Scenario 6: SRV query; blockchain and NS resolve fine, authoritative
// returns success with data, but SRV is unsupported -> immediate
// UnsupportedType, no fallthrough to the second NS.
func TestResolveScenario6UnsupportedTypeIsImmediatelyFatal(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	ns1 := &fakeContext{result: nsAAnswer("127.0.0.1")}
	auth1 := &fakeContext{result: &dnssec.Result{
		Status:   dnssec.StatusSuccess,
		Secure:   true,
		HaveData: true,
		Answer:   []dns.RR{&dns.SRV{Hdr: dns.RR_Header{Rrtype: dns.TypeSRV}}},
	}}

	// Only one NS's worth of contexts is scripted: if the pipeline tried
	// a second NS, queueFactory would fail the test for running dry.
	r := newResolver(t, client, queueFactory(t, ns1, auth1))

	_, err := r.Resolve(context.Background(), "testdomain.bit", "SRV")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestResolveInsecureResultNeverReturnedAlwaysAccumulated(t *testing.T) {
	client := &fakeNamecoinClient{value: `{"ds":[[1,8,2,"AABB"]],"ns":["ns1.example.bit"]}`, found: true}

	ns1 := &fakeContext{result: nsAAnswer("127.0.0.1")}
	auth1 := &fakeContext{result: &dnssec.Result{Status: dnssec.StatusSuccess, Secure: false, HaveData: true}}

	r := newResolver(t, client, queueFactory(t, ns1, auth1))

	_, err := r.Resolve(context.Background(), "example.bit", "A")
	require.ErrorIs(t, err, ErrInsecureResult)
}

func TestResolveTrustAnchorMissingIsFatalImmediately(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	ns1 := &fakeContext{addTrustAnchorFileErr: errors.New("trust anchor missing")}

	r := newResolver(t, client, queueFactory(t, ns1))

	_, err := r.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.ErrorIs(t, err, ErrTrustAnchorMissing)
}

func TestResolveRoundTripProducesIdenticalTrustAnchor(t *testing.T) {
	client := &fakeNamecoinClient{value: base64DSRecord, found: true}

	mkContexts := func() (ns, auth *fakeContext) {
		return &fakeContext{result: nsAAnswer("127.0.0.1")}, &fakeContext{result: &dnssec.Result{
			Status: dnssec.StatusSuccess, Secure: true, HaveData: true,
			Answer: []dns.RR{&dns.TXT{Hdr: dns.RR_Header{Rrtype: dns.TypeTXT}, Txt: []string{"btc"}}},
		}}
	}

	ns1, auth1 := mkContexts()
	r1 := newResolver(t, client, queueFactory(t, ns1, auth1))
	_, err := r1.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.NoError(t, err)

	ns2, auth2 := mkContexts()
	r2 := newResolver(t, client, queueFactory(t, ns2, auth2))
	_, err = r2.Resolve(context.Background(), "testdomain.bit", "TXT")
	require.NoError(t, err)

	assert.Equal(t, auth1.anchor, auth2.anchor)
}
