package seed

import (
	"context"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// startDNSServer runs an in-process DNS server with the given handler
// and returns its address.
func startDNSServer(t *testing.T, handler dns.Handler) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go func() {
		_ = srv.ActivateAndServe()
	}()
	t.Cleanup(func() {
		_ = srv.Shutdown()
	})

	return pc.LocalAddr().String()
}

func aRecord(name string, ip net.IP) *dns.A {
	return &dns.A{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
		A:   ip,
	}
}

func aaaaRecord(name string, ip net.IP) *dns.AAAA {
	return &dns.AAAA{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60},
		AAAA: ip,
	}
}

func TestResolve(t *testing.T) {
	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		name := req.Question[0].Name
		switch req.Question[0].Qtype {
		case dns.TypeA:
			m.Answer = append(m.Answer,
				aRecord(name, net.IPv4(10, 0, 0, 1)),
				aRecord(name, net.IPv4(10, 0, 0, 2)))
		case dns.TypeAAAA:
			m.Answer = append(m.Answer, aaaaRecord(name, net.ParseIP("2001:db8::7")))
		}
		_ = w.WriteMsg(m)
	})
	server := startDNSServer(t, handler)

	r, err := newWithServers(zaptest.NewLogger(t), []string{server})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	addrs, err := r.Resolve(ctx, "seed.example.com", 8333)
	require.NoError(t, err)
	require.ElementsMatch(t, []netip.AddrPort{
		netip.MustParseAddrPort("10.0.0.1:8333"),
		netip.MustParseAddrPort("10.0.0.2:8333"),
		netip.MustParseAddrPort("[2001:db8::7]:8333"),
	}, addrs)
}

func TestResolveNXDomain(t *testing.T) {
	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(req, dns.RcodeNameError)
		_ = w.WriteMsg(m)
	})
	server := startDNSServer(t, handler)

	r, err := newWithServers(zaptest.NewLogger(t), []string{server})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = r.Resolve(ctx, "missing.example.com", 8333)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.example.com")
}

func TestResolveEmptyAnswerIsValid(t *testing.T) {
	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		_ = w.WriteMsg(m)
	})
	server := startDNSServer(t, handler)

	r, err := newWithServers(zaptest.NewLogger(t), []string{server})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	addrs, err := r.Resolve(ctx, "quiet.example.com", 8333)
	require.NoError(t, err)
	require.Empty(t, addrs)
}

func TestCollectAddrsSkipsOtherRecordTypes(t *testing.T) {
	name := "seed.example.com."
	answers := []dns.RR{
		aRecord(name, net.IPv4(192, 0, 2, 10)),
		&dns.CNAME{
			Hdr:    dns.RR_Header{Name: name, Rrtype: dns.TypeCNAME, Class: dns.ClassINET, Ttl: 60},
			Target: "other.example.com.",
		},
		aaaaRecord(name, net.ParseIP("2001:db8::9")),
	}

	got := collectAddrs(answers)
	require.Equal(t, []netip.Addr{
		netip.MustParseAddr("192.0.2.10"),
		netip.MustParseAddr("2001:db8::9"),
	}, got)
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 127.0.0.1\nnameserver 192.0.2.53\n"), 0o600))

	r, err := newFromConfig(zaptest.NewLogger(t), path)
	require.NoError(t, err)
	require.Equal(t, []string{"127.0.0.1:53", "192.0.2.53:53"}, r.servers)
}

func TestNewWithServersRequiresNameserver(t *testing.T) {
	_, err := newWithServers(zaptest.NewLogger(t), nil)
	require.Error(t, err)
}
