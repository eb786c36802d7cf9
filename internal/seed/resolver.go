// Package seed resolves DNS seed hostnames into candidate peer
// addresses.
package seed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// DefaultResolvConf is the system resolver configuration consulted for
// nameservers.
const DefaultResolvConf = "/etc/resolv.conf"

// Resolver queries a DNS seed for peer addresses. Seeds answer with the
// addresses of nodes believed to be accepting connections; an empty
// answer set is a valid result.
type Resolver struct {
	logger  *zap.Logger
	client  *dns.Client
	servers []string
}

// New builds a resolver from the system resolver configuration.
func New(logger *zap.Logger) (*Resolver, error) {
	return newFromConfig(logger, DefaultResolvConf)
}

func newFromConfig(logger *zap.Logger, path string) (*Resolver, error) {
	conf, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resolver config: %w", err)
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	return newWithServers(logger, servers)
}

func newWithServers(logger *zap.Logger, servers []string) (*Resolver, error) {
	if len(servers) == 0 {
		return nil, errors.New("no nameservers configured")
	}
	return &Resolver{logger: logger, client: new(dns.Client), servers: servers}, nil
}

// Resolve returns every A and AAAA answer for the seed host, each
// paired with port. It fails only when neither record type could be
// queried; a single failing family is logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	var (
		addrs []netip.AddrPort
		errs  []error
	)
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		answers, err := r.query(ctx, host, qtype)
		if err != nil {
			r.logger.Warn("seed query failed",
				zap.String("seed", host),
				zap.String("type", dns.TypeToString[qtype]),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		for _, ip := range answers {
			addrs = append(addrs, netip.AddrPortFrom(ip, port))
		}
	}
	if len(errs) == 2 {
		return nil, fmt.Errorf("resolve %s: %w", host, errors.Join(errs...))
	}
	return addrs, nil
}

func (r *Resolver) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("%s query: %s", dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
			continue
		}
		return collectAddrs(resp.Answer), nil
	}
	return nil, lastErr
}

// collectAddrs extracts the usable addresses from an answer section,
// ignoring CNAMEs and other record types.
func collectAddrs(answers []dns.RR) []netip.Addr {
	var out []netip.Addr
	for _, rr := range answers {
		switch a := rr.(type) {
		case *dns.A:
			if ip, ok := netip.AddrFromSlice(a.A); ok {
				out = append(out, ip.Unmap())
			}
		case *dns.AAAA:
			if ip, ok := netip.AddrFromSlice(a.AAAA); ok {
				out = append(out, ip)
			}
		}
	}
	return out
}
