package domain

import (
	"context"
	"maps"
	"net"
	"net/netip"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

type Lookuper interface {
	LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error)
}

type mapLookuper struct {
	set map[string][]netip.Addr
	mu  sync.RWMutex
}

var _ Lookuper = (*mapLookuper)(nil)

// NewMapLookuper returns a Lookuper answering from a copy of set.
func NewMapLookuper(set map[string][]netip.Addr) *mapLookuper {
	if set == nil {
		set = make(map[string][]netip.Addr)
	}
	return &mapLookuper{set: maps.Clone(set)}
}

func (m *mapLookuper) LookupIP(ctx context.Context, domain string) (addrs []netip.Addr, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	addrs, ok := m.set[domain]
	if !ok {
		return nil, errors.Wrap(ErrDomainNotFound, domain)
	}
	return slices.Clone(addrs), nil
}

func (m *mapLookuper) Set(domain string, addrs []netip.Addr) {
	if len(addrs) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.set[domain] = slices.Clone(addrs)
}

func (m *mapLookuper) Del(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.set, domain)
}

type netLookuper struct {
	r *net.Resolver
}

var _ Lookuper = (*netLookuper)(nil)

// NewNetLookuper returns a Lookuper asking r. nil means [net.DefaultResolver].
func NewNetLookuper(r *net.Resolver) *netLookuper {
	if r == nil {
		r = net.DefaultResolver
	}
	return &netLookuper{r: r}
}

func (n *netLookuper) LookupIP(ctx context.Context, domain string) ([]netip.Addr, error) {
	addrs, err := n.r.LookupNetIP(ctx, "ip", domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errors.Wrap(ErrDomainNotFound, domain)
		}
		return nil, errors.Wrapf(err, "looking up %s", domain)
	}

	// IPv4 addresses may come back mapped into IPv6.
	for i := range addrs {
		addrs[i] = addrs[i].Unmap()
	}

	if len(addrs) == 0 {
		return nil, errors.Wrap(ErrDomainNotFound, domain)
	}
	return addrs, nil
}
