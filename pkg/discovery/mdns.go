package discovery

import (
	"context"
	"fmt"
	"net"
	"slices"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// server is the part of *zeroconf.Server the advertiser uses.
type server interface {
	SetText(text []string)
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (server, error)

type browseFunc func(ctx context.Context, opts []zeroconf.ClientOption, entries, removed chan<- *ServiceEntry) error

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (server, error) {
	s, err := zeroconf.Register(instance, service, domain, port, text, ifaces, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// zeroconfBrowse runs a zeroconf browse for ServiceType and forwards its
// results as ServiceEntry values until ctx is done.
func zeroconfBrowse(ctx context.Context, opts []zeroconf.ClientOption, entries, removed chan<- *ServiceEntry) error {
	zentries := make(chan *zeroconf.ServiceEntry)
	zremoved := make(chan *zeroconf.ServiceEntry)

	errc := make(chan error, 1)
	go func() {
		errc <- zeroconf.Browse(ctx, ServiceType, Domain, zentries, zremoved, opts...)
	}()

	forward := func(out chan<- *ServiceEntry, e *zeroconf.ServiceEntry) {
		select {
		case out <- fromZeroconf(e):
		case <-ctx.Done():
		}
	}

	for {
		select {
		case e, ok := <-zentries:
			if !ok {
				zentries = nil
				continue
			}
			forward(entries, e)
		case e, ok := <-zremoved:
			if !ok {
				zremoved = nil
				continue
			}
			forward(removed, e)
		case err := <-errc:
			if err != nil {
				return err
			}
			errc = nil
		case <-ctx.Done():
			return nil
		}
	}
}

func fromZeroconf(e *zeroconf.ServiceEntry) *ServiceEntry {
	addrs := make([]string, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
	for _, ip := range e.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range e.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return &ServiceEntry{
		Instance: e.Instance,
		Host:     e.HostName,
		Port:     int(e.Port),
		Text:     e.Text,
		Addrs:    addrs,
	}
}

// Advertiser announces one mzt-web instance.
type Advertiser struct {
	config   AdvertiserConfig
	register registerFunc

	mu     sync.Mutex
	server server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config, register: zeroconfRegister}
}

func (a *Advertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts announcing info. It fails if the advertiser is already
// running; call Stop first.
func (a *Advertiser) Advertise(info *Info) error {
	instance := info.InstanceName
	if instance == "" {
		instance = info.Name
	}
	if err := ValidateInstanceName(instance); err != nil {
		return err
	}

	port := info.Port
	if port == 0 {
		port = DefaultPort
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		return ErrAlreadyAdvertising
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	text := TXTRecordsToStrings(EncodeTXT(info))
	s, err := a.register(instance, ServiceType, Domain, port, text, a.interfaces(), opts...)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	a.server = s
	return nil
}

// Update replaces the announced TXT records.
func (a *Advertiser) Update(info *Info) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.SetText(TXTRecordsToStrings(EncodeTXT(info)))
	}
}

// Stop withdraws the announcement. It is safe to call more than once.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// Browser finds mzt-web instances.
type Browser struct {
	config BrowserConfig
	browse browseFunc
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.Timeout <= 0 {
		config.Timeout = BrowseTimeout
	}
	return &Browser{config: config, browse: zeroconfBrowse}
}

func (b *Browser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// Browse collects services until ctx is done or the configured timeout
// passes. Services that announced removal of all their addresses are left
// out. The result is sorted by instance name.
func (b *Browser) Browse(ctx context.Context) ([]*Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	entries := make(chan *ServiceEntry)
	removed := make(chan *ServiceEntry)

	errc := make(chan error, 1)
	go func() {
		errc <- b.browse(ctx, b.options(), entries, removed)
	}()

	services := make(map[string]*Service)
	var order []string

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			svc := entryToService(entry)
			if svc == nil {
				continue
			}
			if existing, found := services[svc.InstanceName]; found {
				existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				continue
			}
			services[svc.InstanceName] = svc
			order = append(order, svc.InstanceName)

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if existing, found := services[entry.Instance]; found {
				existing.Addresses = removeAddresses(existing.Addresses, entry)
				if len(existing.Addresses) == 0 {
					delete(services, entry.Instance)
				}
			}

		case err := <-errc:
			if err != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("browse %s: %w", ServiceType, err)
			}
			errc = nil

		case <-ctx.Done():
			return collect(services, order), nil
		}
	}
}

func collect(services map[string]*Service, order []string) []*Service {
	result := make([]*Service, 0, len(services))
	for _, name := range order {
		if svc, ok := services[name]; ok {
			result = append(result, svc)
		}
	}
	slices.SortFunc(result, func(a, b *Service) int {
		switch {
		case a.InstanceName < b.InstanceName:
			return -1
		case a.InstanceName > b.InstanceName:
			return 1
		}
		return 0
	})
	return result
}

// entryToService converts a browse entry. Entries with unusable TXT
// records yield nil.
func entryToService(entry *ServiceEntry) *Service {
	info, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	return &Service{
		InstanceName: entry.Instance,
		Host:         entry.Host,
		Port:         entry.Port,
		Addresses:    slices.Clone(entry.Addrs),
		Version:      info.Version,
		Path:         info.Path,
		Name:         info.Name,
		ID:           info.ID,
	}
}

// mergeAddresses appends the addresses from add not yet in existing.
func mergeAddresses(existing, add []string) []string {
	for _, addr := range add {
		if !slices.Contains(existing, addr) {
			existing = append(existing, addr)
		}
	}
	return existing
}

// removeAddresses drops the addresses carried by entry.
func removeAddresses(addresses []string, entry *ServiceEntry) []string {
	return slices.DeleteFunc(addresses, func(addr string) bool {
		return slices.Contains(entry.Addrs, addr)
	})
}
