package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of mzt-web.
	ServiceType = "_mzt._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default mzt-web HTTP port.
	DefaultPort = 8080

	// BrowseTimeout is the default browse duration.
	BrowseTimeout = 3 * time.Second

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyVersion = "v"
	TXTKeyPath    = "path"
	TXTKeyName    = "name"
	TXTKeyID      = "id"
)

var (
	ErrInvalidInstanceName = errors.New("invalid instance name")
	ErrMissingTXT          = errors.New("missing TXT record")
	ErrIncompatible        = errors.New("incompatible API version")
	ErrAlreadyAdvertising  = errors.New("already advertising")
)

// Info is what a server announces about itself.
type Info struct {
	// InstanceName is the DNS-SD instance label. Defaults to Name.
	InstanceName string

	// Port the HTTP API listens on. Zero means DefaultPort.
	Port int

	// Version is the API format version. Defaults to version.Current.
	Version string

	// Path is the API base path. Defaults to the path for Version.
	Path string

	// Name is a human-readable server name.
	Name string

	// ID identifies the server instance across restarts.
	ID string
}

// Service is a discovered mzt-web instance.
type Service struct {
	InstanceName string
	Host         string
	Port         int
	Addresses    []string

	Version string
	Path    string
	Name    string
	ID      string
}

// URL returns the API base URL using the first known address, or the host
// name when no address is known.
func (s *Service) URL() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port)) + s.Path
}

func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) %s v%s", s.Name, s.InstanceName, s.URL(), s.Version)
}

// ServiceEntry is a raw browse result before TXT decoding.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     int
	Text     []string
	Addrs    []string
}

// AdvertiserConfig configures advertising.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface.
	// Empty means all interfaces.
	Interface string

	// TTL of the announced records. Zero uses the zeroconf default.
	TTL time.Duration
}

// BrowserConfig configures browsing.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface.
	Interface string

	// Timeout bounds a Browse call when the context has no deadline.
	// Default: BrowseTimeout.
	Timeout time.Duration
}
