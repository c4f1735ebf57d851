package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mzt-timers/mzt-go/pkg/discovery"
)

// Browser finds mzt-web services.
type Browser interface {
	Browse(ctx context.Context) ([]*discovery.Service, error)
}

// RunDiscover browses for mzt-web instances and lists them.
func RunDiscover(ctx context.Context, b Browser, w io.Writer) error {
	services, err := b.Browse(ctx)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}
	writeServices(w, services)
	return nil
}

func writeServices(w io.Writer, services []*discovery.Service) {
	if len(services) == 0 {
		fmt.Fprintln(w, "No mzt-web services found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tURL\tVERSION")
	for _, s := range services {
		name := s.Name
		if name == "" {
			name = s.InstanceName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, s.URL(), s.Version)
	}
	tw.Flush()
}
