// Package netstat reads the local TCP socket table through gopsutil.
package netstat

import (
	"context"
	"fmt"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/mj1618/delphi-cli/internal/platform"
)

const statusListen = "LISTEN"

// Table implements platform.SocketTable for the local machine.
type Table struct{}

// New returns a Table.
func New() *Table {
	return &Table{}
}

// Listeners returns every TCP socket in the LISTEN state, IPv4 and IPv6.
func (t *Table) Listeners(ctx context.Context) ([]platform.Listener, error) {
	conns, err := psnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("list tcp connections: %w", err)
	}
	return listenersFrom(conns), nil
}

// ProcessName returns the executable name of pid.
func (t *Table) ProcessName(ctx context.Context, pid int) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", fmt.Errorf("open process %d: %w", pid, err)
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("process %d name: %w", pid, err)
	}
	return name, nil
}

func listenersFrom(conns []psnet.ConnectionStat) []platform.Listener {
	var out []platform.Listener
	for _, c := range conns {
		if c.Status != statusListen {
			continue
		}
		out = append(out, platform.Listener{
			IP:   c.Laddr.IP,
			Port: int(c.Laddr.Port),
			PID:  int(c.Pid),
		})
	}
	return out
}

var _ platform.SocketTable = (*Table)(nil)
