package netstat

import (
	"testing"

	psnet "github.com/shirou/gopsutil/v4/net"
)

func TestListenersFrom_KeepsOnlyListening(t *testing.T) {
	conns := []psnet.ConnectionStat{
		{Status: "LISTEN", Laddr: psnet.Addr{IP: "127.0.0.1", Port: 8123}, Pid: 42},
		{Status: "ESTABLISHED", Laddr: psnet.Addr{IP: "127.0.0.1", Port: 50000}, Pid: 42},
		{Status: "LISTEN", Laddr: psnet.Addr{IP: "::", Port: 445}, Pid: 4},
	}
	got := listenersFrom(conns)
	if len(got) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(got))
	}
	if got[0].Port != 8123 || got[0].PID != 42 || got[0].IP != "127.0.0.1" {
		t.Errorf("unexpected first listener %+v", got[0])
	}
	if got[1].IP != "::" || got[1].Port != 445 {
		t.Errorf("unexpected second listener %+v", got[1])
	}
}
