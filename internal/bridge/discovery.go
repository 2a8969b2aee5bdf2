package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// signaturePath is the endpoint whose response shape identifies the bridge.
const signaturePath = "/forms"

// Discover finds the bridge by probing local listening ports in ascending
// order. When processName is non-empty only ports owned by a process whose
// image name contains it (case-insensitive) are tried. The first port that
// accepts a TCP connection and answers /forms with the bridge's signature
// wins. On failure the client is left unconnected.
//
// processName is remembered and reused when a failed request triggers
// re-discovery.
func (c *Client) Discover(ctx context.Context, processName string) bool {
	c.disconnect()
	c.processName = processName

	ports, err := c.candidatePorts(ctx, processName)
	if err != nil {
		c.log.Warn("cannot list listening sockets", zap.Error(err))
		return false
	}
	c.log.Info("discovering delphi bridge",
		zap.Int("candidates", len(ports)),
		zap.String("process", processName))

	for _, port := range ports {
		if ctx.Err() != nil {
			return false
		}
		if c.probe(ctx, port) {
			c.connect(port)
			c.log.Info("delphi bridge found", zap.String("url", c.baseURL))
			return true
		}
	}
	c.log.Warn("delphi bridge not found on any candidate port", zap.String("process", processName))
	return false
}

// candidatePorts returns the deduplicated, sorted listening ports that are
// bound to a loopback or wildcard address and, if processName is set, owned
// by a matching process.
func (c *Client) candidatePorts(ctx context.Context, processName string) ([]int, error) {
	if c.sockets == nil {
		return nil, nil
	}
	listeners, err := c.sockets.Listeners(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(processName)
	names := make(map[int]string)
	seen := make(map[int]bool)
	for _, l := range listeners {
		if !isLocalBind(l.IP) {
			continue
		}
		if want != "" {
			if l.PID == 0 {
				continue
			}
			name, ok := names[l.PID]
			if !ok {
				// Vanished or access-denied processes resolve to "" and are skipped.
				name, _ = c.sockets.ProcessName(ctx, l.PID)
				name = strings.ToLower(name)
				names[l.PID] = name
			}
			if name == "" || !strings.Contains(name, want) {
				continue
			}
		}
		seen[l.Port] = true
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports, nil
}

// isLocalBind reports whether ip is a loopback or unspecified address.
// Sockets bound only to a routable interface are never probed.
func isLocalBind(ip string) bool {
	if i := strings.IndexByte(ip, '%'); i >= 0 {
		ip = ip[:i]
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsUnspecified()
}

// probePort checks that port accepts a TCP connection and then that
// GET /forms returns the bridge signature.
func (c *Client) probePort(ctx context.Context, port int) bool {
	addr := net.JoinHostPort(c.host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: c.probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()

	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, "http://"+addr+signaturePath, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("probe failed", zap.Int("port", port), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return false
	}
	return hasBridgeSignature(body)
}

// hasBridgeSignature reports whether body is a JSON array that is either
// empty or whose first element is an object carrying a "handle" key.
// Later elements are not inspected.
func hasBridgeSignature(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return false
	}
	if len(items) == 0 {
		return true
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return false
	}
	_, ok := first["handle"]
	return ok
}
