package remote

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed assets/htaccess.tmpl
var htaccessTemplate string

var htaccess = template.Must(template.New("htaccess").Funcs(sprig.TxtFuncMap()).Parse(htaccessTemplate))

// Htaccess is the input of RenderHtaccess
type Htaccess struct {
	Application string
	Stage       string
	RemotePath  string
	// Protected adds robots headers, BasicAuth and the media redirect.
	Protected bool
	// MediaURL serves uploads missing on a protected stage.
	MediaURL string
	IPv4     []string
	IPv6     []string
}

// RenderHtaccess renders the .htaccess for a stage
func RenderHtaccess(h Htaccess) (string, error) {
	var buf bytes.Buffer
	if err := htaccess.Execute(&buf, h); err != nil {
		return "", fmt.Errorf("failed to render .htaccess: %w", err)
	}
	return buf.String(), nil
}

// LookupFunc resolves host to IP addresses of network ("ip4" or "ip6")
type LookupFunc func(ctx context.Context, network, host string) ([]net.IP, error)

// AllowFrom resolves the IPv4 and IPv6 addresses of host. The hosting
// server needs them to pass BasicAuth for its own requests, e.g. cron.
// A failed lookup leaves that family empty and is reported through warn.
func AllowFrom(ctx context.Context, lookup LookupFunc, host string, warn func(format string, args ...interface{})) (ipv4, ipv6 []string) {
	resolve := func(network string) []string {
		ips, err := lookup(ctx, network, host)
		if err != nil {
			warn("Could not resolve %s addresses of %s: %v", network, host, err)
			return nil
		}
		out := make([]string, 0, len(ips))
		for _, ip := range ips {
			out = append(out, ip.String())
		}
		return out
	}
	return resolve("ip4"), resolve("ip6")
}
