package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// AuthFor picks the transport credentials for url: the SSH agent for SSH
// remotes, the token for HTTPS remotes and nothing for local paths.
func AuthFor(url, token string) (transport.AuthMethod, error) {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, fmt.Errorf("invalid remote %q: %w", url, err)
	}

	switch endpoint.Protocol {
	case "ssh":
		user := endpoint.User
		if user == "" {
			user = "git"
		}
		auth, err := gitssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, fmt.Errorf("ssh agent unavailable for %s: %w", url, err)
		}
		return auth, nil
	case "http", "https":
		if strings.TrimSpace(token) == "" {
			return nil, nil
		}
		return &http.BasicAuth{Username: "x-access-token", Password: token}, nil
	default:
		return nil, nil
	}
}
