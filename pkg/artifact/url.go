package artifact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mchmarny/examscore/pkg/net"
)

// URLSource reads artifacts published under an HTTP base URL, probing
// the same extensions as DirSource.
type URLSource struct {
	base   *url.URL
	client *http.Client
}

// IsURL reports whether location names an HTTP artifact location.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// NewURLSource returns a source reading from base using client, or a
// default client when nil.
func NewURLSource(base string, client *http.Client) (*URLSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported artifact url scheme: %q", u.Scheme)
	}
	if client == nil {
		client = net.GetHTTPClient()
	}
	return &URLSource{base: u, client: client}, nil
}

func (s *URLSource) String() string {
	return s.base.String()
}

func (s *URLSource) Read(name string) ([]byte, Format, error) {
	for _, ext := range extensions {
		u := s.base.JoinPath(name + ext).String()
		b, err := net.Fetch(context.Background(), s.client, u)
		if errors.Is(err, net.ErrorURLNotFound) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		f, _ := ParseFormat(ext)
		return b, f, nil
	}
	return nil, "", fmt.Errorf("%s: %w", name, ErrNotFound)
}
