package model

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
)

// Company is the subject of one analysis. Website is a bare hostname
// with no scheme and no www prefix.
type Company struct {
	Name     string `json:"name"`
	Website  string `json:"website"`
	Industry string `json:"industry,omitempty"`
	Location string `json:"location,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// CompanyFromURL derives a transient Company from a user-supplied URL.
// The hostname (minus a leading www.) becomes the website, and the first
// hostname label, capitalized, becomes the name guess.
func CompanyFromURL(raw string) (Company, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Company{}, eris.New("model: empty url")
	}
	if lower := strings.ToLower(raw); !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Company{}, eris.Wrapf(err, "model: parse url %q", raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return Company{}, eris.Errorf("model: no hostname in %q", raw)
	}

	name := host
	if i := strings.IndexByte(host, '.'); i > 0 {
		name = host[:i]
	}

	return Company{
		Name:     capitalize(name),
		Website:  host,
		Industry: "Technology",
		Location: "Online",
		Contact:  fmt.Sprintf("info@%s", host),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
