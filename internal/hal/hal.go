// Package hal renders entities as HAL documents. Links come from an explicit
// table keyed by resource kind and entity state rather than from reflection
// over handlers.
package hal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// AnyState selects templates that apply regardless of entity state.
const AnyState = "*"

// Link is a single HAL link object.
type Link struct {
	Href string `json:"href"`
}

// Links maps relation names to links.
type Links map[string]Link

// Template pairs a relation with a path template such as /invoices/{id}.
type Template struct {
	Rel  string
	Path string
}

// Params supplies values for template placeholders.
type Params map[string]string

// Table maps kind -> state -> templates.
type Table map[string]map[string][]Template

// Links evaluates the templates registered for kind under AnyState and then
// under state, resolving each path against base.
func (t Table) Links(base, kind, state string, params Params) (Links, error) {
	states, ok := t[kind]
	if !ok {
		return nil, fmt.Errorf("hal: unknown resource kind %q", kind)
	}
	links := Links{}
	keys := []string{AnyState}
	if state != AnyState {
		keys = append(keys, state)
	}
	for _, key := range keys {
		for _, tpl := range states[key] {
			path, err := Expand(tpl.Path, params)
			if err != nil {
				return nil, fmt.Errorf("hal: %s rel %q: %w", kind, tpl.Rel, err)
			}
			links[tpl.Rel] = Link{Href: strings.TrimRight(base, "/") + path}
		}
	}
	return links, nil
}

// Expand substitutes {name} placeholders with path-escaped values.
func Expand(path string, params Params) (string, error) {
	var b strings.Builder
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			b.WriteString(path)
			return b.String(), nil
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", path)
		}
		name := path[open+1 : open+end]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("missing value for {%s}", name)
		}
		b.WriteString(path[:open])
		b.WriteString(url.PathEscape(value))
		path = path[open+end+1:]
	}
}

// Resource is an entity with its links inlined as _links.
type Resource struct {
	Entity any
	Links  Links
}

// Self returns the href of the self relation.
func (r Resource) Self() string {
	return r.Links["self"].Href
}

// MarshalJSON writes the entity fields followed by _links.
func (r Resource) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(r.Entity)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("hal: entity must encode as a JSON object")
	}
	links, err := json.Marshal(r.Links)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(body[:len(body)-1])
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"_links":`)
	buf.Write(links)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Collection is a HAL collection document.
type Collection struct {
	Embedded map[string][]Resource `json:"_embedded,omitempty"`
	Links    Links                 `json:"_links"`
}

// NewCollection embeds items under listName. Empty collections omit _embedded.
func NewCollection(listName string, items []Resource, links Links) Collection {
	c := Collection{Links: links}
	if len(items) > 0 {
		c.Embedded = map[string][]Resource{listName: items}
	}
	return c
}

// BaseURL derives scheme://host for the incoming request.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}
