package galaxy

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
)

// Credentials is the backend cookie jar for one browser session.
type Credentials struct {
	mu       sync.Mutex
	cookies  map[string]string
	onChange func(encoded string)
}

// NewCredentials builds a jar from cookies received at login.
func NewCredentials(cookies []*http.Cookie) *Credentials {
	c := &Credentials{cookies: make(map[string]string)}
	c.merge(cookies)
	return c
}

// DecodeCredentials restores a jar persisted with Encode. onChange is called
// with the new encoding whenever the backend rotates a cookie.
func DecodeCredentials(encoded string, onChange func(string)) *Credentials {
	c := &Credentials{cookies: make(map[string]string), onChange: onChange}
	if encoded != "" {
		_ = json.Unmarshal([]byte(encoded), &c.cookies)
		if c.cookies == nil {
			c.cookies = make(map[string]string)
		}
	}
	return c
}

// Encode serialises the jar.
func (c *Credentials) Encode() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encodeLocked()
}

// Empty reports whether no cookie is held.
func (c *Credentials) Empty() bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cookies) == 0
}

func (c *Credentials) encodeLocked() string {
	data, err := json.Marshal(c.cookies)
	if err != nil {
		return ""
	}
	return string(data)
}

func (c *Credentials) apply(req *http.Request) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.cookies))
	for name := range c.cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.AddCookie(&http.Cookie{Name: name, Value: c.cookies[name]})
	}
}

func (c *Credentials) merge(cookies []*http.Cookie) {
	if c == nil || len(cookies) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, ck := range cookies {
		if ck.MaxAge < 0 || ck.Value == "" {
			if _, ok := c.cookies[ck.Name]; ok {
				delete(c.cookies, ck.Name)
				changed = true
			}
			continue
		}
		if c.cookies[ck.Name] != ck.Value {
			c.cookies[ck.Name] = ck.Value
			changed = true
		}
	}
	// onChange runs under the lock so concurrent calls never write the session at once.
	if changed && c.onChange != nil {
		c.onChange(c.encodeLocked())
	}
}
