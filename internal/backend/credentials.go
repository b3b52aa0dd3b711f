package backend

import "sync"

// Credentials is the single default-authorization slot shared by every outgoing
// call. The user token, once set, takes precedence over the service token.
type Credentials struct {
	mu           sync.RWMutex
	serviceToken string
	userToken    string
}

func NewCredentials() *Credentials {
	return &Credentials{}
}

func (c *Credentials) SetServiceToken(token string) {
	c.mu.Lock()
	c.serviceToken = token
	c.mu.Unlock()
}

func (c *Credentials) SetUserToken(token string) {
	c.mu.Lock()
	c.userToken = token
	c.mu.Unlock()
}

func (c *Credentials) ClearUserToken() {
	c.SetUserToken("")
}

// Authorization returns the header value for calls that did not set one
// explicitly, or "" when no credential is known yet.
func (c *Credentials) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.userToken != "":
		return "Bearer " + c.userToken
	case c.serviceToken != "":
		return "Bearer " + c.serviceToken
	default:
		return ""
	}
}
