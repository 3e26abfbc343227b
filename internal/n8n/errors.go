package n8n

import "fmt"

// ConfigurationError means the call could not be made from the current
// configuration. No request was sent.
type ConfigurationError struct {
	AgentID string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.AgentID == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error for %s: %s", e.AgentID, e.Reason)
}

// TransportError is an HTTP failure: a non-2xx status, a timeout, or a
// connection problem. URL is always set for diagnosis.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("webhook %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("webhook %s returned status %d", e.URL, e.StatusCode)
	case e.Timeout:
		return fmt.Sprintf("webhook %s timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("webhook %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
