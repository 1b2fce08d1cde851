// Package vcap reads platform service bindings from the VCAP_SERVICES
// environment variable.
package vcap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	ErrMalformedServices  = errors.New("malformed VCAP_SERVICES")
	ErrMissingCredentials = errors.New("service binding has no usable credentials")
)

// Services maps a service label (e.g. "p-redis") to its bound instances.
// Instances stay undecoded until Credentials asks for a label, so other
// bindings never fail the parse.
type Services map[string]json.RawMessage

type Instance struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Plan        string      `json:"plan"`
	Credentials Credentials `json:"credentials"`
}

type Credentials struct {
	Host     string `json:"host"`
	Port     Port   `json:"port"`
	Password string `json:"password"`
}

// Port accepts both JSON numbers and numeric strings. Zero means absent.
type Port int

func (p *Port) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*p = 0
			return nil
		}
	} else {
		raw = string(data)
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", raw)
	}
	*p = Port(port)
	return nil
}

func Parse(raw string) (Services, error) {
	var services Services
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedServices, err)
	}
	return services, nil
}

// Credentials returns the credentials of the first instance bound under
// label. found is false when the label is not bound at all.
// Missing host, port or password are returned as zero values.
func (s Services) Credentials(label string) (creds *Credentials, found bool, err error) {
	raw, ok := s[label]
	if !ok {
		return nil, false, nil
	}

	var instances []Instance
	if err := json.Unmarshal(raw, &instances); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %w", ErrMalformedServices, label, err)
	}
	if len(instances) == 0 {
		return nil, true, fmt.Errorf("%w: %s has no instances", ErrMissingCredentials, label)
	}
	return &instances[0].Credentials, true, nil
}

// Labels lists the bound service labels, for diagnostics.
func (s Services) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}
