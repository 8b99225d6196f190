package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"servicemon/internal/probe"
)

// Config is the monitoring document: who to mail, what to probe, and how
// the mail is labeled.
type Config struct {
	Contacts Contacts      `json:"contacts"`
	Tests    TestList      `json:"tests"`
	Email    EmailMetadata `json:"email_metadata"`
}

// Contacts carries the sending identity and the two recipient tiers.
// Recipients hear about failing probes; ScriptRecipient is the narrower
// operator list that hears about the runner itself breaking.
type Contacts struct {
	Source          Source   `json:"source"`
	Recipients      []string `json:"recipients"`
	ScriptRecipient []string `json:"script_recipient"`
}

// Source identifies the sending account. The From address is Account
// immediately followed by Service (e.g. "monitor" + "@example.com").
type Source struct {
	Account string `json:"account"`
	Service string `json:"service"`
}

type EmailMetadata struct {
	Subject string `json:"subject"`
}

// TestList preserves the declaration order of the document's "tests"
// object. Report layout follows this order, so it must survive decoding;
// a plain map would randomize it.
type TestList []probe.Test

func (l *TestList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("tests: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tests: expected test name, got %v", tok)
		}
		var spec testSpec
		if err := dec.Decode(&spec); err != nil {
			return fmt.Errorf("tests: %s: %w", name, err)
		}
		*l = append(*l, spec.toTest(name))
	}

	_, err = dec.Token() // closing brace
	return err
}

// testSpec mirrors one entry of the "tests" object.
type testSpec struct {
	URL       string            `json:"url"`
	Type      string            `json:"type"`
	Accept    []int             `json:"accept"`
	QueryArgs map[string]string `json:"query_args"`
	Payload   json.RawMessage   `json:"payload"`
}

func (s testSpec) toTest(name string) probe.Test {
	payload := s.Payload
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		payload = nil
	}
	return probe.Test{
		Name:      name,
		URL:       strings.TrimSpace(s.URL),
		Method:    strings.ToUpper(strings.TrimSpace(s.Type)),
		QueryArgs: s.QueryArgs,
		Payload:   payload,
		Accept:    s.Accept,
	}
}

// Load reads and validates the document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem it finds, not just the first. Unknown
// methods and empty accept sets pass deliberately: both are probe
// failures at run time, not document errors.
func (c *Config) Validate() error {
	var err error
	if c.Contacts.Source.Account == "" {
		err = multierr.Append(err, errors.New("contacts.source.account is required"))
	}
	if c.Contacts.Source.Service == "" {
		err = multierr.Append(err, errors.New("contacts.source.service is required"))
	}
	if len(c.Contacts.Recipients) == 0 {
		err = multierr.Append(err, errors.New("contacts.recipients must not be empty"))
	}
	if len(c.Contacts.ScriptRecipient) == 0 {
		err = multierr.Append(err, errors.New("contacts.script_recipient must not be empty"))
	}
	if c.Email.Subject == "" {
		err = multierr.Append(err, errors.New("email_metadata.subject is required"))
	}
	if len(c.Tests) == 0 {
		err = multierr.Append(err, errors.New("tests must declare at least one test"))
	}

	seen := make(map[string]bool, len(c.Tests))
	for _, t := range c.Tests {
		if t.URL == "" {
			err = multierr.Append(err, fmt.Errorf("tests.%s: url is required", t.Name))
		}
		if seen[t.Name] {
			err = multierr.Append(err, fmt.Errorf("tests.%s: duplicate test name", t.Name))
		}
		seen[t.Name] = true
	}
	return err
}
