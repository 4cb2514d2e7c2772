// Package endpoints loads the declarative endpoint list.
//
// The file is YAML: either a top-level sequence of records or a mapping with
// an "endpoints" key holding that sequence.
//
//	- name: fetch index page
//	  url: https://fetch.com/
//	  method: GET
//	  headers:
//	    user-agent: fetch-synthetic-monitor
//	- name: fetch some fake post endpoint
//	  url: https://fetch.com/some/post/endpoint
//	  method: POST
//	  body: '{"foo":"bar"}'
package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/healthcheck/internal/domain"
)

// ErrNoEndpoints is returned when the file declares no endpoints.
var ErrNoEndpoints = errors.New("endpoint list is empty")

var methods = []interface{}{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodTrace, http.MethodConnect,
}

// Record is one raw entry of the endpoint file.
type Record struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Body    Body              `yaml:"body"`
}

// Body accepts a string, or any YAML structure which is sent as JSON.
type Body string

// UnmarshalYAML implements yaml.Unmarshaler for Body.
func (b *Body) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*b = Body(s)
		return nil
	}
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("body: %w", err)
	}
	*b = Body(raw)
	return nil
}

func (r Record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&r.URL, validation.Required, validation.By(notBlank), validation.By(validateHTTPURL)),
		validation.Field(&r.Method, validation.By(func(value interface{}) error {
			m, _ := value.(string)
			if m == "" {
				return nil
			}
			return validation.In(methods...).Validate(strings.ToUpper(m))
		})),
	)
}

// Endpoint converts a validated record, applying the GET default.
func (r Record) Endpoint() domain.Endpoint {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		method = http.MethodGet
	}
	var headers map[string]string
	if len(r.Headers) > 0 {
		headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			headers[k] = v
		}
	}
	return domain.Endpoint{
		Name:    strings.TrimSpace(r.Name),
		URL:     strings.TrimSpace(r.URL),
		Method:  method,
		Headers: headers,
		Body:    string(r.Body),
	}
}

// Load reads and validates the endpoint file at path.
func Load(path string) ([]domain.Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoint file: %w", err)
	}
	eps, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return eps, nil
}

// Parse decodes and validates an endpoint list. Every invalid record is
// reported, not only the first.
func Parse(data []byte) ([]domain.Endpoint, error) {
	records, err := decode(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoEndpoints
	}

	var errs error
	out := make([]domain.Endpoint, 0, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoint #%d %q: %w", i+1, rec.Name, err))
			continue
		}
		out = append(out, rec.Endpoint())
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func decode(data []byte) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse endpoint yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	var records []Record
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode endpoints: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Endpoints []Record `yaml:"endpoints"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decode endpoints: %w", err)
		}
		records = wrapped.Endpoints
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("decode endpoints: expected a list, got %q", root.Value)
	default:
		return nil, fmt.Errorf("decode endpoints: expected a list")
	}
	return records, nil
}

func notBlank(value interface{}) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

func validateHTTPURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}
