package scenario

import (
	"errors"
	"fmt"
)

// StatusSuccess is the only supported value of Check.Status.
const StatusSuccess = "success"

type Kind int

const (
	KindInvalid Kind = iota
	KindStatus
	KindHeader
	KindJSONBody
	KindFieldEquals
	KindFieldExists
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindHeader:
		return "header"
	case KindJSONBody:
		return "json_body"
	case KindFieldEquals:
		return "field_equals"
	case KindFieldExists:
		return "field_exists"
	case KindSchema:
		return "schema"
	default:
		return "invalid"
	}
}

var (
	ErrNoCheckKind       = errors.New("check has no kind")
	ErrAmbiguousCheck    = errors.New("check names more than one kind")
	ErrUnsupportedStatus = errors.New("unsupported status check")
)

// Check is one entry of a step's expect block. Exactly one kind is set:
//
//	- status: success
//	- header: Content-Type
//	  contains: application/json
//	- json_body: true
//	- field: amount
//	  equals: 6540
//	  when: amount        # optional guard, defaults to field
//	- field: connector_transaction_id
//	  exists: true
//	- schema: ./schemas/payment.json
type Check struct {
	Name     string   `yaml:"name,omitempty"`
	Status   string   `yaml:"status,omitempty"`
	Header   string   `yaml:"header,omitempty"`
	Contains string   `yaml:"contains,omitempty"`
	JSONBody bool     `yaml:"json_body,omitempty"`
	Field    string   `yaml:"field,omitempty"`
	Equals   Expected `yaml:"equals,omitempty"`
	When     string   `yaml:"when,omitempty"`
	Exists   bool     `yaml:"exists,omitempty"`
	Schema   string   `yaml:"schema,omitempty"`
}

// Kind reports which assertion the check describes.
func (c *Check) Kind() Kind {
	k, _ := c.kind()
	return k
}

func (c *Check) kind() (Kind, error) {
	var kinds []Kind
	if c.Status != "" {
		kinds = append(kinds, KindStatus)
	}
	if c.Header != "" {
		kinds = append(kinds, KindHeader)
	}
	if c.JSONBody {
		kinds = append(kinds, KindJSONBody)
	}
	if c.Schema != "" {
		kinds = append(kinds, KindSchema)
	}
	if c.Field != "" {
		switch {
		case c.Equals.Set && c.Exists:
			return KindInvalid, ErrAmbiguousCheck
		case c.Equals.Set:
			kinds = append(kinds, KindFieldEquals)
		case c.Exists:
			kinds = append(kinds, KindFieldExists)
		default:
			return KindInvalid, fmt.Errorf("field %s needs equals or exists", c.Field)
		}
	}

	switch len(kinds) {
	case 0:
		return KindInvalid, ErrNoCheckKind
	case 1:
		return kinds[0], nil
	default:
		return KindInvalid, ErrAmbiguousCheck
	}
}

// Validate reports a malformed check.
func (c *Check) Validate() error {
	k, err := c.kind()
	if err != nil {
		return err
	}
	if k == KindStatus && c.Status != StatusSuccess {
		return fmt.Errorf("%w: %q", ErrUnsupportedStatus, c.Status)
	}
	if k == KindHeader && c.Contains == "" {
		return fmt.Errorf("header %s needs contains", c.Header)
	}
	return nil
}

func (c *Check) describe() string {
	switch c.Kind() {
	case KindStatus:
		return "Status code is 2xx"
	case KindHeader:
		return fmt.Sprintf("%s is %s", c.Header, c.Contains)
	case KindJSONBody:
		return "Response has JSON Body"
	case KindFieldEquals:
		return fmt.Sprintf("Content check if value for '%s' matches '%v'", c.Field, c.Equals.Value)
	case KindFieldExists:
		return fmt.Sprintf("Content check if '%s' exists", c.Field)
	case KindSchema:
		return fmt.Sprintf("Response matches schema %s", c.Schema)
	default:
		return "invalid check"
	}
}
