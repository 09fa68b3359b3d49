// Package validation declares per-route input rules as chains of
// (field, predicate, message) steps. Chains run as fiber middleware, record
// every failing step for the request and always pass control onward; the
// decision to reject is left to a later gate.
package validation

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// Request locations a chain can read from.
const (
	LocationParams = "params"
	LocationBody   = "body"
)

// DefaultMessage is used for steps that were not given a WithMessage.
const DefaultMessage = "Invalid value"

// MalformedBodyMessage is reported once per request when the JSON body
// cannot be decoded.
const MalformedBodyMessage = "Invalid JSON body"

// Violation describes one failed rule step.
type Violation struct {
	Type     string      `json:"type"`
	Value    interface{} `json:"value,omitempty"`
	Msg      string      `json:"msg"`
	Path     string      `json:"path"`
	Location string      `json:"location"`
}

type localsKey int

const (
	violationsKey localsKey = iota
	bodyKey
)

var (
	validate   = newValidator()
	integerRex = regexp.MustCompile(`^[-+]?[0-9]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// validator ships "number" and "numeric" but neither accepts only signed integers.
	if err := v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		return integerRex.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type step struct {
	check   func(value interface{}) bool
	message string
}

// Chain is an ordered list of checks against a single request field.
type Chain struct {
	field    string
	location string
	steps    []step
}

// Param starts a chain reading the named route parameter.
func Param(field string) *Chain {
	return &Chain{field: field, location: LocationParams}
}

// Body starts a chain reading the named field of the JSON request body.
func Body(field string) *Chain {
	return &Chain{field: field, location: LocationBody}
}

// NotEmpty fails for missing, null or empty-string values.
func (ch *Chain) NotEmpty() *Chain {
	return ch.tag("required")
}

// IsNumeric fails unless the value is a decimal number.
func (ch *Chain) IsNumeric() *Chain {
	return ch.tag("numeric")
}

// IsInt fails unless the value is an optionally signed integer.
func (ch *Chain) IsInt() *Chain {
	return ch.tag("integer")
}

// IsBoolean fails unless the value is a boolean, 0 or 1, or one of the
// strings "true", "false", "0" and "1".
func (ch *Chain) IsBoolean() *Chain {
	return ch.tag("oneof=true false 0 1")
}

// Custom adds a step that fails when fn returns false. fn receives the raw
// value, which is nil when the field is missing.
func (ch *Chain) Custom(fn func(value interface{}) bool) *Chain {
	ch.steps = append(ch.steps, step{check: fn, message: DefaultMessage})
	return ch
}

// WithMessage sets the message of the most recently added step.
func (ch *Chain) WithMessage(msg string) *Chain {
	if n := len(ch.steps); n > 0 {
		ch.steps[n-1].message = msg
	}
	return ch
}

func (ch *Chain) tag(tag string) *Chain {
	return ch.Custom(func(value interface{}) bool {
		return validate.Var(Stringify(value), tag) == nil
	})
}

// Run evaluates every step and records one violation per failure. It never
// short-circuits and always calls the next handler.
func (ch *Chain) Run(c *fiber.Ctx) error {
	value := ch.value(c)
	for _, s := range ch.steps {
		if s.check(value) {
			continue
		}
		addViolation(c, Violation{
			Type:     "field",
			Value:    value,
			Msg:      s.message,
			Path:     ch.field,
			Location: ch.location,
		})
	}
	return c.Next()
}

func (ch *Chain) value(c *fiber.Ctx) interface{} {
	if ch.location == LocationParams {
		return c.Params(ch.field)
	}

	body := parseBody(c)
	if body.err != nil && !body.reported {
		body.reported = true
		addViolation(c, Violation{Type: "field", Msg: MalformedBodyMessage, Location: LocationBody})
	}
	return body.fields[ch.field]
}

// Result returns the violations recorded for the current request, in the
// order their chains ran.
func Result(c *fiber.Ctx) []Violation {
	violations, _ := c.Locals(violationsKey).([]Violation)
	return violations
}

func addViolation(c *fiber.Ctx, v Violation) {
	c.Locals(violationsKey, append(Result(c), v))
}

type parsedBody struct {
	fields   map[string]interface{}
	err      error
	reported bool
}

// BodyFields returns the decoded JSON body. The body is decoded once per
// request; bodies that are empty or not sent as JSON yield an empty map.
func BodyFields(c *fiber.Ctx) (map[string]interface{}, error) {
	body := parseBody(c)
	return body.fields, body.err
}

func parseBody(c *fiber.Ctx) *parsedBody {
	if cached, ok := c.Locals(bodyKey).(*parsedBody); ok {
		return cached
	}

	body := &parsedBody{fields: map[string]interface{}{}}
	raw := bytes.TrimSpace(c.Body())
	if len(raw) > 0 && c.Is("json") {
		if err := c.App().Config().JSONDecoder(raw, &body.fields); err != nil {
			body.fields = map[string]interface{}{}
			body.err = fmt.Errorf("failed to decode request body: %w", err)
		}
	}
	c.Locals(bodyKey, body)
	return body
}

// Stringify renders a value the way checks see it: nil becomes "", numbers
// use their shortest decimal form and booleans become "true" or "false".
// Objects and arrays render as "".
func Stringify(value interface{}) string {
	return cast.ToString(value)
}
