package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Well-known feature keys.
const (
	EntitlementMFA    = "module.mfa"
	EntitlementRoster = "module.roster"
)

// OwnerKind scopes an entitlement to a tenant or a freelancer namespace.
type OwnerKind string

const (
	OwnerTenant     OwnerKind = "tenant"
	OwnerFreelancer OwnerKind = "freelancer"
)

type ValueKind int

const (
	KindBool ValueKind = iota
	KindString
	KindNumber
)

// Value is a tri-valued feature flag: bool, string or number. The same flag
// can act as an on/off switch, a plan label, or a numeric quota. The zero
// Value is a false bool and counts as not granted.
type Value struct {
	kind ValueKind
	b    bool
	s    string
	n    float64
}

func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }

func (v Value) Kind() ValueKind { return v.kind }

// Number returns the numeric payload, for callers that read quota-style
// flags like "seats.max". ok is false when the value is not a number.
func (v Value) Number() (n float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// Granted reports whether the value counts as granted: true, a non-empty
// string, or a number greater than zero.
func (v Value) Granted() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s != ""
	case KindNumber:
		return v.n > 0
	default:
		return false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.s)
	case KindNumber:
		return json.Marshal(v.n)
	default:
		return nil, fmt.Errorf("entitlement value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON accepts exactly the three supported scalar shapes. Null,
// objects and arrays are rejected so a malformed flag never evaluates.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("entitlement value: %w", err)
	}
	switch t := raw.(type) {
	case bool:
		*v = BoolValue(t)
	case string:
		*v = StringValue(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return fmt.Errorf("entitlement value: %w", err)
		}
		*v = NumberValue(n)
	default:
		return fmt.Errorf("entitlement value: unsupported JSON type %T", raw)
	}
	return nil
}

type Entitlement struct {
	ID        string // ULID; scan order doubles as creation order
	OwnerKind OwnerKind
	OwnerID   string // tenant id or freelancer id
	Key       string // feature key, e.g. "module.roster"
	Value     Value
	GrantedAt time.Time
}

// EntitlementMap is a flat key -> value view of an owner's entitlements.
type EntitlementMap map[string]Value

// Granted reports whether key is present and its value counts as granted.
// An absent key is never granted.
func (m EntitlementMap) Granted(key string) bool {
	v, ok := m[key]
	return ok && v.Granted()
}

// MissingKeys returns every required key that is not granted, in the order
// given.
func (m EntitlementMap) MissingKeys(required ...string) []string {
	var missing []string
	for _, k := range required {
		if !m.Granted(k) {
			missing = append(missing, k)
		}
	}
	return missing
}
