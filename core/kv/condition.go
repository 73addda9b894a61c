package kv

type conditionKind int

const (
	condAlways conditionKind = iota
	condIfAbsent
	condIfEquals
)

// Condition is a precondition evaluated atomically by the store with the write it guards.
type Condition struct {
	kind  conditionKind
	value string
}

// Always applies the write unconditionally.
func Always() Condition {
	return Condition{kind: condAlways}
}

// IfAbsent applies the write only if the key does not exist yet.
func IfAbsent() Condition {
	return Condition{kind: condIfAbsent}
}

// IfEquals applies the write only if the key exists and currently holds value.
func IfEquals(value string) Condition {
	return Condition{kind: condIfEquals, value: value}
}

// IsAlways reports whether c is unconditional.
func (c Condition) IsAlways() bool { return c.kind == condAlways }

// IsIfAbsent reports whether c requires the key to be absent.
func (c Condition) IsIfAbsent() bool { return c.kind == condIfAbsent }

// Expected returns the value an IfEquals condition asserts, and whether c is IfEquals.
func (c Condition) Expected() (string, bool) {
	return c.value, c.kind == condIfEquals
}

func (c Condition) String() string {
	switch c.kind {
	case condIfAbsent:
		return "if_absent"
	case condIfEquals:
		return "if_equals"
	default:
		return "always"
	}
}
