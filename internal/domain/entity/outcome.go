package entity

// OutcomeKind tells a caller whether a value is real or a substituted default.
type OutcomeKind int

const (
	OutcomeOk OutcomeKind = iota
	OutcomeDegraded
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOk:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "fatal"
	}
}

// Outcome wraps a best-effort read. Degraded carries the default that was
// substituted together with the cause; Fatal carries only the cause.
type Outcome[T any] struct {
	Value T
	Kind  OutcomeKind
	Err   error
}

func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v, Kind: OutcomeOk} }

func Degraded[T any](def T, cause error) Outcome[T] {
	return Outcome[T]{Value: def, Kind: OutcomeDegraded, Err: cause}
}

func Fatal[T any](cause error) Outcome[T] { return Outcome[T]{Kind: OutcomeFatal, Err: cause} }
