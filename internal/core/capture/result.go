package capture

// EscapeSentinel is the wire text returned for an escaped capture.
const EscapeSentinel = "#escape"

// EscapeRune is the ESCAPE control character produced by the Esc key.
const EscapeRune = '\x1b'

// Outcome classifies the result of a drain.
type Outcome int

const (
	OutcomeIncomplete Outcome = iota
	OutcomeEscaped
	OutcomeSequence
)

// String returns the outcome name.
func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeEscaped:
		return "escaped"
	case OutcomeSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of Drain. Text is only set for OutcomeSequence.
type Result struct {
	Outcome Outcome
	Text    string
}

// Incomplete returns the result for a window that is idle or still filling.
func Incomplete() Result {
	return Result{Outcome: OutcomeIncomplete}
}

// Escaped returns the result for a cancelled gesture.
func Escaped() Result {
	return Result{Outcome: OutcomeEscaped}
}

// Sequence returns the result for a finalized capture.
func Sequence(text string) Result {
	return Result{Outcome: OutcomeSequence, Text: text}
}

// Done reports whether the window was finalized by this drain.
func (result Result) Done() bool {
	return result.Outcome != OutcomeIncomplete
}

// Wire collapses the result to the string returned over IPC.
func (result Result) Wire() string {
	switch result.Outcome {
	case OutcomeEscaped:
		return EscapeSentinel
	case OutcomeSequence:
		return result.Text
	default:
		return ""
	}
}

// ParseWire maps an IPC drain reply back to a Result.
func ParseWire(text string) Result {
	switch text {
	case "":
		return Incomplete()
	case EscapeSentinel:
		return Escaped()
	default:
		return Sequence(text)
	}
}
