package relay

import (
	"fmt"
	"strings"
)

// ConfigError reports credentials the relay cannot operate without.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing config: %s", strings.Join(e.Missing, ", "))
}

// NoCompatibleInterfaceError means every candidate order shape was turned
// away as a shape mismatch. LastDetail carries the final rejection text.
type NoCompatibleInterfaceError struct {
	Attempts   int
	LastDetail string
}

func (e *NoCompatibleInterfaceError) Error() string {
	if e.LastDetail == "" {
		return fmt.Sprintf("no compatible order interface after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("no compatible order interface after %d attempts: %s", e.Attempts, e.LastDetail)
}

// SubmissionError wraps a venue refusal that was not a shape problem. The
// detail is passed through verbatim so the webhook caller can see what the
// venue said.
type SubmissionError struct {
	Detail string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %s", e.Detail)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
