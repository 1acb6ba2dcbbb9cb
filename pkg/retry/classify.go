package retry

import "strings"

// Class categorizes a send failure for retry purposes.
type Class int

const (
	// ClassRetryable marks transient failures worth retrying.
	ClassRetryable Class = iota
	// ClassPermanent marks failures that no amount of retrying will fix.
	ClassPermanent
)

// permanentPatterns match failures caused by the request itself. Checked
// first: a permanent signal aborts immediately regardless of any transient
// wording elsewhere in the message.
var permanentPatterns = []string{
	"invalid",
	"unauthorized",
	"forbidden",
	"not found",
}

// transientPatterns match failures of the transport or remote service.
var transientPatterns = []string{
	"timeout",
	"timed out",
	"network",
	"connection",
	"rate limit",
	"too many requests",
	"temporar",
	"unavailable",
	"internal server error",
	"bad gateway",
	"gateway timeout",
	"500",
	"502",
	"503",
	"504",
}

// Classify inspects an error message and decides whether the failure is
// worth retrying. Unrecognized errors are treated as retryable: losing a
// notification to a mislabeled permanent failure is worse than a few wasted
// attempts.
func Classify(err error) Class {
	if err == nil {
		return ClassRetryable
	}

	msg := strings.ToLower(err.Error())
	for _, p := range permanentPatterns {
		if strings.Contains(msg, p) {
			return ClassPermanent
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return ClassRetryable
		}
	}
	return ClassRetryable
}
