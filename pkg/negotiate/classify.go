package negotiate

import (
	"strings"

	"github.com/gameserverkit/gsinstall/pkg/steamcmd"
)

// Class is the classification of a login probe result.
type Class int

const (
	// ClassSucceeded: the probe logged in cleanly; no second factor exists.
	ClassSucceeded Class = iota
	// ClassAmbiguous: the probe was killed by the timeout or its output
	// matched a known second-factor indicator. Treated as "a human must
	// supply a code".
	ClassAmbiguous
	// ClassFailed: any other non-zero exit (bad credentials, network).
	ClassFailed
)

// Classifier maps a probe result to a Class. It is a plain function so the
// indicator phrases can change without touching the state machine.
type Classifier func(steamcmd.Result) Class

// NewClassifier builds the default classifier over the given indicator
// phrases. Matching is case-insensitive. A timeout classifies as ambiguous
// even when the underlying cause was something else entirely, such as a
// stalled network; callers re-run after fixing whichever it was.
func NewClassifier(phrases []string) Classifier {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}

	return func(res steamcmd.Result) Class {
		if !res.TimedOut && res.ExitCode == 0 {
			return ClassSucceeded
		}
		if res.TimedOut {
			return ClassAmbiguous
		}
		out := strings.ToLower(res.Output)
		for _, p := range lowered {
			if strings.Contains(out, p) {
				return ClassAmbiguous
			}
		}
		return ClassFailed
	}
}
