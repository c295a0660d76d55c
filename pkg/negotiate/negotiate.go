// Package negotiate implements the login negotiation that precedes package
// acquisition. Credentials without a second-factor token trigger a bounded
// login probe: the only safe way to detect an interactive Steam Guard
// prompt in a headless container is to try the login under a hard timeout
// and classify the result.
package negotiate

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gameserverkit/gsinstall/pkg/config"
	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
	"github.com/gameserverkit/gsinstall/pkg/steamcmd"
)

// State identifies a position in the negotiation state machine.
type State string

const (
	StateStart                State = "start"
	StateAnonymousPath        State = "anonymous_path"
	StateAuthWithSecondFactor State = "auth_with_second_factor"
	StateSecondFactorProbe    State = "second_factor_probe"
	StateSucceeded            State = "succeeded"
	StateHalted               State = "halted"
	StateFailed               State = "failed"
)

// Outcome reports how the negotiation ended. ProbeOutput carries the tool's
// captured output when a probe ran, so failures can surface it verbatim.
type Outcome struct {
	State       State
	ProbeOutput string
}

// Negotiator decides whether acquisition may proceed and with which login
// mode. It never performs the acquisition itself.
type Negotiator struct {
	runner   steamcmd.Runner
	classify Classifier
}

// New creates a Negotiator using the given runner and classifier.
func New(runner steamcmd.Runner, classify Classifier) *Negotiator {
	return &Negotiator{runner: runner, classify: classify}
}

// Negotiate walks the state machine for the given configuration. A nil
// error means acquisition may proceed. A GUARD_REQUIRED error means the run
// halted and recovery instructions were written; a LOGIN_FAILED error means
// the credentials are unusable.
func (n *Negotiator) Negotiate(ctx context.Context, cfg *config.Install) (Outcome, error) {
	log := logging.GetLogger("negotiate")
	state := StateStart

	if cfg.Anonymous {
		state = transition(log, state, StateAnonymousPath)
		state = transition(log, state, StateSucceeded)
		return Outcome{State: state}, nil
	}

	if cfg.GuardToken != "" {
		// A supplied token is used directly by the acquisition login; no
		// probe is needed or useful.
		state = transition(log, state, StateAuthWithSecondFactor)
		state = transition(log, state, StateSucceeded)
		return Outcome{State: state}, nil
	}

	state = transition(log, state, StateSecondFactorProbe)

	probeCtx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	defer cancel()

	res, err := n.runner.Run(probeCtx, steamcmd.ProbeScript(cfg))
	if err != nil {
		state = transition(log, state, StateFailed)
		return Outcome{State: state}, err
	}

	switch n.classify(res) {
	case ClassSucceeded:
		// The account has no Steam Guard requirement after all.
		state = transition(log, state, StateSucceeded)
		return Outcome{State: state, ProbeOutput: res.Output}, nil

	case ClassAmbiguous:
		state = transition(log, state, StateHalted)
		if werr := WriteRecovery(cfg.RecoveryPath); werr != nil {
			log.Error().Err(werr).Str("path", cfg.RecoveryPath).
				Msg("Failed to write recovery instructions")
		}
		return Outcome{State: state, ProbeOutput: res.Output},
			errors.New(errors.ErrGuardRequired,
				"login requires a Steam Guard code; instructions written").
				WithDetail("recoveryPath", cfg.RecoveryPath)

	default:
		state = transition(log, state, StateFailed)
		return Outcome{State: state, ProbeOutput: res.Output},
			errors.Newf(errors.ErrLoginFailed,
				"login probe failed (exit %d): %s", res.ExitCode, lastLines(res.Output, 5))
	}
}

func transition(log zerolog.Logger, from, to State) State {
	log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("Negotiation state change")
	return to
}

// lastLines returns at most n trailing non-empty lines of s, for compact
// error messages carrying the tool's final words.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append([]string{line}, kept...)
		}
	}
	return strings.Join(kept, " | ")
}
