package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Precondition and cancellation errors. Preconditions are fatal to the
// current operation and checked before any network or builder call.
var (
	ErrNoAccount    = errors.New("no account with a chain address")
	ErrNoConnection = errors.New("no chain connection")
	ErrNoGate       = errors.New("approval gate unavailable")
	ErrNoSigner     = errors.New("no signer available")

	// ErrUserRejected is a cancellation, not a failure: the approval gate
	// returned no. Nothing was dispatched and no state changed.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrAlreadyPending refuses a submission whose identical batch is still
	// in flight.
	ErrAlreadyPending = errors.New("an identical submission is already pending")
)

// SendError is a dispatch or confirmation failure. Message, when set, is
// actionable text rewritten from a recognized on-chain error signature; Raw
// always carries the original payload for support requests.
type SendError struct {
	Sig     solana.Signature
	Raw     error
	Message string
}

func (e *SendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Raw.Error()
}

func (e *SendError) Unwrap() error {
	return e.Raw
}

// PersistError marks a failed secure-store or metadata-store write. Key
// material writes are never silently dropped; callers match with errors.As
// to tell persistence failures from network or builder ones.
type PersistError struct {
	// Op names the store operation that failed.
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// On-chain error signatures the entity-update flow recognizes.
const (
	sigInsufficientLamports = "insufficient lamports"
	sigInsufficientFunds    = "insufficient funds"
	sigCustomError          = "custom program error"

	// codeBalance is the program's insufficient-balance error code.
	codeBalance = "0x1"
)

// customErrorCode extracts the hex code following "custom program error: ".
// It returns "" when the message carries no custom error. The code is
// compared whole, never by prefix: 0x1b is not 0x1.
func customErrorCode(msg string) string {
	_, rest, ok := strings.Cut(msg, sigCustomError+": ")
	if !ok {
		return ""
	}
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r != 'x' && !('0' <= r && r <= '9') && !('a' <= r && r <= 'f')
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// classifyEntityError rewrites recognized failure signatures from the
// entity-update confirm sequence into human-actionable text. sponsored
// distinguishes a maker-funded update from a user-funded one. Errors with
// no recognized signature are returned verbatim.
func classifyEntityError(err error, sponsored bool) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, sigInsufficientLamports),
		strings.Contains(msg, sigInsufficientFunds),
		customErrorCode(msg) == codeBalance:
		if sponsored {
			return &SendError{
				Raw:     err,
				Message: "Your hotspot maker's wallet can't cover this update's fees. Contact the maker, or retry paying the fees yourself.",
			}
		}
		return &SendError{
			Raw:     err,
			Message: "Your wallet doesn't have enough SOL to cover this update's fees. Add funds and try again.",
		}
	case strings.Contains(msg, sigCustomError):
		return &SendError{
			Raw:     err,
			Message: fmt.Sprintf("The update was rejected on-chain: %v", err),
		}
	default:
		return err
	}
}
