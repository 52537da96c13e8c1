package engine

import (
	"errors"
	"fmt"

	"github.com/bamsammich/blocksig/internal/fault"
)

var (
	// ErrAlreadyRan is returned by a second call to Run.
	ErrAlreadyRan = fmt.Errorf("%w: generator already ran", fault.ErrProtocol)
	// ErrOutOfOrder is returned by a sink handed a digest for the wrong block.
	ErrOutOfOrder = fmt.Errorf("%w: digest out of order", fault.ErrProtocol)
	// ErrShortRead means the input shrank after the run was planned.
	ErrShortRead = fmt.Errorf("%w: short read", fault.ErrResource)
	// ErrDigestSize means a hasher returned a digest of unexpected length.
	ErrDigestSize = errors.New("digest size mismatch")
	// ErrSignatureSize means a signature does not hold one record per block.
	ErrSignatureSize = errors.New("signature size does not match input")
)

// BlockError reports the first block whose digest could not be produced or
// written. Digests for every earlier block are already in the output.
type BlockError struct {
	Err   error
	Index int64
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Index, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// MismatchError is returned by a verifying sink when a digest differs from
// the recorded one. It does not stop the run.
type MismatchError struct {
	Want  []byte
	Got   []byte
	Index int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("block %d: digest %x, signature has %x", e.Index, e.Got, e.Want)
}
