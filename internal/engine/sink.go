package engine

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/platform"
)

// sinkBufferRecords is how many digests a file sink holds before flushing.
const sinkBufferRecords = 4096

// Sink consumes digests in block order. Only the collecting goroutine calls
// it.
type Sink interface {
	// Begin is called once, after the run is validated and before the first
	// digest.
	Begin() error
	WriteDigest(idx int64, digest []byte) error
	Close() error
}

// fileSink appends digests to a signature file through a write buffer and
// keeps a running BLAKE3 fingerprint of everything written.
type fileSink struct {
	f    *os.File
	w    *bufio.Writer
	sum  *blake3.Hasher
	size int64 // bytes of a complete signature
	next int64
}

func createFileSink(path string, digestSize int, blocks int64) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fault.Resource("create signature", err)
	}
	return &fileSink{
		f:    f,
		w:    bufio.NewWriterSize(f, sinkBufferRecords*digestSize),
		sum:  blake3.New(),
		size: blocks * int64(digestSize),
	}, nil
}

// Begin empties the signature file. Space is reserved without changing the
// visible size, so a failed run leaves only the digests it wrote.
func (s *fileSink) Begin() error {
	if err := s.f.Truncate(0); err != nil {
		return fault.Resource("truncate signature", err)
	}
	platform.Preallocate(s.f, s.size)
	return nil
}

func (s *fileSink) WriteDigest(idx int64, digest []byte) error {
	if idx != s.next {
		return fmt.Errorf("%w: got block %d, expected %d", ErrOutOfOrder, idx, s.next)
	}
	if _, err := s.w.Write(digest); err != nil {
		return fault.Resource("write signature", err)
	}
	_, _ = s.sum.Write(digest)
	s.next++
	return nil
}

// Fingerprint returns the hex BLAKE3 digest of the signature written so far.
func (s *fileSink) Fingerprint() string {
	return hex.EncodeToString(s.sum.Sum(nil))
}

func (s *fileSink) Close() error {
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// compareSink checks digests against an existing signature.
type compareSink struct {
	f          *os.File
	r          *bufio.Reader
	want       []byte
	mismatched []int64
	next       int64
}

func openCompareSink(path string, digestSize int) (*compareSink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Resource("open signature", err)
	}
	return &compareSink{
		f:    f,
		r:    bufio.NewReaderSize(f, sinkBufferRecords*digestSize),
		want: make([]byte, digestSize),
	}, nil
}

func (s *compareSink) Begin() error { return nil }

func (s *compareSink) WriteDigest(idx int64, digest []byte) error {
	if idx != s.next {
		return fmt.Errorf("%w: got block %d, expected %d", ErrOutOfOrder, idx, s.next)
	}
	if _, err := io.ReadFull(s.r, s.want); err != nil {
		return fault.Resource("read signature", err)
	}
	s.next++
	if !bytes.Equal(s.want, digest) {
		s.mismatched = append(s.mismatched, idx)
		return &MismatchError{
			Index: idx,
			Want:  bytes.Clone(s.want),
			Got:   digest,
		}
	}
	return nil
}

func (s *compareSink) Close() error {
	return s.f.Close()
}
