package engine

import (
	"os"

	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/hashfn"
)

// blockRes is the bundle owned by one hash worker: its own input handle
// (nil when blocks come through the prefetch reader), a scratch buffer of one
// block and a hasher instance.
type blockRes struct {
	file   *os.File
	hasher hashfn.Hasher
	buf    []byte
}

func newBlockRes(cfg Config, ownHandle bool) (blockRes, error) {
	res := blockRes{
		buf:    make([]byte, cfg.BlockSize),
		hasher: cfg.Hash.New(),
	}
	if ownHandle {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return blockRes{}, fault.Resource("open input", err)
		}
		res.file = f
	}
	return res, nil
}

func (r *blockRes) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
