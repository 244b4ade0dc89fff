package feistel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBlocksPerTask keeps tiny inputs from being spread over many goroutines.
const minBlocksPerTask = 64

// ctxCheckBlocks is how many blocks a task processes between context checks.
const ctxCheckBlocks = 16

// DefaultWorkers is the TransformContext goroutine limit when none is configured.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// TransformContext is Transform with the block range split across up to the
// configured number of workers. Each block is written to its own output slot,
// so the result is identical to Transform. Tasks poll ctx while they run and
// ctx.Err() is returned if it is done before all blocks are processed.
func (c *Cipher) TransformContext(ctx context.Context, data []byte, mode Mode) ([]byte, error) {
	if mode != Encrypt && mode != Decrypt {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	bs := c.BlockSize()
	out := make([]byte, PaddedLen(len(data), bs))
	nblocks := len(out) / bs
	if nblocks == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return out, nil
	}

	per := max((nblocks+c.workers-1)/c.workers, minBlocksPerTask)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for start := 0; start < nblocks; start += per {
		end := min(start+per, nblocks)
		g.Go(func() error {
			return c.transformRange(ctx, out, data, start, end, mode)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// transformRange processes blocks [start, end) of data into out, stopping
// early with ctx.Err() once ctx is done.
func (c *Cipher) transformRange(ctx context.Context, out, data []byte, start, end int, mode Mode) error {
	bs := c.BlockSize()
	order := RoundOrder(c.rounds, mode)
	s := c.newScratch()
	lo := start * bs
	hi := min(end*bs, len(data))
	for i, block := range Blocks(data[lo:hi], bs) {
		if i%ctxCheckBlocks == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		off := lo + i*bs
		c.processBlock(out[off:off+bs], block, order, s)
	}
	return nil
}
