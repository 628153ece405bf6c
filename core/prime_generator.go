package core

import (
	"context"
	"errors"
	"io"
)

// prime_generator.go — the streaming prime-tuple generator, spec.md §4.F.
// Rendered as a pull-based Go generator: a producer goroutine feeds an
// unbuffered channel, and context cancellation (rather than iterator drop,
// which Go has no equivalent of) tears the pipeline down and returns any
// borrowed-but-unemitted companions to the pool. This replaces the
// source's stream/event-emitter Transform, flagged for re-architecture in
// spec.md §9.

// GeneratedTuple is one item of the generator's output sequence: the
// emitted Tuple plus its position in the input stream (spec.md §4.F
// "ordering guarantee").
type GeneratedTuple struct {
	Index int
	Tuple *Tuple
}

// tupleOrErr is the internal channel element; Err is non-nil at most once,
// and only as the last item before the channel closes (spec.md §4.F "error
// propagation aborts the sequence").
type tupleOrErr struct {
	item GeneratedTuple
	err  error
}

// TupleStream is the handle to a running prime-tuple generator.
type TupleStream struct {
	out    chan tupleOrErr
	cancel context.CancelFunc
	result chan uint64 // original (unpadded) total byte length, sent once when the source is fully drained
}

// GenerateTuples starts streaming r into tuples of tupleSize = m+n+1 blocks,
// each built from a blockSize window of r, borrowing companions from pool.
// The returned stream must be drained (ranging until the channel closes) or
// explicitly Cancel()ed; either path returns outstanding borrows to pool.
func GenerateTuples(ctx context.Context, r io.Reader, creator MemberID, blockSize BlockSize, randomCount, whitenerCount int, pool *Pool) *TupleStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &TupleStream{
		out:    make(chan tupleOrErr),
		cancel: cancel,
		result: make(chan uint64, 1),
	}
	go s.run(ctx, r, creator, blockSize, randomCount, whitenerCount, pool)
	return s
}

// Next blocks until the next tuple (ok=true), a terminal error (ok=false
// with err non-nil), or stream end (ok=false with err=nil).
func (s *TupleStream) Next() (GeneratedTuple, error, bool) {
	v, open := <-s.out
	if !open {
		return GeneratedTuple{}, nil, false
	}
	return v.item, v.err, v.err == nil
}

// Cancel tears the pipeline down and returns borrowed companions to pool.
func (s *TupleStream) Cancel() { s.cancel() }

// OriginalDataLength returns the true (unpadded) total byte count read from
// the source stream. Valid only after Next has returned ok=false with a nil
// error (full, uncancelled completion).
func (s *TupleStream) OriginalDataLength() uint64 {
	select {
	case n := <-s.result:
		return n
	default:
		return 0
	}
}

func (s *TupleStream) run(ctx context.Context, r io.Reader, creator MemberID, blockSize BlockSize, m, n int, pool *Pool) {
	defer close(s.out)

	buf := make([]byte, blockSize)
	var totalLen uint64
	index := 0

	emit := func(blockData []byte) error {
		source, err := NewEphemeralOwnedDataBlock(creator, blockData, blockSize)
		if err != nil {
			return err
		}

		randoms, companions, err := borrowCompanions(pool, m, n)
		if err != nil {
			return err
		}

		returnAll := func() {
			for _, rb := range randoms {
				pool.ReturnRandom(rb)
			}
			for _, c := range companions {
				switch v := c.(type) {
				case *WhitenedBlock:
					pool.ReturnWhitener(v)
				case *RandomBlock:
					pool.ReturnRandom(v)
				}
			}
		}

		select {
		case <-ctx.Done():
			returnAll()
			return ctx.Err()
		default:
		}

		tup, err := MakeTupleFromSourceXor(source, randoms, companions, pool.ID())
		if err != nil {
			returnAll()
			return err
		}

		select {
		case s.out <- tupleOrErr{item: GeneratedTuple{Index: index, Tuple: tup}}:
			index++
			return nil
		case <-ctx.Done():
			returnAll()
			return ctx.Err()
		}
	}

	for {
		nRead, readErr := io.ReadFull(r, buf)
		totalLen += uint64(nRead)

		if nRead > 0 {
			chunk := buf[:nRead]
			if err := emit(chunk); err != nil {
				s.out <- tupleOrErr{err: err}
				return
			}
		}

		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			s.result <- totalLen
			return
		}
		s.out <- tupleOrErr{err: readErr}
		return
	}
}

// borrowCompanions draws m random blocks and n whitener slots, falling back
// to an extra random block for any slot whose whitener pool is empty
// (spec.md §4.F step 4).
func borrowCompanions(pool *Pool, m, n int) (randoms []*RandomBlock, whiteners []Block, err error) {
	randoms = make([]*RandomBlock, 0, m)
	for i := 0; i < m; i++ {
		rb, err := pool.BorrowRandom()
		if err != nil {
			for _, b := range randoms {
				pool.ReturnRandom(b)
			}
			return nil, nil, err
		}
		randoms = append(randoms, rb)
	}

	whiteners = make([]Block, 0, n)
	for i := 0; i < n; i++ {
		if w, ok := pool.BorrowWhitener(); ok {
			whiteners = append(whiteners, w)
			continue
		}
		rb, err := pool.BorrowRandom()
		if err != nil {
			for _, b := range randoms {
				pool.ReturnRandom(b)
			}
			for _, c := range whiteners {
				switch v := c.(type) {
				case *WhitenedBlock:
					pool.ReturnWhitener(v)
				case *RandomBlock:
					pool.ReturnRandom(v)
				}
			}
			return nil, nil, err
		}
		whiteners = append(whiteners, rb)
	}
	return randoms, whiteners, nil
}
