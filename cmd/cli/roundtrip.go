package cli

// cmd/cli/roundtrip.go — end-to-end smoke test: stream a file through the
// whitening pipeline into a CBL, then recover it and diff against the
// original.
// ----------------------------------------------------------------------------

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"brightchain/core"
)

var roundtripLG = logrus.New()

func roundtripHandler(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	cacheDir, _ := cmd.Flags().GetString("cache")
	if path == "" {
		return fmt.Errorf("--file is required")
	}
	if cacheDir == "" {
		cacheDir = ".brightchain/roundtrip-cache"
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	creator, err := core.NewLocalMember()
	if err != nil {
		return err
	}
	blockSize := core.BlockSizeSmall
	pool := core.NewPool(blockSize)
	needed := core.GetRandomBlockCount(uint64(len(payload)))
	for i := 0; i < needed; i++ {
		rb, err := core.NewPoolRandomBlock(pool.BlockSize(), pool.ID())
		if err != nil {
			return err
		}
		pool.AddRandom(rb)
		other, err := core.NewPoolRandomBlock(pool.BlockSize(), pool.ID())
		if err != nil {
			return err
		}
		fill := make([]byte, int(pool.BlockSize()))
		wb, err := core.NewWhitenedBlock(other.Data(), fill, pool.BlockSize(), pool.ID())
		if err != nil {
			return err
		}
		pool.AddWhitened(wb)
	}

	store, err := core.NewDiskBlockStore(cacheDir, 100_000, roundtripLG)
	if err != nil {
		return err
	}
	persist := func(tup *core.Tuple, index int) error {
		for _, b := range tup.Blocks() {
			if err := store.Put(b); err != nil {
				return err
			}
		}
		companions := make([]core.Checksum, 0, tup.Size()-1)
		for _, b := range tup.Blocks()[1:] {
			companions = append(companions, b.IDChecksum())
		}
		return store.PutTupleCompanions(tup.PrimeChecksum(), companions)
	}

	cbl, cblPrime, err := core.DataStreamToPlaintextTuplesAndCBL(cmd.Context(), creator, blockSize, bytes.NewReader(payload), pool, persist)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "built CBL: %d addresses, %d bytes original, cblPrime=%x\n",
		len(cbl.Addresses()), cbl.Header().OriginalDataLength, cblPrime)

	handles := core.GetHandleTuples(cbl.Addresses(), store)
	recovered, err := core.RecoverStreamFromHandleTuples(handles, store, cbl.Header().OriginalDataLength)
	if err != nil {
		return err
	}

	if bytes.Equal(recovered, payload) {
		fmt.Fprintln(cmd.OutOrStdout(), "round-trip ok: recovered bytes match original")
	} else {
		return fmt.Errorf("round-trip mismatch: recovered %d bytes, original %d bytes", len(recovered), len(payload))
	}
	return nil
}

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Stream a file through the OFF pipeline and verify it recovers byte-for-byte",
	RunE: func(cmd *cobra.Command, args []string) error {
		return roundtripHandler(cmd, args)
	},
}

func init() {
	roundtripCmd.Flags().String("file", "", "path to the file to round-trip [required]")
	roundtripCmd.Flags().String("cache", "", "on-disk block cache directory (default .brightchain/roundtrip-cache)")
}

// RoundtripCmd is the entry-point command (root: "roundtrip").
var RoundtripCmd = roundtripCmd
