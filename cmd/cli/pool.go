package cli

// cmd/cli/pool.go — CLI wrapper for the core whitening pool.
// ----------------------------------------------------------------------------
// Layout
//   1. Globals & middleware.
//   2. Controllers – one per CLI sub-command.
//   3. CLI definitions – commands + flags.
//   4. Consolidated route export, importable by root CLI.
// ----------------------------------------------------------------------------

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"brightchain/core"
)

var (
	pool      *core.Pool
	poolOnce  sync.Once
	poolFlags struct {
		id        string
		blockSize string
	}
)

func poolBlockSize() (core.BlockSize, error) {
	switch poolFlags.blockSize {
	case "", "small":
		return core.BlockSizeSmall, nil
	case "tiny":
		return core.BlockSizeTiny, nil
	case "medium":
		return core.BlockSizeMedium, nil
	case "large":
		return core.BlockSizeLarge, nil
	case "huge":
		return core.BlockSizeHuge, nil
	default:
		return 0, fmt.Errorf("unknown block size %q", poolFlags.blockSize)
	}
}

func poolInit(cmd *cobra.Command, _ []string) error {
	var initErr error
	poolOnce.Do(func() {
		bs, err := poolBlockSize()
		if err != nil {
			initErr = err
			return
		}
		if poolFlags.id != "" {
			pool = core.NewPoolWithID(poolFlags.id, bs)
		} else {
			pool = core.NewPool(bs)
		}
	})
	return initErr
}

func poolFillHandler(cmd *cobra.Command, args []string) error {
	randoms, _ := cmd.Flags().GetInt("randoms")
	whiteners, _ := cmd.Flags().GetInt("whiteners")
	for i := 0; i < randoms; i++ {
		rb, err := core.NewPoolRandomBlock(pool.BlockSize(), pool.ID())
		if err != nil {
			return err
		}
		pool.AddRandom(rb)
	}
	for i := 0; i < whiteners; i++ {
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
	fmt.Fprintf(cmd.OutOrStdout(), "added %d random, %d whitened blocks\n", randoms, whiteners)
	return nil
}

func poolStatsHandler(cmd *cobra.Command, _ []string) error {
	if pool == nil {
		return fmt.Errorf("pool not initialised")
	}
	randoms, whiteners := pool.AvailableCounts()
	fmt.Fprintf(cmd.OutOrStdout(), "pool %q block size %s: %d random, %d whitened\n", pool.ID(), pool.BlockSize(), randoms, whiteners)
	return nil
}

var poolCmd = &cobra.Command{
	Use:               "pool",
	Short:             "Manage the block whitening pool",
	PersistentPreRunE: poolInit,
}

func init() {
	poolCmd.PersistentFlags().StringVar(&poolFlags.id, "id", "", "pool scope id (empty for legacy/unscoped)")
	poolCmd.PersistentFlags().StringVar(&poolFlags.blockSize, "block-size", "small", "tiny|small|medium|large|huge")

	fillCmd := &cobra.Command{
		Use:   "fill",
		Short: "Generate fresh random/whitened companions and add them to the pool",
		RunE:  poolFillHandler,
	}
	fillCmd.Flags().Int("randoms", 16, "number of random blocks to add")
	fillCmd.Flags().Int("whiteners", 16, "number of whitened blocks to add")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show pool companion counts",
		RunE:  poolStatsHandler,
	}

	poolCmd.AddCommand(fillCmd, statsCmd)
}

// PoolCmd is the entry-point command (root: "pool").
var PoolCmd = poolCmd
