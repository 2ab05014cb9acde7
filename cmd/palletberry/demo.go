package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/local"
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/runtime"
	"github.com/blockberries/palletberry/types"
)

var demoVerbose bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Execute the two-block demo scenario in-process",
	Long: `Execute a two-block scenario against an in-process runtime.

Genesis funds alice with 100. Block 1 transfers 20 to bob, 50 to charlie
and claims "document" for alice. Block 2 has bob claim the same content,
which fails without failing the block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.NewNopLogger()
		if demoVerbose {
			logger = logging.NewTextLogger(cmd.ErrOrStderr(), logging.ParseLevel("debug"))
		}
		return runDemo(cmd.Context(), cmd.OutOrStdout(), logger)
	},
}

func init() {
	demoCmd.Flags().BoolVarP(&demoVerbose, "verbose", "v", false, "log runtime events to stderr")
}

func runDemo(ctx context.Context, out io.Writer, logger *logging.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app := runtime.NewApp(runtime.WithLogger(logger))
	conn := local.NewConnection(app)
	defer conn.Close()

	if _, err := conn.Handshake(ctx, types.HandshakeRequest{Genesis: &types.GenesisDoc{
		ChainID:  "palletberry-demo",
		Balances: []types.GenesisBalance{{Account: "alice", Amount: 100}},
	}}); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	blocks := []runtime.Block{
		runtime.NewBlock(1,
			runtime.NewExtrinsic("alice", runtime.Transfer("bob", 20)),
			runtime.NewExtrinsic("alice", runtime.Transfer("charlie", 50)),
			runtime.NewExtrinsic("alice", runtime.CreateClaim("document")),
		),
		runtime.NewBlock(2,
			runtime.NewExtrinsic("bob", runtime.CreateClaim("document")),
		),
	}

	for _, block := range blocks {
		raw, err := runtime.EncodeBlock(block)
		if err != nil {
			return fmt.Errorf("encode block %d: %w", block.Header.BlockNumber, err)
		}
		outcome, err := conn.ExecuteBlock(ctx, raw)
		if err != nil {
			return fmt.Errorf("execute block %d: %w", block.Header.BlockNumber, err)
		}
		fmt.Fprintf(out, "Block %d: %d extrinsics, state hash %s\n",
			outcome.BlockNumber, len(outcome.Outcomes), outcome.StateHash)
		for _, f := range outcome.Failures() {
			fmt.Fprintf(out, "  extrinsic %d (%s %s.%s) failed: %s\n",
				f.Index, f.Caller, f.Pallet, f.Function, f.Info)
		}
	}

	fmt.Fprintln(out, "Balances:")
	for _, who := range []string{"alice", "bob", "charlie"} {
		v, err := queryUint64(ctx, conn, runtime.PathBalance, who)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-8s %d\n", who, v)
	}

	fmt.Fprintln(out, "Nonces:")
	for _, who := range []string{"alice", "bob"} {
		v, err := queryUint64(ctx, conn, runtime.PathNonce, who)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-8s %d\n", who, v)
	}

	res, err := conn.Query(ctx, types.StateQuery{Path: runtime.PathClaim, Data: []byte("document")})
	if err != nil {
		return fmt.Errorf("query claim: %w", err)
	}
	if res.OK() {
		fmt.Fprintf(out, "Claim %q owned by %s\n", "document", res.Value)
	} else {
		fmt.Fprintf(out, "Claim %q: %s\n", "document", res.Info)
	}

	height, err := queryUint64(ctx, conn, runtime.PathBlockNumber, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Block number: %d\n", height)
	return nil
}

func queryUint64(ctx context.Context, conn palletberry.Connection, path types.QueryPath, key string) (uint64, error) {
	res, err := conn.Query(ctx, types.StateQuery{Path: path, Data: []byte(key)})
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", path, err)
	}
	if !res.OK() {
		return 0, fmt.Errorf("query %s: %s", path, res.Info)
	}
	if len(res.Value) != 8 {
		return 0, fmt.Errorf("query %s: unexpected value length %d", path, len(res.Value))
	}
	return binary.BigEndian.Uint64(res.Value), nil
}
