// Command wramfind captures one WRAM snapshot and lists every offset where a
// hex pattern occurs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wramwatch/wramwatch/internal/scan"
	"github.com/wramwatch/wramwatch/internal/wram"
)

const invalidPatternMessage = `Invalid hex string. Please use format like "53" or "53512F"`

type options struct {
	context int
	host    string
	port    int
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "wramfind <hex>",
		Short:         "Find hex patterns in emulator WRAM",
		Example:       "  wramfind 53512F --context 4",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return find(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.context, "context", 8, "Number of bytes of context to show")
	flags.StringVar(&opts.host, "host", "127.0.0.1", "Emulator host")
	flags.IntVar(&opts.port, "port", 8888, "Emulator port")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "Connect and read timeout")
	return cmd
}

func find(ctx context.Context, out, errOut io.Writer, hexPattern string, opts options) error {
	pattern, err := scan.ParsePattern(hexPattern)
	if err != nil {
		fmt.Fprintln(out, invalidPatternMessage)
		return nil
	}

	if err := scan.WriteHeader(out, pattern); err != nil {
		return err
	}

	data, err := capture(ctx, opts)
	if err != nil {
		fmt.Fprintf(errOut, "Error connecting to emulator: %v\n", err)
		return err
	}

	return scan.WriteReport(out, len(data), scan.FindAll(data, pattern, opts.context))
}

func capture(ctx context.Context, opts options) ([]byte, error) {
	cfg := wram.Config{
		Host:        opts.host,
		Port:        opts.port,
		DialTimeout: opts.timeout,
		ReadTimeout: opts.timeout,
	}
	client, err := wram.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	snap, err := client.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Bytes(), nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		// transport failures were already reported
		var terr *wram.TransportError
		if !errors.As(err, &terr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
