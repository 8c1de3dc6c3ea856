// Command calc drives the keypad calculator from the terminal.
//
//	calc 12 + 30 =          prints "12 + 30 =" and "42"
//	calc --trace 5 / 0 =    prints the display after every key
//	calc                    reads keys from stdin, one line at a time
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TeapotSmashers/keypad-calculator/internal/calculator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	trace   bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "calc [keys...]",
		Short:   "Four-function keypad calculator",
		Version: version,
		Long: `Presses calculator keys in order and prints the display.

Keys: digits, . + − × ÷ = % ± back C
ASCII aliases: - * x / neg bs c`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if opts.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			defer logger.Sync()

			if len(args) == 0 {
				return runInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
			}
			return runKeys(cmd.OutOrStdout(), logger, expandArgs(args), opts.trace)
		},
	}

	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print the display after every key")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every key press to stderr")

	return cmd
}

func runKeys(w io.Writer, logger *zap.Logger, keys []string, trace bool) error {
	var c calculator.Calculator
	for _, key := range keys {
		next, err := c.Input(key)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		c = next

		logger.Debug("key pressed",
			zap.String("key", key),
			zap.String("output", c.Output()),
			zap.String("equation", c.Equation()),
		)
		if trace {
			fmt.Fprintf(w, "%-5s %s\n", key, display(c))
		}
	}

	if !trace {
		fmt.Fprintln(w, display(c))
	}
	return nil
}

// runInteractive keeps one calculator across input lines. A rejected key
// is reported and the line's remaining keys are dropped.
func runInteractive(r io.Reader, w io.Writer, logger *zap.Logger) error {
	var c calculator.Calculator

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		for _, key := range expandArgs(fields) {
			next, err := c.Input(key)
			if err != nil {
				logger.Warn("key rejected", zap.String("key", key), zap.Error(err))
				fmt.Fprintf(w, "error: %v\n", err)
				break
			}
			c = next
		}
		fmt.Fprintln(w, display(c))
	}
	return scanner.Err()
}

func display(c calculator.Calculator) string {
	eq := strings.TrimSpace(c.Equation())
	if eq == "" {
		return c.Output()
	}
	return eq + " | " + c.Output()
}
