// Command ddbg-listen is the receiving end of a tcp:// debug destination. It
// listens on a TCP port and copies every received debug line to stdout, the
// way one would otherwise run "ncat -l <port>", but it keeps listening after
// a sender disconnects so a restarted debuggee can reconnect.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "ddbg-listen",
	Short: "listen for ddbg tcp:// debug output and print it to stdout",
	Long: `ddbg-listen receives the debug lines that ddbg sends to a tcp://
destination and prints them to stdout. Unlike ncat, it accepts any number of
senders and keeps running when one of them goes away, so a crashing and
restarting debuggee keeps a single listening session alive.

Example:

  ddbg-listen --addr :12345

then, in the program under debug:

  ddbg.MustLogf("tcp://127.0.0.1:12345", "state=%d", state)
`,
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "addr", "a", ":12345", "address to listen on")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress connection lifecycle messages")
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}
	logger.Info().Str("addr", ln.Addr().String()).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		logger.Info().Str("peer", conn.RemoteAddr().String()).Msg("sender connected")
		go serve(conn, logger)
	}
}

// serve copies one sender's lines to stdout until the sender goes away.
func serve(conn net.Conn, logger zerolog.Logger) {
	defer func() { _ = conn.Close() }()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Str("peer", conn.RemoteAddr().String()).Msg("sender dropped")
		return
	}
	logger.Info().Str("peer", conn.RemoteAddr().String()).Msg("sender disconnected")
}

// newLogger builds the process logger. Lifecycle messages go to stderr so
// stdout stays a clean stream of debug lines, pipeable like ncat's output.
func newLogger() zerolog.Logger {
	if quiet {
		return zerolog.New(os.Stderr).Level(zerolog.Disabled)
	}
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(consoleWriter).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
