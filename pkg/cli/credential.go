package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/jsongraph/pkg/storage"
)

const maxTokenSize = 1 << 20 // 1MB limit for all token inputs

// isOnlyWhitespace checks if a byte slice contains only Unicode whitespace
// characters without allocating strings. Returns true if empty or
// whitespace-only.
func isOnlyWhitespace(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 is treated as non-whitespace
			return false
		}
		if !unicode.IsSpace(r) {
			return false
		}
		i += size
	}
	return true
}

// NewCredentialCommand creates the credential management command
func NewCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage tokens for remote documents",
		Long: `Manage bearer tokens used when fetching documents over HTTP. Tokens
are stored in your system's native credential store (Keychain on macOS,
Credential Manager on Windows, Secret Service on Linux) and never in
plain text files. A stored token is sent as an Authorization header
whenever a document is fetched from that host.`,
	}

	cmd.AddCommand(newCredentialAddCommand())
	cmd.AddCommand(newCredentialListCommand())
	cmd.AddCommand(newCredentialRemoveCommand())

	return cmd
}

// newCredentialAddCommand creates the credential add subcommand
func newCredentialAddCommand() *cobra.Command {
	var (
		value    string
		useStdin bool
	)

	cmd := &cobra.Command{
		Use:   "add <host>",
		Short: "Store a token for a host",
		Long: `Store a bearer token for a host. The token is kept in the system
keyring and attached to requests against that host.

Examples:
  # Store a token with an interactive prompt (recommended for local use)
  jsongraph credential add api.example.com

  # Store a token from stdin (recommended for automation/CI/CD)
  printf '%s' "$API_TOKEN" | jsongraph credential add api.example.com --stdin

  # Store a token on the command line (NOT recommended - visible in shell history)
  jsongraph credential add api.example.com --value secret123

Note:
  - All input methods have a 1MB maximum token size limit
  - --stdin reads until EOF; only trailing CR/LF characters are removed
  - Whitespace-only tokens are rejected (includes all Unicode whitespace)
  - Input buffers are zeroed after reading (best-effort; Go strings are immutable)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := args[0]
			tokens := storage.NewTokenStore()

			// Confirm before replacing an existing token
			if _, err := tokens.Token(host); err == nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Warning: A token for '%s' already exists.\n", host)
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Overwrite? [y/N]: ")

				var response string
				_, _ = fmt.Fscanln(os.Stdin, &response)
				response = strings.ToLower(strings.TrimSpace(response))

				if response != "y" && response != "yes" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			var token string
			if useStdin {
				// Limit stdin reading to prevent memory exhaustion
				limitedReader := io.LimitReader(cmd.InOrStdin(), maxTokenSize+1)
				inputBytes, err := io.ReadAll(limitedReader)

				// Ensure buffer is zeroed on all exit paths
				defer func() {
					for i := range inputBytes {
						inputBytes[i] = 0
					}
				}()

				if err != nil {
					return fmt.Errorf("failed to read from stdin: %w", err)
				}
				if len(inputBytes) > maxTokenSize {
					return fmt.Errorf("token exceeds maximum size of %d bytes", maxTokenSize)
				}

				// Trim only trailing newline characters, preserving
				// intentional spaces
				trimmed := bytes.TrimRight(inputBytes, "\r\n")
				if len(trimmed) == 0 {
					return fmt.Errorf("token cannot be empty")
				}
				if isOnlyWhitespace(trimmed) {
					return fmt.Errorf("token cannot contain only whitespace characters")
				}

				token = string(trimmed)
			} else if value != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "Warning: Using --value exposes the token in shell history.")
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "Consider the interactive prompt (omit --value) or --stdin instead.")

				if len(value) > maxTokenSize {
					return fmt.Errorf("token exceeds maximum size of %d bytes", maxTokenSize)
				}
				if strings.TrimSpace(value) == "" {
					return fmt.Errorf("token cannot contain only whitespace characters")
				}

				token = value
			} else {
				// Prompt without echo
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Enter token for '%s': ", host)

				tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				_, _ = fmt.Fprintln(cmd.OutOrStdout()) // New line after hidden input

				// Zero token bytes on all exit paths
				defer func() {
					for i := range tokenBytes {
						tokenBytes[i] = 0
					}
				}()

				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				if len(tokenBytes) > maxTokenSize {
					return fmt.Errorf("token exceeds maximum size of %d bytes", maxTokenSize)
				}
				if len(tokenBytes) == 0 {
					return fmt.Errorf("token cannot be empty")
				}
				if isOnlyWhitespace(tokenBytes) {
					return fmt.Errorf("token cannot contain only whitespace characters")
				}

				token = string(tokenBytes)
			}

			if err := tokens.SetToken(host, token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Token stored for '%s'\n", host)
			return nil
		},
	}

	cmd.Flags().StringVarP(&value, "value", "v", "", "Token value (optional - will prompt securely if omitted)")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "Read the token from stdin (recommended for automation)")

	cmd.MarkFlagsMutuallyExclusive("stdin", "value")

	return cmd
}

// newCredentialListCommand creates the credential list subcommand
func newCredentialListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hosts with stored tokens",
		Long: `List the hosts that have a token in the keyring. Only host names are
displayed, never the token values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := storage.NewTokenStore()

			hosts, err := tokens.Hosts()
			if err != nil {
				return fmt.Errorf("failed to list tokens: %w", err)
			}
			if len(hosts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tokens stored.")
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nAdd one with: jsongraph credential add <host>")
				return nil
			}

			sort.Strings(hosts)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "HOST\tSTATUS")
			_, _ = fmt.Fprintln(w, "────\t──────")
			for _, host := range hosts {
				_, _ = fmt.Fprintf(w, "%s\t(set)\n", host)
			}
			_ = w.Flush()

			return nil
		},
	}

	return cmd
}

// newCredentialRemoveCommand creates the credential remove subcommand
func newCredentialRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <host>",
		Short: "Delete the token for a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := args[0]
			tokens := storage.NewTokenStore()

			if err := tokens.DeleteToken(host); err != nil {
				if errors.Is(err, storage.ErrTokenNotFound) {
					return fmt.Errorf("no token stored for '%s'", host)
				}
				return fmt.Errorf("failed to delete token: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Token removed for '%s'\n", host)
			return nil
		},
	}

	return cmd
}
