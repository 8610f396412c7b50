package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage retailer API credentials",
	Long: `Store, list and remove KiotViet API credentials.

Each retailer needs a client ID and client secret from the KiotViet
developer portal. Credentials are stored in the local config file under
[retailers.<name>].

Examples:
  # Configure a retailer interactively
  kvsync auth set myshop

  # Configure non-interactively
  kvsync auth set myshop --client-id "xxx" --client-secret "yyy"

  # List configured retailers
  kvsync auth list`,
}

var authSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Store credentials for a retailer",
	Long: `Store API credentials for a retailer.

Run interactively to be prompted for each value (the secret is read
without echo), or pass --client-id and --client-secret directly. The
first configured retailer becomes the default for other commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthSet,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured retailers",
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a retailer's credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

// Flags for auth set.
var (
	authSetClientID     string
	authSetClientSecret string
	authSetRetailerCode string
)

func init() {
	authSetCmd.Flags().StringVar(
		&authSetClientID, "client-id", "", "KiotViet API client ID (for non-interactive mode)")
	authSetCmd.Flags().StringVar(
		&authSetClientSecret, "client-secret", "", "KiotViet API client secret (for non-interactive mode)")
	authSetCmd.Flags().StringVar(
		&authSetRetailerCode, "retailer-code", "",
		"Retailer code sent in the Retailer header (defaults to the name)")

	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	name := args[0]
	reader := bufio.NewReader(os.Stdin)

	clientID := authSetClientID
	if clientID == "" {
		cmd.Print("Client ID: ")
		clientID = readLine(reader)
	}
	if clientID == "" {
		return errors.New("client ID is required")
	}

	clientSecret := authSetClientSecret
	if clientSecret == "" {
		cmd.Print("Client Secret: ")
		clientSecret = readSecret()
		cmd.Println()
	}
	if clientSecret == "" {
		return errors.New("client secret is required")
	}

	prefix := "retailers." + name + "."
	if err := configStore.Set(prefix+"client_id", clientID); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	if err := configStore.Set(prefix+"client_secret", clientSecret); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	if authSetRetailerCode != "" {
		if err := configStore.Set(prefix+"retailer", authSetRetailerCode); err != nil {
			return fmt.Errorf("saving credentials: %w", err)
		}
	}

	// First configured retailer becomes the default
	if configStore.GetString("default_retailer") == "" {
		if err := configStore.Set("default_retailer", name); err != nil {
			return fmt.Errorf("saving default retailer: %w", err)
		}
	}

	cmd.Printf("Credentials stored for retailer %s.\n", name)
	cmd.Println("Run 'kvsync sync' to start synchronising.")
	return nil
}

func runAuthList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	names := configuredRetailers()
	if len(names) == 0 {
		cmd.Println("No configured retailers.")
		cmd.Println("Add one with: kvsync auth set <name>")
		return nil
	}

	defaultName := configStore.GetString("default_retailer")

	cmd.Println("Configured retailers:")
	for _, name := range names {
		marker := " "
		if name == defaultName {
			marker = "*"
		}
		clientID := configStore.GetString("retailers." + name + ".client_id")
		cmd.Printf("  %s %s (client ID %s...)\n", marker, name, truncate(clientID, 8))
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	name := args[0]
	prefix := "retailers." + name + "."
	if configStore.GetString(prefix+"client_id") == "" {
		return fmt.Errorf("retailer not configured: %s", name)
	}

	for _, key := range []string{"client_id", "client_secret", "retailer"} {
		if err := configStore.Set(prefix+key, ""); err != nil {
			return fmt.Errorf("removing credentials: %w", err)
		}
	}
	if configStore.GetString("default_retailer") == name {
		if err := configStore.Set("default_retailer", ""); err != nil {
			return fmt.Errorf("clearing default retailer: %w", err)
		}
	}

	cmd.Printf("Removed credentials for retailer %s.\n", name)
	return nil
}

// configuredRetailers scans config keys for retailers with a client ID.
// The config store flattens TOML tables to dot notation, so names are
// recovered from retailers.<name>.client_id keys.
func configuredRetailers() []string {
	var names []string
	for _, key := range configStore.Keys() {
		name, ok := strings.CutPrefix(key, "retailers.")
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ".client_id")
		if !ok || name == "" {
			continue
		}
		if configStore.GetString(key) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Read without echo when attached to a terminal
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// truncate truncates a string to the specified length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
