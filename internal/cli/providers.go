package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage the provider registry",
	Long:  `List providers and change which one is the system default.`,
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered providers",
	RunE:  runProvidersList,
}

var providersSetDefaultCmd = &cobra.Command{
	Use:   "set-default <provider-id>",
	Short: "Mark a provider as the system default",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersSetDefault,
}

func init() {
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersSetDefaultCmd)
	rootCmd.AddCommand(providersCmd)
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	providers, err := a.providers.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list providers: %w", err)
	}
	if len(providers) == 0 {
		fmt.Println("No providers registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODELS\tDEFAULT\tSYSTEM")
	for _, p := range providers {
		def := ""
		if p.Default {
			def = "*"
		}
		sys := ""
		if p.System {
			sys = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, len(p.Models), def, sys)
	}
	return w.Flush()
}

func runProvidersSetDefault(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	if err := a.providers.SetDefault(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}
	fmt.Printf("Default provider set to %s\n", id)
	return nil
}
