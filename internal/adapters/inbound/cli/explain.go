package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relcheck/relcheck/internal/adapters/outbound/tui"
	"github.com/relcheck/relcheck/internal/domain/rules"
)

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <rule>",
		Short: "Explain one compatibility rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := rules.Load()
			if err != nil {
				return err
			}

			rule, ok := catalog.Rule(args[0])
			if !ok {
				return fmt.Errorf("unknown rule %q; available rules:\n  %s", args[0], strings.Join(catalog.IDs(), "\n  "))
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRuleDetail(rule))
			return nil
		},
	}
}
