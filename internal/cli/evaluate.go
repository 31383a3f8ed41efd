package cli

import (
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/svc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

func newEvaluateCmd(v *viper.Viper) *cobra.Command {
	var (
		job     string
		branch  string
		outcome string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Show which promotion processes a build would pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(v)
			if err != nil {
				return err
			}
			b := app.Build{Job: job, Outcome: app.ParseOutcome(outcome)}
			if cmd.Flags().Changed("branch") {
				b.Branch = &branch
			}
			promoSvc := svc.NewPromotion(svc.NewGate(), nil, nil, nil, nil, nil, defs, nil, nil, "")
			res, err := promoSvc.Evaluate(cmd.Context(), b)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			for _, e := range res {
				if !e.Decision.Matched {
					fmt.Fprintf(out, "%s\tskipped\n", e.Process)
					continue
				}
				fmt.Fprintf(out, "%s\tpromoted\t%s\t%s\n", e.Process, *e.Decision.SourceBranch, *e.Decision.MatchedPattern)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "job name")
	cmd.Flags().StringVar(&branch, "branch", "", "source branch of the build")
	cmd.Flags().StringVar(&outcome, "outcome", string(app.OutcomeSuccess),
		"build outcome: "+strings.Join([]string{string(app.OutcomeSuccess), string(app.OutcomeUnstable), string(app.OutcomeFailure)}, ", "))
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
