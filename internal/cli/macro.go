package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/config"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/gitflow-promoter/internal/app/svc"
	pkgos "github.com/beldeveloper/gitflow-promoter/pkg/os"
	"github.com/beldeveloper/go-errors-context"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

// buildFile serves the build read from a build event file.
type buildFile struct {
	build app.Build
}

func (f buildFile) FindByID(_ context.Context, id string) (app.Build, error) {
	if id != f.build.ID {
		return app.Build{}, errtype.ErrNotFound
	}
	return f.build, nil
}

func (f buildFile) Save(context.Context, app.Build) error {
	return nil
}

func readBuild(path string) (app.Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return app.Build{}, errors.WrapContext(err, errors.Context{Path: "cli.readBuild.ReadFile", Params: errors.Params{"path": path}})
	}
	var b app.Build
	err = json.Unmarshal(data, &b)
	if err != nil {
		return app.Build{}, errors.WrapContext(
			fmt.Errorf("%w: %v", errtype.ErrBadInput, err),
			errors.Context{Path: "cli.readBuild.Unmarshal", Params: errors.Params{"path": path}},
		)
	}
	if b.ID == "" {
		b.ID = fmt.Sprintf("%s#%d", b.Job, b.Number)
	}
	return b, nil
}

func newMacroCmd(v *viper.Viper) *cobra.Command {
	var (
		buildPath string
		template  string
	)
	cmd := &cobra.Command{
		Use:   "macro [POM_GROUPID|POM_ARTIFACTID|POM_VERSION]...",
		Short: "Evaluate the coordinate macros for a build event file",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readBuild(buildPath)
			if err != nil {
				return err
			}
			var jobs app.JobRepo = config.Definitions{}
			if found, _ := pkgos.Exists(v.GetString("definitions")); found {
				defs, err := loadDefinitions(v)
				if err != nil {
					return err
				}
				jobs = defs
			}
			macroSvc := svc.NewMacro(buildFile{build: b}, nil, jobs)
			out := cmd.OutOrStdout()
			if template != "" {
				fmt.Fprintln(out, macroSvc.Expand(cmd.Context(), b.ID, template))
				return nil
			}
			for _, name := range args {
				val, err := macroSvc.Evaluate(cmd.Context(), b.ID, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s=%s\n", name, val)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&buildPath, "build", "", "path to the build event JSON")
	cmd.Flags().StringVar(&template, "expand", "", "template to expand instead of printing the macros")
	_ = cmd.MarkFlagRequired("build")
	return cmd
}
