package config

import (
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/antpath"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

type definitionsFile struct {
	Jobs []jobDef `yaml:"jobs"`
}

type jobDef struct {
	Name       string       `yaml:"name"`
	SCM        string       `yaml:"scm"`
	RootModule string       `yaml:"rootModule"`
	Node       string       `yaml:"node"`
	Promotions []processDef `yaml:"promotions"`
}

type processDef struct {
	Name           string `yaml:"name"`
	Patterns       string `yaml:"patterns"`
	EvenIfUnstable bool   `yaml:"evenIfUnstable"`
	Checkout       bool   `yaml:"checkout"`
	PinCommit      bool   `yaml:"pinCommit"`
	Label          string `yaml:"label"`
}

// Definitions holds the jobs and their promotion processes; it is read-only after loading.
type Definitions struct {
	jobs []app.Job
}

// LoadDefinitions reads and validates the definitions file.
func LoadDefinitions(path string) (Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definitions{}, errors.WrapContext(
			fmt.Errorf("%w: %v", errtype.ErrConfiguration, err),
			errors.Context{Path: "config.LoadDefinitions.ReadFile", Params: errors.Params{"path": path}},
		)
	}
	d, err := ParseDefinitions(data)
	return d, errors.WrapContext(err, errors.Context{
		Path:   "config.LoadDefinitions.ParseDefinitions",
		Params: errors.Params{"path": path},
	})
}

// ParseDefinitions decodes and validates the definitions.
func ParseDefinitions(data []byte) (Definitions, error) {
	var f definitionsFile
	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return Definitions{}, fmt.Errorf("%w: %v", errtype.ErrConfiguration, err)
	}
	d := Definitions{jobs: make([]app.Job, 0, len(f.Jobs))}
	seen := make(map[string]bool, len(f.Jobs))
	for _, jd := range f.Jobs {
		j, err := jd.job()
		if err != nil {
			return Definitions{}, err
		}
		if seen[j.Name] {
			return Definitions{}, fmt.Errorf("%w: job %s is defined twice", errtype.ErrConfiguration, j.Name)
		}
		seen[j.Name] = true
		d.jobs = append(d.jobs, j)
	}
	return d, nil
}

func (jd jobDef) job() (app.Job, error) {
	name := strings.TrimSpace(jd.Name)
	if name == "" {
		return app.Job{}, fmt.Errorf("%w: job name is required", errtype.ErrConfiguration)
	}
	if jd.RootModule != "" && len(strings.Split(jd.RootModule, ":")) != 2 {
		return app.Job{}, fmt.Errorf("%w: job %s: rootModule must be groupId:artifactId", errtype.ErrConfiguration, name)
	}
	j := app.Job{
		Name:       name,
		SCM:        strings.ToLower(strings.TrimSpace(jd.SCM)),
		RootModule: strings.TrimSpace(jd.RootModule),
		Node:       strings.TrimSpace(jd.Node),
		Processes:  make([]app.PromotionProcess, 0, len(jd.Promotions)),
	}
	if j.SCM == "" {
		j.SCM = app.SCMGit
	}
	if j.Node == "" {
		j.Node = app.DefaultNode
	}
	seen := make(map[string]bool, len(jd.Promotions))
	for _, pd := range jd.Promotions {
		p, err := pd.process()
		if err != nil {
			return app.Job{}, fmt.Errorf("job %s: %w", name, err)
		}
		if seen[p.Name] {
			return app.Job{}, fmt.Errorf("%w: job %s: promotion %s is defined twice", errtype.ErrConfiguration, name, p.Name)
		}
		seen[p.Name] = true
		j.Processes = append(j.Processes, p)
	}
	return j, nil
}

func (pd processDef) process() (app.PromotionProcess, error) {
	name := strings.TrimSpace(pd.Name)
	if name == "" {
		return app.PromotionProcess{}, fmt.Errorf("%w: promotion name is required", errtype.ErrConfiguration)
	}
	patterns := antpath.Split(pd.Patterns)
	if len(patterns) == 0 {
		return app.PromotionProcess{}, fmt.Errorf("%w: promotion %s has no branch patterns", errtype.ErrConfiguration, name)
	}
	for _, p := range patterns {
		if _, err := antpath.Compile(p); err != nil {
			return app.PromotionProcess{}, fmt.Errorf("%w: promotion %s: invalid pattern %q: %v", errtype.ErrConfiguration, name, p, err)
		}
	}
	return app.PromotionProcess{
		Name:      name,
		Patterns:  app.BranchPatternSet{Patterns: patterns, IncludeUnstable: pd.EvenIfUnstable},
		Checkout:  pd.Checkout,
		PinCommit: pd.PinCommit,
		Label:     pd.Label,
	}, nil
}

// FindAll returns all jobs in the definition order.
func (d Definitions) FindAll(context.Context) ([]app.Job, error) {
	res := make([]app.Job, len(d.jobs))
	copy(res, d.jobs)
	return res, nil
}

// FindByName returns the job by name.
func (d Definitions) FindByName(_ context.Context, name string) (app.Job, error) {
	for _, j := range d.jobs {
		if j.Name == name {
			return j, nil
		}
	}
	return app.Job{}, fmt.Errorf("%w: job %s has no promotion definitions", errtype.ErrNotFound, name)
}
