package svc

import (
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/rs/zerolog/log"
	"regexp"
)

// macroFields maps the macro names to the coordinates they expose.
var macroFields = map[string]app.MacroField{
	app.MacroPomGroupID:    app.FieldGroupID,
	app.MacroPomArtifactID: app.FieldArtifactID,
	app.MacroPomVersion:    app.FieldVersion,
}

var macroTokenRx = regexp.MustCompile(`\$\{([A-Z_]+)\}|\$([A-Z_]+)`)

// NewMacro creates a new instance of the coordinate macros service.
func NewMacro(buildRepo app.BuildRepo, promoRepo app.PromotionRepo, jobRepo app.JobRepo) app.MacroSvc {
	return Macro{
		buildRepo: buildRepo,
		promoRepo: promoRepo,
		jobRepo:   jobRepo,
	}
}

// Macro evaluates the coordinate macros of the stored builds.
type Macro struct {
	buildRepo app.BuildRepo
	promoRepo app.PromotionRepo
	jobRepo   app.JobRepo
}

// MacroField returns the coordinate exposed by the macro.
func MacroField(name string) (app.MacroField, error) {
	f, ok := macroFields[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown macro %q", errtype.ErrBadInput, name)
	}
	return f, nil
}

// Extract returns the requested coordinate, or unknown when it can't be resolved.
func Extract(c *app.ModuleCoordinates, f app.MacroField) string {
	if c == nil {
		return app.Unknown
	}
	var v string
	switch f {
	case app.FieldGroupID:
		v = c.GroupID
	case app.FieldArtifactID:
		v = c.ArtifactID
	case app.FieldVersion:
		v = c.Version
	}
	if v == "" {
		return app.Unknown
	}
	return v
}

// RootModule selects the module that describes the build. A multi-module build requires an explicit designation.
func RootModule(modules []app.ModuleCoordinates, designation string) (*app.ModuleCoordinates, error) {
	switch {
	case len(modules) == 0:
		return nil, fmt.Errorf("%w: the build has no modules", errtype.ErrMetadataUnavailable)
	case designation == "" && len(modules) == 1:
		m := modules[0]
		return &m, nil
	case designation == "":
		return nil, fmt.Errorf("%w: %d modules and no root module designation", errtype.ErrMetadataUnavailable, len(modules))
	}
	for _, m := range modules {
		if m.Key() == designation {
			m := m
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%w: root module %s is not built", errtype.ErrMetadataUnavailable, designation)
}

// Evaluate returns the value of the macro for the build.
func (s Macro) Evaluate(ctx context.Context, buildID string, name string) (string, error) {
	f, err := MacroField(name)
	if err != nil {
		return "", errors.WrapContext(err, errors.Context{Path: "svc.Macro.Evaluate.MacroField"})
	}
	c, err := s.coordinates(ctx, buildID)
	if err != nil {
		log.Warn().Err(err).Str("build", buildID).Msgf("Could not determine value for %s", name)
		return app.Unknown, nil
	}
	return Extract(c, f), nil
}

// EvaluatePromotion returns the value of the macro for the build targeted by the promotion.
func (s Macro) EvaluatePromotion(ctx context.Context, promotionID uint64, name string) (string, error) {
	if _, err := MacroField(name); err != nil {
		return "", errors.WrapContext(err, errors.Context{Path: "svc.Macro.EvaluatePromotion.MacroField"})
	}
	p, err := s.promoRepo.FindByID(ctx, promotionID)
	if err != nil {
		return "", errors.WrapContext(err, errors.Context{
			Path:   "svc.Macro.EvaluatePromotion.FindByID",
			Params: errors.Params{"promotion": promotionID},
		})
	}
	return s.Evaluate(ctx, p.BuildID, name)
}

// Expand substitutes the ${POM_*} and $POM_* tokens; other tokens are left as is.
func (s Macro) Expand(ctx context.Context, buildID string, text string) string {
	return macroTokenRx.ReplaceAllStringFunc(text, func(token string) string {
		m := macroTokenRx.FindStringSubmatch(token)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if _, known := macroFields[name]; !known {
			return token
		}
		v, err := s.Evaluate(ctx, buildID, name)
		if err != nil {
			return app.Unknown
		}
		return v
	})
}

func (s Macro) coordinates(ctx context.Context, buildID string) (*app.ModuleCoordinates, error) {
	b, err := s.buildRepo.FindByID(ctx, buildID)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "svc.Macro.coordinates.FindByID",
			Params: errors.Params{"build": buildID},
		})
	}
	var designation string
	if len(b.Modules) > 1 {
		job, err := s.jobRepo.FindByName(ctx, b.Job)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{
				Path:   "svc.Macro.coordinates.FindByName",
				Params: errors.Params{"build": buildID, "job": b.Job},
			})
		}
		designation = job.RootModule
	}
	c, err := RootModule(b.Modules, designation)
	return c, errors.WrapContext(err, errors.Context{
		Path:   "svc.Macro.coordinates.RootModule",
		Params: errors.Params{"build": buildID},
	})
}
