package svc

import (
	"context"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

var testModules = []app.ModuleCoordinates{
	{GroupID: "com.x", ArtifactID: "parent", Version: "2.0.0"},
	{GroupID: "com.x", ArtifactID: "core", Version: "2.0.1"},
}

func TestExtract(t *testing.T) {
	c := &app.ModuleCoordinates{GroupID: "com.x", ArtifactID: "app", Version: "1.2.3"}
	assert.Equal(t, "com.x", Extract(c, app.FieldGroupID))
	assert.Equal(t, "app", Extract(c, app.FieldArtifactID))
	assert.Equal(t, "1.2.3", Extract(c, app.FieldVersion))
	assert.Equal(t, app.Unknown, Extract(nil, app.FieldVersion))
	assert.Equal(t, app.Unknown, Extract(&app.ModuleCoordinates{GroupID: "com.x"}, app.FieldVersion))
}

func TestMacroField(t *testing.T) {
	f, err := MacroField("POM_ARTIFACTID")
	require.NoError(t, err)
	assert.Equal(t, app.FieldArtifactID, f)

	_, err = MacroField("POM_NAME")
	assert.ErrorIs(t, err, errtype.ErrBadInput)
}

func TestRootModule(t *testing.T) {
	_, err := RootModule(nil, "")
	assert.ErrorIs(t, err, errtype.ErrMetadataUnavailable)

	m, err := RootModule(testModules[:1], "")
	require.NoError(t, err)
	assert.Equal(t, "parent", m.ArtifactID)

	_, err = RootModule(testModules, "")
	assert.ErrorIs(t, err, errtype.ErrMetadataUnavailable)

	m, err = RootModule(testModules, "com.x:core")
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", m.Version)

	_, err = RootModule(testModules, "com.x:web")
	assert.ErrorIs(t, err, errtype.ErrMetadataUnavailable)
}

func TestMacroEvaluate(t *testing.T) {
	ctx := context.Background()
	builds := &buildRepoMock{}
	jobs := &jobRepoMock{}
	builds.On("FindByID", ctx, "single").Return(app.Build{
		ID:      "single",
		Job:     "lib",
		Modules: []app.ModuleCoordinates{{GroupID: "com.x", ArtifactID: "app", Version: "1.2.3"}},
	}, nil)
	builds.On("FindByID", ctx, "multi").Return(app.Build{ID: "multi", Job: "platform", Modules: testModules}, nil)
	builds.On("FindByID", ctx, "ambiguous").Return(app.Build{ID: "ambiguous", Job: "mono", Modules: testModules}, nil)
	builds.On("FindByID", ctx, "freestyle").Return(app.Build{ID: "freestyle", Job: "lib"}, nil)
	builds.On("FindByID", ctx, "missing").Return(app.Build{}, errtype.ErrNotFound)
	jobs.On("FindByName", ctx, "platform").Return(app.Job{Name: "platform", RootModule: "com.x:core"}, nil)
	jobs.On("FindByName", ctx, "mono").Return(app.Job{Name: "mono"}, nil)
	s := NewMacro(builds, &promoRepoMock{}, jobs)

	cases := []struct {
		build string
		macro string
		want  string
	}{
		{"single", app.MacroPomVersion, "1.2.3"},
		{"single", app.MacroPomGroupID, "com.x"},
		{"multi", app.MacroPomArtifactID, "core"},
		{"multi", app.MacroPomVersion, "2.0.1"},
		{"ambiguous", app.MacroPomVersion, app.Unknown},
		{"freestyle", app.MacroPomVersion, app.Unknown},
		{"missing", app.MacroPomVersion, app.Unknown},
	}
	for _, c := range cases {
		t.Run(c.build+"/"+c.macro, func(t *testing.T) {
			v, err := s.Evaluate(ctx, c.build, c.macro)
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}

	_, err := s.Evaluate(ctx, "single", "POM_NAME")
	assert.ErrorIs(t, err, errtype.ErrBadInput)
}

func TestMacroEvaluatePromotion(t *testing.T) {
	ctx := context.Background()
	builds := &buildRepoMock{}
	promos := &promoRepoMock{}
	builds.On("FindByID", ctx, "lib#7").Return(app.Build{
		ID:      "lib#7",
		Modules: []app.ModuleCoordinates{{GroupID: "com.x", ArtifactID: "app", Version: "1.2.3"}},
	}, nil)
	promos.On("FindByID", ctx, uint64(3)).Return(app.Promotion{ID: 3, BuildID: "lib#7"}, nil)
	promos.On("FindByID", ctx, uint64(4)).Return(app.Promotion{}, errtype.ErrNotFound)
	s := NewMacro(builds, promos, &jobRepoMock{})

	v, err := s.EvaluatePromotion(ctx, 3, app.MacroPomArtifactID)
	require.NoError(t, err)
	assert.Equal(t, "app", v)

	_, err = s.EvaluatePromotion(ctx, 4, app.MacroPomArtifactID)
	assert.ErrorIs(t, err, errtype.ErrNotFound)
}

func TestMacroExpand(t *testing.T) {
	ctx := context.Background()
	builds := &buildRepoMock{}
	builds.On("FindByID", ctx, "lib#7").Return(app.Build{
		ID:      "lib#7",
		Modules: []app.ModuleCoordinates{{GroupID: "com.x", ArtifactID: "app", Version: "1.2.3"}},
	}, nil)
	builds.On("FindByID", ctx, "gone").Return(app.Build{}, errtype.ErrNotFound)
	s := NewMacro(builds, &promoRepoMock{}, &jobRepoMock{})

	assert.Equal(t, "app-v1.2.3 $HOME ${POM_NAME}", s.Expand(ctx, "lib#7", "$POM_ARTIFACTID-v${POM_VERSION} $HOME ${POM_NAME}"))
	assert.Equal(t, "release unknown", s.Expand(ctx, "gone", "release ${POM_VERSION}"))
	assert.Equal(t, "", s.Expand(ctx, "lib#7", ""))
}
