package app

import "context"

// MacroField is a module coordinate that can be substituted by a macro.
type MacroField string

const (
	// FieldGroupID selects the groupId coordinate.
	FieldGroupID MacroField = "GROUP_ID"
	// FieldArtifactID selects the artifactId coordinate.
	FieldArtifactID MacroField = "ARTIFACT_ID"
	// FieldVersion selects the version coordinate.
	FieldVersion MacroField = "VERSION"
)

const (
	// MacroPomGroupID is the name of the groupId macro.
	MacroPomGroupID = "POM_GROUPID"
	// MacroPomArtifactID is the name of the artifactId macro.
	MacroPomArtifactID = "POM_ARTIFACTID"
	// MacroPomVersion is the name of the version macro.
	MacroPomVersion = "POM_VERSION"
)

// Unknown is substituted when the coordinates can't be resolved.
const Unknown = "unknown"

// MacroSvc describes the coordinate macros evaluation.
type MacroSvc interface {
	Evaluate(ctx context.Context, buildID string, name string) (string, error)
	EvaluatePromotion(ctx context.Context, promotionID uint64, name string) (string, error)
	Expand(ctx context.Context, buildID string, text string) string
}
