// Package ops implements the object verbs of the bridge protocol. Each
// handler maps a request to a result string and keeps no state of its
// own; failures are reported as result tokens, never as errors.
package ops

import (
	"github.com/msto63/scenebridge/internal/bridge/naming"
	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

// Result tokens
const (
	ResultOk       = "Ok"
	ResultNotFound = "NotFound"
	ResultFailed   = "Failed"
	RenamedPrefix  = "Renamed:"

	// Numeric codes used by AddActor and ParentChildTo
	ResultSuccess = "0"
	ResultFailure = "1"
)

// Verbs
const (
	VerbTransformObject  = "TransformObject"
	VerbGetFreeName      = "GetFreeName"
	VerbRenameObject     = "RenameObject"
	VerbDeleteSelected   = "DeleteSelected"
	VerbDeleteObject     = "DeleteObject"
	VerbDuplicateObjects = "DuplicateObjects"
	VerbAddActor         = "AddActor"
	VerbAddActorBatch    = "AddActorBatch"
	VerbParentChildTo    = "ParentChildTo"
)

// Handler executes one or more verbs
type Handler interface {
	// Verbs lists the verbs this handler claims
	Verbs() []string
	// Execute runs verb with the argument text following it
	Execute(verb, args string) string
}

// Env bundles the services every handler works with
type Env struct {
	Scene    scene.Context
	Resolver *naming.Resolver
	Names    *naming.Synchronizer
	Logger   *logging.Logger
}

// NewEnv creates the shared handler environment for ctx
func NewEnv(ctx scene.Context, generatedName string, logger *logging.Logger) *Env {
	if logger == nil {
		logger = logging.New("ops")
	}
	return &Env{
		Scene:    ctx,
		Resolver: naming.NewResolver(ctx),
		Names:    naming.NewSynchronizer(ctx, generatedName, logger),
		Logger:   logger,
	}
}

// All returns one handler per operation in registration order
func All(env *Env) []Handler {
	return []Handler{
		NewTransformer(env),
		NewNamer(env),
		NewDeleter(env),
		NewDuplicator(env),
		NewAdder(env),
		NewParenter(env),
	}
}
