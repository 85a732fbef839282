package ops

import (
	"strings"

	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	"github.com/msto63/scenebridge/internal/bridge/naming"
	"github.com/msto63/scenebridge/internal/scene"
)

// Adder spawns objects from assets or edits existing ones
type Adder struct {
	env *Env
}

// NewAdder creates the AddActor/AddActorBatch handler
func NewAdder(env *Env) *Adder {
	return &Adder{env: env}
}

// Verbs implements Handler
func (h *Adder) Verbs() []string {
	return []string{VerbAddActor, VerbAddActorBatch}
}

// Execute implements Handler
func (h *Adder) Execute(verb, args string) string {
	if verb == VerbAddActorBatch {
		h.AddBatch(args)
		// Per-line results are not part of the AddActorBatch reply
		return ResultOk
	}
	return h.Add(args)
}

// AddBatch runs Add for every non-empty line and returns the per-line results
func (h *Adder) AddBatch(lines string) []string {
	var results []string
	for _, line := range strings.Split(lines, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		results = append(results, h.Add(line))
	}
	h.env.Logger.Debug("Batch add finished", "lines", len(results))
	return results
}

// Add handles one "<asset> <name> [EditIfExists=<bool>] [T=(..)] [R=(..)] [S=(..)]"
// line. If the name is taken and EditIfExists (default true) is set, the
// existing object is edited instead of spawning a new one.
func (h *Adder) Add(args string) string {
	assetPath, rest := NextToken(args)
	name, rest := NextToken(rest)
	editIfExists := namedBool(rest, "EditIfExists", true)

	rel, err := ParseRelativeText(rest)
	if err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "ignoring malformed transform").
			WithCode(mdwerror.CodeInvalidPayload).
			WithOperation(VerbAddActor).
			WithDetail("name", name))
	}

	// Names that sanitize to nothing or to the reserved token always
	// spawn under the generated base and are never edited
	desired := naming.Sanitize(name)
	generated := desired == "" || strings.EqualFold(desired, scene.ReservedName)
	if generated {
		desired = h.env.Names.GeneratedName()
	}
	freeName := h.env.Resolver.FreeName(desired)

	var obj *scene.Object
	if freeName != desired && editIfExists && !generated {
		existing, ok := h.env.Resolver.Resolve(desired)
		if !ok {
			h.env.Logger.Warn("Name taken but no object found", "name", desired)
			return ResultFailure
		}
		h.env.Logger.Debug("Editing existing object", "name", desired)
		obj = existing
	} else {
		obj = h.spawn(assetPath, freeName)
		if obj == nil {
			return ResultFailure
		}
	}

	if !rel.IsZero() {
		h.env.Scene.SetTransform(obj, rel.Apply(obj.Transform()))
	}
	return obj.ID()
}

// spawn creates the object and forces its identity to the free name
func (h *Adder) spawn(assetPath, freeName string) *scene.Object {
	asset, ok := h.env.Scene.Asset(assetPath)
	if !ok {
		h.env.Logger.LogError(mdwerror.Newf("%s is not a valid asset", assetPath).
			WithCode(mdwerror.CodeAssetNotFound).
			WithOperation(VerbAddActor).
			WithDetail("asset", assetPath))
		return nil
	}

	obj, err := h.env.Scene.Spawn(asset, freeName)
	if err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "spawn failed").
			WithCode(mdwerror.CodeSpawnFailed).
			WithOperation(VerbAddActor))
		return nil
	}

	// Creation does not reliably honor the requested name
	h.env.Names.Sync(obj, freeName)
	return obj
}
