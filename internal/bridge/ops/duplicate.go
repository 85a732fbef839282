package ops

import (
	"encoding/json"
	"strings"

	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
)

// duplicateEntry is one element of the DuplicateObjects payload
type duplicateEntry struct {
	Original string `json:"original"`
	Name     string `json:"name"`
	transformFields
}

// Duplicator clones objects in batches
type Duplicator struct {
	env *Env
}

// NewDuplicator creates the DuplicateObjects handler
func NewDuplicator(env *Env) *Duplicator {
	return &Duplicator{env: env}
}

// Verbs implements Handler
func (h *Duplicator) Verbs() []string {
	return []string{VerbDuplicateObjects}
}

// Execute implements Handler. Entries run in order and fail independently;
// the per-entry results are joined with single spaces.
func (h *Duplicator) Execute(verb, args string) string {
	var raw []json.RawMessage
	if err := decodeJSON(args, &raw); err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "malformed duplicate payload").
			WithCode(mdwerror.CodeInvalidPayload).
			WithOperation(verb))
		return ResultFailed
	}

	results := make([]string, 0, len(raw))
	for i, item := range raw {
		results = append(results, h.duplicate(verb, i, item))
	}
	return strings.Join(results, " ")
}

func (h *Duplicator) duplicate(verb string, index int, item json.RawMessage) string {
	var entry duplicateEntry
	if err := json.Unmarshal(item, &entry); err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "malformed duplicate entry").
			WithCode(mdwerror.CodeInvalidPayload).
			WithOperation(verb).
			WithDetail("index", index))
		return ResultFailed
	}

	rel, err := entry.Relative()
	if err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "invalid duplicate transform").
			WithCode(mdwerror.CodeInvalidPayload).
			WithOperation(verb).
			WithDetail("original", entry.Original))
		return ResultFailed
	}

	original, ok := h.env.Resolver.Resolve(entry.Original)
	if !ok {
		h.env.Logger.Warn("Object not found", "verb", verb, "name", entry.Original)
		return ResultNotFound
	}

	ctx := h.env.Scene
	ctx.SelectNone()
	ctx.Select(original)
	clones := ctx.DuplicateSelected()
	if len(clones) == 0 {
		h.env.Logger.LogError(mdwerror.Newf("host did not duplicate %s", original.ID()).
			WithCode(mdwerror.CodeHostRefused).
			WithOperation(verb))
		return ResultFailed
	}
	clone := clones[0]

	if !rel.IsZero() {
		ctx.SetTransform(clone, rel.Apply(clone.Transform()))
	}

	// The host already gave the clone a unique ID; try the desired one
	// so the caller does not have to rename on its side.
	assigned := h.env.Names.Sync(clone, entry.Name)
	if assigned == entry.Name {
		return ResultOk
	}
	return RenamedPrefix + assigned
}
