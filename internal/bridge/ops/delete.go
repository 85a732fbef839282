package ops

// Deleter removes objects through the host selection
type Deleter struct {
	env *Env
}

// NewDeleter creates the DeleteSelected/DeleteObject handler
func NewDeleter(env *Env) *Deleter {
	return &Deleter{env: env}
}

// Verbs implements Handler
func (h *Deleter) Verbs() []string {
	return []string{VerbDeleteSelected, VerbDeleteObject}
}

// Execute implements Handler. Deleting a missing object is not an error.
func (h *Deleter) Execute(verb, args string) string {
	ctx := h.env.Scene

	if verb == VerbDeleteObject {
		name, _ := NextToken(args)
		ctx.SelectNone()
		if obj, ok := h.env.Resolver.Resolve(name); ok {
			ctx.Select(obj)
		} else {
			h.env.Logger.Debug("Nothing to delete", "name", name)
		}
	}

	deleted := ctx.DeleteSelected()
	h.env.Logger.Debug("Objects deleted", "verb", verb, "count", deleted)
	return ResultOk
}
