package ops

// Parenter attaches and detaches objects
type Parenter struct {
	env *Env
}

// NewParenter creates the ParentChildTo handler
func NewParenter(env *Env) *Parenter {
	return &Parenter{env: env}
}

// Verbs implements Handler
func (h *Parenter) Verbs() []string {
	return []string{VerbParentChildTo}
}

// Execute implements Handler. Without a parent name the child is
// detached; detaching an unparented child succeeds.
func (h *Parenter) Execute(verb, args string) string {
	childName, rest := NextToken(args)
	parentName, _ := NextToken(rest)

	child, ok := h.env.Resolver.Resolve(childName)
	if !ok {
		h.env.Logger.Info("Object not found", "verb", verb, "name", childName)
		return ResultFailure
	}

	if parentName == "" {
		if h.env.Scene.Detach(child) {
			h.env.Logger.Debug("Object detached", "child", child.ID())
		}
		return ResultSuccess
	}

	parent, ok := h.env.Resolver.Resolve(parentName)
	if !ok {
		h.env.Logger.Info("Object not found", "verb", verb, "name", parentName)
		return ResultFailure
	}
	if parent == child {
		h.env.Logger.Info("Refusing to parent object to itself", "name", childName)
		return ResultFailure
	}

	if err := h.env.Scene.Attach(child, parent); err != nil {
		h.env.Logger.LogError(err)
		return ResultFailure
	}
	h.env.Logger.Debug("Object attached", "child", child.ID(), "parent", parent.ID())
	return ResultSuccess
}
