package ops

// Namer answers free-name queries and renames objects
type Namer struct {
	env *Env
}

// NewNamer creates the GetFreeName/RenameObject handler
func NewNamer(env *Env) *Namer {
	return &Namer{env: env}
}

// Verbs implements Handler
func (h *Namer) Verbs() []string {
	return []string{VerbGetFreeName, VerbRenameObject}
}

// Execute implements Handler
func (h *Namer) Execute(verb, args string) string {
	switch verb {
	case VerbGetFreeName:
		name, _ := NextToken(args)
		return h.env.Resolver.FreeName(name)

	case VerbRenameObject:
		name, rest := NextToken(args)
		newName, _ := NextToken(rest)

		obj, ok := h.env.Resolver.Resolve(name)
		if !ok {
			h.env.Logger.Info("Object not found", "verb", verb, "name", name)
			return ResultNotFound
		}
		return h.env.Names.Rename(obj, newName)
	}
	return ResultFailed
}
