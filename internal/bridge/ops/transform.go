package ops

import (
	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	"github.com/msto63/scenebridge/internal/bridge/coords"
)

// transformRequest is the TransformObject payload
type transformRequest struct {
	Name   string    `json:"name"`
	Matrix []float64 `json:"matrix"`
}

// Transformer sets absolute object transforms
type Transformer struct {
	env *Env
}

// NewTransformer creates the TransformObject handler
func NewTransformer(env *Env) *Transformer {
	return &Transformer{env: env}
}

// Verbs implements Handler
func (h *Transformer) Verbs() []string {
	return []string{VerbTransformObject}
}

// Execute implements Handler
func (h *Transformer) Execute(verb, args string) string {
	var req transformRequest
	if err := decodeJSON(args, &req); err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "malformed transform payload").
			WithCode(mdwerror.CodeInvalidPayload).
			WithOperation(verb))
		return ResultFailed
	}

	m, err := coords.MatrixFromSlice(req.Matrix)
	if err != nil {
		h.env.Logger.LogError(mdwerror.Wrap(err, "invalid transform matrix").
			WithCode(mdwerror.CodeInvalidPayload).
			WithOperation(verb).
			WithDetail("name", req.Name))
		return ResultFailed
	}

	obj, ok := h.env.Resolver.Resolve(req.Name)
	if !ok {
		h.env.Logger.Info("Object not found", "verb", verb, "name", req.Name)
		return ResultNotFound
	}

	h.env.Scene.SetTransform(obj, coords.ToEngine(m))
	return ResultOk
}
