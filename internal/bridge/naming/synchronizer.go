package naming

import (
	"strings"

	"github.com/msto63/scenebridge/internal/scene"
	"github.com/msto63/scenebridge/pkg/core/logging"
)

// DefaultGeneratedName replaces names that collapse to the reserved token
const DefaultGeneratedName = "GeneratedName"

// Synchronizer renames objects so that label and identifier always match
type Synchronizer struct {
	ctx           scene.Context
	generatedName string
	logger        *logging.Logger
}

// NewSynchronizer creates a synchronizer. An empty generatedName uses
// DefaultGeneratedName.
func NewSynchronizer(ctx scene.Context, generatedName string, logger *logging.Logger) *Synchronizer {
	if generatedName == "" {
		generatedName = DefaultGeneratedName
	}
	if logger == nil {
		logger = logging.New("naming")
	}
	return &Synchronizer{ctx: ctx, generatedName: generatedName, logger: logger}
}

// GeneratedName returns the fallback base name
func (s *Synchronizer) GeneratedName() string {
	return s.generatedName
}

// Rename tries to give obj the identifier desired and returns the
// identifier the object has afterwards. It never fails: an unusable or
// refused name leaves the object untouched.
func (s *Synchronizer) Rename(obj *scene.Object, desired string) string {
	current := obj.ID()

	candidate := Sanitize(desired)
	if candidate == "" {
		s.logger.Debug("Name stripped to nothing, keeping current", "id", current, "desired", desired)
		return current
	}

	if strings.EqualFold(candidate, scene.ReservedName) {
		candidate = s.generatedName
	}

	if candidate == current {
		return current
	}

	if !s.ctx.Rename(obj, candidate, true) {
		s.logger.Debug("Rename refused by host", "id", current, "candidate", candidate)
		return current
	}
	if !s.ctx.Rename(obj, candidate, false) {
		s.logger.Warn("Rename failed after successful validation", "id", current, "candidate", candidate)
		return obj.ID()
	}

	result := obj.ID()
	s.ctx.SetLabel(obj, result)
	return result
}

// Sync is the identity step every creation path must run: it renames a
// freshly created or cloned object and then makes sure the label shows
// the resulting identifier even when the rename itself was refused.
func (s *Synchronizer) Sync(obj *scene.Object, desired string) string {
	result := s.Rename(obj, desired)
	if obj.Label() != result {
		s.ctx.SetLabel(obj, result)
	}
	return result
}
