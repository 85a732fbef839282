// Package dispatch routes command lines to the handler registered for
// their verb.
package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/msto63/scenebridge/pkg/core/logging"
)

// Handler executes the verbs it claims
type Handler interface {
	Verbs() []string
	Execute(verb, args string) string
}

// Dispatcher maps verb tokens to handlers. Verbs are case-sensitive and
// the first registration of a verb wins.
type Dispatcher struct {
	handlers map[string]Handler
	order    []string
	logger   *logging.Logger
	mutex    sync.RWMutex
}

// New creates an empty dispatcher
func New(logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.New("dispatch")
	}
	return &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register adds every verb h claims. Verbs that are already taken keep
// their first handler and are reported in the returned error; the
// remaining verbs are still registered.
func (d *Dispatcher) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var duplicates []string
	for _, verb := range h.Verbs() {
		if verb == "" || strings.IndexFunc(verb, unicode.IsSpace) >= 0 {
			return fmt.Errorf("invalid verb %q", verb)
		}
		if _, exists := d.handlers[verb]; exists {
			duplicates = append(duplicates, verb)
			continue
		}
		d.handlers[verb] = h
		d.order = append(d.order, verb)
		d.logger.Debug("Verb registered", "verb", verb)
	}

	if len(duplicates) > 0 {
		return fmt.Errorf("verbs already registered: %s", strings.Join(duplicates, ", "))
	}
	return nil
}

// Execute runs line and reports whether a handler claimed its verb
func (d *Dispatcher) Execute(line string) (string, bool) {
	verb, args := Split(line)
	if verb == "" {
		return "", false
	}

	d.mutex.RLock()
	h, ok := d.handlers[verb]
	d.mutex.RUnlock()

	if !ok {
		d.logger.Debug("Unknown verb", "verb", verb)
		return "", false
	}
	return h.Execute(verb, args), true
}

// Verbs lists the registered verbs in registration order
func (d *Dispatcher) Verbs() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Split separates the verb from its arguments. Leading whitespace of
// both parts is dropped; the arguments are otherwise passed verbatim.
func Split(line string) (verb, args string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return line, ""
	}
	return line[:end], strings.TrimLeftFunc(line[end:], unicode.IsSpace)
}
