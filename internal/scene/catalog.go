package scene

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	"github.com/msto63/scenebridge/pkg/core/logging"
	"gopkg.in/yaml.v3"
)

// Asset is a spawnable resource
type Asset struct {
	Path  string `yaml:"path"`
	Class string `yaml:"class"`
}

// PrefixRule maps every asset below a path prefix to an actor class
type PrefixRule struct {
	Prefix string `yaml:"prefix"`
	Class  string `yaml:"class"`
}

// CatalogFile is the YAML layout of a catalog file
type CatalogFile struct {
	Assets   []Asset      `yaml:"assets"`
	Prefixes []PrefixRule `yaml:"prefixes"`
}

// Catalog resolves asset paths to actor classes. Exact entries win over
// prefixes; among prefixes the longest match wins.
type Catalog struct {
	assets   map[string]Asset
	prefixes []PrefixRule
}

// NewCatalog builds a catalog from a decoded file
func NewCatalog(file CatalogFile) (*Catalog, error) {
	c := &Catalog{assets: make(map[string]Asset, len(file.Assets))}

	for i, asset := range file.Assets {
		if asset.Path == "" || asset.Class == "" {
			return nil, mdwerror.Newf("asset entry %d needs path and class", i).
				WithCode(mdwerror.CodeInvalidConfig)
		}
		c.assets[asset.Path] = asset
	}
	for i, rule := range file.Prefixes {
		if rule.Prefix == "" || rule.Class == "" {
			return nil, mdwerror.Newf("prefix entry %d needs prefix and class", i).
				WithCode(mdwerror.CodeInvalidConfig)
		}
		c.prefixes = append(c.prefixes, rule)
	}
	sort.SliceStable(c.prefixes, func(i, j int) bool {
		return len(c.prefixes[i].Prefix) > len(c.prefixes[j].Prefix)
	})

	return c, nil
}

// DefaultCatalog knows the usual content folders of a game project
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(CatalogFile{
		Prefixes: []PrefixRule{
			{Prefix: "/Game/Meshes/", Class: "StaticMeshActor"},
			{Prefix: "/Game/Blueprints/", Class: "BlueprintActor"},
			{Prefix: "/Game/Lights/", Class: "PointLight"},
			{Prefix: "/Game/Cameras/", Class: "CameraActor"},
			{Prefix: "/Engine/BasicShapes/", Class: "StaticMeshActor"},
		},
	})
	return c
}

// LoadCatalog reads a YAML catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read catalog").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("path", path)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse catalog").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("path", path)
	}

	return NewCatalog(file)
}

// Lookup resolves an asset path
func (c *Catalog) Lookup(path string) (Asset, bool) {
	if c == nil || path == "" {
		return Asset{}, false
	}
	if asset, ok := c.assets[path]; ok {
		return asset, true
	}
	for _, rule := range c.prefixes {
		if strings.HasPrefix(path, rule.Prefix) && len(path) > len(rule.Prefix) {
			return Asset{Path: path, Class: rule.Class}, true
		}
	}
	return Asset{}, false
}

// Len returns the number of exact entries and prefix rules
func (c *Catalog) Len() int {
	return len(c.assets) + len(c.prefixes)
}

// CatalogWatcher reloads a catalog file when it changes on disk
type CatalogWatcher struct {
	path     string
	onChange func(*Catalog)
	logger   *logging.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	running bool
}

// NewCatalogWatcher creates a watcher calling onChange with every
// successfully reloaded catalog
func NewCatalogWatcher(path string, onChange func(*Catalog)) *CatalogWatcher {
	return &CatalogWatcher{
		path:     path,
		onChange: onChange,
		logger:   logging.New("catalog"),
	}
}

// Start begins watching until ctx is cancelled
func (w *CatalogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory; editors replace files on save
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.watcher = watcher
	w.running = true
	w.logger.Info("Watching asset catalog", "path", w.path)

	go w.watchLoop(ctx, watcher)
	return nil
}

func (w *CatalogWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		watcher.Close()
	}()

	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			catalog, err := LoadCatalog(w.path)
			if err != nil {
				w.logger.Warn("Catalog reload failed, keeping previous catalog", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("Asset catalog reloaded", "entries", catalog.Len())
			if w.onChange != nil {
				w.onChange(catalog)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}
