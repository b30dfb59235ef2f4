package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/fakesss/engine/assets/loaders"
	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/renderer/shaders"
)

var ErrWatcherClosed = errors.New("asset watcher already closed")

// Sub-directories of the asset root per resource type.
const (
	ShaderDir  = "shaders"
	TextureDir = "textures"
	MeshDir    = "meshes"
)

const maxPendingChanges = 64

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the files under an asset root, loads them through the
// registered loaders and watches the tree for edits. Changes are collected by
// the watcher goroutine and handed to the main loop by Poll.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	running  bool
	changes  chan string
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		changes:  make(chan string, maxPendingChanges),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.ModelLoader{})
	return am, nil
}

// Initialize indexes assetsDir and starts watching it. A missing directory is
// not an error: every load then falls back to built-in data or fails on its own.
func (am *AssetManager) Initialize(assetsDir string) error {
	am.root = assetsDir
	am.running = true
	go am.start()

	if _, err := os.Stat(assetsDir); err != nil {
		core.LogWarn("asset root %s not available: %s", assetsDir, err)
		return nil
	}
	return am.addRecursive(assetsDir)
}

func (am *AssetManager) Root() string {
	return am.root
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrWatcherClosed
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Path returns where an asset of the given type and name lives under the root.
func (am *AssetManager) Path(resourceType metadata.ResourceType, name string) string {
	switch resourceType {
	case metadata.ResourceTypeShader:
		return filepath.Join(am.root, ShaderDir)
	case metadata.ResourceTypeImage:
		return filepath.Join(am.root, TextureDir, name)
	case metadata.ResourceTypeMesh:
		return filepath.Join(am.root, MeshDir, name)
	default:
		return filepath.Join(am.root, name)
	}
}

// LoadAsset loads name with the loader of resourceType. Shaders are looked up
// by program name; other types by file name under their directory.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	path := am.Path(resourceType, name)
	if resourceType == metadata.ResourceTypeShader {
		params = name
	}

	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}
	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource, resourceType metadata.ResourceType) error {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Unload(asset)
}

// Assets returns the indexed files of the given type.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, a := range am.assets {
		if a.Type == resourceType {
			out = append(out, a)
		}
	}
	return out
}

// Poll drains the files changed since the last call and fires one
// EVENT_CODE_SHADER_CHANGED per affected program. It must run on the thread
// that owns bus listeners. Returns the number of events fired.
func (am *AssetManager) Poll(bus *core.EventBus) int {
	seen := make(map[string]string)
	for {
		select {
		case path := <-am.changes:
			if determineAssetType(path) != metadata.ResourceTypeShader {
				continue
			}
			for _, program := range shaders.ProgramsUsing(filepath.Base(path)) {
				seen[program] = path
			}
			continue
		default:
		}
		break
	}
	fired := 0
	for _, program := range metadata.ShaderNames {
		path, ok := seen[program]
		if !ok {
			continue
		}
		core.LogInfo("shader source %s changed, reloading %s", filepath.Base(path), program)
		bus.Fire(core.EVENT_CODE_SHADER_CHANGED, am, core.EventContext{Data: &core.AssetEvent{Name: program, Path: path}})
		fired++
	}
	return fired
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()
	if !am.running {
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
				am.notify(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// notify queues a change without blocking the watcher; a full queue drops it.
func (am *AssetManager) notify(path string) {
	select {
	case am.changes <- path:
	default:
		core.LogWarn("asset change queue full, dropping %s", path)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glsl":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".obj":
		return metadata.ResourceTypeMesh
	case ".txt", ".toml":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}
