package registry

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"sort"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/vfs"
)

type AssetData struct {
	ID          uuid.UUID `json:"id"`
	ObjectPath  string    `json:"object_path"`
	PackagePath string    `json:"package_path"`
	Name        string    `json:"name"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
}

// File of the asset relative to the content root, slash separated
func (a *AssetData) ContentFile() string {
	if rel, ok := RelativeDir(a.PackagePath); ok && rel != "" {
		return rel + "/" + a.FileName
	}
	return a.FileName
}

// Redirects references of from to to, returns number of changed references
type Redirector func(from, to *AssetData) int

type Registry struct {
	root vfs.Directory

	assets map[string]*AssetData
	byID   map[uuid.UUID]*AssetData
	loaded map[string]*texture.Texture
	dirty  map[string]bool

	redirectors      map[int]Redirector
	createdListeners map[int]func(*AssetData)
	hookSeq          int

	scanned bool
	stale   int32
	watcher *fsnotify.Watcher
}

func New(root vfs.Directory) *Registry {
	return &Registry{
		root:   root,
		assets: make(map[string]*AssetData),
		byID:   make(map[uuid.UUID]*AssetData),
		loaded: make(map[string]*texture.Texture),
		dirty:  make(map[string]bool),

		redirectors:      make(map[int]Redirector),
		createdListeners: make(map[int]func(*AssetData)),
	}
}

func (r *Registry) Root() vfs.Directory { return r.root }

// Rebuilds asset list from the content directory.
// Known object paths keep their ids.
func (r *Registry) Scan() error {
	atomic.StoreInt32(&r.stale, 0)

	found := make(map[string]*AssetData)
	err := vfs.Walk(r.root, true, func(dirPath string, f vfs.File) error {
		if !texture.IsSupported(f.Name()) {
			return nil
		}
		pkg := PackagePath(dirPath)
		name := AssetName(f.Name())
		objectPath := ObjectPath(pkg, name)
		if prev, exists := found[objectPath]; exists {
			log.Printf("[registry] Both %q and %q map to %q, using the latter", prev.FileName, f.Name(), objectPath)
		}
		a := &AssetData{
			ObjectPath:  objectPath,
			PackagePath: pkg,
			Name:        name,
			FileName:    f.Name(),
			Size:        f.Size(),
		}
		if old, exists := r.assets[objectPath]; exists {
			a.ID = old.ID
		} else {
			a.ID = uuid.New()
		}
		found[objectPath] = a
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "[registry] Scan failed")
	}

	// loaded textures survive only while their file looks unchanged
	for objectPath := range r.loaded {
		old, wasKnown := r.assets[objectPath]
		cur, exists := found[objectPath]
		if !exists || !wasKnown || old.FileName != cur.FileName || old.Size != cur.Size {
			delete(r.loaded, objectPath)
		}
	}

	r.assets = found
	r.byID = make(map[uuid.UUID]*AssetData, len(found))
	for _, a := range found {
		r.byID[a.ID] = a
	}
	r.scanned = true
	r.watchDirectories()
	log.Printf("[registry] Scanned %d textures", len(found))
	return nil
}

func (r *Registry) ensureScanned() error {
	if !r.scanned || atomic.LoadInt32(&r.stale) != 0 {
		return r.Scan()
	}
	return nil
}

// Assets inside packagePath, including subpackages when recursive is set
func (r *Registry) ListAssets(packagePath string, recursive bool) ([]*AssetData, error) {
	if err := r.ensureScanned(); err != nil {
		return nil, err
	}
	result := make([]*AssetData, 0)
	for _, a := range r.assets {
		if IsUnderPath(a.PackagePath, packagePath, recursive) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ObjectPath < result[j].ObjectPath })
	return result, nil
}

func (r *Registry) Resolve(objectPath string) (*AssetData, error) {
	if err := r.ensureScanned(); err != nil {
		return nil, err
	}
	if a, ok := r.assets[objectPath]; ok {
		return a, nil
	}
	return nil, errors.Errorf("Asset %q not found", objectPath)
}

func (r *Registry) ResolveID(id uuid.UUID) (*AssetData, error) {
	if err := r.ensureScanned(); err != nil {
		return nil, err
	}
	if a, ok := r.byID[id]; ok {
		return a, nil
	}
	return nil, errors.Errorf("Asset %v not found", id)
}

func (r *Registry) directory(packagePath string) (vfs.Directory, error) {
	rel, ok := RelativeDir(packagePath)
	if !ok {
		return nil, errors.Errorf("Package path %q is outside of %s", packagePath, GameRoot)
	}
	e, err := vfs.Lookup(r.root, rel)
	if err != nil {
		return nil, err
	}
	d, ok := e.(vfs.Directory)
	if !ok {
		return nil, errors.Errorf("Package path %q is not a directory", packagePath)
	}
	return d, nil
}

// Loads texture with its import settings. Loaded textures are cached
// until the asset is deleted.
func (r *Registry) Load(objectPath string) (*texture.Texture, error) {
	a, err := r.Resolve(objectPath)
	if err != nil {
		return nil, err
	}
	if t, ok := r.loaded[objectPath]; ok {
		return t, nil
	}

	d, err := r.directory(a.PackagePath)
	if err != nil {
		return nil, err
	}
	data, err := vfs.ReadFile(d, a.FileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", objectPath)
	}
	img, err := texture.Decode(a.FileName, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	t := texture.New(a.Name, img)
	if meta, err := vfs.ReadFile(d, a.FileName+MetaSuffix); err == nil {
		if err := yaml.Unmarshal(meta, &t.Settings); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse import settings of %q", objectPath)
		}
	}
	t.AddChangeListener(func(t *texture.Texture, property string) {
		if err := r.saveImportSettings(a, t); err != nil {
			log.Printf("[registry] Failed to save import settings of %q: %v", a.ObjectPath, err)
		}
		r.MarkDirty(a.ObjectPath)
	})

	r.loaded[objectPath] = t
	return t, nil
}

func (r *Registry) saveImportSettings(a *AssetData, t *texture.Texture) error {
	d, err := r.directory(a.PackagePath)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(&t.Settings)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal import settings")
	}
	return vfs.WriteFile(d, a.FileName+MetaSuffix, bytes.NewReader(data))
}

// Name not used by any asset in packagePath, base itself when free
func (r *Registry) UniqueAssetName(packagePath, base string) string {
	base = SanitizeAssetName(base)
	name := base
	for i := 1; ; i++ {
		if _, exists := r.assets[ObjectPath(packagePath, name)]; !exists {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// Persists img as new texture asset, creating packages as needed.
// The name is made unique inside the package.
func (r *Registry) CreateTexture(packagePath, name string, img image.Image, settings texture.ImportSettings) (*AssetData, error) {
	if err := r.ensureScanned(); err != nil {
		return nil, err
	}
	rel, ok := RelativeDir(packagePath)
	if !ok {
		return nil, errors.Errorf("Package path %q is outside of %s", packagePath, GameRoot)
	}
	packagePath = PackagePath(rel)
	d, err := vfs.MakeDirectories(r.root, rel)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create package %q", packagePath)
	}

	name = r.UniqueAssetName(packagePath, name)
	var buf bytes.Buffer
	if err := texture.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	fileName := name + ".png"
	size := int64(buf.Len())
	if err := vfs.WriteFile(d, fileName, &buf); err != nil {
		return nil, errors.Wrapf(err, "Failed to write %q", fileName)
	}

	a := &AssetData{
		ID:          uuid.New(),
		ObjectPath:  ObjectPath(packagePath, name),
		PackagePath: packagePath,
		Name:        name,
		FileName:    fileName,
		Size:        size,
	}
	r.assets[a.ObjectPath] = a
	r.byID[a.ID] = a

	t := texture.New(name, img)
	t.Settings = settings
	if err := r.saveImportSettings(a, t); err != nil {
		return nil, err
	}
	r.MarkDirty(a.ObjectPath)

	log.Printf("[registry] Created %q", a.ObjectPath)
	for _, l := range r.createdListeners {
		l(a)
	}
	return a, nil
}

func (r *Registry) DeleteAsset(objectPath string) error {
	a, err := r.Resolve(objectPath)
	if err != nil {
		return err
	}
	d, err := r.directory(a.PackagePath)
	if err != nil {
		return err
	}
	if err := d.Remove(a.FileName); err != nil {
		return errors.Wrapf(err, "Failed to delete %q", objectPath)
	}
	if _, err := d.GetElement(a.FileName + MetaSuffix); err == nil {
		if err := d.Remove(a.FileName + MetaSuffix); err != nil {
			log.Printf("[registry] Failed to delete import settings of %q: %v", objectPath, err)
		}
	}
	delete(r.assets, objectPath)
	delete(r.byID, a.ID)
	delete(r.loaded, objectPath)
	delete(r.dirty, objectPath)
	log.Printf("[registry] Deleted %q", objectPath)
	return nil
}

// Returned func unregisters rd
func (r *Registry) AddRedirector(rd Redirector) func() {
	r.hookSeq++
	id := r.hookSeq
	r.redirectors[id] = rd
	return func() { delete(r.redirectors, id) }
}

// Returned func unregisters l
func (r *Registry) OnAssetCreated(l func(*AssetData)) func() {
	r.hookSeq++
	id := r.hookSeq
	r.createdListeners[id] = l
	return func() { delete(r.createdListeners, id) }
}

// Points every known reference of from to to
func (r *Registry) ConsolidateReferences(from, to *AssetData) int {
	count := 0
	for _, rd := range r.redirectors {
		count += rd(from, to)
	}
	log.Printf("[registry] Redirected %d references from %q to %q", count, from.ObjectPath, to.ObjectPath)
	return count
}

func (r *Registry) MarkDirty(objectPath string) { r.dirty[objectPath] = true }

func (r *Registry) DirtyPackages() []string {
	result := make([]string, 0, len(r.dirty))
	for p := range r.dirty {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

func (r *Registry) ClearDirty() { r.dirty = make(map[string]bool) }
