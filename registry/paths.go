package registry

import (
	"path"
	"strings"
	"unicode"
)

// Object path prefix of the content directory
const GameRoot = "/Game"

const MetaSuffix = ".meta.yaml"

// Package path for a slash separated directory relative to the content root
func PackagePath(dirPath string) string {
	dirPath = strings.Trim(path.Clean("/"+dirPath), "/")
	if dirPath == "" {
		return GameRoot
	}
	return GameRoot + "/" + dirPath
}

func ObjectPath(packagePath, name string) string {
	return strings.TrimSuffix(packagePath, "/") + "/" + name
}

// Asset name of a file, i.e. file name without extension
func AssetName(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// Object path of a file given relative to the content root
func ObjectPathFromFile(relFile string) string {
	relFile = strings.ReplaceAll(relFile, "\\", "/")
	dir, file := path.Split(relFile)
	return ObjectPath(PackagePath(dir), AssetName(file))
}

// Directory relative to the content root, "" for the root itself
func RelativeDir(packagePath string) (string, bool) {
	packagePath = path.Clean("/" + packagePath)
	if packagePath == GameRoot {
		return "", true
	}
	if !strings.HasPrefix(packagePath, GameRoot+"/") {
		return "", false
	}
	return strings.TrimPrefix(packagePath, GameRoot+"/"), true
}

func SplitObjectPath(objectPath string) (packagePath, name string) {
	objectPath = path.Clean("/" + objectPath)
	return path.Dir(objectPath), path.Base(objectPath)
}

func IsUnderPath(packagePath, root string, recursive bool) bool {
	root = path.Clean("/" + root)
	packagePath = path.Clean("/" + packagePath)
	if packagePath == root {
		return true
	}
	return recursive && strings.HasPrefix(packagePath, strings.TrimSuffix(root, "/")+"/")
}

// Replaces characters not allowed in asset names
func SanitizeAssetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Object path relative to the root package, false when outside of it
func RelativeObjectPath(objectPath, root string) (string, bool) {
	prefix := strings.TrimSuffix(path.Clean("/"+root), "/") + "/"
	objectPath = path.Clean("/" + objectPath)
	if !strings.HasPrefix(objectPath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(objectPath, prefix), true
}
