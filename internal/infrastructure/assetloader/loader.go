package assetloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"odyssey_gateway/internal/app/port"
	"odyssey_gateway/internal/domain/entity"
	"odyssey_gateway/internal/pkg/utils"
)

// ErrAssetNotFound is returned when no image exists for the requested index.
var ErrAssetNotFound = errors.New("asset not found")

const (
	imagesDirName   = "images"
	metadataDirName = "metadata"
)

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {}, ".mp4": {}, ".glb": {},
}

// AssetFileLoader reads collection assets from disk.
//
// Layout:
//
//	<asset_dir>/images/<index>.<ext>    artwork (falls back to <asset_dir>/<index>.<ext>)
//	<asset_dir>/metadata/<index>.json   optional metadata template
type AssetFileLoader struct {
	logger port.Logger
}

// NewAssetFileLoader creates a new AssetFileLoader.
func NewAssetFileLoader(logger port.Logger) *AssetFileLoader {
	return &AssetFileLoader{logger: logger}
}

// Image locates the artwork for index and detects its content type.
func (l *AssetFileLoader) Image(assetDir, index string) (entity.Asset, error) {
	for _, dir := range []string{filepath.Join(assetDir, imagesDirName), assetDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !isImage(e.Name()) || stem(e.Name()) != index {
				continue
			}
			path := filepath.Join(dir, e.Name())
			mtype, err := mimetype.DetectFile(path)
			if err != nil {
				return entity.Asset{}, fmt.Errorf("failed to detect content type of %s: %w", path, err)
			}
			l.logger.Debug("Asset image found", "index", index, "path", path, "content_type", mtype.String())
			return entity.Asset{Index: index, Path: path, ContentType: mtype.String()}, nil
		}
	}
	return entity.Asset{}, fmt.Errorf("%w: no image for index %s in %s", ErrAssetNotFound, index, assetDir)
}

// ImageIndexes lists the indexes of every image in the asset directory, sorted.
func (l *AssetFileLoader) ImageIndexes(assetDir string) ([]string, error) {
	dir := filepath.Join(assetDir, imagesDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Debug("Images directory not readable, using asset root", "path", dir, "error", err)
		dir = assetDir
		if entries, err = os.ReadDir(dir); err != nil {
			return nil, fmt.Errorf("failed to read asset directory %s: %w", assetDir, err)
		}
	}

	indexes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		indexes = append(indexes, stem(e.Name()))
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrAssetNotFound, dir)
	}
	sort.Strings(indexes)
	return indexes, nil
}

// Metadata loads the metadata template for index. ok is false when no template exists.
func (l *AssetFileLoader) Metadata(assetDir, index string) (doc map[string]any, ok bool, err error) {
	path := filepath.Join(assetDir, metadataDirName, index+".json")
	if !utils.FileExists(path) {
		return nil, false, nil
	}
	doc = make(map[string]any)
	if err := utils.LoadJSONFile(path, &doc); err != nil {
		l.logger.Warn("Failed to load metadata template", "path", path, "error", err)
		return nil, false, err
	}
	return doc, true, nil
}

func isImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
