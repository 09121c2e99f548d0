// Package assets embeds the photomark application icons.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed icons/*.png icons/*.svg
var embeddedIcons embed.FS

type iconSet struct {
	images map[int]image.Image
	data   map[int][]byte
	svg    []byte
}

var (
	loadOnce sync.Once
	loadErr  error
	icons    iconSet
)

// iconSize extracts N from names like "photomark-N.png".
func iconSize(name string) (int, bool) {
	base := strings.TrimSuffix(name, ".png")
	idx := strings.LastIndex(base, "-")
	if idx == -1 || idx == len(base)-1 {
		return 0, false
	}
	size, err := strconv.Atoi(base[idx+1:])
	return size, err == nil
}

func load() {
	set := iconSet{images: map[int]image.Image{}, data: map[int][]byte{}}
	entries, err := fs.ReadDir(embeddedIcons, "icons")
	if err != nil {
		loadErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		data, err := embeddedIcons.ReadFile(path.Join("icons", name))
		if err != nil {
			loadErr = err
			return
		}
		if strings.HasSuffix(name, ".svg") {
			set.svg = data
			continue
		}
		size, ok := iconSize(name)
		if !ok {
			continue
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			loadErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		set.images[size] = img
		set.data[size] = data
	}
	icons = set
}

func ensure() error {
	loadOnce.Do(load)
	return loadErr
}

// IconImage returns the decoded icon of the requested size.
func IconImage(size int) (image.Image, error) {
	if err := ensure(); err != nil {
		return nil, err
	}
	img, ok := icons.images[size]
	if !ok {
		return nil, fmt.Errorf("icon %dpx not embedded", size)
	}
	return img, nil
}

// IconPNG returns a copy of the PNG bytes of the requested icon size.
func IconPNG(size int) ([]byte, error) {
	if err := ensure(); err != nil {
		return nil, err
	}
	data, ok := icons.data[size]
	if !ok {
		return nil, fmt.Errorf("icon %dpx not embedded", size)
	}
	return append([]byte(nil), data...), nil
}

// IconSizes lists the embedded icon sizes in ascending order.
func IconSizes() []int {
	if err := ensure(); err != nil {
		return nil
	}
	sizes := make([]int, 0, len(icons.images))
	for size := range icons.images {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

// IconSVG returns the scalable icon.
func IconSVG() ([]byte, error) {
	if err := ensure(); err != nil {
		return nil, err
	}
	if len(icons.svg) == 0 {
		return nil, fmt.Errorf("svg icon not embedded")
	}
	return append([]byte(nil), icons.svg...), nil
}
