package codec

import (
	"fmt"
	"slices"
	"strings"

	"github.com/meigma/squish/core"
)

var codecs = map[string]core.Compression{
	"gzip": Gzip(),
	"gz":   Gzip(),
	"zstd": Zstd(),
	"zst":  Zstd(),
}

// ByName returns the codec registered under name or file extension.
func ByName(name string) (core.Compression, error) {
	c, ok := codecs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCompression, name)
	}
	return c, nil
}

// Names returns the canonical codec names, sorted.
func Names() []string {
	var names []string
	for _, c := range codecs {
		if !slices.Contains(names, c.Name()) {
			names = append(names, c.Name())
		}
	}
	slices.Sort(names)
	return names
}
