package merge

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

var ErrNoCommonAffix = errors.New("Names share neither prefix nor suffix, keywords cannot be inferred")

type Inference struct {
	Prefix   string   `json:"prefix"`
	Suffix   string   `json:"suffix"`
	Keywords []string `json:"keywords"`
	// false when there were too few names to compare
	Applied bool `json:"applied"`
}

// Infers per name keywords as the part between the longest common prefix
// and the longest common suffix of all names.
func InferKeywords(names []string) (Inference, error) {
	if len(names) < 2 {
		return Inference{}, nil
	}

	prefix := commonPrefix(names)
	suffix := commonSuffix(names, len(prefix))
	if prefix == "" && suffix == "" {
		return Inference{}, ErrNoCommonAffix
	}

	keywords := make([]string, len(names))
	for i, name := range names {
		keywords[i] = name[len(prefix) : len(name)-len(suffix)]
	}
	return Inference{
		Prefix:   prefix,
		Suffix:   suffix,
		Keywords: keywords,
		Applied:  true,
	}, nil
}

func commonPrefix(names []string) string {
	prefix := names[0]
	for _, name := range names[1:] {
		n := 0
		for n < len(prefix) && n < len(name) && prefix[n] == name[n] {
			n++
		}
		for n > 0 && n < len(prefix) && !utf8.RuneStart(prefix[n]) {
			n--
		}
		prefix = prefix[:n]
	}
	return prefix
}

// Suffix never reaches into the first skip bytes of any name
func commonSuffix(names []string, skip int) string {
	suffix := names[0][skip:]
	for _, name := range names[1:] {
		rest := name[skip:]
		n := 0
		for n < len(suffix) && n < len(rest) && suffix[len(suffix)-1-n] == rest[len(rest)-1-n] {
			n++
		}
		for n > 0 && n < len(suffix) && !utf8.RuneStart(suffix[len(suffix)-n]) {
			n--
		}
		suffix = suffix[len(suffix)-n:]
	}
	return suffix
}
