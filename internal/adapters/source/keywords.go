package source

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	rawToken  = regexp.MustCompile(regexp.QuoteMeta(domain.KeywordRawDelimiter) + `([A-Za-z0-9_]+)` + regexp.QuoteMeta(domain.KeywordRawDelimiter))
	jsonToken = regexp.MustCompile(regexp.QuoteMeta(domain.KeywordJSONDelimiter) + `([A-Za-z0-9_]+)` + regexp.QuoteMeta(domain.KeywordJSONDelimiter))
)

// Keywords substitutes ##KEY## tokens with the plain value of KEY and
// @@KEY@@ tokens with its JSON encoding. Tokens without a mapping are left
// untouched. Keys match without regard to case, since viper lowercases
// configuration keys.
type Keywords struct {
	mappings map[string]any
	folded   map[string]any
}

func NewKeywords(mappings map[string]any) *Keywords {
	if mappings == nil {
		mappings = map[string]any{}
	}
	folded := make(map[string]any, len(mappings))
	for k, v := range mappings {
		folded[strings.ToUpper(k)] = v
	}
	return &Keywords{mappings: mappings, folded: folded}
}

func (k *Keywords) lookup(key string) (any, bool) {
	if v, ok := k.mappings[key]; ok {
		return v, true
	}
	v, ok := k.folded[strings.ToUpper(key)]
	return v, ok
}

func (k *Keywords) Apply(data []byte) ([]byte, error) {
	if len(k.mappings) == 0 {
		return data, nil
	}

	var firstErr error
	out := jsonToken.ReplaceAllFunc(data, func(tok []byte) []byte {
		key := string(jsonToken.FindSubmatch(tok)[1])
		v, ok := k.lookup(key)
		if !ok {
			return tok
		}
		enc, err := json.Marshal(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("keyword %s: %w", key, err)
			}
			return tok
		}
		return enc
	})
	out = rawToken.ReplaceAllFunc(out, func(tok []byte) []byte {
		key := string(rawToken.FindSubmatch(tok)[1])
		v, ok := k.lookup(key)
		if !ok {
			return tok
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			enc, jerr := json.Marshal(v)
			if jerr != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("keyword %s: %w", key, jerr)
				}
				return tok
			}
			return enc
		}
		return []byte(s)
	})
	return out, firstErr
}

// Names lists the mapped keywords in sorted order.
func (k *Keywords) Names() []string {
	names := make([]string, 0, len(k.mappings))
	for name := range k.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mappings returns the keyword values.
func (k *Keywords) Mappings() map[string]any {
	return k.mappings
}
