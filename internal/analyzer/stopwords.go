package analyzer

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Profile selects which stopword set is excluded from counting.
type Profile string

const (
	ProfileDefault Profile = "default"
	ProfileEN      Profile = "en"
)

// ParseProfile maps a language tag to a Profile. Only "en" is recognized;
// everything else falls back to the default profile.
func ParseProfile(tag string) Profile {
	if strings.EqualFold(strings.TrimSpace(tag), string(ProfileEN)) {
		return ProfileEN
	}
	return ProfileDefault
}

//go:embed stopwords.yaml
var stopwordsYAML []byte

// stopwordsFile is the embedded YAML layout:
// profiles:
//   default: [...]
//   en: [...]
type stopwordsFile struct {
	Profiles map[string][]string `yaml:"profiles"`
}

var (
	loadOnce  sync.Once
	stopwords map[Profile]map[string]struct{}
)

func parseStopwords(data []byte) (map[Profile]map[string]struct{}, error) {
	var f stopwordsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stopwords: %w", err)
	}

	sets := make(map[Profile]map[string]struct{}, len(f.Profiles))
	for name, words := range f.Profiles {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				set[w] = struct{}{}
			}
		}
		sets[Profile(name)] = set
	}
	if _, ok := sets[ProfileDefault]; !ok {
		return nil, fmt.Errorf("parse stopwords: missing %q profile", ProfileDefault)
	}
	return sets, nil
}

func stopwordSet(p Profile) map[string]struct{} {
	loadOnce.Do(func() {
		sets, err := parseStopwords(stopwordsYAML)
		if err != nil {
			// The document is compiled into the binary; a parse failure is a build defect.
			panic(err)
		}
		stopwords = sets
	})

	if set, ok := stopwords[p]; ok {
		return set
	}
	return stopwords[ProfileDefault]
}

// IsStopword reports whether word (already lower-cased) is excluded under profile p.
func IsStopword(p Profile, word string) bool {
	_, ok := stopwordSet(p)[word]
	return ok
}

// Stopwords returns the words of profile p in no particular order.
func Stopwords(p Profile) []string {
	set := stopwordSet(p)
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	return out
}
