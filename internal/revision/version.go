package revision

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every Parse failure.
var ErrMalformed = errors.New("malformed revision")

const hashPrefix = "g"

// Version identifies a prebuilt archive revision, as produced by `git describe`:
// <tag>-<commits>-g<hash>.
type Version struct {
	Tag     string `json:"tag"`
	Commits int    `json:"commits"`
	Hash    string `json:"hash"`
}

// Parse splits a revision string into its tag, commit count and hash.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w %q: expected <tag>-<commits>-g<hash>", ErrMalformed, s)
	}

	commits, err := strconv.Atoi(parts[1])
	if err != nil || commits < 0 {
		return Version{}, fmt.Errorf("%w %q: commit count %q is not a non-negative integer", ErrMalformed, s, parts[1])
	}

	if !strings.HasPrefix(parts[2], hashPrefix) || len(parts[2]) == len(hashPrefix) {
		return Version{}, fmt.Errorf("%w %q: hash %q must start with %q", ErrMalformed, s, parts[2], hashPrefix)
	}

	return Version{
		Tag:     parts[0],
		Commits: commits,
		Hash:    strings.TrimPrefix(parts[2], hashPrefix),
	}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%s-%d-%s%s", v.Tag, v.Commits, hashPrefix, v.Hash)
}

func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare orders by tag, then commit count, then hash.
func Compare(a, b Version) int {
	if c := strings.Compare(a.Tag, b.Tag); c != 0 {
		return c
	}
	switch {
	case a.Commits < b.Commits:
		return -1
	case a.Commits > b.Commits:
		return 1
	}
	return strings.Compare(a.Hash, b.Hash)
}

// Sort orders vs ascending, so the newest revision is last.
func Sort(vs []Version) {
	sort.SliceStable(vs, func(i, j int) bool {
		return Compare(vs[i], vs[j]) < 0
	})
}

// Latest returns the greatest revision of vs.
func Latest(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	latest := vs[0]
	for _, v := range vs[1:] {
		if Compare(v, latest) > 0 {
			latest = v
		}
	}
	return latest, true
}

func Contains(vs []Version, target Version) bool {
	for _, v := range vs {
		if v == target {
			return true
		}
	}
	return false
}

// Newest returns a copy of vs sorted newest first.
func Newest(vs []Version) []Version {
	out := append([]Version(nil), vs...)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j]) > 0
	})
	return out
}
