package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// TagLatest is the dist-tag used when no version is given.
const TagLatest = "latest"

// Select picks the release matching spec. Lookup order: dist-tag, exact
// version (a leading "v" is tolerated), then the highest version satisfying
// spec as a semver constraint. "latest" falls back to the highest stable
// version when the registry publishes no dist-tag for it.
func (m *Metadata) Select(spec string) (*Release, error) {
	if spec == "" {
		spec = TagLatest
	}

	if tagged, ok := m.DistTags[spec]; ok {
		if rel, ok := m.Versions[tagged]; ok {
			return &rel, nil
		}
		return nil, fmt.Errorf("dist-tag %q points to unpublished version %s", spec, tagged)
	}

	if rel, ok := m.Versions[strings.TrimPrefix(spec, "v")]; ok {
		return &rel, nil
	}

	if spec == TagLatest {
		if v := highest(m.versionList(), nil, false); v != nil {
			rel := m.Versions[v.Original()]
			return &rel, nil
		}
		return nil, fmt.Errorf("package %q has no published versions", m.Name)
	}

	c, err := semver.NewConstraint(spec)
	if err != nil {
		return nil, fmt.Errorf("no published version of %q matches %q", m.Name, spec)
	}
	v := highest(m.versionList(), c, true)
	if v == nil {
		return nil, fmt.Errorf("no published version of %q satisfies %q", m.Name, spec)
	}
	rel := m.Versions[v.Original()]
	return &rel, nil
}

// Available returns every published version, newest first.
func (m *Metadata) Available() []string {
	parsed := m.versionList()
	sort.Sort(sort.Reverse(semver.Collection(parsed)))
	out := make([]string, 0, len(parsed))
	for _, v := range parsed {
		out = append(out, v.Original())
	}
	return out
}

// versionList parses the published version keys, skipping invalid ones.
func (m *Metadata) versionList() []*semver.Version {
	list := make([]*semver.Version, 0, len(m.Versions))
	for key := range m.Versions {
		v, err := semver.StrictNewVersion(key)
		if err != nil {
			continue
		}
		list = append(list, v)
	}
	return list
}

// highest returns the greatest version accepted by c (nil accepts all).
// Prereleases are only considered when allowPre is set or no stable
// version qualifies.
func highest(list []*semver.Version, c *semver.Constraints, allowPre bool) *semver.Version {
	var best, bestPre *semver.Version
	for _, v := range list {
		if c != nil && !c.Check(v) {
			continue
		}
		if v.Prerelease() != "" {
			if bestPre == nil || v.GreaterThan(bestPre) {
				bestPre = v
			}
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best != nil && (!allowPre || bestPre == nil || best.GreaterThan(bestPre)) {
		return best
	}
	if bestPre != nil {
		return bestPre
	}
	return best
}
