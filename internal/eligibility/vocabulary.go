package eligibility

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Vocabulary is the configuration data behind the fuzzy criteria: which majors
// are adjacent, which labels are synonyms and how regions nest. Keys and values
// are free text; they are normalized when an Evaluator is built.
type Vocabulary struct {
	// MajorClusters maps a broad field to the majors considered adjacent to it.
	// The field name itself is a member of its cluster.
	MajorClusters map[string][]string `mapstructure:"major-clusters" json:"majorClusters,omitempty"`
	// MajorAliases maps an alternative spelling to a canonical major.
	MajorAliases map[string]string `mapstructure:"major-aliases" json:"majorAliases,omitempty"`
	// DemographicAliases maps an alternative label to a canonical demographic.
	DemographicAliases map[string]string `mapstructure:"demographic-aliases" json:"demographicAliases,omitempty"`
	// Unspecified lists demographic answers treated as "not provided".
	Unspecified []string `mapstructure:"unspecified" json:"unspecified,omitempty"`
	// RegionAliases maps an alternative region name to a canonical one.
	RegionAliases map[string]string `mapstructure:"region-aliases" json:"regionAliases,omitempty"`
	// RegionParents lists, for a region, the larger regions containing it.
	RegionParents map[string][]string `mapstructure:"region-parents" json:"regionParents,omitempty"`
}

// Merge returns a copy of v extended with other. Cluster members and region
// parents are unioned, aliases from other win.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	merged := Vocabulary{
		MajorClusters:      unionLists(v.MajorClusters, other.MajorClusters),
		MajorAliases:       overrideMap(v.MajorAliases, other.MajorAliases),
		DemographicAliases: overrideMap(v.DemographicAliases, other.DemographicAliases),
		Unspecified:        append(slices.Clone(v.Unspecified), other.Unspecified...),
		RegionAliases:      overrideMap(v.RegionAliases, other.RegionAliases),
		RegionParents:      unionLists(v.RegionParents, other.RegionParents),
	}
	return merged
}

func unionLists(base, extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(extra))
	for k, list := range base {
		out[k] = slices.Clone(list)
	}
	for k, list := range extra {
		for _, item := range list {
			if !slices.Contains(out[k], item) {
				out[k] = append(out[k], item)
			}
		}
		if _, ok := out[k]; !ok {
			out[k] = []string{}
		}
	}
	return out
}

func overrideMap(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

// vocabularyIndex is the normalized, read-only form of a Vocabulary. It is
// shared by concurrent evaluations and never written after construction.
type vocabularyIndex struct {
	clusters      map[string]map[string]struct{}
	majorAliases  map[string]string
	demoAliases   map[string]string
	unspecified   map[string]struct{}
	regionAliases map[string]string
	regionParents map[string][]string
	regions       map[string]struct{}
}

func newVocabularyIndex(v Vocabulary) *vocabularyIndex {
	idx := &vocabularyIndex{
		clusters:      make(map[string]map[string]struct{}),
		majorAliases:  normalizeAliases(v.MajorAliases),
		demoAliases:   normalizeAliases(v.DemographicAliases),
		unspecified:   make(map[string]struct{}),
		regionAliases: normalizeAliases(v.RegionAliases),
		regionParents: make(map[string][]string),
		regions:       make(map[string]struct{}),
	}

	for field, members := range v.MajorClusters {
		key := normalize(field)
		if key == "" {
			continue
		}
		idx.addToCluster(idx.canonicalMajor(field), key)
		for _, member := range members {
			idx.addToCluster(idx.canonicalMajor(member), key)
		}
	}

	for _, u := range v.Unspecified {
		idx.unspecified[normalize(u)] = struct{}{}
	}
	idx.unspecified[""] = struct{}{}

	for region, parents := range v.RegionParents {
		key := idx.canonicalRegion(region)
		if key == "" {
			continue
		}
		idx.regions[key] = struct{}{}
		for _, parent := range parents {
			if p := idx.canonicalRegion(parent); p != "" && !slices.Contains(idx.regionParents[key], p) {
				idx.regionParents[key] = append(idx.regionParents[key], p)
				idx.regions[p] = struct{}{}
			}
		}
	}

	return idx
}

func normalizeAliases(aliases map[string]string) map[string]string {
	out := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		if a := normalize(alias); a != "" {
			out[a] = normalize(canonical)
		}
	}
	return out
}

func (idx *vocabularyIndex) addToCluster(major, cluster string) {
	if major == "" {
		return
	}
	set, ok := idx.clusters[major]
	if !ok {
		set = make(map[string]struct{})
		idx.clusters[major] = set
	}
	set[cluster] = struct{}{}
}

func (idx *vocabularyIndex) canonicalMajor(s string) string {
	n := normalize(s)
	if canonical, ok := idx.majorAliases[n]; ok {
		return canonical
	}
	return n
}

func (idx *vocabularyIndex) canonicalDemographic(s string) string {
	n := normalize(s)
	if canonical, ok := idx.demoAliases[n]; ok {
		return canonical
	}
	return n
}

func (idx *vocabularyIndex) canonicalRegion(s string) string {
	n := normalize(s)
	if canonical, ok := idx.regionAliases[n]; ok {
		return canonical
	}
	return n
}

type majorRelation int

const (
	majorUnrelated majorRelation = iota
	majorAdjacent
	majorExact
)

// relateMajor compares the student's major against the accepted list. An exact
// hit anywhere in the list wins over an adjacency hit.
func (idx *vocabularyIndex) relateMajor(major string, accepted []string) majorRelation {
	m := idx.canonicalMajor(major)
	if m == "" {
		return majorUnrelated
	}

	relation := majorUnrelated
	for _, entry := range accepted {
		e := idx.canonicalMajor(entry)
		if e == "" {
			continue
		}
		if e == m {
			return majorExact
		}
		if idx.shareCluster(m, e) {
			relation = majorAdjacent
		}
	}
	return relation
}

func (idx *vocabularyIndex) shareCluster(a, b string) bool {
	ca, cb := idx.clusters[a], idx.clusters[b]
	for cluster := range ca {
		if _, ok := cb[cluster]; ok {
			return true
		}
	}
	return false
}

func (idx *vocabularyIndex) isUnspecified(s string) bool {
	_, ok := idx.unspecified[normalize(s)]
	return ok
}

func (idx *vocabularyIndex) matchDemographic(gender string, accepted []string) bool {
	g := idx.canonicalDemographic(gender)
	for _, entry := range accepted {
		if idx.canonicalDemographic(entry) == g {
			return true
		}
	}
	return false
}

// matchRegion reports whether the student's region satisfies an accepted
// entry. Free-text regions match by whole-word containment in either
// direction, so "Columbus, Ohio" matches "Ohio"; a region named in the parents
// table only matches itself, so "South Dakota" does not match "South".
// Regions containing the student's match only a whole entry or the leading
// segment of one: "Ohio" matches "Midwest, USA" but "California" does not.
// An entry enclosing another entry of the same list only qualifies it, so
// [Midwest, USA] accepts the Midwest alone.
func (idx *vocabularyIndex) matchRegion(region string, accepted []string) bool {
	own := idx.canonicalRegion(region)
	if own == "" {
		return false
	}

	enclosing := idx.expandRegion(region)
	for _, entry := range idx.narrowestRegions(accepted) {
		e := idx.canonicalRegion(entry)
		if e == "" {
			continue
		}
		if own == e {
			return true
		}
		if _, known := idx.regions[own]; !known && (containsPhrase(own, e) || containsPhrase(e, own)) {
			return true
		}
		if slices.Contains(enclosing, e) || slices.Contains(enclosing, idx.leadingRegion(entry)) {
			return true
		}
	}
	return false
}

func (idx *vocabularyIndex) narrowestRegions(accepted []string) []string {
	canonical := make([]string, len(accepted))
	for i, entry := range accepted {
		canonical[i] = idx.canonicalRegion(entry)
	}

	narrowest := make([]string, 0, len(accepted))
	for i, entry := range accepted {
		qualifier := false
		for j, other := range accepted {
			if canonical[j] != canonical[i] && slices.Contains(idx.expandRegion(other), canonical[i]) {
				qualifier = true
				break
			}
		}
		if !qualifier {
			narrowest = append(narrowest, entry)
		}
	}
	return narrowest
}

// leadingRegion is the most specific part of a qualified entry such as
// "Ohio, USA".
func (idx *vocabularyIndex) leadingRegion(entry string) string {
	first, _, _ := strings.Cut(entry, ",")
	return idx.canonicalRegion(first)
}

// expandRegion returns the comma-separated parts of region and every region
// containing one of them, following the parents table.
func (idx *vocabularyIndex) expandRegion(region string) []string {
	seen := map[string]struct{}{}
	var queue []string
	for _, part := range strings.Split(region, ",") {
		p := idx.canonicalRegion(part)
		if _, ok := seen[p]; p == "" || ok {
			continue
		}
		seen[p] = struct{}{}
		queue = append(queue, p)
	}

	for i := 0; i < len(queue); i++ {
		for _, parent := range idx.regionParents[queue[i]] {
			if _, ok := seen[parent]; ok {
				continue
			}
			seen[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	return queue
}

func containsPhrase(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// normalize folds case and reduces punctuation to single spaces, so that
// "Non-Binary", "non binary" and "NON_BINARY" compare equal.
func normalize(s string) string {
	folded := cases.Fold().String(strings.ReplaceAll(s, "&", " and "))
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
