// Package images resolves product names to locally hosted product images.
// Resolution is best-effort enrichment: every failure path returns an empty
// URL, never an error, so image lookup can never block a reply.
package images

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"construbot_backend/internal/matching"
)

// mapEntry is one record of map.json: substring patterns pointing at an image.
type mapEntry struct {
	Match patternList `json:"match"`
	Image string      `json:"image"`
}

// patternList accepts both a single string and an array of strings.
type patternList []string

func (p *patternList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = patternList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*p = patternList(many)
	return nil
}

type indexedFile struct {
	file string
	norm string
}

var imageExtPattern = regexp.MustCompile(`(?i)\.(webp|jpg|jpeg|png|svg)$`)
var stemOnlyPattern = regexp.MustCompile(`(?i)^/images/[^.]+$`)

// Resolver looks up product images via the curated map with a scored
// filename fallback against the local image directory.
type Resolver struct {
	entries []mapEntry
	index   []indexedFile
}

// New loads map.json and indexes the images directory under publicDir.
// Missing files are tolerated: the resolver simply resolves nothing.
func New(publicDir string) *Resolver {
	r := &Resolver{}

	if raw, err := os.ReadFile(filepath.Join(publicDir, "images", "map.json")); err == nil {
		_ = json.Unmarshal(raw, &r.entries)
	}

	if files, err := os.ReadDir(filepath.Join(publicDir, "images")); err == nil {
		for _, f := range files {
			name := f.Name()
			if !imageExtPattern.MatchString(name) {
				continue
			}
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			r.index = append(r.index, indexedFile{file: name, norm: matching.Normalize(stem)})
		}
	}

	return r
}

// URLFor returns the image URL for a product name, or "" when none resolves.
func (r *Resolver) URLFor(productName string) string {
	if productName == "" {
		return ""
	}
	n := matching.Normalize(productName)

	for _, entry := range r.entries {
		for _, pat := range entry.Match {
			np := matching.Normalize(pat)
			if np == "" || !strings.Contains(n, np) {
				continue
			}
			if entry.Image == "" {
				return ""
			}
			// Extension-less stems resolve against the local index.
			if stemOnlyPattern.MatchString(entry.Image) {
				stemNorm := matching.Normalize(strings.TrimPrefix(entry.Image, "/images/"))
				for _, it := range r.index {
					if it.norm == stemNorm || strings.Contains(it.norm, stemNorm) || strings.Contains(stemNorm, it.norm) {
						return escapePath("/images/" + it.file)
					}
				}
			}
			return escapePath(entry.Image)
		}
	}

	// Fallback: guess by local filename using a simple token score.
	tokens := matching.QueryTokens(n)
	var best *indexedFile
	bestScore := 0
	for i := range r.index {
		it := &r.index[i]
		s := 0
		for _, t := range tokens {
			if strings.Contains(it.norm, t) {
				s++
			}
		}
		if strings.Contains(n, "teja") && strings.Contains(it.norm, "teja") {
			s += 2 // category boost
		}
		if s > bestScore {
			best = it
			bestScore = s
		}
	}
	if best != nil && bestScore >= 2 {
		return escapePath("/images/" + best.file)
	}
	return ""
}

func escapePath(p string) string {
	u := url.URL{Path: p}
	return u.EscapedPath()
}
