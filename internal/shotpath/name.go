package shotpath

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"renderrob/internal/job"
)

// VersionPlaceholder marks where the resolved version is substituted.
const VersionPlaceholder = "v$$"

// FramePlaceholder marks where per-frame numbers are substituted.
const FramePlaceholder = "####"

var lower = cases.Lower(language.Und)

// Name assembles the shot name for a job with the version left as
// VersionPlaceholder. Default camera, scene and view layer names are omitted.
func Name(r job.Record) string {
	base := filepath.Base(strings.TrimSpace(r.SourceFile))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}

	tokens := []string{
		base,
		abbreviate(r.Camera, "camera", "Cam"),
		abbreviate(r.Scene, "scene", "Sc"),
		viewLayerToken(r.ViewLayers),
		qualityTag(r.HighQuality),
		VersionPlaceholder,
	}
	parts := tokens[:0]
	for _, tok := range tokens {
		if tok != "" {
			parts = append(parts, tok)
		}
	}
	return strings.ReplaceAll(strings.Join(parts, "-"), " ", "_")
}

// abbreviate lower-cases name and shortens the default word within it. The
// bare default name yields an empty token.
func abbreviate(name, defaultWord, short string) string {
	name = lower.String(strings.TrimSpace(name))
	if name == "" || name == defaultWord {
		return ""
	}
	return strings.ReplaceAll(name, defaultWord, short)
}

func viewLayerToken(layers []string) string {
	if len(layers) == 0 || (len(layers) == 1 && layers[0] == job.DefaultViewLayer) {
		return ""
	}
	names := make([]string, 0, len(layers))
	for _, layer := range layers {
		name := lower.String(strings.TrimSpace(layer))
		if name == "" {
			continue
		}
		names = append(names, strings.ReplaceAll(name, "view layer", "Vl"))
	}
	return strings.Join(names, "+")
}

func qualityTag(high bool) string {
	if high {
		return "hq"
	}
	return "pv"
}
