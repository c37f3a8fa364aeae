package visibility

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Detector decides whether a presentation is actively being shown.
// Implementations depend on third-party markup and are best-effort.
type Detector interface {
	Presenting(snapshot Snapshot) bool
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(snapshot Snapshot) bool

// Presenting calls fn.
func (fn DetectorFunc) Presenting(snapshot Snapshot) bool {
	return fn(snapshot)
}

// FullscreenDetector reports presenting while an element is fullscreen.
var FullscreenDetector = DetectorFunc(func(snapshot Snapshot) bool {
	return snapshot.Fullscreen
})

// URLPatternDetector matches the page address.
type URLPatternDetector struct {
	Pattern *regexp.Regexp
}

// DefaultPresentPattern matches slide deck presenter and viewer paths.
var DefaultPresentPattern = regexp.MustCompile(`/present(/|\?|#|$)`)

// Presenting matches snapshot.URL.
func (detector URLPatternDetector) Presenting(snapshot Snapshot) bool {
	if detector.Pattern == nil {
		return false
	}
	return detector.Pattern.MatchString(snapshot.URL)
}

// Marker selects elements by id or by class.
type Marker struct {
	ID    string
	Class string
}

// MarkerDetector looks for elements present only while presenting.
// Any edit marker found vetoes the result.
type MarkerDetector struct {
	Present []Marker
	Edit    []Marker
}

// DefaultMarkerDetector returns markers observed on slide deck pages.
func DefaultMarkerDetector() MarkerDetector {
	return MarkerDetector{
		Present: []Marker{
			{Class: "punch-present-iframe"},
			{Class: "punch-full-screen-element"},
			{Class: "punch-viewer-container"},
		},
		Edit: []Marker{
			{Class: "punch-filmstrip"},
			{ID: "docs-editor"},
		},
	}
}

// Presenting walks snapshot.Document.
func (detector MarkerDetector) Presenting(snapshot Snapshot) bool {
	if snapshot.Document == nil {
		return false
	}
	present := false
	edit := false
	walk(snapshot.Document, func(node *html.Node) bool {
		if matchesAny(node, detector.Edit) {
			edit = true
			return false
		}
		if matchesAny(node, detector.Present) {
			present = true
		}
		return true
	})
	return present && !edit
}

// AnyOf reports presenting when any detector does.
func AnyOf(detectors ...Detector) Detector {
	return DetectorFunc(func(snapshot Snapshot) bool {
		for _, detector := range detectors {
			if detector != nil && detector.Presenting(snapshot) {
				return true
			}
		}
		return false
	})
}

// DefaultDetector combines fullscreen, URL and DOM marker heuristics.
func DefaultDetector() Detector {
	return AnyOf(
		FullscreenDetector,
		URLPatternDetector{Pattern: DefaultPresentPattern},
		DefaultMarkerDetector(),
	)
}

func walk(node *html.Node, visit func(*html.Node) bool) bool {
	if node.Type == html.ElementNode && !visit(node) {
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

func matchesAny(node *html.Node, markers []Marker) bool {
	for _, marker := range markers {
		if matches(node, marker) {
			return true
		}
	}
	return false
}

func matches(node *html.Node, marker Marker) bool {
	for _, attr := range node.Attr {
		switch attr.Key {
		case "id":
			if marker.ID != "" && attr.Val == marker.ID {
				return true
			}
		case "class":
			if marker.Class == "" {
				continue
			}
			for _, class := range strings.Fields(attr.Val) {
				if class == marker.Class {
					return true
				}
			}
		}
	}
	return false
}
