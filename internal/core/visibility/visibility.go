package visibility

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Kind identifies the page context.
type Kind int

const (
	KindNeither Kind = iota
	KindPrimary
	KindSecondary
)

func (kind Kind) String() string {
	switch kind {
	case KindPrimary:
		return "primary"
	case KindSecondary:
		return "secondary"
	default:
		return "neither"
	}
}

// Snapshot is the observable page context at one instant.
type Snapshot struct {
	URL        string
	Fullscreen bool
	Document   *html.Node
}

// Classifier maps page addresses to a Kind.
type Classifier struct {
	PrimaryHost     string
	SecondaryHost   string
	SecondaryPrefix string
}

// DefaultClassifier recognises video calls and slide decks.
func DefaultClassifier() Classifier {
	return Classifier{
		PrimaryHost:     "meet.google.com",
		SecondaryHost:   "docs.google.com",
		SecondaryPrefix: "/presentation/",
	}
}

// Classify returns the Kind of rawURL. Unparseable addresses are KindNeither.
func (classifier Classifier) Classify(rawURL string) Kind {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return KindNeither
	}
	host := strings.ToLower(parsed.Hostname())
	switch {
	case classifier.PrimaryHost != "" && host == classifier.PrimaryHost:
		return KindPrimary
	case classifier.SecondaryHost != "" && host == classifier.SecondaryHost &&
		strings.HasPrefix(parsed.Path, classifier.SecondaryPrefix):
		return KindSecondary
	default:
		return KindNeither
	}
}

// Recognized reports whether rawURL is a primary or secondary context.
func (classifier Classifier) Recognized(rawURL string) bool {
	return classifier.Classify(rawURL) != KindNeither
}

// Visible decides whether the widget should be shown.
func Visible(kind Kind, presenting, showOnMeet, showOnPresentation bool) bool {
	switch kind {
	case KindPrimary:
		return showOnMeet
	case KindSecondary:
		return presenting && showOnPresentation
	default:
		return false
	}
}
