// Package attach parses raw attachment descriptor strings and resolves
// image attachments from disk for inlining into AI requests.
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindArchive  Kind = "archive"
	KindOther    Kind = "other"
)

type Attachment struct {
	Name string
	Kind Kind
}

// InlineImage is a resolved on-disk image ready to be base64-inlined.
type InlineImage struct {
	Name     string
	MIMEType string
	Data     []byte
}

// candidateDirs are conventional subdirectories tried under the project
// root when an attachment path does not resolve as-is.
var candidateDirs = []string{"attachments", "uploads", "files", "data"}

var imageMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

var imageHints = []string{"фото", "скрин", "screenshot", "photo", "сурет"}

// Parse splits a delimiter-separated descriptor into attachments.
// Delimiters are comma, semicolon, pipe and newline.
func Parse(descriptor string) []Attachment {
	fields := strings.FieldsFunc(descriptor, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n'
	})
	out := make([]Attachment, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			continue
		}
		out = append(out, Attachment{Name: name, Kind: KindOf(name)})
	}
	return out
}

// KindOf classifies an attachment by extension, falling back to a
// filename keyword check.
func KindOf(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := imageMIME[ext]; ok {
		return KindImage
	}
	switch ext {
	case ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt", ".csv":
		return KindDocument
	case ".zip", ".rar", ".7z", ".tar", ".gz":
		return KindArchive
	}
	lower := strings.ToLower(name)
	for _, hint := range imageHints {
		if strings.Contains(lower, hint) {
			return KindImage
		}
	}
	return KindOther
}

// HintText renders attachment facts as a short text block for the
// classifiers. Returns "" when there are no attachments.
func HintText(atts []Attachment) string {
	if len(atts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(atts))
	for _, a := range atts {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Name, a.Kind))
	}
	return "Вложения: " + strings.Join(parts, ", ")
}

// ResolveImages loads image attachments from disk. Each name is tried
// as-is, then relative to root, then under the conventional
// subdirectories; names that do not exist anywhere are skipped.
func ResolveImages(root string, atts []Attachment) []InlineImage {
	var out []InlineImage
	for _, a := range atts {
		if a.Kind != KindImage {
			continue
		}
		mime, ok := imageMIME[strings.ToLower(filepath.Ext(a.Name))]
		if !ok {
			continue
		}
		path, ok := resolvePath(root, a.Name)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		out = append(out, InlineImage{Name: a.Name, MIMEType: mime, Data: data})
	}
	return out
}

func resolvePath(root, name string) (string, bool) {
	candidates := []string{name, filepath.Join(root, name)}
	for _, dir := range candidateDirs {
		candidates = append(candidates, filepath.Join(root, dir, name))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
