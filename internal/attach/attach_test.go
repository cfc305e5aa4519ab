package attach

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDescriptor(t *testing.T) {
	atts := Parse("фото1.jpg; договор.pdf|логи.zip\nскрин ошибки")
	if len(atts) != 4 {
		t.Fatalf("expected 4 attachments, got %d: %+v", len(atts), atts)
	}
	want := []Kind{KindImage, KindDocument, KindArchive, KindImage}
	for i, k := range want {
		if atts[i].Kind != k {
			t.Fatalf("attachment %d (%s): got %s, want %s", i, atts[i].Name, atts[i].Kind, k)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if atts := Parse(""); len(atts) != 0 {
		t.Fatalf("expected no attachments, got %+v", atts)
	}
	if atts := Parse(" ; , "); len(atts) != 0 {
		t.Fatalf("expected no attachments from delimiters only, got %+v", atts)
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		"a.PNG":          KindImage,
		"report.docx":    KindDocument,
		"backup.tar":     KindArchive,
		"скрин без расш": KindImage,
		"что-то":         KindOther,
	}
	for name, want := range cases {
		if got := KindOf(name); got != want {
			t.Fatalf("KindOf(%q): got %s, want %s", name, got, want)
		}
	}
}

func TestHintText(t *testing.T) {
	if got := HintText(nil); got != "" {
		t.Fatalf("expected empty hint, got %q", got)
	}
	got := HintText([]Attachment{{Name: "фото.jpg", Kind: KindImage}})
	if got != "Вложения: фото.jpg (image)" {
		t.Fatalf("unexpected hint: %q", got)
	}
}

func TestResolveImages(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "attachments"), 0o755); err != nil {
		t.Fatal(err)
	}
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	if err := os.WriteFile(filepath.Join(root, "attachments", "a.png"), payload, 0o644); err != nil {
		t.Fatal(err)
	}

	atts := Parse("a.png, отсутствует.jpg, договор.pdf")
	images := ResolveImages(root, atts)
	if len(images) != 1 {
		t.Fatalf("expected 1 resolved image, got %d", len(images))
	}
	if images[0].Name != "a.png" || images[0].MIMEType != "image/png" {
		t.Fatalf("unexpected image: %+v", images[0])
	}
	if string(images[0].Data) != string(payload) {
		t.Fatalf("image payload mismatch")
	}
}

func TestResolveImagesSkipsKeywordOnlyNames(t *testing.T) {
	// A keyword-detected image with no known extension cannot be inlined.
	images := ResolveImages(t.TempDir(), Parse("скрин ошибки"))
	if len(images) != 0 {
		t.Fatalf("expected no images, got %+v", images)
	}
}
