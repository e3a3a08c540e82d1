package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quentin/makamail/internal/document"
)

type fakeResizer struct {
	calls [][3]interface{} // src, dst, [w,h]
	data  []byte
	err   error
}

func (r *fakeResizer) Resize(_ context.Context, src, dst string, width, height int) error {
	r.calls = append(r.calls, [3]interface{}{src, dst, [2]int{width, height}})
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(dst, r.data, 0o600)
}

type fakeDims struct {
	width, height int
	err           error
	calls         int
}

func (d *fakeDims) Dimensions(_ context.Context, _ string) (int, int, error) {
	d.calls++
	return d.width, d.height, d.err
}

func TestTransform_InlinePassthrough(t *testing.T) {
	original := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01, 0x02}
	payload := base64.StdEncoding.EncodeToString(original)

	ref := imageRef(t, "data:image/png;base64,"+payload)
	tr := &Transformer{}

	part, err := tr.Transform(context.Background(), ref, Source{
		Kind:     KindInline,
		MIMEType: "image/png",
		Payload:  payload,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if part.ID != "part-0" || part.Filename != "part-0" {
		t.Errorf("ID/Filename = %q/%q, want part-0/part-0", part.ID, part.Filename)
	}
	if part.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", part.MIMEType)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(part.Payload, "\r\n", ""))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if string(decoded) != string(original) {
		t.Errorf("decoded payload differs from original bytes")
	}
}

func TestTransform_ExternalExactResize(t *testing.T) {
	staging := t.TempDir()
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "photo.png")
	if err := os.WriteFile(srcPath, []byte("unused original"), 0o600); err != nil {
		t.Fatal(err)
	}

	resizer := &fakeResizer{data: []byte("resized bytes")}
	dims := &fakeDims{}
	tr := &Transformer{Resizer: resizer, Dims: dims, StagingDir: staging}

	doc, err := document.Parse(`<img src="photo.png" width="200" height="100"/>`, srcDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := doc.Images()[0]

	part, err := tr.Transform(context.Background(), ref, Source{
		Kind: KindExternal, MIMEType: "image/png", Path: srcPath,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resizer.calls) != 1 {
		t.Fatalf("resizer called %d times, want 1", len(resizer.calls))
	}
	call := resizer.calls[0]
	if call[0] != srcPath {
		t.Errorf("resize src = %v, want %s", call[0], srcPath)
	}
	wantDst := filepath.Join(staging, "part-0.png")
	if call[1] != wantDst {
		t.Errorf("resize dst = %v, want %s", call[1], wantDst)
	}
	if call[2] != [2]int{200, 100} {
		t.Errorf("resize dims = %v, want [200 100]", call[2])
	}
	if dims.calls != 0 {
		t.Errorf("dimension prober called %d times, want 0", dims.calls)
	}

	decoded, _ := base64.StdEncoding.DecodeString(strings.ReplaceAll(part.Payload, "\r\n", ""))
	if string(decoded) != "resized bytes" {
		t.Errorf("payload is not the resized content")
	}
	if part.Filename != "photo.png" {
		t.Errorf("Filename = %q, want photo.png", part.Filename)
	}
}

func TestTransform_ExternalSingleDimension(t *testing.T) {
	staging := t.TempDir()
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "wide.jpg")
	if err := os.WriteFile(srcPath, []byte("original"), 0o600); err != nil {
		t.Fatal(err)
	}

	resizer := &fakeResizer{data: []byte("scaled")}
	tr := &Transformer{Resizer: resizer, Dims: &fakeDims{}, StagingDir: staging}

	doc, err := document.Parse(`<img src="wide.jpg" width="100"/>`, srcDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := doc.Images()[0]

	if _, err := tr.Transform(context.Background(), ref, Source{
		Kind: KindExternal, MIMEType: "image/jpeg", Path: srcPath,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resizer.calls) != 1 {
		t.Fatalf("resizer called %d times, want 1", len(resizer.calls))
	}
	if resizer.calls[0][2] != [2]int{100, 0} {
		t.Errorf("resize dims = %v, want [100 0]", resizer.calls[0][2])
	}
}

func TestTransform_ExternalNoResizeBackfillsDimensions(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "plain.png")
	content := []byte("pixel data")
	if err := os.WriteFile(srcPath, content, 0o600); err != nil {
		t.Fatal(err)
	}

	resizer := &fakeResizer{}
	dims := &fakeDims{width: 640, height: 480}
	tr := &Transformer{Resizer: resizer, Dims: dims, StagingDir: t.TempDir()}

	doc, err := document.Parse(`<img src="plain.png"/>`, srcDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := doc.Images()[0]

	part, err := tr.Transform(context.Background(), ref, Source{
		Kind: KindExternal, MIMEType: "image/png", Path: srcPath,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resizer.calls) != 0 {
		t.Errorf("resizer called %d times, want 0", len(resizer.calls))
	}
	if dims.calls != 1 {
		t.Errorf("dimension prober called %d times, want 1", dims.calls)
	}

	out, err := doc.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `width="640"`) || !strings.Contains(out, `height="480"`) {
		t.Errorf("natural dimensions not written back: %s", out)
	}

	decoded, _ := base64.StdEncoding.DecodeString(strings.ReplaceAll(part.Payload, "\r\n", ""))
	if string(decoded) != string(content) {
		t.Errorf("payload does not round-trip to original bytes")
	}
}

func TestTransform_FailuresNameReference(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "img.png")
	if err := os.WriteFile(srcPath, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		markup string
		tr     *Transformer
		path   string
	}{
		{
			name:   "resize failure",
			markup: `<img src="img.png" width="10" height="10"/>`,
			tr: &Transformer{
				Resizer:    &fakeResizer{err: errors.New("convert exploded")},
				Dims:       &fakeDims{},
				StagingDir: t.TempDir(),
			},
			path: srcPath,
		},
		{
			name:   "dimension probe failure",
			markup: `<img src="img.png"/>`,
			tr: &Transformer{
				Resizer:    &fakeResizer{},
				Dims:       &fakeDims{err: errors.New("identify exploded")},
				StagingDir: t.TempDir(),
			},
			path: srcPath,
		},
		{
			name:   "unreadable file",
			markup: `<img src="gone.png"/>`,
			tr: &Transformer{
				Resizer:    &fakeResizer{},
				Dims:       &fakeDims{width: 1, height: 1},
				StagingDir: t.TempDir(),
			},
			path: filepath.Join(srcDir, "gone.png"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := document.Parse(tt.markup, srcDir)
			if err != nil {
				t.Fatal(err)
			}
			ref := doc.Images()[0]

			_, err = tt.tr.Transform(context.Background(), ref, Source{
				Kind: KindExternal, MIMEType: "image/png", Path: tt.path,
			})
			if !errors.Is(err, ErrTransform) {
				t.Fatalf("error = %v, want ErrTransform", err)
			}
			if !strings.Contains(err.Error(), ref.ID) {
				t.Errorf("error %q does not name the offending reference %s", err, ref.ID)
			}
		})
	}
}

func TestWrapBase64(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
	}{
		{"short line unchanged", "aGVsbG8=", "aGVsbG8="},
		{"strips embedded newlines", "aGVs\nbG8=", "aGVsbG8="},
		{
			"wraps at 76 columns",
			strings.Repeat("A", 80),
			strings.Repeat("A", 76) + "\r\n" + strings.Repeat("A", 4),
		},
		{
			"exact multiple has no trailing break",
			strings.Repeat("B", 76),
			strings.Repeat("B", 76),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapBase64(tt.encoded); got != tt.want {
				t.Errorf("wrapBase64(%q) = %q, want %q", tt.encoded, got, tt.want)
			}
		})
	}
}
