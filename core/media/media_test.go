package media

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sadaka/core"
)

// QuickTime header, as recorded by phones
var movBytes = []byte("\x00\x00\x00\x14ftypqt  \x00\x00\x02\x00qt  \x00\x00\x00\x08wide")

// 1x1 transparent GIF
var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

type fakeUploader struct {
	in      UploadInput
	content []byte
}

func (u *fakeUploader) Upload(_ context.Context, in UploadInput) (Asset, error) {
	u.in = in
	content, err := io.ReadAll(in.Content)
	if err != nil {
		return Asset{}, err
	}
	u.content = content
	return Asset{
		URL:          "https://cdn.test/" + in.Folder + "/" + in.Filename,
		PublicID:     in.Folder + "/" + in.Filename,
		ResourceType: ResourceType(in.ContentType),
		Bytes:        len(content),
	}, nil
}

func TestService_Upload(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Cloudinary.Folder = "sadaka"
	conf.Cloudinary.MaxUploadSize = 1024

	tests := []struct {
		name      string
		in        UploadInput
		wantErr   bool
		wantType  string
		wantFoldr string
	}{
		{name: "empty", in: UploadInput{Filename: "a.gif", Content: bytes.NewReader(nil)}, wantErr: true},
		{name: "too large", in: UploadInput{Filename: "a.gif", Content: bytes.NewReader(gifBytes), Size: 2048}, wantErr: true},
		{name: "not media", in: UploadInput{Filename: "a.gif", Content: strings.NewReader("hello"), Size: 5, ContentType: "image/gif"}, wantErr: true},
		{
			name:    "svg",
			in:      UploadInput{Filename: "a.svg", Content: strings.NewReader(svgDoc), Size: int64(len(svgDoc)), ContentType: "image/svg+xml"},
			wantErr: true,
		},
		{
			name:      "gif",
			in:        UploadInput{Filename: "../../a.gif", Content: bytes.NewReader(gifBytes), Size: int64(len(gifBytes)), ContentType: "text/plain", Folder: "About Us"},
			wantType:  "image/gif",
			wantFoldr: "sadaka/about-us",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := new(fakeUploader)
			svc := NewService(uploader, conf)
			asset, err := svc.Upload(context.Background(), tt.in)
			if tt.wantErr {
				assert.IsType(t, &core.ValidationError{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, uploader.in.ContentType)
			assert.Equal(t, tt.wantFoldr, uploader.in.Folder)
			assert.Equal(t, "a.gif", uploader.in.Filename)
			assert.Equal(t, gifBytes, uploader.content)
			assert.Equal(t, ResourceImage, asset.ResourceType)
		})
	}
}

const svgDoc = `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`

func TestService_UploadVideo(t *testing.T) {
	uploader := new(fakeUploader)
	svc := NewService(uploader, core.NewTestConfig())

	asset, err := svc.Upload(context.Background(), UploadInput{
		Filename: "IMG_0042.MOV", Content: bytes.NewReader(movBytes), Size: int64(len(movBytes)),
	})
	require.NoError(t, err)
	assert.Equal(t, "video/quicktime", uploader.in.ContentType)
	assert.Equal(t, ResourceVideo, asset.ResourceType)
	assert.Equal(t, movBytes, uploader.content)
}

func TestSubstitute(t *testing.T) {
	text := "intro\n" + Placeholder("team") + "\nand again " + Placeholder("team")
	got, ok := Substitute(text, PlaceholderFor("photos/team.jpg"), "https://cdn.test/team.jpg")
	assert.True(t, ok)
	assert.Equal(t, "intro\nhttps://cdn.test/team.jpg\nand again https://cdn.test/team.jpg", got)

	got, ok = Substitute(text, Placeholder("other"), "https://cdn.test/x.jpg")
	assert.False(t, ok)
	assert.Equal(t, text, got)

	_, ok = Substitute(text, "", "https://cdn.test/x.jpg")
	assert.False(t, ok)
}

func TestSnippet(t *testing.T) {
	img := Asset{URL: "https://cdn.test/a.png", ResourceType: ResourceImage}
	vid := Asset{URL: "https://cdn.test/a.mp4", ResourceType: ResourceVideo}

	assert.Equal(t, "![Our team](https://cdn.test/a.png)", Snippet(img, " Our [team] "))
	assert.Equal(t, "[Intro](https://cdn.test/a.mp4)", Snippet(vid, "Intro"))
	assert.Equal(t, "[https://cdn.test/a.mp4](https://cdn.test/a.mp4)", Snippet(vid, ""))
}
