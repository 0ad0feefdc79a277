package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bogem/id3v2"

	"csvmp3/internal/models"
	"csvmp3/internal/shared"
)

// maxCoverBytes caps how much cover art gets embedded. Thumbnails past this
// size bloat every file in a large playlist for no visible gain.
const maxCoverBytes = 2 << 20

// ID3Embedder writes ID3v2.4 tags into finished MP3 files.
type ID3Embedder struct {
	client *http.Client
}

// NewID3Embedder creates an embedder that fetches cover art over HTTP.
func NewID3Embedder() *ID3Embedder {
	return &ID3Embedder{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Embed implements [Embedder]. A cover art fetch failure degrades to tagging
// without artwork rather than failing the embed.
func (e *ID3Embedder) Embed(ctx context.Context, path string, track models.Track, coverURL string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: open: %v", shared.ErrEmbedFailed, err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(track.Title)
	tag.SetArtist(track.Artist)
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}
	if track.DurationMS > 0 {
		tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, strconv.Itoa(track.DurationMS))
	}

	if coverURL != "" {
		if artwork, mime, err := e.fetchCover(ctx, coverURL); err == nil {
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mime,
				PictureType: id3v2.PTFrontCover,
				Description: "Front cover",
				Picture:     artwork,
			})
		}
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: save: %v", shared.ErrEmbedFailed, err)
	}
	return nil
}

// fetchCover downloads cover art, returning the image bytes and MIME type.
func (e *ID3Embedder) fetchCover(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover fetch: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("cover fetch: empty body")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return data, mime, nil
}
