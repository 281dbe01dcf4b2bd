package downloader

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sorrow446/go-mp4tag"
	"github.com/bogem/id3v2/v2"
	"go.uber.org/zap"
)

// Tagger embeds cover art and metadata into a downloaded file.
// coverPath may be empty when no artwork could be fetched.
type Tagger interface {
	Tag(ctx context.Context, path, coverPath string, meta TrackMeta) error
}

// FFmpegTagger remuxes the file through ffmpeg and replaces it on success
type FFmpegTagger struct {
	Path   string
	Runner Runner
	Logger *zap.Logger
}

// TempPath is where ffmpeg writes before the result replaces path
func TempPath(path string) string {
	return path + ".temp" + filepath.Ext(path)
}

// Args builds the ffmpeg argument list writing to out
func (f *FFmpegTagger) Args(path, coverPath string, meta TrackMeta, out string) []string {
	args := []string{"-i", path}
	if coverPath != "" {
		args = append(args,
			"-i", coverPath,
			"-map", "0:a",
			"-map", "1:0",
			"-c:a", "copy",
			"-c:v", "mjpeg",
			"-disposition:v", "attached_pic",
		)
	} else {
		args = append(args, "-map", "0:a", "-c:a", "copy")
	}
	args = append(args,
		"-metadata", "title="+meta.Title,
		"-metadata", "artist="+meta.Artists,
		"-metadata", "album="+meta.Album,
		"-y",
		out,
	)
	return args
}

// Tag implements Tagger.
// The original file is left untouched unless ffmpeg succeeds.
func (f *FFmpegTagger) Tag(ctx context.Context, path, coverPath string, meta TrackMeta) error {
	tmp := TempPath(path)
	args := f.Args(path, coverPath, meta, tmp)

	if f.Logger != nil {
		f.Logger.Debug("Running ffmpeg", zap.String("path", f.Path), zap.Strings("args", args))
	}

	if err := f.Runner.Run(ctx, f.Path, args, nil); err != nil {
		removeIfExists(tmp)
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if _, err := os.Stat(tmp); err != nil {
		return fmt.Errorf("ffmpeg produced no output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		removeIfExists(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func removeIfExists(path string) {
	_ = os.Remove(path)
}

// ID3Tagger writes ID3v2.4 frames into an mp3 in place
type ID3Tagger struct{}

// Tag implements Tagger
func (ID3Tagger) Tag(_ context.Context, path, coverPath string, meta TrackMeta) error {
	cover, err := readCover(coverPath)
	if err != nil {
		return err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("could not open track file: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(meta.Title)
	tag.SetArtist(meta.Artists)
	tag.SetAlbum(meta.Album)

	if cover != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    http.DetectContentType(cover),
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     cover,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("could not save track file: %w", err)
	}
	return nil
}

// MP4Tagger writes iTunes-style atoms into an m4a in place
type MP4Tagger struct{}

// Tag implements Tagger
func (MP4Tagger) Tag(_ context.Context, path, coverPath string, meta TrackMeta) error {
	cover, err := readCover(coverPath)
	if err != nil {
		return err
	}

	mp4t, err := mp4tag.Open(path)
	if err != nil {
		return err
	}
	defer mp4t.Close()

	tags := &mp4tag.MP4Tags{
		Title:  meta.Title,
		Artist: meta.Artists,
		Album:  meta.Album,
	}
	if cover != nil {
		tags.Pictures = []*mp4tag.MP4Picture{{Format: mp4tag.ImageTypeAuto, Data: cover}}
	}

	return mp4t.Write(tags, []string{})
}

func readCover(coverPath string) ([]byte, error) {
	if coverPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(coverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}
	return data, nil
}

// TaggerFor picks the tagger for format.
// ffmpeg is preferred for mp3; m4a is always tagged natively.
func TaggerFor(format string, ffmpeg *FFmpegTagger) Tagger {
	switch strings.ToLower(format) {
	case FormatM4A:
		return MP4Tagger{}
	default:
		if ffmpeg != nil {
			return ffmpeg
		}
		return ID3Tagger{}
	}
}
