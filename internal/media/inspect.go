package media

import (
	"path"
	"slices"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/ai2summary/internal/model"
)

// extensionKinds maps lowercase extensions (without the dot) to media kinds.
var extensionKinds = map[string]model.MediaKind{
	"png": model.MediaImage, "jpg": model.MediaImage, "jpeg": model.MediaImage,
	"gif": model.MediaImage, "bmp": model.MediaImage, "webp": model.MediaImage,
	"svg": model.MediaImage, "ico": model.MediaImage, "tif": model.MediaImage,
	"tiff": model.MediaImage, "heic": model.MediaImage,

	"mp3": model.MediaAudio, "wav": model.MediaAudio, "ogg": model.MediaAudio,
	"m4a": model.MediaAudio, "aac": model.MediaAudio, "flac": model.MediaAudio,
	"mid": model.MediaAudio, "midi": model.MediaAudio,

	"mp4": model.MediaVideo, "3gp": model.MediaVideo, "webm": model.MediaVideo,
	"mov": model.MediaVideo, "avi": model.MediaVideo,

	"ttf": model.MediaFont, "otf": model.MediaFont,

	"html": model.MediaWeb, "htm": model.MediaWeb, "css": model.MediaWeb,
	"js": model.MediaWeb, "json": model.MediaWeb,
}

// exifExtensions are the image formats that can carry EXIF metadata.
var exifExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"png": true, "heic": true, "webp": true,
}

// sensitiveTags are the EXIF tags that can identify a person, a place or a device.
var sensitiveTags = map[string]bool{
	"GPSLatitude":        true,
	"GPSLatitudeRef":     true,
	"GPSLongitude":       true,
	"GPSLongitudeRef":    true,
	"GPSAltitude":        true,
	"Make":               true,
	"Model":              true,
	"SerialNumber":       true,
	"CameraSerialNumber": true,
	"BodySerialNumber":   true,
	"LensSerialNumber":   true,
	"Artist":             true,
	"Author":             true,
	"Copyright":          true,
	"XPAuthor":           true,
	"HostComputer":       true,
	"DateTimeOriginal":   true,
}

// KindOf classifies a file name by its extension.
func KindOf(name string) model.MediaKind {
	if kind, ok := extensionKinds[extensionOf(name)]; ok {
		return kind
	}
	return model.MediaOther
}

// Inspect describes the asset name with contents data. EXIF is only looked
// for in formats that can carry it; unreadable metadata counts as absent.
func Inspect(name string, data []byte) model.MediaDetail {
	detail := model.MediaDetail{
		Name: path.Base(name),
		Size: int64(len(data)),
		Kind: KindOf(name),
	}
	if !exifExtensions[extensionOf(name)] {
		return detail
	}

	tags, ok := exifTags(data)
	if !ok {
		return detail
	}
	detail.HasEXIF = true
	if len(tags) > 0 {
		detail.EXIFTags = tags
	}
	return detail
}

// exifTags returns the sorted sensitive tags found in data, and whether
// EXIF was found at all.
func exifTags(data []byte) ([]string, bool) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil, false
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, false
	}

	tags := make([]string, 0)
	for _, entry := range entries {
		if sensitiveTags[entry.TagName] {
			tags = append(tags, entry.TagName)
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags), true
}

func extensionOf(name string) string {
	ext := path.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
