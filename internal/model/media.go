package model

// MediaKind classifies a media asset by its file extension.
type MediaKind string

// Media kinds.
const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
	MediaFont  MediaKind = "font"
	MediaWeb   MediaKind = "web"
	MediaOther MediaKind = "other"
)

// MediaDetail describes one media asset found in a project archive.
type MediaDetail struct {
	// Name is the asset's file name without directories.
	Name string `json:"name"`

	// Size is the uncompressed size in bytes.
	Size int64 `json:"size"`

	// Kind is the asset category derived from the extension.
	Kind MediaKind `json:"kind"`

	// HasEXIF is true when EXIF metadata was found in an image.
	HasEXIF bool `json:"has_exif"`

	// EXIFTags lists the privacy relevant EXIF tags present
	// (GPS, camera, serial numbers, author), sorted and deduplicated.
	EXIFTags []string `json:"exif_tags,omitempty"`
}

// HasLocation reports whether the EXIF tags include GPS coordinates.
func (m MediaDetail) HasLocation() bool {
	for _, tag := range m.EXIFTags {
		if tag == "GPSLatitude" || tag == "GPSLongitude" {
			return true
		}
	}
	return false
}
