// Package media inspects the media assets bundled with a project.
//
// Students often drop phone photos straight into their apps. Inspect flags
// images whose EXIF metadata carries location, device or author details,
// so a corpus can be screened before it is shared.
package media
