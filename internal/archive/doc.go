// Package archive reads App Inventor project archives (.aia and .zip).
//
// An archive is read into memory once by Open. Its entries are then looked
// up by bare file name: the designer nests screen files under a per-user
// source path (src/appinventor/ai_<user>/<project>/Screen1.bky), so callers
// ask for "Screen1.bky" and the archive resolves the full entry name.
//
// The package also finds projects in a corpus laid out as
// <users dir>/<user>/<project>, zipping loose project directories on the
// way, and removes the generated zips again.
package archive
