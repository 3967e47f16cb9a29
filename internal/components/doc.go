// Package components summarizes the component declaration file (.scm) of
// an App Inventor screen.
//
// A declaration file is a four line wrapper around a single JSON document:
//
//	#|
//	$JSON
//	{"Properties": {"$Name": "Screen1", "$Components": [...]}}
//	|#
//
// Only the direct children listed under Properties.$Components are counted.
package components
