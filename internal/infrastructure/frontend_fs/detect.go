// Package frontend_fs answers one question: does the project under test
// ship a frontend at all? Absence makes the browser stage not applicable.
package frontend_fs

import "os"

type Dir struct {
	path string
}

func New(path string) *Dir { return &Dir{path: path} }

func (d *Dir) Present() bool {
	info, err := os.Stat(d.path)
	return err == nil && info.IsDir()
}
