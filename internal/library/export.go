package library

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/z/xonotic-map-manager/internal/utils"
)

// ExportMapPackages dumps the tracked packages as a JSON array to path.
func (l *Library) ExportMapPackages(path string) error {
	logrus.Infof("exporting maps as: %s", path)
	return l.Store.ExportAll(path)
}

// ExportHashIndex writes one "<shasum> <pk3>" line per tracked package to
// path, in store order.
func (l *Library) ExportHashIndex(path string) error {
	packages, err := l.Store.LoadAll()
	if err != nil {
		return err
	}

	logrus.Infof("exporting shasums to file: %s", path)

	var out []byte
	for i, pkg := range packages {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, fmt.Sprintf("%s %s", pkg.Shasum, pkg.Pk3)...)
	}

	return utils.WriteFile(path, out, 0644)
}

// ExportMaplist writes one bsp name per line to path: sorted within each
// package, concatenated in store order.
func (l *Library) ExportMaplist(path string) error {
	packages, err := l.Store.LoadAll()
	if err != nil {
		return err
	}

	logrus.Infof("exporting maplist to file: %s", path)

	var out []byte
	first := true
	for _, pkg := range packages {
		for _, name := range pkg.BspNames() {
			if !first {
				out = append(out, '\n')
			}
			first = false
			out = append(out, name...)
		}
	}

	return utils.WriteFile(path, out, 0644)
}
