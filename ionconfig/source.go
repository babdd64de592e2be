package ionconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

/*
 * File and directory sources.
 *
 * Only files whose extension is exactly ".ion" are loaded; anything else is
 * silently ignored so config directories can carry readmes and editor
 * droppings. Files are processed in ascending name order for a
 * deterministic cascade regardless of filesystem iteration order.
 */

const allowedExtension = ".ion"

// FromDirectory compiles a manager from every .ion file in a directory.
func FromDirectory(dir string) (*Manager, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ConfigError{msg: "could not read config directory " + dir + ": " + err.Error(), err: err}
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return FromFiles(paths...)
}

// FromFiles compiles a manager from the given files, ignoring any without a
// .ion extension.
func FromFiles(paths ...string) (*Manager, error) {
	var selected []string
	for _, path := range paths {
		if filepath.Ext(path) != allowedExtension {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, recordError(filepath.Base(path), err, "could not load config file")
		}
		if !info.Mode().IsRegular() {
			continue
		}
		selected = append(selected, path)
	}
	sort.Slice(selected, func(i, j int) bool {
		return filepath.Base(selected[i]) < filepath.Base(selected[j])
	})

	var records []Record
	for _, path := range selected {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, recordError(name, err, "could not load config file")
		}
		values, err := ionvalue.ReadAll(bytes.NewReader(data))
		if err != nil {
			return nil, recordError(name, err, "could not parse config file")
		}
		for _, v := range values {
			records = append(records, Record{Name: name, Value: v})
		}
	}
	return FromRecords(records...)
}
