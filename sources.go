package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gruntwork-io/go-commons/errors"
)

// Source is one chart to decode: a .osu file on disk or an entry of a .osz
// archive.
type Source struct {
	Name string
	Load func() ([]byte, error)
}

func isOsu(name string) bool { return strings.EqualFold(filepath.Ext(name), ".osu") }
func isOsz(name string) bool { return strings.EqualFold(filepath.Ext(name), ".osz") }

// CollectSources expands the command line paths into sources in a stable
// order. Directories are walked for .osu and .osz files; archive entries
// that cannot be used are returned as rejected names with a reason.
func CollectSources(paths []string) (sources []Source, rejected map[string]string, err error) {
	rejected = make(map[string]string)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, errors.WithStackTrace(err)
		}
		if !info.IsDir() {
			found, err := fileSources(p, rejected)
			if err != nil {
				return nil, nil, err
			}
			sources = append(sources, found...)
			continue
		}

		var files []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && (isOsu(d.Name()) || isOsz(d.Name())) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, errors.WithStackTraceAndPrefix(err, "walk %s", p)
		}
		sort.Strings(files)
		for _, f := range files {
			found, err := fileSources(f, rejected)
			if err != nil {
				return nil, nil, err
			}
			sources = append(sources, found...)
		}
	}
	return sources, rejected, nil
}

func fileSources(path string, rejected map[string]string) ([]Source, error) {
	switch {
	case isOsz(path):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}
		return OszSources(path, data, rejected)
	case isOsu(path):
		return []Source{{Name: path, Load: func() ([]byte, error) { return os.ReadFile(path) }}}, nil
	default:
		return nil, errors.WithStackTrace(fmt.Errorf("%s is neither a .osu nor a .osz file", path))
	}
}

// OszSources lists the .osu entries of a beatmap set archive. The charts are
// read into memory; entries in sub-directories are rejected.
func OszSources(name string, data []byte, rejected map[string]string) ([]Source, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "open osz %s", name)
	}

	var out []Source
	for _, file := range zipReader.File {
		if !isOsu(file.Name) {
			continue
		}
		entry := name + "/" + file.Name
		if file.FileInfo().IsDir() || strings.ContainsAny(file.Name, `/\`) {
			rejected[entry] = "chart inside a sub-directory"
			continue
		}
		contents, err := readZipFile(file)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "read %s", entry)
		}
		out = append(out, Source{Name: entry, Load: func() ([]byte, error) { return contents, nil }})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	r, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
