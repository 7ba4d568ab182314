// Package summary inspects a finished output tree and reports file counts
// and sizes per section, flagging sections that came out empty.
package summary

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const largestFileCount = 5

// LargeFile is one entry in the largest-files report.
type LargeFile struct {
	Name   string `json:"name"`
	SizeKb int64  `json:"sizeKb"`
}

// Summary describes one output tree.
type Summary struct {
	TotalFiles    int            `json:"totalFiles"`
	TotalSizeKb   int64          `json:"totalSizeKb"`
	SectionCounts map[string]int `json:"sectionCounts"`
	LargestFiles  []LargeFile    `json:"largestFiles"`
}

// Result pairs the summary with the warnings found while collecting it.
type Result struct {
	Summary  Summary
	Warnings []string
}

type fileEntry struct {
	path string
	size int64
}

func bytesToKb(size int64) int64 {
	kb := int64(math.Round(float64(size) / 1024))
	if kb < 0 {
		return 0
	}
	return kb
}

func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// Summarize walks the sections of outputDir and totals their JSON files.
func Summarize(outputDir string, emitRaw bool) (*Result, error) {
	sections := []string{"entities", "indexes", "views", "derived"}
	if emitRaw {
		sections = append(sections, "raw")
	}

	result := &Result{Summary: Summary{SectionCounts: make(map[string]int, len(sections))}}
	var files []fileEntry

	for _, section := range sections {
		paths, err := listJSONFiles(filepath.Join(outputDir, section))
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			result.Warnings = append(result.Warnings, section+" missing/empty")
		}
		result.Summary.SectionCounts[section] = len(paths)
		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}
			files = append(files, fileEntry{path: path, size: info.Size()})
		}
	}

	manifestPath := filepath.Join(outputDir, "manifest.json")
	if info, err := os.Stat(manifestPath); err == nil && info.Mode().IsRegular() {
		files = append(files, fileEntry{path: manifestPath, size: info.Size()})
	} else if os.IsNotExist(err) {
		result.Warnings = append(result.Warnings, "manifest missing")
	} else if err != nil {
		return nil, fmt.Errorf("stat manifest: %w", err)
	}

	var totalSize int64
	for _, file := range files {
		totalSize += file.size
	}
	result.Summary.TotalFiles = len(files)
	result.Summary.TotalSizeKb = bytesToKb(totalSize)

	sort.SliceStable(files, func(i, j int) bool { return files[i].size > files[j].size })
	if len(files) > largestFileCount {
		files = files[:largestFileCount]
	}
	for _, file := range files {
		rel, err := filepath.Rel(outputDir, file.path)
		if err != nil {
			rel = file.path
		}
		result.Summary.LargestFiles = append(result.Summary.LargestFiles, LargeFile{
			Name:   filepath.ToSlash(rel),
			SizeKb: bytesToKb(file.size),
		})
	}
	return result, nil
}
