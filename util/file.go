package util

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

func SaveJson(path string, data interface{}) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	bs, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	_, err = file.Write(bs)
	return err
}

// SaveJsonLines writes one JSON document per line.
func SaveJsonLines[T any](path string, items []T) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	for _, item := range items {
		bs, err := json.Marshal(item)
		if err != nil {
			return err
		}
		buf.Write(bs)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// if the parent directory doesn't exist create it
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
