// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != runtime.NumCPU() || cfg.MaxMemoryMiB != 0 || cfg.Serve != "" {
		t.Errorf("defaults=%+v; want %d workers, no memory bound, no serve address", cfg, runtime.NumCPU())
	}
	if cfg.MaxBytes() != 0 {
		t.Errorf("MaxBytes()=%d; want 0 for automatic", cfg.MaxBytes())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	text := "workers: 3\nmaxMemoryMiB: 2048\nserve: \":9090\"\n"
	if err := os.WriteFile(path, []byte(text), 0666); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 3 || cfg.MaxMemoryMiB != 2048 || cfg.Serve != ":9090" {
		t.Errorf("loaded=%+v; want workers 3, 2048 MiB, serve :9090", cfg)
	}
	if cfg.MaxBytes() != 2048*1024*1024 {
		t.Errorf("MaxBytes()=%d; want %d", cfg.MaxBytes(), 2048*1024*1024)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: [not an int"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("malformed config accepted")
	}
}
