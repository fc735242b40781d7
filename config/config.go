package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Path of the live save container (the .sl2 file).
	SavePath string `yaml:"save_path"`
	// Directory snapshots are written to by the watcher.
	BackupDir string `yaml:"backup_dir"`
	// Address the web surface listens on.
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultListenAddr binds the web surface to loopback only.
const DefaultListenAddr = "127.0.0.1:8067"

var current = Config{
	ListenAddr: DefaultListenAddr,
}

func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to read config %q", path)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return errors.Wrapf(err, "Failed to parse config %q", path)
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	current = c
	return nil
}

func Get() Config {
	return current
}

func SetSavePath(path string) {
	current.SavePath = path
}

func SetBackupDir(dir string) {
	current.BackupDir = dir
}
