package sack

import (
	"os"

	"github.com/pelletier/go-toml"
)

// RepoConfig describes one [[repos]] entry in a SackConfig file.
type RepoConfig struct {
	Name       string `toml:"name"`
	Repomd     string `toml:"repomd"`
	Primary    string `toml:"primary"`
	Filelists  string `toml:"filelists"`
	Presto     string `toml:"presto"`
	Updateinfo string `toml:"updateinfo"`
}

// SackConfig is the decoded form of a sack TOML configuration file: cache
// directory, arch override, installonly policy, and the list of repos to
// load, in file order.
type SackConfig struct {
	CacheDir         string       `toml:"cache_dir"`
	Arch             string       `toml:"arch"`
	RootDir          string       `toml:"root_dir"`
	LogFile          string       `toml:"log_file"`
	Installonly      []string     `toml:"installonly"`
	InstallonlyLimit int          `toml:"installonly_limit"`
	BuildCache       bool         `toml:"build_cache"`
	Repos            []RepoConfig `toml:"repos"`
}

// LoadSackConfig parses a sack TOML configuration file, decoding it with
// github.com/pelletier/go-toml into the toml-tagged SackConfig, whose repos
// are an array of tables.
func LoadSackConfig(path string) (*SackConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr("LoadSackConfig", KindIO, err)
	}
	var cfg SackConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, newErr("LoadSackConfig", KindFailed, err)
	}
	return &cfg, nil
}

// Open constructs and populates a Sack from cfg: the system repo, then
// every listed regular repo, in the order they appear in the config file.
// Each repo is actually loaded through LoadSystemRepo/LoadRepo — parsed from
// its cache when a valid one exists, from its XML metadata otherwise — so a
// Sack returned from Open() is immediately queryable, not just registered.
// cfg.BuildCache controls whether a fresh cache is written back after a cold
// parse.
func (cfg *SackConfig) Open() (*Sack, error) {
	s, err := NewSack(SackOptions{
		CacheDir: cfg.CacheDir,
		Arch:     cfg.Arch,
		RootDir:  cfg.RootDir,
		LogFile:  cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	s.SetInstallonly(cfg.Installonly, cfg.InstallonlyLimit)

	if _, err := s.LoadSystemRepo(nil, cfg.BuildCache); err != nil {
		return nil, err
	}

	for _, rc := range cfg.Repos {
		files := RepoFiles{
			Repomd:     rc.Repomd,
			Primary:    rc.Primary,
			Filelists:  rc.Filelists,
			Presto:     rc.Presto,
			Updateinfo: rc.Updateinfo,
		}
		if _, err := s.LoadRepo(rc.Name, files, cfg.BuildCache); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadedRepoNames returns the names of every repo registered on the sack,
// in registration order (@System first when present).
func (s *Sack) LoadedRepoNames() []string {
	names := make([]string, len(s.repoOrder))
	copy(names, s.repoOrder)
	return names
}
