package profile

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Index reads and writes the profile index file (§6.1): a JSON mapping
// profile_name -> profile metadata, the sole source of truth for
// profile metadata.
type Index struct {
	path string
}

func NewIndex(path string) *Index {
	return &Index{path: path}
}

// Load reads every profile in the index. A missing index file is not an
// error; it is treated as an empty index (no profiles created yet).
func (idx *Index) Load() (map[string]*Profile, error) {
	v := viper.New()
	v.SetConfigFile(idx.path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return map[string]*Profile{}, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return map[string]*Profile{}, nil
		}
		return nil, err
	}

	out := make(map[string]*Profile)
	if err := v.Unmarshal(&out); err != nil {
		return nil, err
	}
	for name, p := range out {
		if p.Name == "" {
			p.Name = name
		}
	}
	return out, nil
}

// Save rewrites the entire index file from profiles. The profile index
// is always rewritten in full from the in-memory map the caller
// maintains; merging with profiles the current scan didn't touch is the
// caller's responsibility (§4.4 merge strategy), not this layer's.
func (idx *Index) Save(profiles map[string]*Profile) error {
	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("json")
	for name, p := range profiles {
		v.Set(name, p)
	}

	tmp := idx.path + ".tmp"
	if err := v.WriteConfigAs(tmp); err != nil {
		return err
	}
	return os.Rename(tmp, idx.path)
}
